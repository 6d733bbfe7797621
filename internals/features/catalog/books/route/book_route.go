package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/constants"
	"library_backend/internals/features/catalog/books/controller"
	authMiddleware "library_backend/internals/middlewares/auth"
)

func BookRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewBookController(db)
	staff := authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("catalog management"), constants.StaffRoles)

	g := r.Group("/books")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.GetByID)
	g.Post("/", staff, ctl.Create)
	g.Patch("/:id", staff, ctl.Update)
	g.Delete("/:id", staff, ctl.Delete)
	g.Post("/:id/cover", staff, ctl.UploadCover)
}
