package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/constants"
	"library_backend/internals/features/members/controller"
	authMiddleware "library_backend/internals/middlewares/auth"
)

func MemberRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewMemberController(db)
	staff := authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("member management"), constants.StaffRoles)

	g := r.Group("/members")
	g.Post("/", staff, ctl.Create)
	g.Get("/", staff, ctl.List)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id/status", staff, ctl.UpdateStatus)
}
