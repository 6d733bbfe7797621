package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/constants"
	"library_backend/internals/features/settings/controller"
	authMiddleware "library_backend/internals/middlewares/auth"
)

// SettingRoutes expects r to be behind the JWT middleware.
func SettingRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewSettingController(db)

	g := r.Group("/settings")
	g.Get("/", authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("loan policies"), constants.StaffRoles), ctl.List)
	g.Get("/:memberType", ctl.GetByMemberType)
	g.Put("/:memberType", authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("loan policy changes"), constants.AdminOnly), ctl.Upsert)
}
