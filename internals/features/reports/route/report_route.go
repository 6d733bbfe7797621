package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/constants"
	"library_backend/internals/features/reports/controller"
	authMiddleware "library_backend/internals/middlewares/auth"
)

func ReportRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewReportController(db)
	staff := authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("reports"), constants.StaffRoles)

	g := r.Group("/reports", staff)
	g.Get("/dashboard", ctl.Dashboard)
	g.Get("/overdue", ctl.Overdue)
	g.Get("/export", ctl.Export)
}
