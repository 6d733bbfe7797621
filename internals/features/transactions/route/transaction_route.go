package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/constants"
	"library_backend/internals/features/transactions/controller"
	authMiddleware "library_backend/internals/middlewares/auth"
)

func TransactionRoutes(r fiber.Router, db *gorm.DB) {
	Mount(r, controller.NewTransactionController(db))
}

func Mount(r fiber.Router, ctl *controller.TransactionController) {
	anyone := authMiddleware.OnlyRolesSlice("a library account is required", constants.AllRoles)
	staff := authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("the circulation desk"), constants.StaffRoles)

	g := r.Group("/transactions")
	g.Post("/issue", staff, ctl.Issue)
	g.Get("/overdue", staff, ctl.ListOverdue)
	g.Get("/member/:id", anyone, ctl.ListByMember)
	g.Put("/:id/return", staff, ctl.Return)
	g.Put("/:id/renew", anyone, ctl.Renew)
	g.Put("/:id/lost", staff, ctl.MarkLost)
}
