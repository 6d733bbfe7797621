package route

import (
	"github.com/gofiber/fiber/v2"

	"library_backend/internals/constants"
	"library_backend/internals/features/fines/controller"
	authMiddleware "library_backend/internals/middlewares/auth"
)

// FinePublicRoutes holds the gateway callback.
func FinePublicRoutes(r fiber.Router, ctl *controller.FineController) {
	r.Post("/fines/notification", ctl.Notification)
}

func FineRoutes(r fiber.Router, ctl *controller.FineController) {
	anyone := authMiddleware.OnlyRolesSlice("a library account is required", constants.AllRoles)
	staff := authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("fine management"), constants.StaffRoles)
	admin := authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("waiving fines"), constants.AdminOnly)

	g := r.Group("/fines")
	g.Post("/", staff, ctl.Create)
	g.Get("/member/:id", anyone, ctl.ListByMember)
	g.Get("/:id", anyone, ctl.GetByID)
	g.Post("/:id/pay", staff, ctl.Pay)
	g.Post("/:id/checkout", anyone, ctl.Checkout)
	g.Put("/:id/waive", admin, ctl.Waive)
}
