package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/constants"
	"library_backend/internals/features/reservations/controller"
	authMiddleware "library_backend/internals/middlewares/auth"
)

func ReservationRoutes(r fiber.Router, db *gorm.DB) {
	Mount(r, controller.NewReservationController(db))
}

// Mount registers the reservation endpoints on r, which must already carry the JWT middleware.
func Mount(r fiber.Router, ctl *controller.ReservationController) {
	anyone := authMiddleware.OnlyRolesSlice("a library account is required", constants.AllRoles)
	staff := authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("the reservation queue"), constants.StaffRoles)
	admin := authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("the expiry sweep"), constants.AdminOnly)

	g := r.Group("/reservations")
	g.Post("/", anyone, ctl.Create)
	g.Delete("/:id", anyone, ctl.Cancel)
	g.Get("/member/:id", anyone, ctl.ListByMember)
	g.Get("/book/:id", staff, ctl.ListByBook)
	g.Get("/book/:id/next", staff, ctl.NextInQueue)
	g.Put("/:id/fulfill", staff, ctl.Fulfill)
	g.Post("/expire", admin, ctl.Expire)
}
