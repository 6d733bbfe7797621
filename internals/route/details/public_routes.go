package details

import (
	"github.com/gofiber/fiber/v2"

	authController "library_backend/internals/features/auth/controller"
	authRoute "library_backend/internals/features/auth/route"
	fineController "library_backend/internals/features/fines/controller"
	fineRoute "library_backend/internals/features/fines/route"
)

// PublicRoutes must be mounted before the JWT group so they never reach it.
func PublicRoutes(public fiber.Router, auth *authController.AuthController, fines *fineController.FineController) {
	authRoute.AuthPublicRoutes(public, auth)
	fineRoute.FinePublicRoutes(public, fines)
}
