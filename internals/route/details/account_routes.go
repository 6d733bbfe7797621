package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authController "library_backend/internals/features/auth/controller"
	authRoute "library_backend/internals/features/auth/route"
	bookRoute "library_backend/internals/features/catalog/books/route"
	memberRoute "library_backend/internals/features/members/route"
	settingRoute "library_backend/internals/features/settings/route"
)

// AccountRoutes covers the session, books, members and loan policies.
func AccountRoutes(private fiber.Router, db *gorm.DB, auth *authController.AuthController) {
	authRoute.AuthPrivateRoutes(private, auth)
	bookRoute.BookRoutes(private, db)
	memberRoute.MemberRoutes(private, db)
	settingRoute.SettingRoutes(private, db)
}
