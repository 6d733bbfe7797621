package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/configs"
	authController "library_backend/internals/features/auth/controller"
	fineController "library_backend/internals/features/fines/controller"
	fineService "library_backend/internals/features/fines/service"
	"library_backend/internals/helpers/ttlstore"
	rateLimiter "library_backend/internals/middlewares"
	authMiddleware "library_backend/internals/middlewares/auth"
	routeDetails "library_backend/internals/route/details"
)

var startTime time.Time

// Deps are the shared collaborators built once in main.
type Deps struct {
	Secret string
	Tokens ttlstore.Store
	// Gateway may be nil; fine checkout then reports it is not configured.
	Gateway fineService.PaymentGateway
}

func SetupRoutes(app *fiber.App, db *gorm.DB, deps Deps) {
	startTime = time.Now()

	BaseRoutes(app, db)
	if configs.App.CoverDir != "" {
		app.Static(configs.App.CoverPublicURL, configs.App.CoverDir)
	}

	authCtl := authController.NewAuthController(db, deps.Tokens)
	fineCtl := fineController.NewFineController(db, deps.Gateway)

	// ===================== PUBLIC =====================
	log.Println("[INFO] Setting up PUBLIC routes...")
	public := app.Group("/api", rateLimiter.GlobalRateLimiter())
	routeDetails.PublicRoutes(public, authCtl, fineCtl)

	// ===================== PRIVATE (JWT) =====================
	log.Println("[INFO] Setting up PRIVATE routes...")
	private := app.Group("/api", authMiddleware.AuthMiddleware(db, authMiddleware.Options{
		Secret:  deps.Secret,
		Revoked: deps.Tokens,
	}))
	routeDetails.AccountRoutes(private, db, authCtl)
	routeDetails.CirculationRoutes(private, db, fineCtl)
}
