package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"library_backend/internals/middlewares/logger"
)

// SetupMiddlewares installs the app-wide chain. Order matters: recovery wraps
// everything and the request id must exist before the logger runs.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestID())
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware())
	app.Use(RequestTimeout(10 * time.Second))
}
