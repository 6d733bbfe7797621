package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/configs"
	database "library_backend/internals/databases"
)

func BaseRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("library backend is running")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "connected"
		serverStatus := "ok"
		httpStatus := fiber.StatusOK

		if err := database.Ping(db); err != nil {
			dbStatus = "database connection error"
			serverStatus = "down"
			httpStatus = fiber.StatusServiceUnavailable
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().UTC().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    configs.App.AppEnv,
		})
	})
}
