package logger

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"library_backend/internals/configs"
)

// LoggerMiddleware logs every request, tagged with its request id.
func LoggerMiddleware() fiber.Handler {
	tz := configs.App.LogTimeZone
	if tz == "" {
		tz = "UTC"
	}
	return logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   tz,
		Format:     "[${time}] ${locals:requestid} ${ip} - ${method} ${path} - ${status} - ${latency}\n",
	})
}
