package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"library_backend/internals/configs"
)

// CorsMiddleware allows the configured front-end origins.
func CorsMiddleware() fiber.Handler {
	origins := make([]string, 0, 4)
	for _, o := range strings.Split(configs.App.CORSAllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ", "),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders:    "Content-Disposition, X-Request-ID",
		AllowCredentials: true,
	})
}
