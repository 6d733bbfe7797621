package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "library_backend/internals/helpers"
)

func ipLimiter(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// Global limiter for every endpoint
func GlobalRateLimiter() fiber.Handler {
	return ipLimiter(100, time.Minute, "too many requests, please try again later")
}

// Login is stricter
func LoginRateLimiter() fiber.Handler {
	return ipLimiter(5, time.Minute, "too many login attempts, please wait a moment")
}

func RegisterRateLimiter() fiber.Handler {
	return ipLimiter(3, 5*time.Minute, "too many registrations from this address, please wait a few minutes")
}

func ForgotPasswordRateLimiter() fiber.Handler {
	return ipLimiter(2, 10*time.Minute, "too many password reset requests, try again in 10 minutes")
}
