package middlewares

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestTimeout bounds the user context of each request and logs its duration.
func RequestTimeout(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)

		err := c.Next()
		if d := time.Since(start); d > timeout/2 {
			log.Printf("[SLOW REQ] id=%v %s %s dur=%s", c.Locals("requestid"), c.Method(), c.OriginalURL(), d)
		}
		return err
	}
}

// RequestID honours an incoming X-Request-ID or generates one.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: "requestid",
	})
}
