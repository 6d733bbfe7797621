package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRateLimiter_BlocksSixthAttempt(t *testing.T) {
	app := fiber.New()
	app.Post("/login", LoginRateLimiter(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusNoContent, resp.StatusCode, "attempt %d", i+1)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "TOO_MANY_REQUESTS", body["error_code"])
}

func TestRequestTimeout_SetsDeadline(t *testing.T) {
	app := fiber.New()
	app.Use(RequestTimeout(2 * time.Second))
	app.Get("/", func(c *fiber.Ctx) error {
		dl, ok := c.UserContext().Deadline()
		if !ok || time.Until(dl) > 2*time.Second {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequestID_EchoesIncomingHeader(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(c.Locals("requestid").(string)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "abc-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(fiber.HeaderXRequestID))
}

func TestRecovery_TurnsPanicInto500(t *testing.T) {
	app := fiber.New()
	app.Use(RecoveryMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
