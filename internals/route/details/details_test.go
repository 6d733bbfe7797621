package details

import (
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	authController "library_backend/internals/features/auth/controller"
	fineController "library_backend/internals/features/fines/controller"
	"library_backend/internals/helpers/ttlstore"
	"library_backend/internals/testutil"
)

// registered lists "METHOD path" with trailing slashes trimmed.
func registered(app *fiber.App) map[string]bool {
	out := map[string]bool{}
	for _, r := range app.GetRoutes(true) {
		path := r.Path
		if len(path) > 1 {
			path = strings.TrimRight(path, "/")
		}
		out[r.Method+" "+path] = true
	}
	return out
}

func TestAccountRoutes_MountsSessionCatalogMembersSettings(t *testing.T) {
	db := testutil.NewDB(t)
	app := fiber.New()
	AccountRoutes(app.Group("/api"), db, authController.NewAuthController(db, ttlstore.NewGormStore(db)))

	got := registered(app)
	for _, want := range []string{
		"GET /api/auth/me",
		"POST /api/auth/logout",
		"GET /api/books",
		"POST /api/books/:id/cover",
		"PATCH /api/members/:id/status",
		"PUT /api/settings/:memberType",
	} {
		assert.True(t, got[want], want)
	}
	assert.False(t, got["POST /api/auth/login"], "login belongs to the public group")
}

func TestPublicAndCirculationRoutes(t *testing.T) {
	db := testutil.NewDB(t)
	app := fiber.New()
	fines := fineController.NewFineController(db, nil)
	PublicRoutes(app.Group("/api"), authController.NewAuthController(db, ttlstore.NewGormStore(db)), fines)
	CirculationRoutes(app.Group("/api"), db, fines)

	got := registered(app)
	for _, want := range []string{
		"POST /api/auth/login",
		"POST /api/auth/reset-password",
		"POST /api/fines/notification",
		"POST /api/reservations",
		"PUT /api/reservations/:id/fulfill",
		"PUT /api/transactions/:id/return",
		"GET /api/reports/export",
	} {
		assert.True(t, got[want], want)
	}
}
