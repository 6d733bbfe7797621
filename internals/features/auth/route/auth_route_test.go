package route_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library_backend/internals/features/auth/controller"
	"library_backend/internals/features/auth/route"
	"library_backend/internals/features/auth/service"
	"library_backend/internals/helpers/ttlstore"
	authMiddleware "library_backend/internals/middlewares/auth"
	"library_backend/internals/testutil"
)

const secret = "route-test-secret"

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	db := testutil.NewDB(t)
	store := ttlstore.NewGormStore(db)
	svc := service.NewAuthService(db, store)
	svc.Secret = secret
	ctl := controller.NewAuthControllerWith(svc, true)

	app := fiber.New()
	route.AuthPublicRoutes(app.Group("/api"), ctl)
	route.AuthPrivateRoutes(app.Group("/api", authMiddleware.AuthMiddleware(db, authMiddleware.Options{
		Secret:  secret,
		Revoked: store,
	})), ctl)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestAuthFlow_RegisterLoginMeLogout(t *testing.T) {
	app := newApp(t)

	status, _ := do(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "reader@example.test", "password": "correct-horse",
		"fullName": "Reader", "memberType": "faculty",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := do(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "reader@example.test", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["data"].(map[string]any)["accessToken"].(string)
	require.NotEmpty(t, token)

	status, body = do(t, app, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	user := body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "reader@example.test", user["email"])

	status, _ = do(t, app, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = do(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized - token has been revoked", body["message"])
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newApp(t)
	do(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "x@example.test", "password": "correct-horse", "fullName": "X", "memberType": "student",
	})

	status, body := do(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "x@example.test", "password": "wrong-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "email or password is incorrect", body["message"])
}

func TestMe_RequiresToken(t *testing.T) {
	app := newApp(t)
	status, body := do(t, app, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
}

func TestForgotPassword_ExposesTokenWhenEnabled(t *testing.T) {
	app := newApp(t)
	do(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "f@example.test", "password": "correct-horse", "fullName": "F", "memberType": "public",
	})

	status, body := do(t, app, http.MethodPost, "/api/auth/forgot-password", "", map[string]any{"email": "f@example.test"})
	require.Equal(t, http.StatusOK, status)
	tok, _ := body["data"].(map[string]any)["resetToken"].(string)
	require.NotEmpty(t, tok)

	status, _ = do(t, app, http.MethodPost, "/api/auth/reset-password", "", map[string]any{
		"token": tok, "newPassword": "battery-staple",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "f@example.test", "password": "battery-staple",
	})
	assert.Equal(t, http.StatusOK, status)
}
