package route

import (
	"github.com/gofiber/fiber/v2"

	"library_backend/internals/features/auth/controller"
	rateLimiter "library_backend/internals/middlewares"
)

// AuthPublicRoutes are reachable without a token.
func AuthPublicRoutes(r fiber.Router, ctl *controller.AuthController) {
	g := r.Group("/auth")
	g.Post("/login", rateLimiter.LoginRateLimiter(), ctl.Login)
	g.Post("/register", rateLimiter.RegisterRateLimiter(), ctl.Register)
	g.Post("/forgot-password", rateLimiter.ForgotPasswordRateLimiter(), ctl.ForgotPassword)
	g.Post("/reset-password", ctl.ResetPassword)
}

// AuthPrivateRoutes expects r to carry the JWT middleware.
func AuthPrivateRoutes(r fiber.Router, ctl *controller.AuthController) {
	g := r.Group("/auth")
	g.Get("/me", ctl.Me)
	g.Post("/logout", ctl.Logout)
	g.Post("/change-password", ctl.ChangePassword)
}
