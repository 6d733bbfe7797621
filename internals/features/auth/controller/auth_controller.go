package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/configs"
	"library_backend/internals/features/auth/dto"
	"library_backend/internals/features/auth/service"
	helper "library_backend/internals/helpers"
	"library_backend/internals/helpers/ttlstore"
)

type AuthController struct {
	DB  *gorm.DB
	svc *service.AuthService
	// ExposeResetToken returns the reset token in the response body; for
	// deployments without mail delivery.
	ExposeResetToken bool
}

func NewAuthController(db *gorm.DB, tokens ttlstore.Store) *AuthController {
	return &AuthController{
		DB:               db,
		svc:              service.NewAuthService(db, tokens),
		ExposeResetToken: configs.App.ExposeResetKey && !configs.App.IsProduction(),
	}
}

func NewAuthControllerWith(svc *service.AuthService, exposeReset bool) *AuthController {
	return &AuthController{DB: svc.DB, svc: svc, ExposeResetToken: exposeReset}
}

// POST /auth/register
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	p, err := ac.svc.Register(c.UserContext(), req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "registration successful", p)
}

// POST /auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	res, err := ac.svc.Login(c.UserContext(), req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "login successful", res)
}

// GET /auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	me, err := helper.CurrentUser(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	p, err := ac.svc.Me(c.UserContext(), me.UserID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "profile", p)
}

// POST /auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	raw, _ := c.Locals(helper.LocRawToken).(string)
	if err := ac.svc.Logout(c.UserContext(), raw); err != nil {
		return helper.JsonAppError(c, err)
	}
	c.ClearCookie("access_token")
	return helper.JsonOK(c, "logged out", nil)
}

// POST /auth/forgot-password
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	tok, err := ac.svc.ForgotPassword(c.UserContext(), req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	data := fiber.Map{}
	if ac.ExposeResetToken && tok != "" {
		data["resetToken"] = tok
	}
	return helper.JsonOK(c, "if the email is registered, a reset link has been issued", data)
}

// POST /auth/reset-password
func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := ac.svc.ResetPassword(c.UserContext(), req); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "password has been reset", nil)
}

// POST /auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	me, err := helper.CurrentUser(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.ChangePasswordRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := ac.svc.ChangePassword(c.UserContext(), me.UserID, req); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "password changed", nil)
}
