package auth

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	authModel "library_backend/internals/features/auth/model"
	helper "library_backend/internals/helpers"
	authHelper "library_backend/internals/helpers/auth"
	"library_backend/internals/helpers/ttlstore"
)

type Options struct {
	Secret string
	// Revoked is consulted for logged-out tokens; nil disables the check.
	Revoked ttlstore.Store
	Now     func() time.Time
}

// AuthMiddleware verifies the bearer token, checks that the account is still
// active and stores user_id, userRole and member_id in Locals.
func AuthMiddleware(db *gorm.DB, opts Options) fiber.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return func(c *fiber.Ctx) error {
		raw, err := authHelper.ExtractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - "+err.Error())
		}
		if opts.Secret == "" {
			log.Println("[AUTH] JWT secret is empty")
			return helper.JsonError(c, fiber.StatusInternalServerError, "missing JWT secret")
		}

		claims, err := authHelper.ParseAccessToken(opts.Secret, raw, opts.Now().UTC(), 30*time.Second)
		if err != nil {
			if errors.Is(err, authHelper.ErrTokenExpired) {
				return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - token expired")
			}
			log.Printf("[AUTH] rejected token: %v", err)
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - invalid token")
		}

		if opts.Revoked != nil {
			_, err := opts.Revoked.Get(c.UserContext(), authHelper.BlacklistKey(raw, opts.Secret))
			if err == nil {
				return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - token has been revoked")
			}
			if !errors.Is(err, ttlstore.ErrNotFound) {
				log.Printf("[AUTH] blacklist lookup: %v", err)
				return helper.JsonError(c, fiber.StatusInternalServerError, "internal server error")
			}
		}

		var user authModel.UserModel
		if err := db.WithContext(c.UserContext()).
			Select("id", "role", "is_active").
			Where("id = ?", claims.UserID).
			Take(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - user not found")
			}
			log.Printf("[AUTH] user lookup: %v", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "internal server error")
		}
		if !user.IsActive {
			return helper.JsonError(c, fiber.StatusForbidden, "account has been deactivated")
		}

		c.Locals(helper.LocUserID, claims.UserID.String())
		// role comes from the users row, not the token
		c.Locals(helper.LocUserRole, user.Role)
		if claims.MemberID != uuid.Nil {
			c.Locals(helper.LocMemberID, claims.MemberID.String())
		}
		c.Locals(helper.LocRawToken, raw)
		return c.Next()
	}
}
