package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"library_backend/internals/configs"
	"library_backend/internals/constants"
	"library_backend/internals/features/auth/dto"
	"library_backend/internals/features/auth/model"
	"library_backend/internals/features/auth/repository"
	memberDto "library_backend/internals/features/members/dto"
	memberModel "library_backend/internals/features/members/model"
	memberService "library_backend/internals/features/members/service"
	helper "library_backend/internals/helpers"
	"library_backend/internals/helpers/apperror"
	authHelper "library_backend/internals/helpers/auth"
	"library_backend/internals/helpers/ttlstore"
)

const resetKeyPrefix = "pwreset:"

var errBadCredentials = fiber.NewError(fiber.StatusUnauthorized, "email or password is incorrect")

type AuthService struct {
	DB       *gorm.DB
	Members  *memberService.MemberService
	Tokens   ttlstore.Store
	Secret   string
	TokenTTL time.Duration
	ResetTTL time.Duration
	Now      func() time.Time
}

func NewAuthService(db *gorm.DB, tokens ttlstore.Store) *AuthService {
	s := &AuthService{
		DB:       db,
		Members:  memberService.NewMemberService(db),
		Tokens:   tokens,
		Secret:   configs.App.JWTSecret,
		TokenTTL: configs.App.JWTAccessTTL,
		ResetTTL: configs.App.ResetTokenTTL,
		Now:      time.Now,
	}
	if s.TokenTTL <= 0 {
		s.TokenTTL = 24 * time.Hour
	}
	if s.ResetTTL <= 0 {
		s.ResetTTL = time.Hour
	}
	return s
}

func (s *AuthService) now() time.Time { return s.Now().UTC() }

// Profile is what /auth/me and login return.
type Profile struct {
	User   *model.UserModel         `json:"user"`
	Member *memberModel.MemberModel `json:"member,omitempty"`
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Register creates the user account and its active membership in one transaction.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*Profile, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var out Profile
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u := model.UserModel{
			Email:    req.Email,
			FullName: req.FullName,
			Password: hash,
			Role:     constants.RoleMember,
			IsActive: true,
		}
		if err := tx.Create(&u).Error; err != nil {
			return helper.MapDBError(err, "", "email is already registered")
		}
		m, err := s.Members.Create(ctx, tx, memberDto.CreateMemberRequest{
			UserID:     u.ID,
			MemberType: req.MemberType,
			Phone:      req.Phone,
		})
		if err != nil {
			return err
		}
		out = Profile{User: &u, Member: m}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[AUTH] registered %s as %s member", out.User.ID, out.Member.MemberType)
	return &out, nil
}

// CreateStaff adds a librarian or admin account without a membership.
func (s *AuthService) CreateStaff(ctx context.Context, req dto.CreateStaffRequest) (*model.UserModel, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := model.UserModel{
		Email:    req.Email,
		FullName: req.FullName,
		Password: hash,
		Role:     req.Role,
		IsActive: true,
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, helper.MapDBError(err, "", "email is already registered")
	}
	return &u, nil
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	u, err := repository.FindUserByEmail(ctx, s.DB, req.Email)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		return nil, errBadCredentials
	}
	if !u.IsActive {
		return nil, fiber.NewError(fiber.StatusForbidden, "account has been deactivated")
	}

	profile, err := s.profileOf(ctx, u)
	if err != nil {
		return nil, err
	}
	claims := authHelper.Claims{UserID: u.ID, Role: u.Role, Expires: s.now().Add(s.TokenTTL)}
	if profile.Member != nil {
		claims.MemberID = profile.Member.MemberID
	}
	tok, err := authHelper.IssueAccessToken(s.Secret, claims, s.now())
	if err != nil {
		return nil, err
	}
	log.Printf("[AUTH] login %s (%s)", u.ID, u.Role)
	return &dto.LoginResponse{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.TokenTTL / time.Second),
		User:        profile,
	}, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	u, err := repository.FindUserByID(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, u)
}

func (s *AuthService) profileOf(ctx context.Context, u *model.UserModel) (*Profile, error) {
	p := &Profile{User: u}
	m, err := s.Members.FindByUserID(ctx, nil, u.ID)
	switch {
	case err == nil:
		p.Member = m
	case apperror.Is(err, apperror.KindNotFound):
	default:
		return nil, err
	}
	return p, nil
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ForgotPassword stores a single-use reset token for the account. Unknown
// emails return an empty token and no error so callers cannot probe accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	u, err := repository.FindUserByEmail(ctx, s.DB, req.Email)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return "", nil
		}
		return "", err
	}
	tok, err := newResetToken()
	if err != nil {
		return "", err
	}
	if err := s.Tokens.Set(ctx, resetKeyPrefix+tok, u.ID.String(), s.ResetTTL); err != nil {
		return "", err
	}
	log.Printf("[AUTH] password reset requested for %s", u.ID)
	return tok, nil
}

// ResetPassword consumes the token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	raw, err := s.Tokens.Take(ctx, resetKeyPrefix+req.Token)
	if errors.Is(err, ttlstore.ErrNotFound) {
		return apperror.InvalidState("reset token is invalid or has expired")
	}
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("corrupt reset token payload: %w", err)
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := repository.UpdateUserPassword(ctx, s.DB, userID, hash); err != nil {
		return err
	}
	log.Printf("[AUTH] password reset for %s", userID)
	return nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	claims, err := authHelper.ParseAccessToken(s.Secret, raw, s.now(), 0)
	if err != nil {
		return nil
	}
	ttl := claims.Expires.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.Tokens.Set(ctx, authHelper.BlacklistKey(raw, s.Secret), claims.UserID.String(), ttl)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	u, err := repository.FindUserByID(ctx, s.DB, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.OldPassword)) != nil {
		return apperror.Validation(map[string][]string{"oldPassword": {"is incorrect"}})
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return repository.UpdateUserPassword(ctx, s.DB, userID, hash)
}
