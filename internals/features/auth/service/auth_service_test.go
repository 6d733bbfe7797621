package service

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library_backend/internals/features/auth/dto"
	"library_backend/internals/helpers/apperror"
	authHelper "library_backend/internals/helpers/auth"
	"library_backend/internals/helpers/ttlstore"
	"library_backend/internals/testutil"
)

const testSecret = "test-secret"

func newTestService(t *testing.T) (*AuthService, *ttlstore.GormStore, *testutil.Clock) {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	store := ttlstore.NewGormStore(db)
	store.Now = clock.Now
	svc := NewAuthService(db, store)
	svc.Secret = testSecret
	svc.TokenTTL = time.Hour
	svc.ResetTTL = 15 * time.Minute
	svc.Now = clock.Now
	return svc, store, clock
}

func register(t *testing.T, svc *AuthService, email string) *Profile {
	t.Helper()
	p, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:      email,
		Password:   "correct-horse",
		FullName:   "Ada Reader",
		MemberType: "student",
	})
	require.NoError(t, err)
	return p
}

func TestRegister_CreatesUserAndMember(t *testing.T) {
	svc, _, _ := newTestService(t)

	p := register(t, svc, " Ada@Example.test ")
	assert.Equal(t, "ada@example.test", p.User.Email)
	assert.Equal(t, "member", p.User.Role)
	require.NotNil(t, p.Member)
	assert.Equal(t, p.User.ID, p.Member.MemberUserID)
	assert.Equal(t, "active", p.Member.MemberStatus)
	assert.NotEqual(t, "correct-horse", p.User.Password)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "ada@example.test", Password: "another-pass", FullName: "Other", MemberType: "public",
	})
	assert.True(t, apperror.Is(err, apperror.KindConflict), "got %v", err)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Email: "nope", Password: "short", MemberType: "alien"})
	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "email")
	assert.Contains(t, ae.Fields, "password")
	assert.Contains(t, ae.Fields, "fullName")
	assert.Contains(t, ae.Fields, "memberType")
}

func TestLogin_IssuesTokenWithMemberClaim(t *testing.T) {
	svc, _, clock := newTestService(t)
	p := register(t, svc, "ada@example.test")

	res, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ADA@example.test", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	claims, err := authHelper.ParseAccessToken(testSecret, res.AccessToken, clock.Now(), 0)
	require.NoError(t, err)
	assert.Equal(t, p.User.ID, claims.UserID)
	assert.Equal(t, p.Member.MemberID, claims.MemberID)
	assert.Equal(t, "member", claims.Role)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "ada@example.test")

	for _, req := range []dto.LoginRequest{
		{Email: "ada@example.test", Password: "wrong-password"},
		{Email: "ghost@example.test", Password: "correct-horse"},
	} {
		_, err := svc.Login(context.Background(), req)
		var fe *fiber.Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, fiber.StatusUnauthorized, fe.Code)
	}
}

func TestStaffLogin_HasNoMember(t *testing.T) {
	svc, _, clock := newTestService(t)
	_, err := svc.CreateStaff(context.Background(), dto.CreateStaffRequest{
		Email: "lib@example.test", FullName: "Librarian", Password: "shelves-123", Role: "librarian",
	})
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), dto.LoginRequest{Email: "lib@example.test", Password: "shelves-123"})
	require.NoError(t, err)
	claims, err := authHelper.ParseAccessToken(testSecret, res.AccessToken, clock.Now(), 0)
	require.NoError(t, err)
	assert.Equal(t, "librarian", claims.Role)
	assert.Equal(t, "00000000-0000-0000-0000-000000000000", claims.MemberID.String())

	_, err = svc.CreateStaff(context.Background(), dto.CreateStaffRequest{
		Email: "x@example.test", FullName: "X", Password: "shelves-123", Role: "member",
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService(t)
	register(t, svc, "ada@example.test")

	tok, err := svc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ghost@example.test"})
	require.NoError(t, err)
	assert.Empty(t, tok)

	tok, err = svc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ada@example.test"})
	require.NoError(t, err)
	require.Len(t, tok, 64)

	require.NoError(t, svc.ResetPassword(ctx, dto.ResetPasswordRequest{Token: tok, NewPassword: "brand-new-pass"}))

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ada@example.test", Password: "brand-new-pass"})
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, dto.ResetPasswordRequest{Token: tok, NewPassword: "third-password"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState), "token is single use, got %v", err)

	tok, err = svc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ada@example.test"})
	require.NoError(t, err)
	clock.Advance(16 * time.Minute)
	err = svc.ResetPassword(ctx, dto.ResetPasswordRequest{Token: tok, NewPassword: "third-password"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState), "expired token, got %v", err)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	p := register(t, svc, "ada@example.test")

	err := svc.ChangePassword(ctx, p.User.ID, dto.ChangePasswordRequest{OldPassword: "wrong-one", NewPassword: "next-password"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	require.NoError(t, svc.ChangePassword(ctx, p.User.ID, dto.ChangePasswordRequest{OldPassword: "correct-horse", NewPassword: "next-password"}))
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ada@example.test", Password: "next-password"})
	assert.NoError(t, err)
}

func TestLogout_BlacklistsUntilExpiry(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newTestService(t)
	register(t, svc, "ada@example.test")

	res, err := svc.Login(ctx, dto.LoginRequest{Email: "ada@example.test", Password: "correct-horse"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, res.AccessToken))

	key := authHelper.BlacklistKey(res.AccessToken, testSecret)
	_, err = store.Get(ctx, key)
	require.NoError(t, err)

	clock.Advance(61 * time.Minute)
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ttlstore.ErrNotFound)

	assert.NoError(t, svc.Logout(ctx, "garbage"))
}
