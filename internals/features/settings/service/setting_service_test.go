package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library_backend/internals/features/settings/dto"
	"library_backend/internals/helpers/apperror"
	seedSettings "library_backend/internals/seeds/settings"
	"library_backend/internals/testutil"
)

func intPtr(v int) *int { return &v }

func TestFindByMemberType_MissingIsNotFound(t *testing.T) {
	svc := NewSettingService(testutil.NewDB(t))

	_, err := svc.FindByMemberType(context.Background(), nil, "student")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Contains(t, err.Error(), "student")
}

func TestSeedDefaultsAndLookup(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, seedSettings.SeedDefaultSettings(db))
	// second run leaves existing rows alone
	require.NoError(t, seedSettings.SeedDefaultSettings(db))

	svc := NewSettingService(db)
	rows, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	faculty, err := svc.FindByMemberType(context.Background(), nil, "faculty")
	require.NoError(t, err)
	assert.Equal(t, 10, faculty.SettingMaxBooksAllowed)
	assert.Equal(t, 30, faculty.SettingLoanDurationDays)
	assert.True(t, decimal.RequireFromString("0.25").Equal(faculty.SettingFinePerDay))
}

func TestUpsert_CreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	svc := NewSettingService(testutil.NewDB(t))
	fine := decimal.RequireFromString("0.75")

	req := dto.UpsertSettingRequest{
		MaxBooksAllowed:  intPtr(4),
		LoanDurationDays: intPtr(10),
		RenewalLimit:     intPtr(2),
		FinePerDay:       &fine,
		GracePeriodDays:  intPtr(0),
	}
	created, err := svc.Upsert(ctx, "public", req)
	require.NoError(t, err)
	assert.Equal(t, 4, created.SettingMaxBooksAllowed)

	req.MaxBooksAllowed = intPtr(6)
	updated, err := svc.Upsert(ctx, "public", req)
	require.NoError(t, err)
	assert.Equal(t, created.SettingID, updated.SettingID)

	got, err := svc.FindByMemberType(ctx, nil, "public")
	require.NoError(t, err)
	assert.Equal(t, 6, got.SettingMaxBooksAllowed)
	assert.True(t, fine.Equal(got.SettingFinePerDay))
}

func TestUpsert_Validation(t *testing.T) {
	svc := NewSettingService(testutil.NewDB(t))
	neg := decimal.RequireFromString("-1")

	_, err := svc.Upsert(context.Background(), "pirate", dto.UpsertSettingRequest{
		LoanDurationDays: intPtr(0),
		FinePerDay:       &neg,
	})
	require.Error(t, err)

	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "memberType")
	assert.Contains(t, ae.Fields, "maxBooksAllowed")
	assert.Contains(t, ae.Fields, "loanDurationDays")
	assert.Contains(t, ae.Fields, "finePerDay")
}
