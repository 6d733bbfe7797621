package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library_backend/internals/features/members/dto"
	"library_backend/internals/features/members/model"
	helper "library_backend/internals/helpers"
	"library_backend/internals/helpers/apperror"
	"library_backend/internals/testutil"
)

func TestCreate_ForExistingUser(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewMemberService(db)
	u := testutil.NewUser(t, db, "member")

	m, err := svc.Create(ctx, nil, dto.CreateMemberRequest{UserID: u.ID, MemberType: " Student "})
	require.NoError(t, err)
	assert.Equal(t, "student", m.MemberType)
	assert.Equal(t, model.MemberStatusActive, m.MemberStatus)
	assert.NotEmpty(t, m.MemberCode)

	_, err = svc.Create(ctx, nil, dto.CreateMemberRequest{UserID: u.ID, MemberType: "faculty"})
	assert.True(t, apperror.Is(err, apperror.KindConflict), "got %v", err)

	_, err = svc.Create(ctx, nil, dto.CreateMemberRequest{UserID: uuid.New(), MemberType: "public"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound), "got %v", err)

	_, err = svc.Create(ctx, nil, dto.CreateMemberRequest{UserID: u.ID, MemberType: "alien"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestFindMemberByID_NotFound(t *testing.T) {
	svc := NewMemberService(testutil.NewDB(t))
	_, err := svc.FindMemberByID(context.Background(), nil, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewMemberService(db)
	m := testutil.NewMember(t, db, "student", model.MemberStatusActive)

	got, err := svc.UpdateStatus(ctx, m.MemberID, dto.UpdateStatusRequest{Status: "suspended"})
	require.NoError(t, err)
	assert.Equal(t, model.MemberStatusSuspended, got.MemberStatus)

	_, err = svc.UpdateStatus(ctx, m.MemberID, dto.UpdateStatusRequest{Status: "banished"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.UpdateStatus(ctx, uuid.New(), dto.UpdateStatusRequest{Status: "active"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewMemberService(db)
	m := testutil.NewMember(t, db, "student", model.MemberStatusActive)

	require.NoError(t, svc.AdjustBooksIssued(ctx, nil, m.MemberID, 2))
	require.NoError(t, svc.AdjustBooksIssued(ctx, nil, m.MemberID, -1))
	assert.Error(t, svc.AdjustBooksIssued(ctx, nil, m.MemberID, -5))

	require.NoError(t, svc.AdjustOutstandingFines(ctx, nil, m.MemberID, decimal.RequireFromString("2.5")))
	require.NoError(t, svc.AdjustOutstandingFines(ctx, nil, m.MemberID, decimal.RequireFromString("-1")))

	got, err := svc.FindMemberByID(ctx, nil, m.MemberID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MemberBooksIssuedCount)
	assert.True(t, decimal.RequireFromString("1.5").Equal(got.MemberOutstandingFines), "got %s", got.MemberOutstandingFines)
}

func TestList_Filters(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewMemberService(db)
	testutil.NewMember(t, db, "student", model.MemberStatusActive)
	testutil.NewMember(t, db, "faculty", model.MemberStatusActive)
	testutil.NewMember(t, db, "student", model.MemberStatusSuspended)

	p := helper.Paging{Page: 1, PerPage: 10, Limit: 10}
	rows, total, err := svc.List(ctx, dto.ListMembersQuery{MemberType: "student"}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	_, total, err = svc.List(ctx, dto.ListMembersQuery{Status: "suspended"}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
