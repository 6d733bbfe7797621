package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"library_backend/internals/features/fines/dto"
	"library_backend/internals/features/fines/model"
	memberModel "library_backend/internals/features/members/model"
	"library_backend/internals/helpers/apperror"
	"library_backend/internals/testutil"
)

const testServerKey = "SB-Mid-server-test"

type fakeGateway struct {
	requests []CheckoutRequest
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	g.requests = append(g.requests, req)
	return &CheckoutSession{Token: "snap-token", RedirectURL: "https://pay.example/" + req.OrderID}, nil
}

func (g *fakeGateway) VerifyNotification(orderID, statusCode, grossAmount, signature string) bool {
	return VerifyMidtransSignature(testServerKey, orderID, statusCode, grossAmount, signature)
}

type fixture struct {
	db      *gorm.DB
	svc     *FineService
	gateway *fakeGateway
	member  *memberModel.MemberModel
}

func newFixture(t *testing.T) fixture {
	db := testutil.NewDB(t)
	gw := &fakeGateway{}
	svc := NewFineService(db, gw)
	clock := testutil.NewClock(time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC))
	svc.Now = clock.Now
	return fixture{
		db:      db,
		svc:     svc,
		gateway: gw,
		member:  testutil.NewMember(t, db, "faculty", memberModel.MemberStatusActive),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f fixture) outstanding(t *testing.T) decimal.Decimal {
	t.Helper()
	var m memberModel.MemberModel
	require.NoError(t, f.db.Where("member_id = ?", f.member.MemberID).Take(&m).Error)
	return m.MemberOutstandingFines
}

func (f fixture) damage(t *testing.T, amount string) *model.FineModel {
	t.Helper()
	fine, err := f.svc.Create(context.Background(), nil, dto.CreateFineRequest{
		MemberID: f.member.MemberID,
		FineType: "damage",
		Amount:   dec(amount),
	})
	require.NoError(t, err)
	return fine
}

func TestCreate_AddsToOutstanding(t *testing.T) {
	f := newFixture(t)

	fine := f.damage(t, "12.50")
	assert.Equal(t, model.FineStatusPending, fine.FineStatus)
	assert.True(t, f.outstanding(t).Equal(dec("12.5")))

	_, err := f.svc.Create(context.Background(), nil, dto.CreateFineRequest{MemberID: f.member.MemberID, FineType: "overdue", Amount: dec("1")})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.Create(context.Background(), nil, dto.CreateFineRequest{MemberID: uuid.New(), FineType: "lost", Amount: dec("1")})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestPay_PartialThenFull(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fine := f.damage(t, "10.00")

	got, err := f.svc.Pay(ctx, fine.FineID, dec("4"))
	require.NoError(t, err)
	assert.Equal(t, model.FineStatusPending, got.FineStatus)
	assert.True(t, got.FinePaidAmount.Equal(dec("4")))
	assert.True(t, f.outstanding(t).Equal(dec("6")))

	_, err = f.svc.Pay(ctx, fine.FineID, dec("6.01"))
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	_, err = f.svc.Pay(ctx, fine.FineID, dec("0"))
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))

	got, err = f.svc.Pay(ctx, fine.FineID, dec("6"))
	require.NoError(t, err)
	assert.Equal(t, model.FineStatusPaid, got.FineStatus)
	assert.NotNil(t, got.FinePaidAt)
	assert.True(t, f.outstanding(t).IsZero())

	_, err = f.svc.Pay(ctx, fine.FineID, dec("1"))
	require.Error(t, err)
	assert.Equal(t, "Cannot pay a fine with status 'paid'", err.Error())
}

func TestWaive_ClearsRemainingBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fine := f.damage(t, "8")
	admin := uuid.New()

	_, err := f.svc.Pay(ctx, fine.FineID, dec("3"))
	require.NoError(t, err)

	notes := "first offence"
	got, err := f.svc.Waive(ctx, fine.FineID, admin, dto.WaiveFineRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, model.FineStatusWaived, got.FineStatus)
	assert.Equal(t, admin, *got.FineWaivedBy)
	assert.True(t, f.outstanding(t).IsZero())

	_, err = f.svc.Waive(ctx, fine.FineID, admin, dto.WaiveFineRequest{})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	_, err = f.svc.Pay(ctx, fine.FineID, dec("1"))
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}

func TestListByMember(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.damage(t, "1")
	f.damage(t, "2")
	_, err := f.svc.Pay(ctx, a.FineID, dec("1"))
	require.NoError(t, err)

	all, err := f.svc.ListByMember(ctx, f.member.MemberID, dto.ListFinesQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := f.svc.ListByMember(ctx, f.member.MemberID, dto.ListFinesQuery{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.svc.ListByMember(ctx, f.member.MemberID, dto.ListFinesQuery{Status: "open"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestCheckoutAndNotification(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fine := f.damage(t, "7.25")

	res, err := f.svc.Checkout(ctx, fine.FineID)
	require.NoError(t, err)
	assert.Equal(t, "snap-token", res.Token)
	require.Len(t, f.gateway.requests, 1)
	assert.Equal(t, int64(8), f.gateway.requests[0].Amount)

	n := dto.GatewayNotification{
		TransactionStatus: "settlement",
		StatusCode:        "200",
		OrderID:           res.OrderID,
		GrossAmount:       "8.00",
	}
	n.SignatureKey = "deadbeef"
	_, err = f.svc.HandleNotification(ctx, n)
	assert.ErrorIs(t, err, ErrBadSignature)

	n.SignatureKey = MidtransSignature(testServerKey, n.OrderID, n.StatusCode, n.GrossAmount)
	got, err := f.svc.HandleNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, model.FineStatusPaid, got.FineStatus)
	assert.True(t, got.FinePaidAmount.Equal(dec("7.25")))
	assert.True(t, f.outstanding(t).IsZero())

	// redelivery is acknowledged without charging twice
	got, err = f.svc.HandleNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, model.FineStatusPaid, got.FineStatus)
	assert.True(t, f.outstanding(t).IsZero())

	_, err = f.svc.Checkout(ctx, fine.FineID)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}

func TestNotification_PendingStatusIgnored(t *testing.T) {
	f := newFixture(t)
	n := dto.GatewayNotification{TransactionStatus: "pending", StatusCode: "201", OrderID: "FINE-x", GrossAmount: "5.00"}
	n.SignatureKey = MidtransSignature(testServerKey, n.OrderID, n.StatusCode, n.GrossAmount)

	got, err := f.svc.HandleNotification(context.Background(), n)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCheckout_WithoutGateway(t *testing.T) {
	f := newFixture(t)
	f.svc.Gateway = nil
	fine := f.damage(t, "1")

	_, err := f.svc.Checkout(context.Background(), fine.FineID)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}
