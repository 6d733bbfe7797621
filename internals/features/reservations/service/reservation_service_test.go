package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	memberModel "library_backend/internals/features/members/model"
	"library_backend/internals/features/reservations/model"
	"library_backend/internals/helpers/apperror"
	"library_backend/internals/testutil"
)

type fixture struct {
	db    *gorm.DB
	svc   *ReservationService
	clock *testutil.Clock
}

func newFixture(t *testing.T) fixture {
	db := testutil.NewDB(t)
	clock := testutil.NewClock(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC))
	svc := NewReservationService(db)
	svc.Now = clock.Now
	svc.Window = DefaultReservationWindow
	svc.MaxActive = DefaultMaxActiveReservations
	return fixture{db: db, svc: svc, clock: clock}
}

func (f fixture) activeMember(t *testing.T) *memberModel.MemberModel {
	return testutil.NewMember(t, f.db, "student", memberModel.MemberStatusActive)
}

func (f fixture) unavailableBook(t *testing.T) uuid.UUID {
	return testutil.NewBook(t, f.db, 2, 0).BookID
}

func TestCreate_UnavailableBookActiveMember(t *testing.T) {
	f := newFixture(t)
	m := f.activeMember(t)
	bookID := f.unavailableBook(t)

	r, err := f.svc.Create(context.Background(), bookID, m.MemberID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusActive, r.ReservationStatus)
	assert.Equal(t, f.clock.Now(), r.ReservationDate)
	assert.WithinDuration(t, f.clock.Now().Add(30*24*time.Hour), r.ReservationExpiryDate, 5*time.Second)

	stored, err := f.svc.FindByID(context.Background(), nil, r.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusActive, stored.ReservationStatus)
	assert.WithinDuration(t, r.ReservationExpiryDate, stored.ReservationExpiryDate, time.Second)
}

func TestCreate_AvailableBookIsInvalidState(t *testing.T) {
	f := newFixture(t)
	m := f.activeMember(t)
	book := testutil.NewBook(t, f.db, 2, 2)

	_, err := f.svc.Create(context.Background(), book.BookID, m.MemberID)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	assert.Contains(t, err.Error(), "currently available")
}

func TestCreate_PreconditionOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// unknown book wins over unknown member
	_, err := f.svc.Create(ctx, uuid.New(), uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Contains(t, err.Error(), "book")

	// available book wins over unknown member
	available := testutil.NewBook(t, f.db, 1, 1)
	_, err = f.svc.Create(ctx, available.BookID, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))

	bookID := f.unavailableBook(t)
	_, err = f.svc.Create(ctx, bookID, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Contains(t, err.Error(), "member")

	suspended := testutil.NewMember(t, f.db, "student", memberModel.MemberStatusSuspended)
	_, err = f.svc.Create(ctx, bookID, suspended.MemberID)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	assert.Contains(t, err.Error(), "suspended")
}

func TestCreate_SoftDeletedBookIsNotFound(t *testing.T) {
	f := newFixture(t)
	m := f.activeMember(t)
	book := testutil.NewBook(t, f.db, 1, 0)
	require.NoError(t, f.db.Model(book).Update("book_is_deleted", true).Error)

	_, err := f.svc.Create(context.Background(), book.BookID, m.MemberID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestCreate_DuplicateActiveIsConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.activeMember(t)
	bookID := f.unavailableBook(t)

	_, err := f.svc.Create(ctx, bookID, m.MemberID)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, bookID, m.MemberID)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	var n int64
	require.NoError(t, f.db.Model(&model.ReservationModel{}).
		Where("reservation_member_id = ? AND reservation_status = ?", m.MemberID, "active").
		Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCreate_AfterCancelSamePairIsAllowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.activeMember(t)
	bookID := f.unavailableBook(t)

	r, err := f.svc.Create(ctx, bookID, m.MemberID)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, nil, r.ReservationID)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, bookID, m.MemberID)
	assert.NoError(t, err)
}

func TestActiveIndexRejectsDirectDuplicateInsert(t *testing.T) {
	f := newFixture(t)
	m := f.activeMember(t)
	bookID := f.unavailableBook(t)
	now := f.clock.Now()

	first := model.ReservationModel{
		ReservationBookID: bookID, ReservationMemberID: m.MemberID,
		ReservationDate: now, ReservationExpiryDate: now.Add(time.Hour),
		ReservationStatus: model.ReservationStatusActive,
	}
	require.NoError(t, f.db.Create(&first).Error)

	second := first
	second.ReservationID = uuid.Nil
	err := f.db.Create(&second).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCreate_LimitExceeded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.activeMember(t)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, f.unavailableBook(t), m.MemberID)
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}

	_, err := f.svc.Create(ctx, f.unavailableBook(t), m.MemberID)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindLimitExceeded))
	assert.Contains(t, err.Error(), "3")

	var n int64
	require.NoError(t, f.db.Model(&model.ReservationModel{}).
		Where("reservation_member_id = ? AND reservation_status = ?", m.MemberID, "active").
		Count(&n).Error)
	assert.EqualValues(t, 3, n)
}

func TestCancel_TerminalStatesAreInvalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.activeMember(t)

	r, err := f.svc.Create(ctx, f.unavailableBook(t), m.MemberID)
	require.NoError(t, err)
	_, err = f.svc.Fulfill(ctx, nil, r.ReservationID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, nil, r.ReservationID)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	assert.Equal(t, "Cannot cancel a reservation with status 'fulfilled'", err.Error())

	_, err = f.svc.Fulfill(ctx, nil, r.ReservationID)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))

	r2, err := f.svc.Create(ctx, f.unavailableBook(t), m.MemberID)
	require.NoError(t, err)
	cancelled, err := f.svc.Cancel(ctx, nil, r2.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusCancelled, cancelled.ReservationStatus)

	_, err = f.svc.Cancel(ctx, nil, r2.ReservationID)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	assert.Contains(t, err.Error(), "'cancelled'")

	_, err = f.svc.Fulfill(ctx, nil, r2.ReservationID)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))

	_, err = f.svc.Cancel(ctx, nil, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestExpireOld_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.activeMember(t)

	old, err := f.svc.Create(ctx, f.unavailableBook(t), m.MemberID)
	require.NoError(t, err)
	f.clock.Advance(10 * 24 * time.Hour)
	fresh, err := f.svc.Create(ctx, f.unavailableBook(t), m.MemberID)
	require.NoError(t, err)

	f.clock.Advance(25 * 24 * time.Hour)

	n, err := f.svc.ExpireOld(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = f.svc.ExpireOld(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	got, err := f.svc.FindByID(ctx, nil, old.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusExpired, got.ReservationStatus)

	got, err = f.svc.FindByID(ctx, nil, fresh.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusActive, got.ReservationStatus)

	_, err = f.svc.Cancel(ctx, nil, old.ReservationID)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}

func TestQueueOrder_FIFO(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bookID := f.unavailableBook(t)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		r, err := f.svc.Create(ctx, bookID, f.activeMember(t).MemberID)
		require.NoError(t, err)
		ids = append(ids, r.ReservationID)
		f.clock.Advance(time.Hour)
	}

	queue, err := f.svc.GetByBook(ctx, bookID)
	require.NoError(t, err)
	require.Len(t, queue, 3)
	for i := range ids {
		assert.Equal(t, ids[i], queue[i].ReservationID)
	}

	next, err := f.svc.GetNextInQueue(ctx, nil, bookID)
	require.NoError(t, err)
	assert.Equal(t, ids[0], next.ReservationID)

	_, err = f.svc.Cancel(ctx, nil, ids[0])
	require.NoError(t, err)
	next, err = f.svc.GetNextInQueue(ctx, nil, bookID)
	require.NoError(t, err)
	assert.Equal(t, ids[1], next.ReservationID)

	_, err = f.svc.Fulfill(ctx, nil, ids[1])
	require.NoError(t, err)
	next, err = f.svc.GetNextInQueue(ctx, nil, bookID)
	require.NoError(t, err)
	assert.Equal(t, ids[2], next.ReservationID)

	_, err = f.svc.Cancel(ctx, nil, ids[2])
	require.NoError(t, err)
	next, err = f.svc.GetNextInQueue(ctx, nil, bookID)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestQueueOrder_TiesBrokenByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bookID := f.unavailableBook(t)

	// same clock reading for every reservation
	seen := map[uuid.UUID]bool{}
	for i := 0; i < 4; i++ {
		r, err := f.svc.Create(ctx, bookID, f.activeMember(t).MemberID)
		require.NoError(t, err)
		seen[r.ReservationID] = true
	}

	first, err := f.svc.GetByBook(ctx, bookID)
	require.NoError(t, err)
	second, err := f.svc.GetByBook(ctx, bookID)
	require.NoError(t, err)
	require.Len(t, first, 4)
	for i := range first {
		assert.Equal(t, first[i].ReservationID, second[i].ReservationID)
		if i > 0 {
			assert.Less(t, first[i-1].ReservationID.String(), first[i].ReservationID.String())
		}
	}

	next, err := f.svc.GetNextInQueue(ctx, nil, bookID)
	require.NoError(t, err)
	assert.Equal(t, first[0].ReservationID, next.ReservationID)
}

func TestGetByMember_NewestFirstAllStatuses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.activeMember(t)

	a, err := f.svc.Create(ctx, f.unavailableBook(t), m.MemberID)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	b, err := f.svc.Create(ctx, f.unavailableBook(t), m.MemberID)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, nil, a.ReservationID)
	require.NoError(t, err)

	rows, err := f.svc.GetByMember(ctx, m.MemberID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, b.ReservationID, rows[0].ReservationID)
	assert.Equal(t, a.ReservationID, rows[1].ReservationID)
	assert.Equal(t, model.ReservationStatusCancelled, rows[1].ReservationStatus)
}

func TestCountAndFindActiveFor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.activeMember(t)
	bookID := f.unavailableBook(t)

	got, err := f.svc.FindActiveFor(ctx, nil, bookID, m.MemberID)
	require.NoError(t, err)
	assert.Nil(t, got)

	r, err := f.svc.Create(ctx, bookID, m.MemberID)
	require.NoError(t, err)

	got, err = f.svc.FindActiveFor(ctx, nil, bookID, m.MemberID)
	require.NoError(t, err)
	assert.Equal(t, r.ReservationID, got.ReservationID)

	n, err := f.svc.CountActiveForBook(ctx, nil, bookID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
