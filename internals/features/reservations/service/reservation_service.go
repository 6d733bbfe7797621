package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"library_backend/internals/configs"
	bookModel "library_backend/internals/features/catalog/books/model"
	bookService "library_backend/internals/features/catalog/books/service"
	memberModel "library_backend/internals/features/members/model"
	memberService "library_backend/internals/features/members/service"
	"library_backend/internals/features/reservations/model"
	helper "library_backend/internals/helpers"
	"library_backend/internals/helpers/apperror"
)

const (
	DefaultReservationWindow     = 30 * 24 * time.Hour
	DefaultMaxActiveReservations = 3
)

const duplicateActiveMsg = "member already holds an active reservation for this book"

// BookFinder is the catalog lookup the engine depends on.
type BookFinder interface {
	FindBookByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*bookModel.BookModel, error)
}

// MemberFinder is the membership lookup the engine depends on.
type MemberFinder interface {
	FindMemberForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*memberModel.MemberModel, error)
}

// ReservationService owns the hold queue. It never touches book copy counts.
type ReservationService struct {
	DB        *gorm.DB
	Books     BookFinder
	Members   MemberFinder
	Window    time.Duration
	MaxActive int
	Now       func() time.Time
}

func NewReservationService(db *gorm.DB) *ReservationService {
	s := &ReservationService{
		DB:        db,
		Books:     bookService.NewBookService(db),
		Members:   memberService.NewMemberService(db),
		Window:    DefaultReservationWindow,
		MaxActive: DefaultMaxActiveReservations,
		Now:       time.Now,
	}
	if configs.App.ReservationWindowDays > 0 {
		s.Window = time.Duration(configs.App.ReservationWindowDays) * 24 * time.Hour
	}
	if configs.App.MaxActiveReservations > 0 {
		s.MaxActive = configs.App.MaxActiveReservations
	}
	return s
}

func (s *ReservationService) now() time.Time { return s.Now().UTC() }

func (s *ReservationService) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return s.DB.WithContext(ctx)
}

// Create places a hold for memberID on bookID. Checks run in a fixed order and
// the first failing one decides the error kind.
func (s *ReservationService) Create(ctx context.Context, bookID, memberID uuid.UUID) (*model.ReservationModel, error) {
	var out model.ReservationModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		book, err := s.Books.FindBookByID(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if book.BookAvailableCopies > 0 {
			return apperror.InvalidState(
				"'%s' is currently available (%d copies); borrow it directly instead of reserving",
				book.BookTitle, book.BookAvailableCopies)
		}

		member, err := s.Members.FindMemberForUpdate(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if member.MemberStatus != memberModel.MemberStatusActive {
			return apperror.InvalidState("member status is '%s'; only active members may reserve books", member.MemberStatus)
		}

		var dup int64
		if err := tx.Model(&model.ReservationModel{}).
			Where("reservation_book_id = ? AND reservation_member_id = ? AND reservation_status = ?",
				bookID, memberID, model.ReservationStatusActive).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return apperror.Conflict(duplicateActiveMsg)
		}

		var active int64
		if err := tx.Model(&model.ReservationModel{}).
			Where("reservation_member_id = ? AND reservation_status = ?", memberID, model.ReservationStatusActive).
			Count(&active).Error; err != nil {
			return err
		}
		if active >= int64(s.MaxActive) {
			return apperror.LimitExceeded("member already holds the maximum of %d active reservations", s.MaxActive)
		}

		now := s.now()
		out = model.ReservationModel{
			ReservationBookID:     bookID,
			ReservationMemberID:   memberID,
			ReservationDate:       now,
			ReservationExpiryDate: now.Add(s.Window),
			ReservationStatus:     model.ReservationStatusActive,
		}
		if err := tx.Create(&out).Error; err != nil {
			return helper.MapDBError(err, "", duplicateActiveMsg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[RESERVATION] %s created: book=%s member=%s expires=%s",
		out.ReservationID, bookID, memberID, out.ReservationExpiryDate.Format(time.RFC3339))
	return &out, nil
}

func (s *ReservationService) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.ReservationModel, error) {
	var r model.ReservationModel
	err := s.conn(ctx, tx).Where("reservation_id = ?", id).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("reservation not found")
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Cancel moves an active reservation to cancelled. A second call fails.
func (s *ReservationService) Cancel(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.ReservationModel, error) {
	return s.transition(ctx, tx, id, "cancel", model.ReservationStatusCancelled)
}

// Fulfill marks the reservation honored. Which reservation a checkout honors
// is decided by the caller.
func (s *ReservationService) Fulfill(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.ReservationModel, error) {
	return s.transition(ctx, tx, id, "fulfill", model.ReservationStatusFulfilled)
}

func (s *ReservationService) transition(ctx context.Context, tx *gorm.DB, id uuid.UUID, verb, target string) (*model.ReservationModel, error) {
	if tx == nil {
		var out *model.ReservationModel
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			out, err = s.transition(ctx, tx, id, verb, target)
			return err
		})
		return out, err
	}

	r, err := s.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if r.ReservationStatus != model.ReservationStatusActive {
		return nil, apperror.InvalidState("Cannot %s a reservation with status '%s'", verb, r.ReservationStatus)
	}

	// Conditional on the current status so a concurrent transition cannot be overwritten.
	res := tx.WithContext(ctx).Model(&model.ReservationModel{}).
		Where("reservation_id = ? AND reservation_status = ?", id, model.ReservationStatusActive).
		Update("reservation_status", target)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		cur, err := s.FindByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperror.InvalidState("Cannot %s a reservation with status '%s'", verb, cur.ReservationStatus)
	}

	r.ReservationStatus = target
	log.Printf("[RESERVATION] %s -> %s", id, target)
	return r, nil
}

// ExpireOld flips every active reservation whose expiry date has passed.
// Running it again immediately expires nothing.
func (s *ReservationService) ExpireOld(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&model.ReservationModel{}).
		Where("reservation_status = ? AND reservation_expiry_date < ?", model.ReservationStatusActive, s.now()).
		Update("reservation_status", model.ReservationStatusExpired)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[SWEEP] %d reservations expired", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

// GetByBook returns the queue: active reservations, oldest first.
func (s *ReservationService) GetByBook(ctx context.Context, bookID uuid.UUID) ([]model.ReservationModel, error) {
	var rows []model.ReservationModel
	err := s.queue(s.DB.WithContext(ctx), bookID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByMember returns every reservation of the member, newest first.
func (s *ReservationService) GetByMember(ctx context.Context, memberID uuid.UUID) ([]model.ReservationModel, error) {
	var rows []model.ReservationModel
	err := s.DB.WithContext(ctx).
		Where("reservation_member_id = ?", memberID).
		Order("reservation_date DESC").
		Order("reservation_id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetNextInQueue returns the oldest active reservation for the book, or nil.
func (s *ReservationService) GetNextInQueue(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (*model.ReservationModel, error) {
	var r model.ReservationModel
	err := s.queue(s.conn(ctx, tx), bookID).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindActiveFor returns the member's active reservation for the book, or nil.
func (s *ReservationService) FindActiveFor(ctx context.Context, tx *gorm.DB, bookID, memberID uuid.UUID) (*model.ReservationModel, error) {
	var r model.ReservationModel
	err := s.conn(ctx, tx).
		Where("reservation_book_id = ? AND reservation_member_id = ? AND reservation_status = ?",
			bookID, memberID, model.ReservationStatusActive).
		Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CountActiveForBook is used by loan renewal to detect waiting members.
func (s *ReservationService) CountActiveForBook(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (int64, error) {
	var n int64
	err := s.conn(ctx, tx).Model(&model.ReservationModel{}).
		Where("reservation_book_id = ? AND reservation_status = ?", bookID, model.ReservationStatusActive).
		Count(&n).Error
	return n, err
}

func (s *ReservationService) queue(db *gorm.DB, bookID uuid.UUID) *gorm.DB {
	return db.
		Where("reservation_book_id = ? AND reservation_status = ?", bookID, model.ReservationStatusActive).
		Order("reservation_date ASC").
		Order("reservation_id ASC")
}
