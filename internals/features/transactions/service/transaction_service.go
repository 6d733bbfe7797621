package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookService "library_backend/internals/features/catalog/books/service"
	fineDto "library_backend/internals/features/fines/dto"
	fineModel "library_backend/internals/features/fines/model"
	fineService "library_backend/internals/features/fines/service"
	memberModel "library_backend/internals/features/members/model"
	memberService "library_backend/internals/features/members/service"
	reservationModel "library_backend/internals/features/reservations/model"
	reservationService "library_backend/internals/features/reservations/service"
	settingService "library_backend/internals/features/settings/service"
	"library_backend/internals/features/transactions/dto"
	"library_backend/internals/features/transactions/model"
	helper "library_backend/internals/helpers"
	"library_backend/internals/helpers/apperror"
)

// TransactionService is the loan ledger. Every operation keeps the book's
// copy counts and the member's loan counter in the same database transaction
// as the loan row.
type TransactionService struct {
	DB           *gorm.DB
	Books        *bookService.BookService
	Members      *memberService.MemberService
	Settings     *settingService.SettingService
	Reservations *reservationService.ReservationService
	Fines        *fineService.FineService
	Now          func() time.Time
}

func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{
		DB:           db,
		Books:        bookService.NewBookService(db),
		Members:      memberService.NewMemberService(db),
		Settings:     settingService.NewSettingService(db),
		Reservations: reservationService.NewReservationService(db),
		Fines:        fineService.NewFineService(db, nil),
		Now:          time.Now,
	}
}

// WithClock sets the time source here and on the services it drives.
func (s *TransactionService) WithClock(now func() time.Time) *TransactionService {
	s.Now = now
	s.Books.Now = now
	s.Reservations.Now = now
	s.Fines.Now = now
	return s
}

func (s *TransactionService) now() time.Time { return s.Now().UTC() }

func (s *TransactionService) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.TransactionModel, error) {
	db := s.DB.WithContext(ctx)
	if tx != nil {
		db = tx.WithContext(ctx)
	}
	return s.find(db, id)
}

func (s *TransactionService) find(db *gorm.DB, id uuid.UUID) (*model.TransactionModel, error) {
	var t model.TransactionModel
	err := db.Where("transaction_id = ?", id).Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("transaction not found")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TransactionService) lockOpen(ctx context.Context, tx *gorm.DB, id uuid.UUID, verb string) (*model.TransactionModel, error) {
	t, err := s.find(helper.ForUpdate(tx.WithContext(ctx)), id)
	if err != nil {
		return nil, err
	}
	if t.TransactionStatus != model.TransactionStatusIssued {
		return nil, apperror.InvalidState("Cannot %s a transaction with status '%s'", verb, t.TransactionStatus)
	}
	return t, nil
}

// Issue lends a copy to a member. An active reservation the member holds for
// the book is fulfilled as part of the same checkout.
func (s *TransactionService) Issue(ctx context.Context, req dto.IssueRequest, issuedBy uuid.UUID) (*dto.IssueResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	out := &dto.IssueResult{}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.Members.FindMemberForUpdate(ctx, tx, req.MemberID)
		if err != nil {
			return err
		}
		if m.MemberStatus != memberModel.MemberStatusActive {
			return apperror.InvalidState("member status is '%s'; only active members may borrow books", m.MemberStatus)
		}
		setting, err := s.Settings.FindByMemberType(ctx, tx, m.MemberType)
		if err != nil {
			return err
		}
		if m.MemberBooksIssuedCount >= setting.SettingMaxBooksAllowed {
			return apperror.LimitExceeded("member already has the maximum of %d books on loan", setting.SettingMaxBooksAllowed)
		}
		if _, err := s.Books.FindBookByID(ctx, tx, req.BookID); err != nil {
			return err
		}

		var open int64
		if err := tx.Model(&model.TransactionModel{}).
			Where("transaction_book_id = ? AND transaction_member_id = ? AND transaction_status = ?",
				req.BookID, req.MemberID, model.TransactionStatusIssued).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return apperror.Conflict("member already has this book on loan")
		}

		r, err := s.reservationFor(ctx, tx, req)
		if err != nil {
			return err
		}

		if err := s.Books.CheckoutCopy(ctx, tx, req.BookID); err != nil {
			return err
		}
		if err := s.Members.AdjustBooksIssued(ctx, tx, m.MemberID, 1); err != nil {
			return err
		}

		t := &model.TransactionModel{
			TransactionBookID:    req.BookID,
			TransactionMemberID:  m.MemberID,
			TransactionIssueDate: now,
			TransactionDueDate:   settingService.DueDate(now, *setting),
			TransactionStatus:    model.TransactionStatusIssued,
		}
		if issuedBy != uuid.Nil {
			t.TransactionIssuedBy = &issuedBy
		}
		if r != nil {
			t.TransactionReservationID = &r.ReservationID
		}
		if err := tx.Create(t).Error; err != nil {
			return helper.MapDBError(err, "", "member already has this book on loan")
		}
		out.Transaction = t

		if r != nil {
			fulfilled, err := s.Reservations.Fulfill(ctx, tx, r.ReservationID)
			if err != nil {
				return err
			}
			out.Reservation = fulfilled
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[LOAN] issued %s: book %s to member %s, due %s",
		out.Transaction.TransactionID, req.BookID, req.MemberID, out.Transaction.TransactionDueDate.Format(time.RFC3339))
	return out, nil
}

func (s *TransactionService) reservationFor(ctx context.Context, tx *gorm.DB, req dto.IssueRequest) (*reservationModel.ReservationModel, error) {
	if req.ReservationID == nil {
		return s.Reservations.FindActiveFor(ctx, tx, req.BookID, req.MemberID)
	}
	r, err := s.Reservations.FindByID(ctx, tx, *req.ReservationID)
	if err != nil {
		return nil, err
	}
	if r.ReservationBookID != req.BookID || r.ReservationMemberID != req.MemberID {
		return nil, apperror.InvalidState("reservation does not belong to this member and book")
	}
	if r.ReservationStatus != reservationModel.ReservationStatusActive {
		return nil, apperror.InvalidState("Cannot fulfill a reservation with status '%s'", r.ReservationStatus)
	}
	return r, nil
}

// Return closes a loan, charges any overdue fine and reports who is next in
// the hold queue for the book.
func (s *TransactionService) Return(ctx context.Context, id uuid.UUID) (*dto.ReturnResult, error) {
	now := s.now()
	out := &dto.ReturnResult{}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.lockOpen(ctx, tx, id, "return")
		if err != nil {
			return err
		}
		m, err := s.Members.FindMemberByID(ctx, tx, t.TransactionMemberID)
		if err != nil {
			return err
		}
		setting, err := s.Settings.FindByMemberType(ctx, tx, m.MemberType)
		if err != nil {
			return err
		}

		if err := s.Books.ReturnCopy(ctx, tx, t.TransactionBookID); err != nil {
			return err
		}
		if err := s.Members.AdjustBooksIssued(ctx, tx, m.MemberID, -1); err != nil {
			return err
		}

		fine, err := s.Fines.CreateOverdue(ctx, tx, t, *setting, now)
		if err != nil {
			return err
		}
		t.TransactionStatus = model.TransactionStatusReturned
		t.TransactionReturnDate = &now
		if fine != nil {
			t.TransactionFineAmount = fine.FineAmount
		}
		if err := tx.Model(&model.TransactionModel{}).
			Where("transaction_id = ?", id).
			Updates(map[string]any{
				"transaction_status":      t.TransactionStatus,
				"transaction_return_date": now,
				"transaction_fine_amount": t.TransactionFineAmount,
			}).Error; err != nil {
			return err
		}

		next, err := s.Reservations.GetNextInQueue(ctx, tx, t.TransactionBookID)
		if err != nil {
			return err
		}
		out.Transaction, out.Fine, out.NextReservation = t, fine, next
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[LOAN] returned %s (fine %s)", id, out.Transaction.TransactionFineAmount.StringFixed(2))
	return out, nil
}

// Renew extends the due date by one loan period. Books other members are
// waiting for cannot be renewed.
func (s *TransactionService) Renew(ctx context.Context, id uuid.UUID) (*model.TransactionModel, error) {
	now := s.now()
	var out *model.TransactionModel

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.lockOpen(ctx, tx, id, "renew")
		if err != nil {
			return err
		}
		if t.IsOverdue(now) {
			return apperror.InvalidState("overdue loans cannot be renewed; return the book first")
		}
		m, err := s.Members.FindMemberByID(ctx, tx, t.TransactionMemberID)
		if err != nil {
			return err
		}
		setting, err := s.Settings.FindByMemberType(ctx, tx, m.MemberType)
		if err != nil {
			return err
		}
		if t.TransactionRenewalCount >= setting.SettingRenewalLimit {
			return apperror.LimitExceeded("loan has already been renewed the maximum of %d times", setting.SettingRenewalLimit)
		}
		waiting, err := s.Reservations.CountActiveForBook(ctx, tx, t.TransactionBookID)
		if err != nil {
			return err
		}
		if waiting > 0 {
			return apperror.InvalidState("%d members are waiting for this book; it cannot be renewed", waiting)
		}

		t.TransactionDueDate = settingService.DueDate(t.TransactionDueDate, *setting)
		t.TransactionRenewalCount++
		if err := tx.Model(&model.TransactionModel{}).
			Where("transaction_id = ?", id).
			Updates(map[string]any{
				"transaction_due_date":      t.TransactionDueDate,
				"transaction_renewal_count": t.TransactionRenewalCount,
			}).Error; err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[LOAN] renewed %s (#%d), due %s", id, out.TransactionRenewalCount, out.TransactionDueDate.Format(time.RFC3339))
	return out, nil
}

// MarkLost closes the loan as lost, charges the replacement fee and writes
// the copy off the collection.
func (s *TransactionService) MarkLost(ctx context.Context, id uuid.UUID, req dto.LostRequest) (*dto.LostResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out := &dto.LostResult{}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.lockOpen(ctx, tx, id, "mark lost")
		if err != nil {
			return err
		}
		if err := s.Books.WriteOffCopy(ctx, tx, t.TransactionBookID); err != nil {
			return err
		}
		if err := s.Members.AdjustBooksIssued(ctx, tx, t.TransactionMemberID, -1); err != nil {
			return err
		}
		txID := t.TransactionID
		fine, err := s.Fines.Create(ctx, tx, fineDto.CreateFineRequest{
			MemberID:      t.TransactionMemberID,
			FineType:      fineModel.FineTypeLost,
			Amount:        req.Amount,
			TransactionID: &txID,
			Notes:         req.Notes,
		})
		if err != nil {
			return err
		}
		t.TransactionStatus = model.TransactionStatusLost
		t.TransactionFineAmount = fine.FineAmount
		if err := tx.Model(&model.TransactionModel{}).
			Where("transaction_id = ?", id).
			Updates(map[string]any{
				"transaction_status":      t.TransactionStatus,
				"transaction_fine_amount": t.TransactionFineAmount,
			}).Error; err != nil {
			return err
		}
		out.Transaction, out.Fine = t, fine
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[LOAN] %s marked lost", id)
	return out, nil
}

// ListByMember returns the member's loans, newest first.
func (s *TransactionService) ListByMember(ctx context.Context, memberID uuid.UUID, q dto.ListQuery) ([]model.TransactionModel, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx).Where("transaction_member_id = ?", memberID)
	if st := strings.TrimSpace(q.Status); st != "" {
		db = db.Where("transaction_status = ?", st)
	}
	var rows []model.TransactionModel
	if err := db.Order("transaction_issue_date DESC").Order("transaction_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListOverdue returns open loans past their due date, most overdue first.
func (s *TransactionService) ListOverdue(ctx context.Context, p helper.Paging) ([]model.TransactionModel, int64, error) {
	base := s.DB.WithContext(ctx).Model(&model.TransactionModel{}).
		Where("transaction_status = ? AND transaction_due_date < ?", model.TransactionStatusIssued, s.now())

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.TransactionModel
	if err := base.
		Order("transaction_due_date ASC").
		Order("transaction_id ASC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
