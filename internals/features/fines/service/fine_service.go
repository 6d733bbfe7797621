package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	authModel "library_backend/internals/features/auth/model"
	"library_backend/internals/features/fines/dto"
	"library_backend/internals/features/fines/model"
	memberService "library_backend/internals/features/members/service"
	settingModel "library_backend/internals/features/settings/model"
	policy "library_backend/internals/features/settings/service"
	txModel "library_backend/internals/features/transactions/model"
	helper "library_backend/internals/helpers"
	"library_backend/internals/helpers/apperror"
)

// FineService keeps each fine and the member's outstandingFines balance in step.
type FineService struct {
	DB      *gorm.DB
	Members *memberService.MemberService
	// Gateway is nil when online payment is not configured.
	Gateway PaymentGateway
	Now     func() time.Time
}

func NewFineService(db *gorm.DB, gateway PaymentGateway) *FineService {
	return &FineService{
		DB:      db,
		Members: memberService.NewMemberService(db),
		Gateway: gateway,
		Now:     time.Now,
	}
}

func (s *FineService) now() time.Time { return s.Now().UTC() }

func (s *FineService) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return s.DB.WithContext(ctx)
}

// inTx runs fn on tx when given, otherwise in a new transaction.
func (s *FineService) inTx(ctx context.Context, tx *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx != nil {
		return fn(tx.WithContext(ctx))
	}
	return s.DB.WithContext(ctx).Transaction(fn)
}

func (s *FineService) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.FineModel, error) {
	var f model.FineModel
	err := s.conn(ctx, tx).Where("fine_id = ?", id).Take(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("fine not found")
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FineService) findForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.FineModel, error) {
	var f model.FineModel
	err := helper.ForUpdate(tx.WithContext(ctx)).Where("fine_id = ?", id).Take(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("fine not found")
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateOverdue charges for a late return. It returns nil when the loan was
// returned within the grace period.
func (s *FineService) CreateOverdue(ctx context.Context, tx *gorm.DB, t *txModel.TransactionModel, setting settingModel.SystemSetting, returnedAt time.Time) (*model.FineModel, error) {
	days := policy.DaysOverdue(t.TransactionDueDate, returnedAt)
	amount := policy.OverdueFine(setting, days).Round(2)
	if !amount.IsPositive() {
		return nil, nil
	}
	details, err := json.Marshal(model.OverdueDetails{
		DaysOverdue:     days,
		GracePeriodDays: setting.SettingGracePeriodDays,
		FinePerDay:      setting.SettingFinePerDay,
		DueDate:         t.TransactionDueDate,
		ReturnedAt:      returnedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode overdue details: %w", err)
	}
	txID := t.TransactionID
	f := &model.FineModel{
		FineMemberID:      t.TransactionMemberID,
		FineTransactionID: &txID,
		FineType:          model.FineTypeOverdue,
		FineAmount:        amount,
		FinePaidAmount:    decimal.Zero,
		FineStatus:        model.FineStatusPending,
		FineDetails:       datatypes.JSON(details),
	}
	if err := s.insert(ctx, tx, f); err != nil {
		return nil, err
	}
	log.Printf("[FINE] overdue %s for transaction %s: %d days, %s", f.FineID, txID, days, amount.StringFixed(2))
	return f, nil
}

// Create records a manual fine.
func (s *FineService) Create(ctx context.Context, tx *gorm.DB, req dto.CreateFineRequest) (*model.FineModel, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f := &model.FineModel{
		FineMemberID:      req.MemberID,
		FineTransactionID: req.TransactionID,
		FineReservationID: req.ReservationID,
		FineType:          req.FineType,
		FineAmount:        req.Amount.Round(2),
		FinePaidAmount:    decimal.Zero,
		FineStatus:        model.FineStatusPending,
		FineNotes:         req.Notes,
	}
	err := s.inTx(ctx, tx, func(tx *gorm.DB) error {
		if _, err := s.Members.FindMemberByID(ctx, tx, req.MemberID); err != nil {
			return err
		}
		return s.insert(ctx, tx, f)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[FINE] %s %s for member %s: %s", f.FineType, f.FineID, f.FineMemberID, f.FineAmount.StringFixed(2))
	return f, nil
}

func (s *FineService) insert(ctx context.Context, tx *gorm.DB, f *model.FineModel) error {
	return s.inTx(ctx, tx, func(tx *gorm.DB) error {
		if err := tx.Create(f).Error; err != nil {
			return err
		}
		return s.Members.AdjustOutstandingFines(ctx, tx, f.FineMemberID, f.FineAmount)
	})
}

// Pay applies a partial or full payment to a pending fine.
func (s *FineService) Pay(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.FineModel, error) {
	var out *model.FineModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := s.findForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		out, err = s.applyPayment(ctx, tx, f, amount)
		return err
	})
	return out, err
}

func (s *FineService) applyPayment(ctx context.Context, tx *gorm.DB, f *model.FineModel, amount decimal.Decimal) (*model.FineModel, error) {
	if f.FineStatus != model.FineStatusPending {
		return nil, apperror.InvalidState("Cannot pay a fine with status '%s'", f.FineStatus)
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperror.InvalidState("payment amount must be greater than zero")
	}
	remaining := f.Remaining()
	if amount.GreaterThan(remaining) {
		return nil, apperror.InvalidState("payment of %s exceeds the remaining balance of %s",
			amount.StringFixed(2), remaining.StringFixed(2))
	}

	f.FinePaidAmount = f.FinePaidAmount.Add(amount)
	updates := map[string]any{"fine_paid_amount": f.FinePaidAmount}
	if f.FinePaidAmount.GreaterThanOrEqual(f.FineAmount) {
		now := s.now()
		f.FineStatus = model.FineStatusPaid
		f.FinePaidAt = &now
		updates["fine_status"] = f.FineStatus
		updates["fine_paid_at"] = now
	}
	if err := tx.Model(&model.FineModel{}).Where("fine_id = ?", f.FineID).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := s.Members.AdjustOutstandingFines(ctx, tx, f.FineMemberID, amount.Neg()); err != nil {
		return nil, err
	}
	log.Printf("[FINE] %s paid %s (%s/%s, %s)", f.FineID, amount.StringFixed(2),
		f.FinePaidAmount.StringFixed(2), f.FineAmount.StringFixed(2), f.FineStatus)
	return f, nil
}

// Waive forgives the remaining balance. It cannot be undone.
func (s *FineService) Waive(ctx context.Context, id, by uuid.UUID, req dto.WaiveFineRequest) (*model.FineModel, error) {
	notes := helper.TrimPtr(req.Notes)
	var out *model.FineModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := s.findForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if f.FineStatus != model.FineStatusPending {
			return apperror.InvalidState("Cannot waive a fine with status '%s'", f.FineStatus)
		}
		remaining := f.Remaining()
		now := s.now()
		f.FineStatus = model.FineStatusWaived
		f.FineWaivedAt = &now
		f.FineWaivedBy = &by
		updates := map[string]any{
			"fine_status":    f.FineStatus,
			"fine_waived_at": now,
			"fine_waived_by": by,
		}
		if notes != nil {
			f.FineNotes = notes
			updates["fine_notes"] = *notes
		}
		if err := tx.Model(&model.FineModel{}).Where("fine_id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := s.Members.AdjustOutstandingFines(ctx, tx, f.FineMemberID, remaining.Neg()); err != nil {
			return err
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[FINE] %s waived by %s", id, by)
	return out, nil
}

func (s *FineService) ListByMember(ctx context.Context, memberID uuid.UUID, q dto.ListFinesQuery) ([]model.FineModel, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx).Where("fine_member_id = ?", memberID)
	if st := strings.TrimSpace(q.Status); st != "" {
		db = db.Where("fine_status = ?", st)
	}
	var rows []model.FineModel
	if err := db.Order("fine_created_at DESC").Order("fine_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func newOrderID(fineID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("FINE-%s-%d", strings.ReplaceAll(fineID.String(), "-", "")[:12], at.Unix())
}

// Checkout opens a hosted payment page for the remaining balance. Amounts are
// rounded up to the whole currency unit the gateway accepts.
func (s *FineService) Checkout(ctx context.Context, id uuid.UUID) (*dto.CheckoutResponse, error) {
	if s.Gateway == nil {
		return nil, apperror.InvalidState("online payment is not configured")
	}
	f, err := s.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if f.FineStatus != model.FineStatusPending {
		return nil, apperror.InvalidState("Cannot pay a fine with status '%s'", f.FineStatus)
	}
	m, err := s.Members.FindMemberByID(ctx, nil, f.FineMemberID)
	if err != nil {
		return nil, err
	}
	var u authModel.UserModel
	if err := s.DB.WithContext(ctx).Where("id = ?", m.MemberUserID).Take(&u).Error; err != nil {
		return nil, helper.MapDBError(err, "user not found", "")
	}

	remaining := f.Remaining()
	orderID := newOrderID(f.FineID, s.now())
	req := CheckoutRequest{
		OrderID:  orderID,
		Amount:   remaining.Ceil().IntPart(),
		ItemName: fmt.Sprintf("%s fine %s", f.FineType, m.MemberCode),
		Customer: Customer{FullName: u.FullName, Email: u.Email},
	}
	if m.MemberPhone != nil {
		req.Customer.Phone = *m.MemberPhone
	}
	sess, err := s.Gateway.CreateCheckout(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&model.FineModel{}).
		Where("fine_id = ?", f.FineID).
		Update("fine_gateway_order_id", orderID).Error; err != nil {
		return nil, err
	}
	log.Printf("[FINE] checkout %s for fine %s (%s)", orderID, f.FineID, remaining.StringFixed(2))
	return &dto.CheckoutResponse{
		FineID:      f.FineID,
		OrderID:     orderID,
		Amount:      remaining,
		Token:       sess.Token,
		RedirectURL: sess.RedirectURL,
	}, nil
}

// ErrBadSignature is returned for notifications that fail verification.
var ErrBadSignature = errors.New("invalid gateway signature")

// HandleNotification settles the fine referenced by a verified gateway
// callback. Unknown orders, non-final statuses and already settled fines are
// acknowledged without changes.
func (s *FineService) HandleNotification(ctx context.Context, n dto.GatewayNotification) (*model.FineModel, error) {
	if s.Gateway == nil || !s.Gateway.VerifyNotification(n.OrderID, n.StatusCode, n.GrossAmount, n.SignatureKey) {
		return nil, ErrBadSignature
	}
	if !n.Settled() {
		log.Printf("[FINE] notification %s status=%s ignored", n.OrderID, n.TransactionStatus)
		return nil, nil
	}
	gross, err := decimal.NewFromString(strings.TrimSpace(n.GrossAmount))
	if err != nil {
		return nil, apperror.Validation(map[string][]string{"gross_amount": {"must be numeric"}})
	}

	var out *model.FineModel
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f model.FineModel
		err := helper.ForUpdate(tx).Where("fine_gateway_order_id = ?", n.OrderID).Take(&f).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[FINE] notification for unknown order %s", n.OrderID)
			return nil
		}
		if err != nil {
			return err
		}
		if f.FineStatus != model.FineStatusPending {
			out = &f
			return nil
		}
		// The gateway charged a rounded-up amount; the ledger takes at most the balance.
		amount := decimal.Min(gross, f.Remaining())
		out, err = s.applyPayment(ctx, tx, &f, amount)
		return err
	})
	return out, err
}
