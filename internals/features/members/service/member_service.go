package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	authModel "library_backend/internals/features/auth/model"
	"library_backend/internals/features/members/dto"
	"library_backend/internals/features/members/model"
	helper "library_backend/internals/helpers"
	"library_backend/internals/helpers/apperror"
)

type MemberService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{DB: db, Now: time.Now}
}

func (s *MemberService) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return s.DB.WithContext(ctx)
}

func (s *MemberService) FindMemberByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.MemberModel, error) {
	return s.find(s.conn(ctx, tx), "member_id = ?", id)
}

// FindMemberForUpdate locks the member row until tx ends, serializing
// checks that count rows owned by the member.
func (s *MemberService) FindMemberForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.MemberModel, error) {
	return s.find(helper.ForUpdate(tx.WithContext(ctx)), "member_id = ?", id)
}

func (s *MemberService) FindByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*model.MemberModel, error) {
	return s.find(s.conn(ctx, tx), "member_user_id = ?", userID)
}

func (s *MemberService) find(db *gorm.DB, cond string, arg any) (*model.MemberModel, error) {
	var m model.MemberModel
	err := db.Where(cond, arg).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("member not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func newMemberCode() string {
	return "LIB-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// Create registers a membership for an existing user account.
func (s *MemberService) Create(ctx context.Context, tx *gorm.DB, req dto.CreateMemberRequest) (*model.MemberModel, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	db := s.conn(ctx, tx)

	var user authModel.UserModel
	if err := db.Where("id = ?", req.UserID).Take(&user).Error; err != nil {
		return nil, helper.MapDBError(err, "user not found", "")
	}

	m := model.MemberModel{
		MemberUserID:           req.UserID,
		MemberCode:             newMemberCode(),
		MemberType:             req.MemberType,
		MemberStatus:           model.MemberStatusActive,
		MemberPhone:            req.Phone,
		MemberOutstandingFines: decimal.Zero,
		MemberExpiresAt:        req.ExpiresAt,
	}
	if err := db.Create(&m).Error; err != nil {
		return nil, helper.MapDBError(err, "", "user already has a membership")
	}
	log.Printf("[MEMBER] created %s (%s) for user %s", m.MemberID, m.MemberType, m.MemberUserID)
	return &m, nil
}

func (s *MemberService) List(ctx context.Context, q dto.ListMembersQuery, p helper.Paging) ([]model.MemberModel, int64, error) {
	base := s.DB.WithContext(ctx).Model(&model.MemberModel{})
	if v := strings.TrimSpace(q.Status); v != "" {
		base = base.Where("member_status = ?", v)
	}
	if v := strings.TrimSpace(q.MemberType); v != "" {
		base = base.Where("member_type = ?", v)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.MemberModel
	if err := base.
		Order("member_created_at DESC").
		Order("member_id ASC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *MemberService) UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateStatusRequest) (*model.MemberModel, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	status := strings.TrimSpace(req.Status)

	res := s.DB.WithContext(ctx).Model(&model.MemberModel{}).
		Where("member_id = ?", id).
		Update("member_status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("member not found")
	}
	log.Printf("[MEMBER] %s status -> %s", id, status)
	return s.FindMemberByID(ctx, nil, id)
}

// AdjustBooksIssued shifts the loan counter, refusing to go below zero.
func (s *MemberService) AdjustBooksIssued(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error {
	res := s.conn(ctx, tx).Model(&model.MemberModel{}).
		Where("member_id = ? AND member_books_issued_count + ? >= 0", id, delta).
		Update("member_books_issued_count", gorm.Expr("member_books_issued_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("adjust books issued for member %s by %d: no row updated", id, delta)
	}
	return nil
}

// AdjustOutstandingFines adds delta (may be negative) to the member's balance.
func (s *MemberService) AdjustOutstandingFines(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	res := s.conn(ctx, tx).Model(&model.MemberModel{}).
		Where("member_id = ?", id).
		Update("member_outstanding_fines", gorm.Expr("member_outstanding_fines + CAST(? AS NUMERIC)", delta.Round(2).String()))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("member not found")
	}
	return nil
}
