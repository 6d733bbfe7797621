package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MemberStatusActive    = "active"
	MemberStatusSuspended = "suspended"
	MemberStatusExpired   = "expired"
)

var MemberStatuses = []string{MemberStatusActive, MemberStatusSuspended, MemberStatusExpired}

type MemberModel struct {
	MemberID               uuid.UUID       `gorm:"column:member_id;type:uuid;primaryKey" json:"id"`
	MemberUserID           uuid.UUID       `gorm:"column:member_user_id;type:uuid;uniqueIndex;not null" json:"userId"`
	MemberCode             string          `gorm:"column:member_code;type:varchar(20);uniqueIndex;not null" json:"memberCode"`
	MemberType             string          `gorm:"column:member_type;type:varchar(20);not null;index" json:"memberType"`
	MemberStatus           string          `gorm:"column:member_status;type:varchar(20);not null;default:'active';index" json:"status"`
	MemberPhone            *string         `gorm:"column:member_phone;type:varchar(30)" json:"phone,omitempty"`
	MemberBooksIssuedCount int             `gorm:"column:member_books_issued_count;not null;default:0" json:"booksIssuedCount"`
	MemberOutstandingFines decimal.Decimal `gorm:"column:member_outstanding_fines;type:numeric(12,2);not null;default:0" json:"outstandingFines"`
	MemberExpiresAt        *time.Time      `gorm:"column:member_expires_at" json:"expiresAt,omitempty"`
	MemberCreatedAt        time.Time       `gorm:"column:member_created_at;autoCreateTime" json:"createdAt"`
	MemberUpdatedAt        time.Time       `gorm:"column:member_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (MemberModel) TableName() string { return "members" }

func (m *MemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.MemberID == uuid.Nil {
		m.MemberID = uuid.New()
	}
	return nil
}

func IsValidMemberStatus(s string) bool {
	for _, v := range MemberStatuses {
		if v == s {
			return true
		}
	}
	return false
}
