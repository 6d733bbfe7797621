package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SystemSetting is the loan and fine policy for one member type.
type SystemSetting struct {
	SettingID               uuid.UUID       `gorm:"column:setting_id;type:uuid;primaryKey" json:"id"`
	SettingMemberType       string          `gorm:"column:setting_member_type;type:varchar(20);uniqueIndex;not null" json:"memberType"`
	SettingMaxBooksAllowed  int             `gorm:"column:setting_max_books_allowed;not null" json:"maxBooksAllowed"`
	SettingLoanDurationDays int             `gorm:"column:setting_loan_duration_days;not null" json:"loanDurationDays"`
	SettingRenewalLimit     int             `gorm:"column:setting_renewal_limit;not null;default:0" json:"renewalLimit"`
	SettingFinePerDay       decimal.Decimal `gorm:"column:setting_fine_per_day;type:numeric(12,2);not null;default:0" json:"finePerDay"`
	SettingGracePeriodDays  int             `gorm:"column:setting_grace_period_days;not null;default:0" json:"gracePeriodDays"`
	SettingCreatedAt        time.Time       `gorm:"column:setting_created_at;autoCreateTime" json:"createdAt"`
	SettingUpdatedAt        time.Time       `gorm:"column:setting_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (SystemSetting) TableName() string { return "system_settings" }

func (s *SystemSetting) BeforeCreate(tx *gorm.DB) error {
	if s.SettingID == uuid.Nil {
		s.SettingID = uuid.New()
	}
	return nil
}
