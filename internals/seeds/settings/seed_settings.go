package settings

import (
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"library_backend/internals/constants"
	"library_backend/internals/features/settings/model"
)

func DefaultSettings() []model.SystemSetting {
	return []model.SystemSetting{
		{
			SettingMemberType:       constants.MemberTypeStudent,
			SettingMaxBooksAllowed:  3,
			SettingLoanDurationDays: 14,
			SettingRenewalLimit:     1,
			SettingFinePerDay:       decimal.RequireFromString("0.50"),
			SettingGracePeriodDays:  1,
		},
		{
			SettingMemberType:       constants.MemberTypeFaculty,
			SettingMaxBooksAllowed:  10,
			SettingLoanDurationDays: 30,
			SettingRenewalLimit:     3,
			SettingFinePerDay:       decimal.RequireFromString("0.25"),
			SettingGracePeriodDays:  3,
		},
		{
			SettingMemberType:       constants.MemberTypePublic,
			SettingMaxBooksAllowed:  2,
			SettingLoanDurationDays: 7,
			SettingRenewalLimit:     0,
			SettingFinePerDay:       decimal.RequireFromString("1.00"),
			SettingGracePeriodDays:  0,
		},
	}
}

// SeedDefaultSettings inserts a policy row only for member types that have none.
// Existing rows are never overwritten.
func SeedDefaultSettings(db *gorm.DB) error {
	for _, s := range DefaultSettings() {
		var existing model.SystemSetting
		err := db.Where("setting_member_type = ?", s.SettingMemberType).Take(&existing).Error
		if err == nil {
			log.Printf("[SEED] policy for %s already present", s.SettingMemberType)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup policy %s: %w", s.SettingMemberType, err)
		}
		row := s
		if err := db.Create(&row).Error; err != nil {
			return fmt.Errorf("seed policy %s: %w", s.SettingMemberType, err)
		}
		log.Printf("[SEED] policy for %s created", s.SettingMemberType)
	}
	return nil
}
