package service

import (
	"time"

	"github.com/shopspring/decimal"

	"library_backend/internals/features/settings/model"
)

// Terms is the loan policy a member type is held to.
type Terms struct {
	MaxBooksAllowed  int             `json:"maxBooksAllowed"`
	LoanDuration     time.Duration   `json:"-"`
	LoanDurationDays int             `json:"loanDurationDays"`
	RenewalLimit     int             `json:"renewalLimit"`
	FinePerDay       decimal.Decimal `json:"finePerDay"`
	GracePeriodDays  int             `json:"gracePeriodDays"`
}

func LoanTerms(s model.SystemSetting) Terms {
	return Terms{
		MaxBooksAllowed:  s.SettingMaxBooksAllowed,
		LoanDuration:     time.Duration(s.SettingLoanDurationDays) * 24 * time.Hour,
		LoanDurationDays: s.SettingLoanDurationDays,
		RenewalLimit:     s.SettingRenewalLimit,
		FinePerDay:       s.SettingFinePerDay,
		GracePeriodDays:  s.SettingGracePeriodDays,
	}
}

// DueDate counts loan days from issuedAt.
func DueDate(issuedAt time.Time, s model.SystemSetting) time.Time {
	return issuedAt.AddDate(0, 0, s.SettingLoanDurationDays)
}

// DaysOverdue is the number of whole days between due and now, floored, never negative.
func DaysOverdue(due, now time.Time) int {
	if !now.After(due) {
		return 0
	}
	return int(now.Sub(due) / (24 * time.Hour))
}

// OverdueFine = finePerDay × max(0, daysOverdue − gracePeriodDays).
func OverdueFine(s model.SystemSetting, daysOverdue int) decimal.Decimal {
	chargeable := daysOverdue - s.SettingGracePeriodDays
	if chargeable <= 0 {
		return decimal.Zero
	}
	return s.SettingFinePerDay.Mul(decimal.NewFromInt(int64(chargeable)))
}
