package dto

import (
	"github.com/shopspring/decimal"

	"library_backend/internals/constants"
	"library_backend/internals/features/settings/model"
	helper "library_backend/internals/helpers"
)

// UpsertSettingRequest replaces every policy field; all of them are required.
type UpsertSettingRequest struct {
	MaxBooksAllowed  *int             `json:"maxBooksAllowed"`
	LoanDurationDays *int             `json:"loanDurationDays"`
	RenewalLimit     *int             `json:"renewalLimit"`
	FinePerDay       *decimal.Decimal `json:"finePerDay"`
	GracePeriodDays  *int             `json:"gracePeriodDays"`
}

func (r UpsertSettingRequest) Validate(memberType string) error {
	fe := helper.FieldErrors{}
	if !constants.IsValidMemberType(memberType) {
		fe.Add("memberType", "must be one of student, faculty, public")
	}
	checkInt(fe, "maxBooksAllowed", r.MaxBooksAllowed, "gte=0,lte=100")
	checkInt(fe, "loanDurationDays", r.LoanDurationDays, "gte=1,lte=365")
	checkInt(fe, "renewalLimit", r.RenewalLimit, "gte=0,lte=20")
	checkInt(fe, "gracePeriodDays", r.GracePeriodDays, "gte=0,lte=60")
	switch {
	case r.FinePerDay == nil:
		fe.Add("finePerDay", "is required")
	case r.FinePerDay.IsNegative():
		fe.Add("finePerDay", "must not be negative")
	}
	return fe.Err()
}

func checkInt(fe helper.FieldErrors, field string, v *int, rule string) {
	if v == nil {
		fe.Add(field, "is required")
		return
	}
	fe.Check(field, *v, rule, "is out of range")
}

// ApplyTo copies the request onto m; call only after Validate succeeded.
func (r UpsertSettingRequest) ApplyTo(m *model.SystemSetting) {
	m.SettingMaxBooksAllowed = *r.MaxBooksAllowed
	m.SettingLoanDurationDays = *r.LoanDurationDays
	m.SettingRenewalLimit = *r.RenewalLimit
	m.SettingFinePerDay = r.FinePerDay.Round(2)
	m.SettingGracePeriodDays = *r.GracePeriodDays
}
