package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	helper "library_backend/internals/helpers"
)

const dateLayout = "2006-01-02"

// DateRange is half-open: From <= t < To.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ParseRange reads from/to as calendar dates (to is inclusive). Missing
// bounds default to the 30 days ending today.
func ParseRange(from, to string, now time.Time) (DateRange, error) {
	fe := helper.FieldErrors{}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	r := DateRange{From: today.AddDate(0, 0, -29), To: today.AddDate(0, 0, 1)}

	if s := strings.TrimSpace(from); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			fe.Add("from", "must be a date in YYYY-MM-DD format")
		} else {
			r.From = t
		}
	}
	if s := strings.TrimSpace(to); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			fe.Add("to", "must be a date in YYYY-MM-DD format")
		} else {
			r.To = t.AddDate(0, 0, 1)
		}
	}
	if len(fe) == 0 && !r.From.Before(r.To) {
		fe.Add("from", "must not be after to")
	}
	return r, fe.Err()
}

type BookTotals struct {
	Titles    int64 `json:"titles"`
	Copies    int64 `json:"copies"`
	Available int64 `json:"available"`
	OnLoan    int64 `json:"onLoan"`
}

type LoanTotals struct {
	Active          int64 `json:"active"`
	Overdue         int64 `json:"overdue"`
	IssuedInRange   int64 `json:"issuedInRange"`
	ReturnedInRange int64 `json:"returnedInRange"`
}

type FineTotals struct {
	PendingBalance     decimal.Decimal `json:"pendingBalance"`
	CollectedInRange   decimal.Decimal `json:"collectedInRange"`
	WaivedCountInRange int64           `json:"waivedCountInRange"`
}

type Dashboard struct {
	Range              DateRange        `json:"range"`
	Books              BookTotals       `json:"books"`
	MembersByStatus    map[string]int64 `json:"membersByStatus"`
	Loans              LoanTotals       `json:"loans"`
	ActiveReservations int64            `json:"activeReservations"`
	Fines              FineTotals       `json:"fines"`
}

// OverdueRow is one line of the overdue report.
type OverdueRow struct {
	TransactionID uuid.UUID       `db:"transaction_id" json:"transactionId"`
	BookID        uuid.UUID       `db:"book_id" json:"bookId"`
	BookTitle     string          `db:"book_title" json:"bookTitle"`
	BookISBN      string          `db:"book_isbn" json:"isbn"`
	MemberID      uuid.UUID       `db:"member_id" json:"memberId"`
	MemberCode    string          `db:"member_code" json:"memberCode"`
	MemberType    string          `db:"member_type" json:"memberType"`
	MemberName    string          `db:"full_name" json:"memberName"`
	MemberEmail   string          `db:"email" json:"memberEmail"`
	IssueDate     time.Time       `db:"transaction_issue_date" json:"issueDate"`
	DueDate       time.Time       `db:"transaction_due_date" json:"dueDate"`
	DaysOverdue   int             `db:"-" json:"daysOverdue"`
	AccruedFine   decimal.Decimal `db:"-" json:"accruedFine"`
}

const (
	ExportTransactions = "transactions"
	ExportFines        = "fines"
)

func ValidateExportKind(kind string) error {
	fe := helper.FieldErrors{}
	if kind != ExportTransactions && kind != ExportFines {
		fe.Add("kind", "must be transactions or fines")
	}
	return fe.Err()
}
