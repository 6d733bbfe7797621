package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	fineModel "library_backend/internals/features/fines/model"
	reservationModel "library_backend/internals/features/reservations/model"
	"library_backend/internals/features/reports/dto"
	settingModel "library_backend/internals/features/settings/model"
	settingService "library_backend/internals/features/settings/service"
	txModel "library_backend/internals/features/transactions/model"
)

// ReportService runs read-only aggregate queries built with goqu against the
// connection pool behind DB.
type ReportService struct {
	DB       *gorm.DB
	Settings *settingService.SettingService
	Now      func() time.Time
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db, Settings: settingService.NewSettingService(db), Now: time.Now}
}

func (s *ReportService) now() time.Time { return s.Now().UTC() }

func (s *ReportService) database() (*goqu.Database, error) {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return nil, err
	}
	dialect := "postgres"
	if s.DB.Dialector.Name() == "sqlite" {
		dialect = "sqlite3"
	}
	return goqu.New(dialect, sqlDB), nil
}

func inRange(col string, r dto.DateRange) exp.Expression {
	return goqu.And(goqu.C(col).Gte(r.From), goqu.C(col).Lt(r.To))
}

func count(ctx context.Context, ds *goqu.SelectDataset) (int64, error) {
	var n int64
	if _, err := ds.Select(goqu.COUNT("*")).Prepared(true).ScanValContext(ctx, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func sum(ctx context.Context, ds *goqu.SelectDataset, expr interface{}) (decimal.Decimal, error) {
	var d decimal.Decimal
	if _, err := ds.Select(goqu.COALESCE(goqu.SUM(expr), 0)).Prepared(true).ScanValContext(ctx, &d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

type bookTotalsRow struct {
	Titles    int64 `db:"titles"`
	Copies    int64 `db:"copies"`
	Available int64 `db:"available"`
}

type statusCountRow struct {
	Status string `db:"member_status"`
	N      int64  `db:"n"`
}

// Dashboard gathers the circulation rollup. Stock figures are current;
// *InRange figures cover r.
func (s *ReportService) Dashboard(ctx context.Context, r dto.DateRange) (*dto.Dashboard, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := &dto.Dashboard{Range: r, MembersByStatus: map[string]int64{}}

	var bt bookTotalsRow
	if _, err := db.From("books").
		Select(
			goqu.COUNT("*").As("titles"),
			goqu.COALESCE(goqu.SUM("book_total_copies"), 0).As("copies"),
			goqu.COALESCE(goqu.SUM("book_available_copies"), 0).As("available"),
		).
		Where(goqu.C("book_is_deleted").Eq(false)).
		Prepared(true).
		ScanStructContext(ctx, &bt); err != nil {
		return nil, fmt.Errorf("book totals: %w", err)
	}
	out.Books = dto.BookTotals{
		Titles:    bt.Titles,
		Copies:    bt.Copies,
		Available: bt.Available,
		OnLoan:    bt.Copies - bt.Available,
	}

	var statuses []statusCountRow
	if err := db.From("members").
		Select(goqu.C("member_status"), goqu.COUNT("*").As("n")).
		GroupBy("member_status").
		Prepared(true).
		ScanStructsContext(ctx, &statuses); err != nil {
		return nil, fmt.Errorf("members by status: %w", err)
	}
	for _, row := range statuses {
		out.MembersByStatus[row.Status] = row.N
	}

	loans := db.From("transactions")
	issued := goqu.C("transaction_status").Eq(txModel.TransactionStatusIssued)
	if out.Loans.Active, err = count(ctx, loans.Where(issued)); err != nil {
		return nil, err
	}
	if out.Loans.Overdue, err = count(ctx, loans.Where(issued, goqu.C("transaction_due_date").Lt(now))); err != nil {
		return nil, err
	}
	if out.Loans.IssuedInRange, err = count(ctx, loans.Where(inRange("transaction_issue_date", r))); err != nil {
		return nil, err
	}
	if out.Loans.ReturnedInRange, err = count(ctx, loans.Where(inRange("transaction_return_date", r))); err != nil {
		return nil, err
	}

	if out.ActiveReservations, err = count(ctx, db.From("reservations").
		Where(goqu.C("reservation_status").Eq(reservationModel.ReservationStatusActive))); err != nil {
		return nil, err
	}

	fines := db.From("fines")
	if out.Fines.PendingBalance, err = sum(ctx,
		fines.Where(goqu.C("fine_status").Eq(fineModel.FineStatusPending)),
		goqu.L("fine_amount - fine_paid_amount")); err != nil {
		return nil, err
	}
	if out.Fines.CollectedInRange, err = sum(ctx,
		fines.Where(goqu.C("fine_status").Eq(fineModel.FineStatusPaid), inRange("fine_paid_at", r)),
		goqu.C("fine_paid_amount")); err != nil {
		return nil, err
	}
	if out.Fines.WaivedCountInRange, err = count(ctx, fines.Where(inRange("fine_waived_at", r))); err != nil {
		return nil, err
	}
	out.Fines.PendingBalance = out.Fines.PendingBalance.Round(2)
	out.Fines.CollectedInRange = out.Fines.CollectedInRange.Round(2)
	return out, nil
}

// Overdue lists open loans past due with the fine they would incur if
// returned now, most overdue first.
func (s *ReportService) Overdue(ctx context.Context) ([]dto.OverdueRow, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}
	now := s.now()

	rows := []dto.OverdueRow{}
	if err := db.From("transactions").
		Select(
			"transactions.transaction_id",
			"books.book_id",
			"books.book_title",
			"books.book_isbn",
			"members.member_id",
			"members.member_code",
			"members.member_type",
			"users.full_name",
			"users.email",
			"transactions.transaction_issue_date",
			"transactions.transaction_due_date",
		).
		Join(goqu.T("books"), goqu.On(goqu.I("books.book_id").Eq(goqu.I("transactions.transaction_book_id")))).
		Join(goqu.T("members"), goqu.On(goqu.I("members.member_id").Eq(goqu.I("transactions.transaction_member_id")))).
		Join(goqu.T("users"), goqu.On(goqu.I("users.id").Eq(goqu.I("members.member_user_id")))).
		Where(
			goqu.I("transactions.transaction_status").Eq(txModel.TransactionStatusIssued),
			goqu.I("transactions.transaction_due_date").Lt(now),
		).
		Order(goqu.I("transactions.transaction_due_date").Asc(), goqu.I("transactions.transaction_id").Asc()).
		Prepared(true).
		ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("overdue report: %w", err)
	}

	policies, err := s.policies(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].DaysOverdue = settingService.DaysOverdue(rows[i].DueDate, now)
		rows[i].AccruedFine = decimal.Zero
		if p, ok := policies[rows[i].MemberType]; ok {
			rows[i].AccruedFine = settingService.OverdueFine(p, rows[i].DaysOverdue).Round(2)
		}
	}
	return rows, nil
}

func (s *ReportService) policies(ctx context.Context) (map[string]settingModel.SystemSetting, error) {
	list, err := s.Settings.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]settingModel.SystemSetting, len(list))
	for _, p := range list {
		out[p.SettingMemberType] = p
	}
	return out, nil
}

type transactionExportRow struct {
	TransactionID string          `db:"transaction_id"`
	BookISBN      string          `db:"book_isbn"`
	BookTitle     string          `db:"book_title"`
	MemberCode    string          `db:"member_code"`
	Status        string          `db:"transaction_status"`
	IssueDate     time.Time       `db:"transaction_issue_date"`
	DueDate       time.Time       `db:"transaction_due_date"`
	ReturnDate    *time.Time      `db:"transaction_return_date"`
	RenewalCount  int             `db:"transaction_renewal_count"`
	FineAmount    decimal.Decimal `db:"transaction_fine_amount"`
}

type fineExportRow struct {
	FineID     string          `db:"fine_id"`
	MemberCode string          `db:"member_code"`
	Type       string          `db:"fine_type"`
	Status     string          `db:"fine_status"`
	Amount     decimal.Decimal `db:"fine_amount"`
	PaidAmount decimal.Decimal `db:"fine_paid_amount"`
	CreatedAt  time.Time       `db:"fine_created_at"`
	PaidAt     *time.Time      `db:"fine_paid_at"`
	WaivedAt   *time.Time      `db:"fine_waived_at"`
}

// ExportCSV writes loans issued, or fines raised, within r as CSV.
func (s *ReportService) ExportCSV(ctx context.Context, kind string, r dto.DateRange, w io.Writer) error {
	if err := dto.ValidateExportKind(kind); err != nil {
		return err
	}
	db, err := s.database()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)

	switch kind {
	case dto.ExportTransactions:
		var rows []transactionExportRow
		if err := db.From("transactions").
			Select(
				"transactions.transaction_id",
				"books.book_isbn",
				"books.book_title",
				"members.member_code",
				"transactions.transaction_status",
				"transactions.transaction_issue_date",
				"transactions.transaction_due_date",
				"transactions.transaction_return_date",
				"transactions.transaction_renewal_count",
				"transactions.transaction_fine_amount",
			).
			Join(goqu.T("books"), goqu.On(goqu.I("books.book_id").Eq(goqu.I("transactions.transaction_book_id")))).
			Join(goqu.T("members"), goqu.On(goqu.I("members.member_id").Eq(goqu.I("transactions.transaction_member_id")))).
			Where(
				goqu.I("transactions.transaction_issue_date").Gte(r.From),
				goqu.I("transactions.transaction_issue_date").Lt(r.To),
			).
			Order(goqu.I("transactions.transaction_issue_date").Asc(), goqu.I("transactions.transaction_id").Asc()).
			Prepared(true).
			ScanStructsContext(ctx, &rows); err != nil {
			return fmt.Errorf("export transactions: %w", err)
		}
		_ = cw.Write([]string{"transaction_id", "isbn", "title", "member_code", "status",
			"issue_date", "due_date", "return_date", "renewals", "fine_amount"})
		for _, row := range rows {
			_ = cw.Write([]string{
				row.TransactionID, row.BookISBN, row.BookTitle, row.MemberCode, row.Status,
				stamp(&row.IssueDate), stamp(&row.DueDate), stamp(row.ReturnDate),
				strconv.Itoa(row.RenewalCount), row.FineAmount.StringFixed(2),
			})
		}

	case dto.ExportFines:
		var rows []fineExportRow
		if err := db.From("fines").
			Select(
				"fines.fine_id",
				"members.member_code",
				"fines.fine_type",
				"fines.fine_status",
				"fines.fine_amount",
				"fines.fine_paid_amount",
				"fines.fine_created_at",
				"fines.fine_paid_at",
				"fines.fine_waived_at",
			).
			Join(goqu.T("members"), goqu.On(goqu.I("members.member_id").Eq(goqu.I("fines.fine_member_id")))).
			Where(
				goqu.I("fines.fine_created_at").Gte(r.From),
				goqu.I("fines.fine_created_at").Lt(r.To),
			).
			Order(goqu.I("fines.fine_created_at").Asc(), goqu.I("fines.fine_id").Asc()).
			Prepared(true).
			ScanStructsContext(ctx, &rows); err != nil {
			return fmt.Errorf("export fines: %w", err)
		}
		_ = cw.Write([]string{"fine_id", "member_code", "type", "status",
			"amount", "paid_amount", "created_at", "paid_at", "waived_at"})
		for _, row := range rows {
			_ = cw.Write([]string{
				row.FineID, row.MemberCode, row.Type, row.Status,
				row.Amount.StringFixed(2), row.PaidAmount.StringFixed(2),
				stamp(&row.CreatedAt), stamp(row.PaidAt), stamp(row.WaivedAt),
			})
		}
	}

	cw.Flush()
	return cw.Error()
}

func stamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
