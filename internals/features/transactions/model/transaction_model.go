package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransactionStatusIssued   = "issued"
	TransactionStatusReturned = "returned"
	TransactionStatusLost     = "lost"
)

type TransactionModel struct {
	TransactionID            uuid.UUID       `gorm:"column:transaction_id;type:uuid;primaryKey" json:"id"`
	TransactionBookID        uuid.UUID       `gorm:"column:transaction_book_id;type:uuid;not null;index" json:"bookId"`
	TransactionMemberID      uuid.UUID       `gorm:"column:transaction_member_id;type:uuid;not null;index" json:"memberId"`
	TransactionReservationID *uuid.UUID      `gorm:"column:transaction_reservation_id;type:uuid" json:"reservationId,omitempty"`
	TransactionIssuedBy      *uuid.UUID      `gorm:"column:transaction_issued_by;type:uuid" json:"issuedBy,omitempty"`
	TransactionIssueDate     time.Time       `gorm:"column:transaction_issue_date;not null" json:"issueDate"`
	TransactionDueDate       time.Time       `gorm:"column:transaction_due_date;not null;index" json:"dueDate"`
	TransactionReturnDate    *time.Time      `gorm:"column:transaction_return_date" json:"returnDate,omitempty"`
	TransactionRenewalCount  int             `gorm:"column:transaction_renewal_count;not null;default:0" json:"renewalCount"`
	TransactionStatus        string          `gorm:"column:transaction_status;type:varchar(20);not null;default:'issued';index" json:"status"`
	TransactionFineAmount    decimal.Decimal `gorm:"column:transaction_fine_amount;type:numeric(12,2);not null;default:0" json:"fineAmount"`
	TransactionCreatedAt     time.Time       `gorm:"column:transaction_created_at;autoCreateTime" json:"createdAt"`
	TransactionUpdatedAt     time.Time       `gorm:"column:transaction_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (TransactionModel) TableName() string { return "transactions" }

func (t *TransactionModel) BeforeCreate(tx *gorm.DB) error {
	if t.TransactionID == uuid.Nil {
		t.TransactionID = uuid.New()
	}
	return nil
}

// IsOverdue reports whether an open loan is past its due date at now.
func (t TransactionModel) IsOverdue(now time.Time) bool {
	return t.TransactionStatus == TransactionStatusIssued && now.After(t.TransactionDueDate)
}
