package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	FineTypeOverdue           = "overdue"
	FineTypeLost              = "lost"
	FineTypeDamage            = "damage"
	FineTypeMembership        = "membership"
	FineTypeReservationNoShow = "reservation_noshow"
)

var FineTypes = []string{
	FineTypeOverdue,
	FineTypeLost,
	FineTypeDamage,
	FineTypeMembership,
	FineTypeReservationNoShow,
}

const (
	FineStatusPending = "pending"
	FineStatusPaid    = "paid"
	FineStatusWaived  = "waived"
)

type FineModel struct {
	FineID             uuid.UUID       `gorm:"column:fine_id;type:uuid;primaryKey" json:"id"`
	FineMemberID       uuid.UUID       `gorm:"column:fine_member_id;type:uuid;not null;index" json:"memberId"`
	FineTransactionID  *uuid.UUID      `gorm:"column:fine_transaction_id;type:uuid;index" json:"transactionId,omitempty"`
	FineReservationID  *uuid.UUID      `gorm:"column:fine_reservation_id;type:uuid" json:"reservationId,omitempty"`
	FineType           string          `gorm:"column:fine_type;type:varchar(30);not null" json:"fineType"`
	FineAmount         decimal.Decimal `gorm:"column:fine_amount;type:numeric(12,2);not null" json:"amount"`
	FinePaidAmount     decimal.Decimal `gorm:"column:fine_paid_amount;type:numeric(12,2);not null;default:0" json:"paidAmount"`
	FineStatus         string          `gorm:"column:fine_status;type:varchar(20);not null;default:'pending';index" json:"status"`
	FineDetails        datatypes.JSON  `gorm:"column:fine_details" json:"details,omitempty"`
	FineNotes          *string         `gorm:"column:fine_notes" json:"notes,omitempty"`
	FineGatewayOrderID *string         `gorm:"column:fine_gateway_order_id;type:varchar(64)" json:"gatewayOrderId,omitempty"`
	FinePaidAt         *time.Time      `gorm:"column:fine_paid_at" json:"paidAt,omitempty"`
	FineWaivedAt       *time.Time      `gorm:"column:fine_waived_at" json:"waivedAt,omitempty"`
	FineWaivedBy       *uuid.UUID      `gorm:"column:fine_waived_by;type:uuid" json:"waivedBy,omitempty"`
	FineCreatedAt      time.Time       `gorm:"column:fine_created_at;autoCreateTime" json:"createdAt"`
	FineUpdatedAt      time.Time       `gorm:"column:fine_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (FineModel) TableName() string { return "fines" }

func (f *FineModel) BeforeCreate(tx *gorm.DB) error {
	if f.FineID == uuid.Nil {
		f.FineID = uuid.New()
	}
	return nil
}

// Remaining is the unpaid balance, never negative.
func (f FineModel) Remaining() decimal.Decimal {
	r := f.FineAmount.Sub(f.FinePaidAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// OverdueDetails is stored in FineDetails for overdue fines.
type OverdueDetails struct {
	DaysOverdue     int             `json:"daysOverdue"`
	GracePeriodDays int             `json:"gracePeriodDays"`
	FinePerDay      decimal.Decimal `json:"finePerDay"`
	DueDate         time.Time       `json:"dueDate"`
	ReturnedAt      time.Time       `json:"returnedAt"`
}

func IsValidFineType(t string) bool {
	for _, v := range FineTypes {
		if v == t {
			return true
		}
	}
	return false
}
