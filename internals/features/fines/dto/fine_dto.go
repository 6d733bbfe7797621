package dto

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library_backend/internals/features/fines/model"
	helper "library_backend/internals/helpers"
)

// CreateFineRequest records a manual charge (lost, damage, membership, no-show).
type CreateFineRequest struct {
	MemberID      uuid.UUID       `json:"memberId"`
	FineType      string          `json:"fineType"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID *uuid.UUID      `json:"transactionId"`
	ReservationID *uuid.UUID      `json:"reservationId"`
	Notes         *string         `json:"notes"`
}

func (r *CreateFineRequest) Normalize() {
	r.FineType = strings.ToLower(strings.TrimSpace(r.FineType))
	r.Notes = helper.TrimPtr(r.Notes)
}

func (r CreateFineRequest) Validate() error {
	fe := helper.FieldErrors{}
	fe.RequireUUID("memberId", r.MemberID)
	switch {
	case r.FineType == model.FineTypeOverdue:
		fe.Add("fineType", "overdue fines are computed when a loan is returned")
	case !model.IsValidFineType(r.FineType):
		fe.Add("fineType", "must be one of lost, damage, membership, reservation_noshow")
	}
	if !r.Amount.IsPositive() {
		fe.Add("amount", "must be greater than zero")
	}
	if r.Notes != nil {
		fe.Check("notes", *r.Notes, "max=500", "is too long")
	}
	return fe.Err()
}

type PayFineRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type WaiveFineRequest struct {
	Notes *string `json:"notes"`
}

type ListFinesQuery struct {
	Status string
}

func (q ListFinesQuery) Validate() error {
	fe := helper.FieldErrors{}
	switch strings.TrimSpace(q.Status) {
	case "", model.FineStatusPending, model.FineStatusPaid, model.FineStatusWaived:
	default:
		fe.Add("status", "must be one of pending, paid, waived")
	}
	return fe.Err()
}

type CheckoutResponse struct {
	FineID      uuid.UUID       `json:"fineId"`
	OrderID     string          `json:"orderId"`
	Amount      decimal.Decimal `json:"amount"`
	Token       string          `json:"token"`
	RedirectURL string          `json:"redirectUrl"`
}

// GatewayNotification is the Midtrans HTTP notification payload.
type GatewayNotification struct {
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
}

// Settled reports whether the notification confirms the money arrived.
func (n GatewayNotification) Settled() bool {
	switch n.TransactionStatus {
	case "settlement":
		return true
	case "capture":
		return n.FraudStatus == "" || n.FraudStatus == "accept"
	}
	return false
}
