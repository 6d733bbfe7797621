package dto

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	fineModel "library_backend/internals/features/fines/model"
	reservationModel "library_backend/internals/features/reservations/model"
	"library_backend/internals/features/transactions/model"
	helper "library_backend/internals/helpers"
)

type IssueRequest struct {
	BookID        uuid.UUID  `json:"bookId"`
	MemberID      uuid.UUID  `json:"memberId"`
	ReservationID *uuid.UUID `json:"reservationId"`
}

func (r IssueRequest) Validate() error {
	fe := helper.FieldErrors{}
	fe.RequireUUID("bookId", r.BookID)
	fe.RequireUUID("memberId", r.MemberID)
	if r.ReservationID != nil && *r.ReservationID == uuid.Nil {
		fe.Add("reservationId", "must be a valid UUID")
	}
	return fe.Err()
}

type LostRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Notes  *string         `json:"notes"`
}

func (r LostRequest) Validate() error {
	fe := helper.FieldErrors{}
	if !r.Amount.IsPositive() {
		fe.Add("amount", "must be greater than zero")
	}
	return fe.Err()
}

type ListQuery struct {
	Status string
}

func (q ListQuery) Validate() error {
	fe := helper.FieldErrors{}
	switch strings.TrimSpace(q.Status) {
	case "", model.TransactionStatusIssued, model.TransactionStatusReturned, model.TransactionStatusLost:
	default:
		fe.Add("status", "must be one of issued, returned, lost")
	}
	return fe.Err()
}

type IssueResult struct {
	Transaction *model.TransactionModel            `json:"transaction"`
	Reservation *reservationModel.ReservationModel `json:"fulfilledReservation"`
}

type ReturnResult struct {
	Transaction     *model.TransactionModel            `json:"transaction"`
	Fine            *fineModel.FineModel               `json:"fine"`
	NextReservation *reservationModel.ReservationModel `json:"nextReservation"`
}

type LostResult struct {
	Transaction *model.TransactionModel `json:"transaction"`
	Fine        *fineModel.FineModel    `json:"fine"`
}
