package dto

import (
	"github.com/google/uuid"

	"library_backend/internals/features/reservations/model"
	helper "library_backend/internals/helpers"
)

// CreateReservationRequest: members reserve for themselves; staff must name the member.
type CreateReservationRequest struct {
	BookID   uuid.UUID  `json:"bookId"`
	MemberID *uuid.UUID `json:"memberId"`
}

func (r CreateReservationRequest) Validate(staff bool) error {
	fe := helper.FieldErrors{}
	fe.RequireUUID("bookId", r.BookID)
	if staff && (r.MemberID == nil || *r.MemberID == uuid.Nil) {
		fe.Add("memberId", "is required when reserving on behalf of a member")
	}
	return fe.Err()
}

// QueueEntry is an active reservation with its 1-based place in line.
type QueueEntry struct {
	model.ReservationModel
	QueuePosition int `json:"queuePosition"`
}

func ToQueue(rows []model.ReservationModel) []QueueEntry {
	out := make([]QueueEntry, 0, len(rows))
	for i, r := range rows {
		out = append(out, QueueEntry{ReservationModel: r, QueuePosition: i + 1})
	}
	return out
}

type ExpireResult struct {
	ExpiredCount int64 `json:"expiredCount"`
}
