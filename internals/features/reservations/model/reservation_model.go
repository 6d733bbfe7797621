package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReservationStatusActive    = "active"
	ReservationStatusFulfilled = "fulfilled"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusExpired   = "expired"
)

// Queue order is derived on read from (reservation_date, reservation_id); no rank is stored.
type ReservationModel struct {
	ReservationID         uuid.UUID `gorm:"column:reservation_id;type:uuid;primaryKey" json:"id"`
	ReservationBookID     uuid.UUID `gorm:"column:reservation_book_id;type:uuid;not null;index:idx_reservations_book_queue,priority:1" json:"bookId"`
	ReservationMemberID   uuid.UUID `gorm:"column:reservation_member_id;type:uuid;not null;index" json:"memberId"`
	ReservationDate       time.Time `gorm:"column:reservation_date;not null;index:idx_reservations_book_queue,priority:2" json:"reservationDate"`
	ReservationExpiryDate time.Time `gorm:"column:reservation_expiry_date;not null;index" json:"expiryDate"`
	ReservationStatus     string    `gorm:"column:reservation_status;type:varchar(20);not null;default:'active';index" json:"status"`
	ReservationUpdatedAt  time.Time `gorm:"column:reservation_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (ReservationModel) TableName() string { return "reservations" }

func (r *ReservationModel) BeforeCreate(tx *gorm.DB) error {
	if r.ReservationID == uuid.Nil {
		r.ReservationID = uuid.New()
	}
	return nil
}
