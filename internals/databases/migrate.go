package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	authModel "library_backend/internals/features/auth/model"
	bookModel "library_backend/internals/features/catalog/books/model"
	fineModel "library_backend/internals/features/fines/model"
	memberModel "library_backend/internals/features/members/model"
	reservationModel "library_backend/internals/features/reservations/model"
	settingModel "library_backend/internals/features/settings/model"
	transactionModel "library_backend/internals/features/transactions/model"
	"library_backend/internals/helpers/ttlstore"
)

// Partial indexes gorm tags cannot express. Both postgres and sqlite accept this syntax.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_reservations_active_member_book
		ON reservations (reservation_book_id, reservation_member_id)
		WHERE reservation_status = 'active'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_transactions_open_member_book
		ON transactions (transaction_book_id, transaction_member_id)
		WHERE transaction_status = 'issued'`,
}

// Migrate creates or updates every table the backend owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&authModel.UserModel{},
		&settingModel.SystemSetting{},
		&bookModel.BookModel{},
		&memberModel.MemberModel{},
		&reservationModel.ReservationModel{},
		&transactionModel.TransactionModel{},
		&fineModel.FineModel{},
		&ttlstore.Entry{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	log.Println("[DB] migrations applied")
	return nil
}
