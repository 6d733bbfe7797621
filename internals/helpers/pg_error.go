package helper

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"library_backend/internals/helpers/apperror"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// pgCode extracts the SQLSTATE from pgx or lib/pq errors.
func pgCode(err error) string {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsUniqueViolation reports duplicate-key failures from any supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return pgCode(err) == pgUniqueViolation
}

// MapDBError converts storage failures into the domain taxonomy.
// conflictMsg is used for unique violations; unknown errors pass through.
func MapDBError(err error, notFoundMsg, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && notFoundMsg != "" {
		return apperror.NotFound("%s", notFoundMsg)
	}
	if IsUniqueViolation(err) && conflictMsg != "" {
		return apperror.Conflict("%s", conflictMsg)
	}
	switch pgCode(err) {
	case pgForeignKeyViolation:
		return apperror.Validation(map[string][]string{"reference": {"referenced record does not exist"}})
	case pgCheckViolation:
		return apperror.InvalidState("operation violates a storage constraint")
	}
	return err
}
