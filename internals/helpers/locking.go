package helper

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate adds SELECT ... FOR UPDATE on dialects that support row locks.
// SQLite serializes writers itself and rejects the clause.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector != nil && tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

