package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	authModel "library_backend/internals/features/auth/model"
	bookModel "library_backend/internals/features/catalog/books/model"
	memberModel "library_backend/internals/features/members/model"
	seedSettings "library_backend/internals/seeds/settings"
)

// SeedPolicies inserts the default loan policy for every member type.
func SeedPolicies(t testing.TB, db *gorm.DB) {
	t.Helper()
	require.NoError(t, seedSettings.SeedDefaultSettings(db))
}

func NewUser(t testing.TB, db *gorm.DB, role string) *authModel.UserModel {
	t.Helper()
	id := uuid.New()
	u := &authModel.UserModel{
		ID:       id,
		Email:    fmt.Sprintf("%s@example.test", id.String()[:8]),
		FullName: "Test " + role,
		Password: "x",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// NewMember creates a user with role member plus its membership row.
func NewMember(t testing.TB, db *gorm.DB, memberType, status string) *memberModel.MemberModel {
	t.Helper()
	u := NewUser(t, db, "member")
	m := &memberModel.MemberModel{
		MemberUserID:           u.ID,
		MemberCode:             "T-" + u.ID.String()[:12],
		MemberType:             memberType,
		MemberStatus:           status,
		MemberOutstandingFines: decimal.Zero,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

// NewBook creates a book with the given copy counts.
func NewBook(t testing.TB, db *gorm.DB, total, available int) *bookModel.BookModel {
	t.Helper()
	id := uuid.New()
	b := &bookModel.BookModel{
		BookID:              id,
		BookISBN:            "T" + id.String()[:8] + "0",
		BookTitle:           "Book " + id.String()[:6],
		BookAuthor:          "Author",
		BookTotalCopies:     total,
		BookAvailableCopies: available,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}
