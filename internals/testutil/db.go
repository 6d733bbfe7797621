// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "library_backend/internals/databases"
)

// NewDB returns a migrated in-memory SQLite database private to t.
// A single connection is used, so code under test must run transactional
// queries on the tx handle it was given.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Clock is a settable time source for services that take a Now func.
type Clock struct {
	T time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{T: t.UTC()} }

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
