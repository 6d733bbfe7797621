package configs

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func sqlOf(s string) func() (string, int64) {
	return func() (string, int64) { return s, 0 }
}

func TestGormLogger_RecordNotFoundIsNotAnError(t *testing.T) {
	buf := captureLog(t)
	l := NewGormLogger(gormLogger.Warn)

	l.Trace(context.Background(), time.Now(), sqlOf("SELECT 1"), gorm.ErrRecordNotFound)
	assert.NotContains(t, buf.String(), "[ERROR]")

	l.Trace(context.Background(), time.Now(), sqlOf("SELECT 2"), errors.New("connection refused"))
	assert.Contains(t, buf.String(), "[ERROR]")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestGormLogger_MissOnRealQueryStaysQuiet(t *testing.T) {
	type ttlRow struct {
		Name  string `gorm:"primaryKey"`
		Value string
	}

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: NewGormLogger(gormLogger.Warn)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ttlRow{}))

	buf := captureLog(t)
	var row ttlRow
	err = db.Where("name = ?", "blacklist:not-revoked").First(&row).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NotContains(t, buf.String(), "[ERROR]")

	err = db.Table("missing_table").Take(&row).Error
	require.Error(t, err)
	assert.Contains(t, buf.String(), "[ERROR]")
}

func TestGormLogger_SilentLogsNothing(t *testing.T) {
	buf := captureLog(t)
	l := NewGormLogger(gormLogger.Silent)
	l.Trace(context.Background(), time.Now(), sqlOf("SELECT 1"), errors.New("boom"))
	assert.Empty(t, buf.String())
}
