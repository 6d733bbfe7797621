package ttlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Entry struct {
	TTLEntryKey       string    `gorm:"column:ttl_entry_key;type:varchar(200);primaryKey" json:"key"`
	TTLEntryValue     string    `gorm:"column:ttl_entry_value;type:text;not null" json:"value"`
	TTLEntryExpiresAt time.Time `gorm:"column:ttl_entry_expires_at;not null;index" json:"expires_at"`
	TTLEntryCreatedAt time.Time `gorm:"column:ttl_entry_created_at;autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "ttl_entries" }

// GormStore keeps entries in the ttl_entries table.
type GormStore struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db, Now: time.Now}
}

func (s *GormStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *GormStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttlstore: ttl must be positive")
	}
	e := Entry{
		TTLEntryKey:       key,
		TTLEntryValue:     value,
		TTLEntryExpiresAt: s.now().Add(ttl),
		TTLEntryCreatedAt: s.now(),
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ttl_entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"ttl_entry_value", "ttl_entry_expires_at"}),
	}).Create(&e).Error
}

func (s *GormStore) Get(ctx context.Context, key string) (string, error) {
	var e Entry
	err := s.DB.WithContext(ctx).
		Where("ttl_entry_key = ? AND ttl_entry_expires_at > ?", key, s.now()).
		Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return e.TTLEntryValue, nil
}

// Take deletes with a conditional DELETE so concurrent callers cannot both win.
func (s *GormStore) Take(ctx context.Context, key string) (string, error) {
	var value string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e Entry
		if err := tx.Where("ttl_entry_key = ? AND ttl_entry_expires_at > ?", key, s.now()).
			Take(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		res := tx.Where("ttl_entry_key = ?", key).Delete(&Entry{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		value = e.TTLEntryValue
		return nil
	})
	return value, err
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.DB.WithContext(ctx).Where("ttl_entry_key = ?", key).Delete(&Entry{}).Error
}

func (s *GormStore) Purge(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("ttl_entry_expires_at <= ?", s.now()).
		Delete(&Entry{})
	return res.RowsAffected, res.Error
}
