// Package ttlstore is a small expiring key-value store. Entries past their
// expiry are invisible to readers and removed for good by Purge.
package ttlstore

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("ttlstore: key not found")

type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	// Take returns the value and deletes the key in one step.
	Take(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// Purge drops expired entries and returns how many were removed.
	Purge(ctx context.Context) (int64, error)
}
