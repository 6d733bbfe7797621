package helper

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"library_backend/internals/helpers/apperror"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func v() *validator.Validate {
	validateOnce.Do(func() { validate = validator.New() })
	return validate
}

// FieldErrors accumulates per-field messages while a DTO checks itself field by field.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Check runs a validator rule against a single value and records msg on failure.
func (fe FieldErrors) Check(field string, value any, rule, msg string) {
	if err := v().Var(value, rule); err != nil {
		fe.Add(field, msg)
	}
}

func (fe FieldErrors) RequireUUID(field string, id uuid.UUID) {
	if id == uuid.Nil {
		fe.Add(field, "is required")
	}
}

func (fe FieldErrors) RequireText(field, value string, max int) {
	value = strings.TrimSpace(value)
	if value == "" {
		fe.Add(field, "is required")
		return
	}
	if max > 0 && len(value) > max {
		fe.Add(field, "is too long")
	}
}

// Err returns nil when nothing was recorded.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return apperror.Validation(fe)
}

func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
