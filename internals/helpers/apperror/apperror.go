// Package apperror carries the domain failure taxonomy shared by every service.
// Services return these; only controllers translate them into HTTP statuses.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindInvalidState  Kind = "invalid_state"
	KindConflict      Kind = "conflict"
	KindLimitExceeded Kind = "limit_exceeded"
	KindValidation    Kind = "validation"
)

type Error struct {
	Kind    Kind
	Message string
	// Fields is only set for KindValidation.
	Fields map[string][]string
}

func (e *Error) Error() string {
	if e.Kind == KindValidation && len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
		}
		return e.Message + " (" + strings.Join(parts, "; ") + ")"
	}
	return e.Message
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error { return newf(KindNotFound, format, args...) }

func InvalidState(format string, args ...any) *Error {
	return newf(KindInvalidState, format, args...)
}

func Conflict(format string, args ...any) *Error { return newf(KindConflict, format, args...) }

func LimitExceeded(format string, args ...any) *Error {
	return newf(KindLimitExceeded, format, args...)
}

// Validation builds a validation error from a field → messages map.
func Validation(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool { return err != nil && KindOf(err) == kind }
