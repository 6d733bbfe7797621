package apperror

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_UnwrapsChain(t *testing.T) {
	base := Conflict("member already holds an active reservation for this book")
	wrapped := fmt.Errorf("create reservation: %w", base)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindConflict))
	assert.False(t, Is(wrapped, KindNotFound))
	assert.Equal(t, Kind(""), KindOf(fmt.Errorf("plain")))
	assert.False(t, Is(nil, KindConflict))
}

func TestValidationError_MessageListsFieldsSorted(t *testing.T) {
	err := Validation(map[string][]string{
		"password": {"must be at least 8 characters"},
		"email":    {"is required"},
	})

	assert.Equal(t, "validation failed (email: is required; password: must be at least 8 characters)", err.Error())
}

func TestConstructors_FormatMessage(t *testing.T) {
	err := InvalidState("Cannot cancel a reservation with status '%s'", "fulfilled")

	assert.Equal(t, KindInvalidState, err.Kind)
	assert.Equal(t, "Cannot cancel a reservation with status 'fulfilled'", err.Error())
}
