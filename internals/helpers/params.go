package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"library_backend/internals/helpers/apperror"
)

// ParseUUIDParam reads a path parameter as UUID.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperror.Validation(map[string][]string{name: {"must be a valid UUID"}})
	}
	return id, nil
}

// BindJSON parses the request body, reporting malformed payloads as validation errors.
func BindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation(map[string][]string{"body": {"invalid JSON payload"}})
	}
	return nil
}
