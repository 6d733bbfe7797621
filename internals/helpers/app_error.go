package helper

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"library_backend/internals/helpers/apperror"
)

// JsonAppError renders any service error with the standard envelope.
// Domain kinds map to fixed statuses; *fiber.Error keeps its own code;
// everything else is logged and answered with 500.
func JsonAppError(c *fiber.Ctx, err error) error {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperror.KindNotFound:
			return JsonErrorCode(c, fiber.StatusNotFound, "NOT_FOUND", ae.Message)
		case apperror.KindInvalidState:
			return JsonErrorCode(c, fiber.StatusUnprocessableEntity, "INVALID_STATE", ae.Message)
		case apperror.KindConflict:
			return JsonErrorCode(c, fiber.StatusConflict, "CONFLICT", ae.Message)
		case apperror.KindLimitExceeded:
			return JsonErrorCode(c, fiber.StatusUnprocessableEntity, "LIMIT_EXCEEDED", ae.Message)
		case apperror.KindValidation:
			return JsonValidationError(c, ae.Fields)
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}

	log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	return JsonError(c, fiber.StatusInternalServerError, "internal server error")
}
