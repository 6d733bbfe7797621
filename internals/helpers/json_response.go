package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the failure envelope. Errors is only set for validation failures.
type ErrorResponse struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
}

var errorCodes = map[int]string{
	fiber.StatusBadRequest:          "BAD_REQUEST",
	fiber.StatusUnauthorized:        "UNAUTHORIZED",
	fiber.StatusForbidden:           "FORBIDDEN",
	fiber.StatusNotFound:            "NOT_FOUND",
	fiber.StatusConflict:            "CONFLICT",
	fiber.StatusUnprocessableEntity: "INVALID_STATE",
	fiber.StatusTooManyRequests:     "TOO_MANY_REQUESTS",
}

// statusToErrorCode picks the machine-readable code for a status without one.
func statusToErrorCode(status int) string {
	if code, ok := errorCodes[status]; ok {
		return code
	}
	if status >= 500 {
		return "INTERNAL_ERROR"
	}
	return "ERROR"
}

// JsonError answers with the standard failure envelope; the error code follows status.
func JsonError(c *fiber.Ctx, status int, message string) error {
	return JsonErrorCode(c, status, "", message)
}

// JsonErrorCode answers with an explicit machine-readable code such as
// LIMIT_EXCEEDED. An empty code is derived from status, and a 5xx with no
// message gets the generic internal error text.
func JsonErrorCode(c *fiber.Ctx, status int, code, message string) error {
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	if status >= 500 && strings.TrimSpace(message) == "" {
		message = fiber.ErrInternalServerError.Message
	}
	if code == "" {
		code = statusToErrorCode(status)
	}
	return c.Status(status).JSON(ErrorResponse{Message: message, ErrorCode: code})
}

// JsonValidationError answers 400 with a field → messages map under "errors".
func JsonValidationError(c *fiber.Ctx, fieldErrors map[string][]string) error {
	if fieldErrors == nil {
		fieldErrors = map[string][]string{}
	}
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Message:   "validation failed",
		ErrorCode: "VALIDATION_ERROR",
		Errors:    fieldErrors,
	})
}

// success writes {success:true, message, data} plus any extra top-level keys.
func success(c *fiber.Ctx, status int, message, fallback string, data any, extra fiber.Map) error {
	if strings.TrimSpace(message) == "" {
		message = fallback
	}
	body := fiber.Map{"success": true, "message": message, "data": data}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// JsonList answers 200 with data plus a "pagination" block for list endpoints.
func JsonList(c *fiber.Ctx, message string, data any, pagination Pagination) error {
	return success(c, fiber.StatusOK, message, "ok", data, fiber.Map{"pagination": pagination})
}

// JsonOK answers 200 for reads and actions; message falls back to "ok".
func JsonOK(c *fiber.Ctx, message string, data any) error {
	return success(c, fiber.StatusOK, message, "ok", data, nil)
}

// JsonCreated answers 201 after a POST creates a resource.
func JsonCreated(c *fiber.Ctx, message string, data any) error {
	return success(c, fiber.StatusCreated, message, "created", data, nil)
}

// JsonUpdated answers 200 after a PUT/PATCH changes a resource.
func JsonUpdated(c *fiber.Ctx, message string, data any) error {
	return success(c, fiber.StatusOK, message, "updated", data, nil)
}

// JsonDeleted answers 200 after a DELETE (soft deletes included).
func JsonDeleted(c *fiber.Ctx, message string, data any) error {
	return success(c, fiber.StatusOK, message, "deleted", data, nil)
}
