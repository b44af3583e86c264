package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/medrecords/internal/types"
)

func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}

// StatusOf maps an error class to its HTTP status and type suffix
func StatusOf(err error) (int, string) {
	var custom *types.CustomError
	if errors.As(err, &custom) {
		return custom.Code, custom.Type
	}

	switch {
	case types.NotFound.Has(err):
		return fiber.StatusNotFound, "not_found"
	case types.Forbidden.Has(err):
		return fiber.StatusForbidden, "forbidden"
	case types.Validation.Has(err):
		return fiber.StatusBadRequest, "validation"
	case types.Integrity.Has(err):
		return fiber.StatusConflict, "integrity"
	case types.Unauthorized.Has(err):
		return fiber.StatusUnauthorized, "unauthorized"
	case types.Storage.Has(err):
		return fiber.StatusInternalServerError, "storage"
	}
	return fiber.StatusInternalServerError, "internal"
}

// ServiceErrorResponse renders a service error in the error envelope. Internal
// errors never expose their message.
func ServiceErrorResponse(c *fiber.Ctx, err error, area string) error {
	status, kind := StatusOf(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "Internal server error"
	}
	return ErrorResponse(c, message, status, area+"."+kind)
}

// MutationResponse acknowledges a create, update or delete
func MutationResponse(c *fiber.Ctx, status int, id, detail string) error {
	return c.Status(status).JSON(fiber.Map{
		"id":        id,
		"detail":    detail,
		"ok":        true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}

type MutationResponseStruct struct {
	ID        string `json:"id"`
	Detail    string `json:"detail"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
}
