package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/localnerve/medrecords/internal/utils"
)

// ErrorHandler renders errors that reach fiber in the error envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	errorType := "unknown"

	var custom *types.CustomError
	var fe *fiber.Error
	switch {
	case errors.As(err, &custom):
		code, message, errorType = custom.Code, custom.Message, custom.Type
	case errors.As(err, &fe):
		code, message = fe.Code, fe.Message
	default:
		if status, kind := utils.StatusOf(err); status != fiber.StatusInternalServerError {
			code, message, errorType = status, err.Error(), kind
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"status":       code,
		"message":      message,
		"ok":           false,
		"versionError": errorType == "version",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"url":          c.OriginalURL(),
		"type":         errorType,
	})
}

// NotFound answers routes that do not exist
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "[404] Resource Not Found")
}
