package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"prasetya/candidate-evaluator/internal/apperrors"
)

// NewErrorHandler maps any uncaught error to the uniform envelope
// {message, data:{status_code, timestamp, path, stack?}}. The cause
// chain is exposed only outside production.
func NewErrorHandler(env string) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := apperrors.StatusCode(err)

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}

		data := fiber.Map{
			"status_code": code,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"path":        c.Path(),
		}
		if env != "production" {
			data["stack"] = fmt.Sprintf("%+v", err)
		}

		return c.Status(code).JSON(fiber.Map{
			"message": err.Error(),
			"data":    data,
		})
	}
}
