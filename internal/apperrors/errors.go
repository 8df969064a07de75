package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors for every failure class the pipeline distinguishes.
// Services wrap these with fmt.Errorf("...: %w", ...) so callers can
// classify with errors.Is while keeping the full cause chain.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrStorageWrite  = errors.New("storage write failed")
	ErrStorageRead   = errors.New("storage read failed")
	ErrPersistence   = errors.New("persistence failed")
	ErrIndexWrite    = errors.New("index write failed")
	ErrRetrieval     = errors.New("retrieval failed")
	ErrExtraction    = errors.New("extraction failed")
	ErrSummarization = errors.New("summarization failed")
	ErrScoring       = errors.New("scoring failed")
	ErrQueue         = errors.New("queue failed")
)

// StatusCode maps an error to the HTTP status it should surface as.
// Lookup and validation failures are the caller's fault; everything
// else is an upstream or internal failure.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrRetrieval), errors.Is(err, ErrSummarization),
		errors.Is(err, ErrExtraction), errors.Is(err, ErrScoring):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
