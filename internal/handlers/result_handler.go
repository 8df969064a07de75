package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"prasetya/candidate-evaluator/internal/services"
)

type ResultHandler struct {
	jobs services.JobService
}

func NewResultHandler(jobs services.JobService) *ResultHandler {
	return &ResultHandler{jobs: jobs}
}

// HandleGetResult handles GET /result/:id.
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id must be a valid UUID",
		})
	}

	resp, err := h.jobs.GetJobStatus(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}
