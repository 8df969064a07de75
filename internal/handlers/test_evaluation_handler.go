package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"prasetya/candidate-evaluator/internal/models"
	"prasetya/candidate-evaluator/internal/services"
)

// TestEvaluationHandler scores a single document synchronously,
// bypassing the job pipeline. Useful for tuning prompts and rubrics
// without waiting on the queue.
type TestEvaluationHandler struct {
	scorer services.ScoringService
}

func NewTestEvaluationHandler(scorer services.ScoringService) *TestEvaluationHandler {
	return &TestEvaluationHandler{scorer: scorer}
}

// HandleTestCV handles POST /test/cv.
func (h *TestEvaluationHandler) HandleTestCV(c *fiber.Ctx) error {
	docID, jobTitle, ok := h.parseRequest(c)
	if !ok {
		return nil
	}

	result, err := h.scorer.ScoreCV(c.Context(), docID, jobTitle, uuid.Nil)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// HandleTestProject handles POST /test/project.
func (h *TestEvaluationHandler) HandleTestProject(c *fiber.Ctx) error {
	docID, jobTitle, ok := h.parseRequest(c)
	if !ok {
		return nil
	}

	result, err := h.scorer.ScoreProject(c.Context(), docID, jobTitle, uuid.Nil)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// parseRequest validates the shared request shape. When ok is false
// the 400 response has already been written.
func (h *TestEvaluationHandler) parseRequest(c *fiber.Ctx) (uuid.UUID, string, bool) {
	var req models.TestEvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
		return uuid.Nil, "", false
	}

	if strings.TrimSpace(req.JobTitle) == "" {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_title is required",
		})
		return uuid.Nil, "", false
	}

	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document_id must be a valid UUID",
		})
		return uuid.Nil, "", false
	}

	return docID, req.JobTitle, true
}
