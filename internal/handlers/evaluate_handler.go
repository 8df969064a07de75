package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"prasetya/candidate-evaluator/internal/models"
	"prasetya/candidate-evaluator/internal/services"
)

type EvaluateHandler struct {
	storage services.DocumentStorageService
	jobs    services.JobService
}

func NewEvaluateHandler(storage services.DocumentStorageService, jobs services.JobService) *EvaluateHandler {
	return &EvaluateHandler{
		storage: storage,
		jobs:    jobs,
	}
}

// HandleEvaluate handles POST /evaluate: validates the referenced
// documents and enqueues an evaluation job.
func (h *EvaluateHandler) HandleEvaluate(c *fiber.Ctx) error {
	var req models.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if strings.TrimSpace(req.JobTitle) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_title is required",
		})
	}

	cvID, err := uuid.Parse(req.CVDocumentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "cv_document_id must be a valid UUID",
		})
	}

	projectID, err := uuid.Parse(req.ProjectDocumentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "project_document_id must be a valid UUID",
		})
	}

	cvDoc, err := h.storage.GetDocument(c.Context(), cvID)
	if err != nil {
		return err
	}
	if cvDoc.FileType != models.DocumentTypeCV {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("document %s is not a cv", cvID),
		})
	}

	projectDoc, err := h.storage.GetDocument(c.Context(), projectID)
	if err != nil {
		return err
	}
	if projectDoc.FileType != models.DocumentTypeProject {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("document %s is not a project report", projectID),
		})
	}

	resp, err := h.jobs.CreateAndQueueJob(c.Context(), cvID, projectID, req.JobTitle)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(resp)
}
