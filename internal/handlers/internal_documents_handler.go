package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"prasetya/candidate-evaluator/internal/models"
	"prasetya/candidate-evaluator/internal/services"
)

// InternalDocumentsHandler manages the reference corpus behind
// retrieval: rubrics, job descriptions and the case study brief.
type InternalDocumentsHandler struct {
	knowledge services.KnowledgeService
}

func NewInternalDocumentsHandler(knowledge services.KnowledgeService) *InternalDocumentsHandler {
	return &InternalDocumentsHandler{knowledge: knowledge}
}

func validDocumentType(t string) bool {
	switch t {
	case services.DocTypeScoringRubric, services.DocTypeJobDescription, services.DocTypeCaseStudyBrief:
		return true
	}
	return false
}

// HandleUpload handles POST /internal-documents/upload: chunks, embeds
// and indexes one reference PDF.
func (h *InternalDocumentsHandler) HandleUpload(c *fiber.Ctx) error {
	docType := c.FormValue("document_type")
	if !validDocumentType(docType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("document_type must be one of: %s, %s, %s",
				services.DocTypeScoringRubric, services.DocTypeJobDescription, services.DocTypeCaseStudyBrief),
		})
	}

	file, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document is required",
		})
	}

	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".pdf" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("invalid file extension: %s", ext),
		})
	}

	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("ingest-%d-%s", time.Now().UnixMilli(), filepath.Base(file.Filename)))
	if err := c.SaveFile(file, tmpPath); err != nil {
		return fmt.Errorf("failed to save uploaded file: %w", err)
	}
	defer os.Remove(tmpPath)

	chunkCount, err := h.knowledge.Ingest(c.Context(), docType, tmpPath, file.Filename)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.IngestResponse{
		DocumentType: docType,
		FileName:     file.Filename,
		ChunkCount:   chunkCount,
	})
}

// HandleSearch handles GET /internal-documents/search: runs a
// similarity query against the corpus and summarizes the hits.
func (h *InternalDocumentsHandler) HandleSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query is required",
		})
	}

	filter := c.Query("filter")
	if filter != "" && !validDocumentType(filter) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("unknown filter: %s", filter),
		})
	}

	summary, err := h.knowledge.Query(c.Context(), query, filter)
	if err != nil {
		return err
	}

	return c.JSON(models.SearchResponse{
		Query:   query,
		Filter:  filter,
		Summary: summary,
	})
}
