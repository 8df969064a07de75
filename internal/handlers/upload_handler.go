package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"prasetya/candidate-evaluator/internal/models"
	"prasetya/candidate-evaluator/internal/services"
)

type UploadHandler struct {
	storage     services.DocumentStorageService
	maxFileSize int64
}

func NewUploadHandler(storage services.DocumentStorageService, maxFileSize int64) *UploadHandler {
	return &UploadHandler{
		storage:     storage,
		maxFileSize: maxFileSize,
	}
}

// HandleUpload handles POST /upload: one PDF plus its declared type.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fileType := c.FormValue("type")
	if fileType != models.DocumentTypeCV && fileType != models.DocumentTypeProject {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be 'cv' or 'project'",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".pdf" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("invalid file extension: %s", ext),
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	doc, err := h.storage.UploadDocument(c.Context(), file, fileType)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		ID:       doc.ID.String(),
		FileName: doc.FileName,
		FileType: doc.FileType,
	})
}
