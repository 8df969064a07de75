package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"prasetya/candidate-evaluator/internal/apperrors"
	"prasetya/candidate-evaluator/internal/models"
	"prasetya/candidate-evaluator/internal/repositories"
)

// BlobStorage is the narrow contract against the object-storage
// provider. The production deployment points this at a bucket; the
// local implementation below keeps blobs on disk under one root.
type BlobStorage interface {
	Upload(path string, data []byte, contentType string) (string, error)
	Download(path string) ([]byte, error)
	Remove(path string) error
}

type localBlobStorage struct {
	basePath string
}

func NewLocalBlobStorage(basePath string) (BlobStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &localBlobStorage{basePath: basePath}, nil
}

func (s *localBlobStorage) Upload(path string, data []byte, contentType string) (string, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return path, nil
}

func (s *localBlobStorage) Download(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.basePath, filepath.FromSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

func (s *localBlobStorage) Remove(path string) error {
	if err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(path))); err != nil {
		return fmt.Errorf("failed to remove blob: %w", err)
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFilename replaces every character outside [a-zA-Z0-9.-]
// so uploaded names are safe inside storage paths.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

type DocumentStorageService interface {
	// UploadDocument writes the blob, then inserts the metadata row.
	// A metadata insert failure leaves the blob in place; that
	// inconsistency is accepted rather than attempting a rollback.
	UploadDocument(ctx context.Context, file *multipart.FileHeader, fileType string) (*models.Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error)
	GetStoragePath(ctx context.Context, id uuid.UUID) (string, error)
	// DownloadToTempFile materializes the blob as an ephemeral local
	// file. The caller owns the handle and must DeleteTempFile it on
	// every exit path.
	DownloadToTempFile(storagePath string) (string, error)
	DeleteTempFile(path string)
	DeleteDocument(storagePath string)
}

type documentStorageService struct {
	blobs   BlobStorage
	docRepo repositories.DocumentRepository
}

func NewDocumentStorageService(blobs BlobStorage, docRepo repositories.DocumentRepository) DocumentStorageService {
	return &documentStorageService{
		blobs:   blobs,
		docRepo: docRepo,
	}
}

// UploadDocument implements DocumentStorageService.
func (s *documentStorageService) UploadDocument(ctx context.Context, file *multipart.FileHeader, fileType string) (*models.Document, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open uploaded file: %v", apperrors.ErrStorageRead, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read uploaded file: %v", apperrors.ErrStorageRead, err)
	}

	docID := uuid.New()
	sanitized := SanitizeFilename(file.Filename)
	contentType := file.Header.Get("Content-Type")
	storagePath := fmt.Sprintf("%s/%s-%d-%s", docID, fileType, time.Now().UnixMilli(), sanitized)

	storedPath, err := s.blobs.Upload(storagePath, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageWrite, err)
	}

	doc := &models.Document{
		ID:          docID,
		FileName:    sanitized,
		FileType:    fileType,
		StoragePath: storedPath,
		FileSize:    file.Size,
		MimeType:    contentType,
		Metadata: models.JSONMap{
			"original_name": file.Filename,
			"uploaded_at":   time.Now().UTC().Format(time.RFC3339),
		},
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		// The blob stays behind; cleanup here would race the write
		// and deletion is advisory anyway.
		log.Printf("⚠️  Document metadata insert failed, blob left at %s: %v\n", storedPath, err)
		return nil, err
	}

	log.Printf("📄 Document %s uploaded (%s, %d bytes)\n", docID, fileType, file.Size)
	return doc, nil
}

// GetDocument implements DocumentStorageService.
func (s *documentStorageService) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	return s.docRepo.FindByID(ctx, id)
}

// GetStoragePath implements DocumentStorageService.
func (s *documentStorageService) GetStoragePath(ctx context.Context, id uuid.UUID) (string, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return doc.StoragePath, nil
}

// DownloadToTempFile implements DocumentStorageService.
func (s *documentStorageService) DownloadToTempFile(storagePath string) (string, error) {
	data, err := s.blobs.Download(storagePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrStorageRead, err)
	}

	tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("eval-%d-%s", time.Now().UnixMilli(), filepath.Base(storagePath)))
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return "", fmt.Errorf("%w: failed to write temp file: %v", apperrors.ErrStorageWrite, err)
	}

	return tempPath, nil
}

// DeleteTempFile implements DocumentStorageService. Deleting an
// already-deleted path is a no-op; failures are logged, never escalated.
func (s *documentStorageService) DeleteTempFile(path string) {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return
		}
		log.Printf("⚠️  Failed to delete temp file %s: %v\n", path, err)
	}
}

// DeleteDocument implements DocumentStorageService. Removal is
// advisory cleanup; provider errors are logged and swallowed.
func (s *documentStorageService) DeleteDocument(storagePath string) {
	if err := s.blobs.Remove(storagePath); err != nil {
		log.Printf("⚠️  Failed to delete document blob %s: %v\n", storagePath, err)
		return
	}
	log.Printf("🗑️  Document blob deleted: %s\n", storagePath)
}
