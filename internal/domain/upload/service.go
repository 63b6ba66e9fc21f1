// internal/domain/upload/service.go
package upload

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/your-org/solar-storefront/internal/config"
)

// Service stores image attachments on local disk
type Service struct {
	config *config.Config
}

// NewService creates a new upload service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// SaveImage validates data as an allowed image and writes it under category
// with a random filename. The returned URL is served by the /uploads route.
func (s *Service) SaveImage(ctx context.Context, category string, data []byte) (*StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mimeType, ext, err := s.validateImage(data)
	if err != nil {
		return nil, err
	}

	if category == "" {
		category = "general"
	}
	filename := uuid.NewString() + ext
	relativePath := filepath.Join(category, filename)
	fullPath := filepath.Join(s.config.Storage.LocalPath, relativePath)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &StoredFile{
		Filename: filename,
		Path:     fullPath,
		URL:      s.getFileURL(category, filename),
		MimeType: mimeType,
		Size:     int64(len(data)),
	}, nil
}

// SaveDataURI decodes a data URI and saves it as an image
func (s *Service) SaveDataURI(ctx context.Context, category, uri string) (*StoredFile, error) {
	_, data, err := DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	return s.SaveImage(ctx, category, data)
}

// Remove deletes a previously stored file. A file that is already gone is
// not an error.
func (s *Service) Remove(_ context.Context, file *StoredFile) error {
	if file == nil || file.Path == "" {
		return nil
	}
	if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// validateImage checks size and sniffed content type, ignoring whatever type
// the client declared.
func (s *Service) validateImage(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", ErrEmptyFile
	}
	if limit := s.config.Upload.MaxSize; limit > 0 && int64(len(data)) > limit {
		return "", "", ErrFileTooLarge
	}

	detected := mimetype.Detect(data)
	for _, allowed := range s.config.Upload.AllowedMIMETypes {
		if detected.Is(allowed) {
			return allowed, detected.Extension(), nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, detected.String())
}

func (s *Service) getFileURL(category, filename string) string {
	base := strings.TrimRight(s.config.App.PublicURL, "/")
	return base + path.Join(s.config.Storage.PublicPath, category, filename)
}
