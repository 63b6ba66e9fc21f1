// internal/domain/upload/entity.go
package upload

import (
	"errors"

	"github.com/dustin/go-humanize"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidDataURI  = errors.New("invalid data URI")
)

// StoredFile describes a saved attachment such as a payment proof
type StoredFile struct {
	Filename string `json:"filename"`
	Path     string `json:"-"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// GetFormattedSize returns human-readable file size
func (f *StoredFile) GetFormattedSize() string {
	return humanize.IBytes(uint64(f.Size))
}

// IsImage checks if the file is an image
func (f *StoredFile) IsImage() bool {
	switch f.MimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
