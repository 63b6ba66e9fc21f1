// internal/interfaces/http/handlers/upload.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/solar-storefront/internal/config"
	"github.com/your-org/solar-storefront/internal/domain/upload"
)

// UploadHandler handles admin image uploads
type UploadHandler struct {
	uploadService *upload.Service
	config        *config.Config
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *upload.Service, cfg *config.Config) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		config:        cfg,
	}
}

// UploadImage handles POST /admin/uploads/image
func (h *UploadHandler) UploadImage(c *gin.Context) {
	// Parse multipart form
	if err := c.Request.ParseMultipartForm(h.config.Upload.MaxSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to parse upload form",
		})
		return
	}

	// Get file from form
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No image file provided",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.config.Upload.MaxSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read image",
		})
		return
	}

	category := c.PostForm("category")
	if category == "" {
		category = "products"
	}

	stored, err := h.uploadService.SaveImage(c.Request.Context(), category, data)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrEmptyFile), errors.Is(err, upload.ErrFileTooLarge), errors.Is(err, upload.ErrUnsupportedType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Image uploaded successfully",
		"data": gin.H{
			"file":           stored,
			"formatted_size": stored.GetFormattedSize(),
		},
	})
}
