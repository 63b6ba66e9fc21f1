// internal/interfaces/http/handlers/review.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/solar-storefront/internal/domain/product"
	"github.com/your-org/solar-storefront/internal/domain/upload"
	"github.com/your-org/solar-storefront/internal/domain/user"
	"github.com/your-org/solar-storefront/internal/interfaces/http/middleware"
)

// ReviewHandler handles review endpoints
type ReviewHandler struct {
	reviewService *product.ReviewService
	userService   *user.Service
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *product.ReviewService, userService *user.Service) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		userService:   userService,
	}
}

// GetReviews handles GET /reviews
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	var req product.ReviewListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reviews retrieved successfully",
		"data":    h.reviewService.List(c.Request.Context(), &req),
	})
}

// CreateReview handles POST /reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	claims, ok := middleware.GetClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req product.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	author := h.userService.GetProfile(c.Request.Context(), claims)
	review, err := h.reviewService.Create(c.Request.Context(), author, &req)
	if err != nil {
		switch {
		case errors.Is(err, product.ErrInvalidRating),
			errors.Is(err, product.ErrEmptyComment),
			errors.Is(err, product.ErrProductNotFound),
			errors.Is(err, upload.ErrInvalidDataURI),
			errors.Is(err, upload.ErrEmptyFile),
			errors.Is(err, upload.ErrUnsupportedType),
			errors.Is(err, upload.ErrFileTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, product.ErrProfileRepaired):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retry": true})
		case errors.Is(err, product.ErrBackendUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review created successfully",
		"data":    review,
	})
}
