// internal/domain/product/review_dto.go
package product

// CreateReviewRequest represents the request to create a review. Rating is
// validated by the service so that a zero rating gets a clear message.
type CreateReviewRequest struct {
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment" binding:"max=2000"`
	Image     string `json:"image,omitempty"` // optional data URI
}

// ReviewListRequest represents query parameters for listing reviews
type ReviewListRequest struct {
	ProductID string `form:"product_id"`
	Limit     int    `form:"limit"`
}

// ReviewListResponse represents a review list with its summary
type ReviewListResponse struct {
	Reviews []Review      `json:"reviews"`
	Summary ReviewSummary `json:"summary"`
}

// ReviewSummary provides review statistics
type ReviewSummary struct {
	TotalReviews    int            `json:"total_reviews"`
	AverageRating   float64        `json:"average_rating"`
	RatingBreakdown map[string]int `json:"rating_breakdown"` // "5": 10, "4": 5, etc.
}
