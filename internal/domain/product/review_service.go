// internal/domain/product/review_service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/domain/upload"
	"github.com/your-org/solar-storefront/internal/domain/user"
	"github.com/your-org/solar-storefront/internal/pkg/metrics"
	"github.com/your-org/solar-storefront/internal/pkg/notify"
	"gorm.io/gorm"
)

const defaultReviewLimit = 100

var (
	ErrInvalidRating      = errors.New("please choose a rating between 1 and 5")
	ErrEmptyComment       = errors.New("please write a comment")
	ErrBackendUnavailable = errors.New("reviews are temporarily unavailable")
	// ErrProfileRepaired means the author's profile was missing on the
	// backend and has just been created; the user should submit again.
	ErrProfileRepaired = errors.New("your profile has been set up, please submit your review again")
)

// ProfileRepairer creates a missing profile row
type ProfileRepairer interface {
	EnsureProfile(ctx context.Context, profile *user.Profile) error
}

// ImageStore saves and removes review images
type ImageStore interface {
	SaveDataURI(ctx context.Context, category, uri string) (*upload.StoredFile, error)
	Remove(ctx context.Context, file *upload.StoredFile) error
}

// ReviewService handles review business logic
type ReviewService struct {
	db       *gorm.DB // nil when no backend is configured
	catalog  *Catalog
	profiles ProfileRepairer
	images   ImageStore
	notifier notify.Notifier
	log      *logrus.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewReviewService creates a new review service
func NewReviewService(
	db *gorm.DB,
	catalog *Catalog,
	profiles ProfileRepairer,
	images ImageStore,
	notifier notify.Notifier,
	log *logrus.Logger,
	m *metrics.Metrics,
) *ReviewService {
	return &ReviewService{
		db:       db,
		catalog:  catalog,
		profiles: profiles,
		images:   images,
		notifier: notifier,
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

// List returns reviews newest first, optionally for one product. Backend
// failures are logged and yield an empty list.
func (s *ReviewService) List(ctx context.Context, req *ReviewListRequest) *ReviewListResponse {
	reviews := []Review{}

	if s.db == nil {
		return &ReviewListResponse{Reviews: reviews, Summary: summarize(reviews)}
	}

	limit := req.Limit
	if limit <= 0 || limit > defaultReviewLimit {
		limit = defaultReviewLimit
	}

	query := s.db.WithContext(ctx).Model(&Review{})
	if req.ProductID != "" {
		query = query.Where("product_id = ?", req.ProductID)
	}
	if err := query.Order("created_at DESC").Limit(limit).Find(&reviews).Error; err != nil {
		s.log.WithError(err).WithField("product_id", req.ProductID).Warn("Failed to load reviews, returning empty list")
		s.metrics.Fallback("reviews")
		reviews = []Review{}
	}

	return &ReviewListResponse{Reviews: reviews, Summary: summarize(reviews)}
}

// Create validates and stores a review by author. When the backend rejects
// the review because the author's profile row is missing, the profile is
// created and ErrProfileRepaired is returned; the review is not retried.
func (s *ReviewService) Create(ctx context.Context, author *user.Profile, req *CreateReviewRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, ErrEmptyComment
	}
	if s.db == nil {
		return nil, ErrBackendUnavailable
	}

	var productName string
	if req.ProductID != "" {
		p, err := s.catalog.Get(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}
		productName = p.Name
	}

	review := Review{
		ID:        uuid.NewString(),
		UserID:    author.ID,
		UserName:  author.GetDisplayName(),
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   comment,
		CreatedAt: s.now().UTC(),
	}

	var image *upload.StoredFile
	if req.Image != "" {
		file, err := s.images.SaveDataURI(ctx, "reviews", req.Image)
		if err != nil {
			return nil, err
		}
		image = file
		review.ImageURL = file.URL
	}

	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		s.discardImage(ctx, image)
		if isForeignKeyViolation(err) {
			return nil, s.repairProfile(ctx, author)
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.metrics.ReviewCreated()
	s.notifyReview(ctx, &review, productName, req.Image)
	return &review, nil
}

// discardImage removes an image whose review was never stored
func (s *ReviewService) discardImage(ctx context.Context, file *upload.StoredFile) {
	if file == nil {
		return
	}
	if err := s.images.Remove(ctx, file); err != nil {
		s.log.WithError(err).WithField("path", file.Path).Warn("Failed to remove orphaned review image")
	}
}

func (s *ReviewService) repairProfile(ctx context.Context, author *user.Profile) error {
	entry := s.log.WithField("user_id", author.ID)
	if err := s.profiles.EnsureProfile(ctx, author); err != nil {
		entry.WithError(err).Error("Failed to repair missing profile")
		return fmt.Errorf("failed to create review: %w", err)
	}
	entry.Warn("Review referenced a missing profile, profile created")
	return ErrProfileRepaired
}

func (s *ReviewService) notifyReview(ctx context.Context, review *Review, productName, image string) {
	if s.notifier == nil {
		return
	}
	msg := notify.FormatReviewMessage(notify.Review{
		Author:      review.UserName,
		Rating:      review.Rating,
		Comment:     review.Comment,
		ProductName: productName,
	})
	if image != "" {
		s.notifier.SendPhoto(ctx, image, msg)
		return
	}
	s.notifier.SendText(ctx, msg)
}

// isForeignKeyViolation recognizes the error both with and without gorm's
// error translation enabled.
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func summarize(reviews []Review) ReviewSummary {
	summary := ReviewSummary{
		TotalReviews:    len(reviews),
		RatingBreakdown: make(map[string]int, 5),
	}
	for i := 1; i <= 5; i++ {
		summary.RatingBreakdown[strconv.Itoa(i)] = 0
	}
	if len(reviews) == 0 {
		return summary
	}

	total := 0
	for _, r := range reviews {
		total += r.Rating
		summary.RatingBreakdown[strconv.Itoa(r.Rating)]++
	}
	summary.AverageRating = math.Round(float64(total)/float64(len(reviews))*100) / 100
	return summary
}
