// internal/domain/product/service.go
package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/pkg/metrics"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// LocalStore is the local product cache; the state store implements it
type LocalStore interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	SaveProduct(ctx context.Context, p Product) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ReplaceProducts(ctx context.Context, products []Product) error
}

// Catalog serves products from the backend when it is reachable and from the
// local store otherwise. Read failures never reach the caller.
type Catalog struct {
	db      *gorm.DB // nil when no backend is configured
	local   LocalStore
	log     *logrus.Logger
	metrics *metrics.Metrics
}

// NewCatalog creates a new product catalog
func NewCatalog(db *gorm.DB, local LocalStore, log *logrus.Logger, m *metrics.Metrics) *Catalog {
	return &Catalog{
		db:      db,
		local:   local,
		log:     log,
		metrics: m,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Category      string `form:"category"`
	Search        string `form:"search"`
	SortBy        string `form:"sort_by"` // name, price, created_at
	SortOrder     string `form:"sort_order"`
	IncludeHidden bool   `form:"-"`
}

// ProductRequest represents product creation and update data
type ProductRequest struct {
	ID          string            `json:"id"`
	Name        string            `json:"name" binding:"required"`
	Price       int64             `json:"price" binding:"min=0"`
	OldPrice    int64             `json:"old_price"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Specs       map[string]string `json:"specs"`
	Image       string            `json:"image"`
	Status      Status            `json:"status"`
}

// List returns the catalog filtered and sorted per req
func (c *Catalog) List(ctx context.Context, req *ProductListRequest) []Product {
	products := c.all(ctx)

	category := strings.ToLower(strings.TrimSpace(req.Category))
	search := strings.ToLower(strings.TrimSpace(req.Search))

	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if !req.IncludeHidden && !p.IsVisible() {
			continue
		}
		if category != "" && strings.ToLower(p.Category) != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		filtered = append(filtered, p)
	}

	sortProducts(filtered, req.SortBy, req.SortOrder)
	return filtered
}

// Get returns a product by id
func (c *Catalog) Get(ctx context.Context, id string) (*Product, error) {
	p, err := c.local.GetProduct(ctx, id)
	if err == nil {
		return p, nil
	}

	if c.db != nil {
		var remote Product
		if dbErr := c.db.WithContext(ctx).Where("id = ?", id).First(&remote).Error; dbErr == nil {
			return &remote, nil
		} else if !errors.Is(dbErr, gorm.ErrRecordNotFound) {
			c.log.WithError(dbErr).WithField("product_id", id).Warn("Backend product lookup failed")
		}
	}
	return nil, ErrProductNotFound
}

// GetProduct is Get under the name the cart expects
func (c *Catalog) GetProduct(ctx context.Context, id string) (*Product, error) {
	return c.Get(ctx, id)
}

// Save creates or updates a product. The local store is authoritative; the
// backend write is best effort.
func (c *Catalog) Save(ctx context.Context, req *ProductRequest) (*Product, error) {
	p, err := req.toProduct()
	if err != nil {
		return nil, err
	}

	saved, err := c.local.SaveProduct(ctx, *p)
	if err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	if c.db != nil {
		err := c.db.WithContext(ctx).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(saved).Error
		if err != nil {
			c.log.WithError(err).WithField("product_id", saved.ID).Warn("Failed to sync product to backend")
		}
	}
	return saved, nil
}

// Delete removes a product from the local store and, best effort, the backend
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.local.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if c.db != nil {
		if err := c.db.WithContext(ctx).Where("id = ?", id).Delete(&Product{}).Error; err != nil {
			c.log.WithError(err).WithField("product_id", id).Warn("Failed to delete product from backend")
		}
	}
	return nil
}

// all loads every product: from the backend if it answers with a non-empty
// list (refreshing the local cache), otherwise from the local store.
func (c *Catalog) all(ctx context.Context) []Product {
	if c.db != nil {
		var remote []Product
		err := c.db.WithContext(ctx).Order("category ASC, name ASC").Find(&remote).Error
		switch {
		case err != nil:
			c.log.WithError(err).Warn("Backend product query failed, serving local catalog")
			c.metrics.Fallback("products")
		case len(remote) == 0:
			c.log.Debug("Backend has no products, serving local catalog")
			c.metrics.Fallback("products")
		default:
			c.refreshLocal(ctx, remote)
			return remote
		}
	}

	products, err := c.local.ListProducts(ctx)
	if err != nil {
		c.log.WithError(err).Error("Local product store unavailable, serving static catalog")
		return FallbackCatalog()
	}
	return products
}

// refreshLocal replaces the local cache when the backend copy differs, so
// unchanged reads do not broadcast a products-changed event.
func (c *Catalog) refreshLocal(ctx context.Context, remote []Product) {
	cached, err := c.local.ListProducts(ctx)
	if err == nil && sameProducts(cached, remote) {
		return
	}
	if err := c.local.ReplaceProducts(ctx, remote); err != nil {
		c.log.WithError(err).Warn("Failed to refresh local product cache")
	}
}

func sameProducts(a, b []Product) bool {
	if len(a) != len(b) {
		return false
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

func sortProducts(products []Product, sortBy, sortOrder string) {
	desc := sortOrder == "desc"
	var less func(i, j int) bool
	switch sortBy {
	case "price":
		less = func(i, j int) bool { return products[i].Price < products[j].Price }
	case "name":
		less = func(i, j int) bool { return products[i].Name < products[j].Name }
	case "created_at":
		less = func(i, j int) bool { return products[i].CreatedAt.Before(products[j].CreatedAt) }
	default:
		return
	}
	sort.SliceStable(products, func(i, j int) bool {
		if desc {
			return less(j, i)
		}
		return less(i, j)
	})
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func (r *ProductRequest) toProduct() (*Product, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if r.Price < 0 || r.OldPrice < 0 {
		return nil, fmt.Errorf("%w: prices cannot be negative", ErrInvalidProduct)
	}

	status := r.Status
	if status == "" {
		status = StatusActive
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidProduct, status)
	}

	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = generateProductID(name)
	}

	return &Product{
		ID:          id,
		Name:        name,
		Price:       r.Price,
		OldPrice:    r.OldPrice,
		Category:    strings.ToLower(strings.TrimSpace(r.Category)),
		Description: strings.TrimSpace(r.Description),
		Specs:       r.Specs,
		Image:       strings.TrimSpace(r.Image),
		Status:      status,
	}, nil
}

func generateProductID(name string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if len(slug) > 48 {
		slug = strings.TrimRight(slug[:48], "-")
	}
	return slug + "-" + uuid.NewString()[:6]
}
