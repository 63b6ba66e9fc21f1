package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/solar-storefront/internal/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

// memoryLocal is an in-memory LocalStore that seeds like the real one
type memoryLocal struct {
	products []Product
	seeded   bool
	replaced int
}

func (m *memoryLocal) ListProducts(context.Context) ([]Product, error) {
	if !m.seeded {
		m.products = FallbackCatalog()
		m.seeded = true
	}
	return append([]Product(nil), m.products...), nil
}

func (m *memoryLocal) GetProduct(ctx context.Context, id string) (*Product, error) {
	products, _ := m.ListProducts(ctx)
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, ErrProductNotFound
}

func (m *memoryLocal) SaveProduct(ctx context.Context, p Product) (*Product, error) {
	products, _ := m.ListProducts(ctx)
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			m.products = products
			return &p, nil
		}
	}
	m.products = append(products, p)
	return &p, nil
}

func (m *memoryLocal) DeleteProduct(ctx context.Context, id string) error {
	products, _ := m.ListProducts(ctx)
	for i := range products {
		if products[i].ID == id {
			m.products = append(products[:i], products[i+1:]...)
			return nil
		}
	}
	return ErrProductNotFound
}

func (m *memoryLocal) ReplaceProducts(_ context.Context, products []Product) error {
	m.products = append([]Product(nil), products...)
	m.seeded = true
	m.replaced++
	return nil
}

var productColumns = []string{"id", "name", "price", "old_price", "category", "description", "specs", "image", "status", "created_at", "updated_at"}

func TestCatalogList_NoBackendUsesLocalFallback(t *testing.T) {
	local := &memoryLocal{}
	c := NewCatalog(nil, local, logger.Discard(), nil)

	products := c.List(context.Background(), &ProductListRequest{})
	assert.Len(t, products, len(FallbackCatalog()))
}

func TestCatalogList_BackendRefreshesLocalCache(t *testing.T) {
	db, mock := newMockDB(t)
	local := &memoryLocal{}
	c := NewCatalog(db, local, logger.Discard(), nil)

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows(productColumns).
			AddRow("p1", "Panel 400W", 15000, 0, "panels", "24V string", []byte(`{"power":"400W"}`), "", "active", now, now).
			AddRow("p2", "Secret", 100, 0, "panels", "", nil, "", "hidden", now, now)
	}
	mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(rows())
	mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(rows())

	products := c.List(context.Background(), &ProductListRequest{})
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "400W", products[0].Specs["power"])
	assert.Equal(t, 1, local.replaced)

	// admins see hidden products; identical data does not rewrite the cache
	all := c.List(context.Background(), &ProductListRequest{IncludeHidden: true})
	assert.Len(t, all, 2)
	assert.Equal(t, 1, local.replaced)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogList_BackendFailureFallsBack(t *testing.T) {
	db, mock := newMockDB(t)
	c := NewCatalog(db, &memoryLocal{}, logger.Discard(), nil)

	mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnError(errors.New("connection refused"))

	products := c.List(context.Background(), &ProductListRequest{Category: "Batteries"})
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.Equal(t, "batteries", p.Category)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogList_EmptyBackendFallsBack(t *testing.T) {
	db, mock := newMockDB(t)
	local := &memoryLocal{}
	c := NewCatalog(db, local, logger.Discard(), nil)

	mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(sqlmock.NewRows(productColumns))

	products := c.List(context.Background(), &ProductListRequest{Search: "inverter", SortBy: "price"})
	require.Len(t, products, 2)
	assert.Less(t, products[0].Price, products[1].Price)
	assert.Zero(t, local.replaced)
}

func TestCatalogSave_BestEffortBackendSync(t *testing.T) {
	db, mock := newMockDB(t)
	local := &memoryLocal{}
	c := NewCatalog(db, local, logger.Discard(), nil)

	mock.ExpectExec(`INSERT INTO "products"`).WillReturnError(errors.New("backend down"))

	saved, err := c.Save(context.Background(), &ProductRequest{Name: "Hybrid Inverter 8kW", Price: 129900, Category: "Inverters"})
	require.NoError(t, err)
	assert.Contains(t, saved.ID, "hybrid-inverter-8kw-")
	assert.Equal(t, StatusActive, saved.Status)
	assert.Equal(t, "inverters", saved.Category)

	got, err := c.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hybrid Inverter 8kW", got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogSave_Validation(t *testing.T) {
	c := NewCatalog(nil, &memoryLocal{}, logger.Discard(), nil)

	_, err := c.Save(context.Background(), &ProductRequest{Name: " "})
	assert.ErrorIs(t, err, ErrInvalidProduct)
	_, err = c.Save(context.Background(), &ProductRequest{Name: "x", Price: -1})
	assert.ErrorIs(t, err, ErrInvalidProduct)
	_, err = c.Save(context.Background(), &ProductRequest{Name: "x", Status: "sold"})
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestCatalogDelete(t *testing.T) {
	db, mock := newMockDB(t)
	c := NewCatalog(db, &memoryLocal{}, logger.Discard(), nil)

	mock.ExpectExec(`DELETE FROM "products"`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, c.Delete(context.Background(), "cable-kit-pv"))

	mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(sqlmock.NewRows(productColumns))
	_, err := c.Get(context.Background(), "cable-kit-pv")
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, c.Delete(context.Background(), "cable-kit-pv"), ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategories(t *testing.T) {
	c := NewCatalog(nil, &memoryLocal{}, logger.Discard(), nil)

	categories := c.Categories(context.Background())
	require.NotEmpty(t, categories)
	for _, cat := range categories {
		if cat.Name == "batteries" {
			assert.Equal(t, 2, cat.ProductCount)
			assert.Equal(t, int64(32900), cat.MinPrice)
		}
	}
}
