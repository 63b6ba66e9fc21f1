// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/domain/order"
	"github.com/your-org/solar-storefront/internal/domain/product"
	"github.com/your-org/solar-storefront/internal/domain/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log *logrus.Logger) *Migration {
	return &Migration{db: db, log: log}
}

// Models returns the tables owned by the backend, parents first
func Models() []interface{} {
	return []interface{}{
		&user.Profile{},
		&product.Product{},
		&product.Review{},
		&order.Order{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("Database auto-migrations completed")
	return nil
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_products_category_name ON products(category, name)",
	"CREATE INDEX IF NOT EXISTS idx_reviews_product_created ON reviews(product_id, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_orders_status_date ON orders(status, date DESC)",
	"CREATE INDEX IF NOT EXISTS idx_profiles_email ON profiles(lower(email))",
}

// CreateIndexes creates the query indexes. Failures are logged and counted,
// never fatal.
func (m *Migration) CreateIndexes() (created, failed int) {
	for _, stmt := range indexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			m.log.WithError(err).Warn("Failed to create index")
			failed++
			continue
		}
		created++
	}

	m.log.WithFields(logrus.Fields{"created": created, "failed": failed}).Info("Indexes ensured")
	return created, failed
}

// SeedInitialData inserts the fallback catalog, leaving existing rows alone
func (m *Migration) SeedInitialData() error {
	products := product.FallbackCatalog()
	result := m.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&products)
	if result.Error != nil {
		return fmt.Errorf("failed to seed products: %w", result.Error)
	}

	m.log.WithField("inserted", result.RowsAffected).Info("Seeded catalog")
	return nil
}
