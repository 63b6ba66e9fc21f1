package postgres

import (
	"errors"
	"regexp"
	"testing"

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

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestCreateIndexesCountsFailures(t *testing.T) {
	db, mock := newMockDB(t)
	for i := range indexes {
		exp := mock.ExpectExec(regexp.QuoteMeta(indexes[i]))
		if i == 1 {
			exp.WillReturnError(errors.New("permission denied"))
			continue
		}
		exp.WillReturnResult(sqlmock.NewResult(0, 0))
	}

	created, failed := NewMigration(db, logger.Discard()).CreateIndexes()
	assert.Equal(t, len(indexes)-1, created)
	assert.Equal(t, 1, failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedInitialDataInsertsCatalog(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "products"`)).
		WillReturnResult(sqlmock.NewResult(0, 8))

	require.NoError(t, NewMigration(db, logger.Discard()).SeedInitialData())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedInitialDataWrapsError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "products"`)).
		WillReturnError(errors.New("relation does not exist"))

	err := NewMigration(db, logger.Discard()).SeedInitialData()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed products")
}
