package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/solar-storefront/internal/config"
	"github.com/your-org/solar-storefront/internal/pkg/auth"
	"github.com/your-org/solar-storefront/internal/pkg/identity"
	"github.com/your-org/solar-storefront/internal/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func testConfig(t *testing.T) *config.Config {
	hash, err := bcrypt.GenerateFromPassword([]byte("SolarAdmin2026"), bcrypt.MinCost)
	require.NoError(t, err)
	return &config.Config{
		App: config.AppConfig{Name: "Solar Storefront"},
		JWT: config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiry: time.Hour},
		Admin: config.AdminConfig{
			Emails:       []string{"owner@solar.example"},
			PasswordHash: string(hash),
		},
	}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}),
		&gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestLoginWithEmail_DerivesStableID(t *testing.T) {
	cfg := testConfig(t)
	svc := NewService(nil, cfg, logger.Discard())
	ctx := context.Background()

	first, err := svc.LoginWithEmail(ctx, &LoginRequest{Email: "  Ada@Example.com "})
	require.NoError(t, err)
	second, err := svc.LoginWithEmail(ctx, &LoginRequest{Email: "ada@example.com"})
	require.NoError(t, err)

	assert.Equal(t, identity.FromEmail("ada@example.com"), first.User.ID)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "ada", first.User.Name)
	assert.Equal(t, RoleCustomer, first.User.Role)

	claims, err := auth.NewJWTManager(cfg).ValidateAccessToken(first.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, claims.UserID)
}

func TestLoginWithEmail_AdminEmailGetsCustomerRole(t *testing.T) {
	cfg := testConfig(t)
	svc := NewService(nil, cfg, logger.Discard())

	resp, err := svc.LoginWithEmail(context.Background(), &LoginRequest{Email: "OWNER@solar.example"})
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, resp.User.Role)

	claims, err := auth.NewJWTManager(cfg).ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())
}

func TestLoginWithEmail_Empty(t *testing.T) {
	svc := NewService(nil, testConfig(t), logger.Discard())
	_, err := svc.LoginWithEmail(context.Background(), &LoginRequest{Email: "   "})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestLoginWithEmail_UpsertFailureDoesNotBlockLogin(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, testConfig(t), logger.Discard())

	mock.ExpectExec(`INSERT INTO "profiles" .* ON CONFLICT \("id"\) DO UPDATE`).
		WillReturnError(errors.New("backend down"))

	resp, err := svc.LoginWithEmail(context.Background(), &LoginRequest{Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", resp.User.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWithFederatedToken(t *testing.T) {
	svc := NewService(nil, testConfig(t), logger.Discard())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "1098765",
		"email":   "Ada@Example.com",
		"name":    "Ada Obi",
		"picture": "https://example.com/a.png",
		"iss":     "https://accounts.google.com",
	})
	signed, err := token.SignedString([]byte("whatever, it is not verified"))
	require.NoError(t, err)

	resp, err := svc.LoginWithFederatedToken(context.Background(), &FederatedLoginRequest{Credential: signed})
	require.NoError(t, err)
	assert.Equal(t, identity.FromSubject("1098765"), resp.User.ID)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, ProviderGoogle, resp.User.Provider)

	_, err = svc.LoginWithFederatedToken(context.Background(), &FederatedLoginRequest{Credential: "garbage"})
	assert.ErrorIs(t, err, identity.ErrMalformedToken)
}

func TestLoginWithFederatedToken_UnsignedAdminEmailGetsCustomerRole(t *testing.T) {
	svc := NewService(nil, testConfig(t), logger.Discard())

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":   "attacker",
		"email": "owner@solar.example",
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	resp, err := svc.LoginWithFederatedToken(context.Background(), &FederatedLoginRequest{Credential: unsigned})
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, resp.User.Role)
}

func TestAdminLogin(t *testing.T) {
	svc := NewService(nil, testConfig(t), logger.Discard())
	ctx := context.Background()

	resp, err := svc.AdminLogin(ctx, &AdminLoginRequest{Email: "owner@solar.example", Password: "SolarAdmin2026"})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, resp.User.Role)

	_, err = svc.AdminLogin(ctx, &AdminLoginRequest{Email: "owner@solar.example", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.AdminLogin(ctx, &AdminLoginRequest{Email: "ada@example.com", Password: "SolarAdmin2026"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	cfg := testConfig(t)
	cfg.Admin.PasswordHash = ""
	_, err = NewService(nil, cfg, logger.Discard()).AdminLogin(ctx, &AdminLoginRequest{Email: "owner@solar.example", Password: "x"})
	assert.ErrorIs(t, err, ErrAdminNotConfigured)
}

func TestEnsureProfile_InsertOrNothing(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, testConfig(t), logger.Discard())

	mock.ExpectExec(`INSERT INTO "profiles" .* ON CONFLICT \("id"\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.EnsureProfile(context.Background(), &Profile{ID: "abc", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfile_FallsBackToClaims(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, testConfig(t), logger.Discard())

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	p := svc.GetProfile(context.Background(), &auth.Claims{UserID: "abc", Email: "ada@example.com", Role: "customer"})
	assert.Equal(t, "abc", p.ID)
	assert.Equal(t, "ada@example.com", p.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProfiles_NoBackend(t *testing.T) {
	resp, err := NewAdminService(nil).ListProfiles(context.Background(), &ProfileListRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Profiles)
}

func TestExportProfiles(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewAdminService(db)

	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "provider", "role", "created_at"}).
			AddRow("abc", "Ada", "ada@example.com", "email", "customer", created))

	data, filename, err := svc.ExportProfiles(context.Background(), &ProfileListRequest{})
	require.NoError(t, err)
	assert.Contains(t, filename, "profiles_export_")
	assert.Contains(t, string(data), "abc,Ada,ada@example.com,email,customer,2026-03-01T00:00:00Z")
	assert.NoError(t, mock.ExpectationsWereMet())
}
