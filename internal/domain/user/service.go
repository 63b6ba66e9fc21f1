// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/config"
	"github.com/your-org/solar-storefront/internal/pkg/auth"
	"github.com/your-org/solar-storefront/internal/pkg/identity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidEmail       = errors.New("please enter a valid email address")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminNotConfigured = errors.New("admin login is not configured")
)

// Service handles login and profiles. Identity is derived from the email or
// federated subject, so login never has to look a user up first.
type Service struct {
	db              *gorm.DB // nil when no backend is configured
	config          *config.Config
	log             *logrus.Logger
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	now             func() time.Time
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		log:             log,
		passwordManager: auth.NewPasswordManager(0),
		jwtManager:      auth.NewJWTManager(cfg),
		now:             time.Now,
	}
}

// LoginRequest represents passwordless email login data
type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// FederatedLoginRequest carries a federated ID token
type FederatedLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// AdminLoginRequest represents admin login data
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *Profile `json:"user"`
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
}

// LoginWithEmail signs a customer in by email alone. It always issues the
// customer role, even for addresses on the admin list.
func (s *Service) LoginWithEmail(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := identity.Normalize(req.Email)
	if email == "" {
		return nil, ErrInvalidEmail
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	profile := s.newProfile(identity.FromEmail(email), name, email, "", ProviderEmail, RoleCustomer)
	return s.issue(ctx, profile)
}

// LoginWithFederatedToken signs a customer in with a federated ID token.
// The token's signature is not verified here, so it never grants admin.
func (s *Service) LoginWithFederatedToken(ctx context.Context, req *FederatedLoginRequest) (*AuthResponse, error) {
	fid, err := identity.DecodeFederatedToken(req.Credential)
	if err != nil {
		return nil, err
	}

	provider := fid.Provider
	if provider == "" {
		provider = ProviderGoogle
	}
	profile := s.newProfile(fid.UserID(), fid.Name, identity.Normalize(fid.Email), fid.Picture, provider, RoleCustomer)
	return s.issue(ctx, profile)
}

// AdminLogin checks an admin email and password against the configured hash
func (s *Service) AdminLogin(ctx context.Context, req *AdminLoginRequest) (*AuthResponse, error) {
	if s.config.Admin.PasswordHash == "" {
		return nil, ErrAdminNotConfigured
	}

	email := identity.Normalize(req.Email)
	if !identity.IsAdminEmail(email, s.config.Admin.Emails) {
		return nil, ErrInvalidCredentials
	}
	if err := s.passwordManager.VerifyPassword(req.Password, s.config.Admin.PasswordHash); err != nil {
		s.log.WithField("email", email).Warn("Failed admin login attempt")
		return nil, ErrInvalidCredentials
	}

	profile := s.newProfile(identity.FromEmail(email), "Administrator", email, "", ProviderEmail, RoleAdmin)
	return s.issue(ctx, profile)
}

// GetProfile returns the backend profile for claims, or the profile carried
// by the token when the backend has none or is unreachable.
func (s *Service) GetProfile(ctx context.Context, claims *auth.Claims) *Profile {
	fromToken := ProfileFromClaims(claims)
	if s.db == nil {
		return fromToken
	}

	var profile Profile
	if err := s.db.WithContext(ctx).Where("id = ?", claims.UserID).First(&profile).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.WithError(err).WithField("user_id", claims.UserID).Warn("Failed to load profile")
		}
		return fromToken
	}
	// role is decided at login, never by the stored row
	profile.Role = fromToken.Role
	return &profile
}

// EnsureProfile inserts profile unless a row with its id already exists
func (s *Service) EnsureProfile(ctx context.Context, profile *Profile) error {
	if s.db == nil {
		return nil
	}
	p := *profile
	now := s.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Role == "" {
		p.Role = RoleCustomer
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&p).Error
	if err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

// ProfileFromClaims rebuilds a profile from access token claims
func ProfileFromClaims(claims *auth.Claims) *Profile {
	return &Profile{
		ID:       claims.UserID,
		Name:     claims.Name,
		Email:    claims.Email,
		Avatar:   claims.Avatar,
		Provider: claims.Provider,
		Role:     Role(claims.Role),
	}
}

func (s *Service) newProfile(id, name, email, avatar, provider string, role Role) *Profile {
	now := s.now().UTC()
	return &Profile{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Email:     email,
		Avatar:    avatar,
		Provider:  provider,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// issue upserts the profile (best effort) and signs an access token
func (s *Service) issue(ctx context.Context, profile *Profile) (*AuthResponse, error) {
	s.upsertProfile(ctx, profile)

	token, err := s.jwtManager.GenerateAccessToken(auth.Identity{
		UserID:   profile.ID,
		Email:    profile.Email,
		Name:     profile.Name,
		Avatar:   profile.Avatar,
		Provider: profile.Provider,
		Role:     string(profile.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		User:        profile,
		AccessToken: token,
		ExpiresIn:   s.jwtManager.ExpiresIn(),
	}, nil
}

func (s *Service) upsertProfile(ctx context.Context, profile *Profile) {
	if s.db == nil {
		return
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "avatar", "provider", "role", "updated_at"}),
		}).
		Create(profile).Error
	if err != nil {
		// login still succeeds; a later review submission repairs the row
		s.log.WithError(err).WithField("user_id", profile.ID).Warn("Failed to upsert profile")
	}
}
