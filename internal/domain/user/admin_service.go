// internal/domain/user/admin_service.go
package user

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// AdminService lists customer profiles for the admin dashboard
type AdminService struct {
	db *gorm.DB // nil when no backend is configured
}

// NewAdminService creates a new admin profile service
func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// ProfileListRequest represents profile list query parameters
type ProfileListRequest struct {
	Search string `form:"search"`
	Role   string `form:"role"` // admin, customer
	Limit  int    `form:"limit"`
}

// ProfileListResponse represents a profile list
type ProfileListResponse struct {
	Profiles []Profile `json:"profiles"`
	Total    int64     `json:"total"`
}

// ListProfiles returns profiles, newest first
func (s *AdminService) ListProfiles(ctx context.Context, req *ProfileListRequest) (*ProfileListResponse, error) {
	if s.db == nil {
		return &ProfileListResponse{Profiles: []Profile{}}, nil
	}

	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := s.db.WithContext(ctx).Model(&Profile{})
	if search := strings.ToLower(strings.TrimSpace(req.Search)); search != "" {
		term := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count profiles: %w", err)
	}

	profiles := []Profile{}
	if err := query.Order("created_at DESC").Limit(limit).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve profiles: %w", err)
	}

	return &ProfileListResponse{Profiles: profiles, Total: total}, nil
}

// ExportProfiles renders profiles as CSV and returns the data and a filename
func (s *AdminService) ExportProfiles(ctx context.Context, req *ProfileListRequest) ([]byte, string, error) {
	req.Limit = 500
	list, err := s.ListProfiles(ctx, req)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"ID", "Name", "Email", "Provider", "Role", "Created At"}); err != nil {
		return nil, "", err
	}
	for _, p := range list.Profiles {
		record := []string{p.ID, p.Name, p.Email, p.Provider, string(p.Role), p.CreatedAt.Format(time.RFC3339)}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to write CSV: %w", err)
	}

	filename := fmt.Sprintf("profiles_export_%s.csv", time.Now().UTC().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}
