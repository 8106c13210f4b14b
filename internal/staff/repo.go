package staff

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/internal/repo"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes staff account persistence operations.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a staff repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// Create inserts one staff account.
func (r *Repository) Create(ctx context.Context, row *models.StaffUser) (*models.StaffUser, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := r.base.DB(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindByEmail fetches one staff account by its lowercase email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	var row models.StaffUser
	if err := r.base.DB(ctx).First(&row, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByID fetches one staff account.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StaffUser, error) {
	var row models.StaffUser
	if err := r.base.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateLastLogin stamps the account's last successful login.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.base.DB(ctx).
		Model(&models.StaffUser{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}
