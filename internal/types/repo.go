package types

import (
	"context"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/internal/repo"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes catalog persistence for authorization types.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a type repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// Create inserts a catalog row.
func (r *Repository) Create(ctx context.Context, row *models.AuthorizationType) (*models.AuthorizationType, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := r.base.DB(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// List returns catalog rows, optionally restricted to active ones.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.AuthorizationType, error) {
	query := r.base.DB(ctx).Model(&models.AuthorizationType{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []models.AuthorizationType
	if err := query.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID looks up a catalog row by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AuthorizationType, error) {
	var row models.AuthorizationType
	if err := r.base.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByCode looks up a catalog row by its unique code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.AuthorizationType, error) {
	var row models.AuthorizationType
	if err := r.base.DB(ctx).First(&row, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// SetActive toggles the is_active flag.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.base.DB(ctx).
		Model(&models.AuthorizationType{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountAuthorizations reports how many permits reference the type.
func (r *Repository) CountAuthorizations(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.base.DB(ctx).
		Model(&models.Authorization{}).
		Where("type_id = ?", id).
		Count(&count).Error
	return count, err
}
