package dashboard

import (
	"context"
	"time"

	"github.com/munitransit/permits-backend/internal/repo"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository runs the aggregate queries behind the dashboard. Reads only.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a dashboard repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// CountAuthorizations returns the total number of permits.
func (r *Repository) CountAuthorizations(ctx context.Context) (int64, error) {
	var count int64
	err := r.base.DB(ctx).Model(&models.Authorization{}).Count(&count).Error
	return count, err
}

// CountActiveAuthorizations counts permits flagged active.
func (r *Repository) CountActiveAuthorizations(ctx context.Context) (int64, error) {
	var count int64
	err := r.base.DB(ctx).
		Model(&models.Authorization{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

// CountExpiredAuthorizations counts permits whose expiry date has passed.
func (r *Repository) CountExpiredAuthorizations(ctx context.Context, today time.Time) (int64, error) {
	var count int64
	err := r.base.DB(ctx).
		Model(&models.Authorization{}).
		Where("expires_on < ?", today.Format("2006-01-02")).
		Count(&count).Error
	return count, err
}

// CountHolders returns the total number of registered holders.
func (r *Repository) CountHolders(ctx context.Context) (int64, error) {
	var count int64
	err := r.base.DB(ctx).Model(&models.Holder{}).Count(&count).Error
	return count, err
}

// TypeCount is one per-type slice of the active permit total.
type TypeCount struct {
	TypeID string `json:"type_id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Total  int64  `json:"total"`
}

// CountActiveByType breaks active permits down per catalog type.
func (r *Repository) CountActiveByType(ctx context.Context) ([]TypeCount, error) {
	var rows []TypeCount
	err := r.base.DB(ctx).
		Model(&models.Authorization{}).
		Select("authorization_types.id AS type_id, authorization_types.code AS code, authorization_types.name AS name, COUNT(*) AS total").
		Joins("JOIN authorization_types ON authorization_types.id = authorizations.type_id").
		Where("authorizations.is_active = ?", true).
		Group("authorization_types.id").
		Group("authorization_types.code").
		Group("authorization_types.name").
		Order("total DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LatestAuthorizations returns the most recent permits with their holder and type.
func (r *Repository) LatestAuthorizations(ctx context.Context, limit int) ([]models.Authorization, error) {
	var rows []models.Authorization
	err := r.base.DB(ctx).
		Preload("Holder").
		Preload("Type").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
