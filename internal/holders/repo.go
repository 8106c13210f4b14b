package holders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/internal/repo"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/munitransit/permits-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes holder persistence operations. Write methods take an
// optional tx so registration and cascade flows can run them inside one
// transaction.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a holder repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

type listQuery struct {
	search     string
	activeOnly bool
	cursor     *pagination.Cursor
	limit      int
}

// normalize turns blank identifier and contact values into NULLs so the
// partial unique indexes never see empty strings.
func normalize(row *models.Holder) {
	row.NationalID = nilIfBlank(row.NationalID)
	row.TaxID = nilIfBlank(row.TaxID)
	row.Email = nilIfBlank(row.Email)
	row.Phone = nilIfBlank(row.Phone)
	row.CreatedBy = nilIfBlank(row.CreatedBy)
}

func nilIfBlank(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Create inserts one holder row.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, row *models.Holder) (*models.Holder, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	normalize(row)
	if err := r.base.Conn(ctx, tx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Update persists every column of the given holder row.
func (r *Repository) Update(ctx context.Context, tx *gorm.DB, row *models.Holder) error {
	normalize(row)
	return r.base.Conn(ctx, tx).Save(row).Error
}

// FindByID fetches one holder without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Holder, error) {
	var row models.Holder
	if err := r.base.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// GetWithAuthorizations fetches one holder with its permits and their types.
func (r *Repository) GetWithAuthorizations(ctx context.Context, id uuid.UUID) (*models.Holder, error) {
	var row models.Holder
	err := r.base.DB(ctx).
		Preload("Authorizations", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Authorizations.Type").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByNationalID looks a holder up by national id.
func (r *Repository) FindByNationalID(ctx context.Context, tx *gorm.DB, nationalID string) (*models.Holder, error) {
	var row models.Holder
	if err := r.base.Conn(ctx, tx).First(&row, "national_id = ?", nationalID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByTaxID looks a holder up by tax id.
func (r *Repository) FindByTaxID(ctx context.Context, tx *gorm.DB, taxID string) (*models.Holder, error) {
	var row models.Holder
	if err := r.base.Conn(ctx, tx).First(&row, "tax_id = ?", taxID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns holders newest-first with optional search and active filters.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Holder, error) {
	query := r.base.DB(ctx).Model(&models.Holder{})

	if search := strings.TrimSpace(opts.search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"(LOWER(full_name) LIKE ? OR LOWER(national_id) LIKE ? OR LOWER(tax_id) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?)",
			pattern, pattern, pattern, pattern, pattern,
		)
	}
	if opts.activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Holder
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountAuthorizations reports how many permits reference the holder.
func (r *Repository) CountAuthorizations(ctx context.Context, tx *gorm.DB, holderID uuid.UUID) (int64, error) {
	var count int64
	err := r.base.Conn(ctx, tx).
		Model(&models.Authorization{}).
		Where("holder_id = ?", holderID).
		Count(&count).Error
	return count, err
}

// Delete removes one holder row.
func (r *Repository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.base.Conn(ctx, tx).Delete(&models.Holder{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
