package authorizations

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/internal/repo"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/munitransit/permits-backend/pkg/enums"
	"github.com/munitransit/permits-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes permit persistence operations. Write methods take an
// optional tx for the registration and cascade flows.
type Repository struct {
	base repo.Base
}

// NewRepository constructs an authorization repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// SearchField selects which column a list search term matches against.
type SearchField string

const (
	SearchPlate      SearchField = "plate"
	SearchHolderName SearchField = "holder_name"
	SearchNationalID SearchField = "national_id"
	SearchTaxID      SearchField = "tax_id"
	SearchEmail      SearchField = "email"
	SearchPhone      SearchField = "phone"
	SearchNumber     SearchField = "number"
	SearchTypeName   SearchField = "type_name"
)

var searchColumns = map[SearchField]string{
	SearchPlate:      "authorizations.plate",
	SearchHolderName: "holders.full_name",
	SearchNationalID: "holders.national_id",
	SearchTaxID:      "holders.tax_id",
	SearchEmail:      "holders.email",
	SearchPhone:      "holders.phone",
	SearchNumber:     "authorizations.number",
	SearchTypeName:   "authorization_types.name",
}

// ValidSearchField reports whether the selector names a searchable column.
func ValidSearchField(field SearchField) bool {
	_, ok := searchColumns[field]
	return ok
}

type listQuery struct {
	searchField SearchField
	search      string
	typeID      *uuid.UUID
	state       *enums.AuthorizationState
	today       time.Time
	from        *time.Time
	to          *time.Time
	cursor      *pagination.Cursor
	limit       int
}

// Create inserts one permit row.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, row *models.Authorization) (*models.Authorization, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := r.base.Conn(ctx, tx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Update persists every column of the given permit row.
func (r *Repository) Update(ctx context.Context, tx *gorm.DB, row *models.Authorization) error {
	return r.base.Conn(ctx, tx).Save(row).Error
}

// FindByID fetches one permit with its holder and type.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Authorization, error) {
	var row models.Authorization
	err := r.base.DB(ctx).
		Preload("Holder").
		Preload("Type").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindActiveByPlateNumber looks up the active permit matching a plate and
// permit number pair. Used by public verification.
func (r *Repository) FindActiveByPlateNumber(ctx context.Context, plate, number string) (*models.Authorization, error) {
	var row models.Authorization
	err := r.base.DB(ctx).
		Preload("Holder").
		Preload("Type").
		Where("plate = ? AND number = ? AND is_active = ?", plate, number, true).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ExistsByNumber reports whether any permit already carries the number.
func (r *Repository) ExistsByNumber(ctx context.Context, tx *gorm.DB, number string) (bool, error) {
	var count int64
	err := r.base.Conn(ctx, tx).
		Model(&models.Authorization{}).
		Where("number = ?", number).
		Count(&count).Error
	return count > 0, err
}

// ExistsByHolderPlateType reports whether the holder already has this permit
// type for the plate.
func (r *Repository) ExistsByHolderPlateType(ctx context.Context, tx *gorm.DB, holderID, typeID uuid.UUID, plate string) (bool, error) {
	var count int64
	err := r.base.Conn(ctx, tx).
		Model(&models.Authorization{}).
		Where("holder_id = ? AND type_id = ? AND plate = ?", holderID, typeID, plate).
		Count(&count).Error
	return count > 0, err
}

// List returns permits newest-first with the configured filters applied.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Authorization, error) {
	query := r.base.DB(ctx).
		Model(&models.Authorization{}).
		Joins("JOIN holders ON holders.id = authorizations.holder_id").
		Joins("JOIN authorization_types ON authorization_types.id = authorizations.type_id").
		Preload("Holder").
		Preload("Type")

	if search := strings.TrimSpace(opts.search); search != "" {
		column, ok := searchColumns[opts.searchField]
		if !ok {
			column = searchColumns[SearchPlate]
		}
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER("+column+") LIKE ?", pattern)
	}
	if opts.typeID != nil {
		query = query.Where("authorizations.type_id = ?", *opts.typeID)
	}
	if opts.state != nil {
		today := dateOnly(opts.today).Format("2006-01-02")
		switch *opts.state {
		case enums.AuthorizationStateActive:
			query = query.Where("authorizations.is_active = ?", true)
		case enums.AuthorizationStateExpired:
			query = query.Where("authorizations.expires_on < ?", today)
		case enums.AuthorizationStateInactive:
			query = query.Where("authorizations.is_active = ?", false)
		}
	}
	if opts.from != nil {
		query = query.Where("authorizations.created_at >= ?", *opts.from)
	}
	if opts.to != nil {
		query = query.Where("authorizations.created_at < ?", *opts.to)
	}
	if opts.cursor != nil {
		query = query.Where(
			"(authorizations.created_at < ?) OR (authorizations.created_at = ? AND authorizations.id < ?)",
			opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID,
		)
	}

	query = query.Order("authorizations.created_at DESC").Order("authorizations.id DESC").Limit(opts.limit)

	var rows []models.Authorization
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByHolder returns every permit of one holder, newest first.
func (r *Repository) ListByHolder(ctx context.Context, tx *gorm.DB, holderID uuid.UUID) ([]models.Authorization, error) {
	var rows []models.Authorization
	err := r.base.Conn(ctx, tx).
		Where("holder_id = ?", holderID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByHolder reports how many permits reference the holder.
func (r *Repository) CountByHolder(ctx context.Context, tx *gorm.DB, holderID uuid.UUID) (int64, error) {
	var count int64
	err := r.base.Conn(ctx, tx).
		Model(&models.Authorization{}).
		Where("holder_id = ?", holderID).
		Count(&count).Error
	return count, err
}

// Delete removes one permit row.
func (r *Repository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.base.Conn(ctx, tx).Delete(&models.Authorization{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
