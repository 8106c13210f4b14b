package history

import (
	"context"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/internal/repo"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/munitransit/permits-backend/pkg/enums"
	"github.com/munitransit/permits-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes audit trail persistence operations.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a history repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

type listQuery struct {
	action *enums.HistoryAction
	from   *string
	to     *string
	cursor *pagination.Cursor
	limit  int
}

// Create appends one audit entry.
func (r *Repository) Create(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.base.DB(ctx).Create(entry).Error
}

// List returns audit entries newest-first with optional action/date filters.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.HistoryEntry, error) {
	query := r.base.DB(ctx).Model(&models.HistoryEntry{})

	if opts.action != nil {
		query = query.Where("action = ?", *opts.action)
	}
	if opts.from != nil {
		query = query.Where("created_at >= ?", *opts.from)
	}
	if opts.to != nil {
		query = query.Where("created_at < ?", *opts.to)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.HistoryEntry
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByAuthorization returns all entries referencing one authorization, oldest first.
func (r *Repository) ListByAuthorization(ctx context.Context, authorizationID uuid.UUID) ([]models.HistoryEntry, error) {
	var rows []models.HistoryEntry
	err := r.base.DB(ctx).
		Where("authorization_id = ?", authorizationID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type actionCount struct {
	Action enums.HistoryAction
	Total  int64
}

// CountByAction aggregates the total entries per action.
func (r *Repository) CountByAction(ctx context.Context) (map[enums.HistoryAction]int64, error) {
	var rows []actionCount
	err := r.base.DB(ctx).
		Model(&models.HistoryEntry{}).
		Select("action, COUNT(*) AS total").
		Group("action").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enums.HistoryAction]int64, len(rows))
	for _, row := range rows {
		counts[row.Action] = row.Total
	}
	return counts, nil
}

// Latest returns the most recent entries up to limit.
func (r *Repository) Latest(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	var rows []models.HistoryEntry
	err := r.base.DB(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteAll removes every audit entry and reports how many went away.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.base.DB(ctx).Where("1 = 1").Delete(&models.HistoryEntry{})
	return res.RowsAffected, res.Error
}

// DeleteByIDs removes the selected audit entries.
func (r *Repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.base.DB(ctx).Where("id IN ?", ids).Delete(&models.HistoryEntry{})
	return res.RowsAffected, res.Error
}
