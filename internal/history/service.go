package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/munitransit/permits-backend/pkg/enums"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	pkgpagination "github.com/munitransit/permits-backend/pkg/pagination"
)

type historyRepository interface {
	List(ctx context.Context, opts listQuery) ([]models.HistoryEntry, error)
	CountByAction(ctx context.Context) (map[enums.HistoryAction]int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// ListParams carries listing filters from the controller.
type ListParams struct {
	Action string
	From   string
	To     string
	Limit  int
	Cursor string
}

// ListResult is one page of audit entries.
type ListResult struct {
	Items  []models.HistoryEntry
	Cursor string
}

// Counts groups per-action totals the way the activity report expects them.
type Counts struct {
	ByAction  map[enums.HistoryAction]int64 `json:"by_action"`
	Codes     int64                         `json:"codes"`
	Documents int64                         `json:"documents"`
	Updates   int64                         `json:"updates"`
	Deletes   int64                         `json:"deletes"`
	Total     int64                         `json:"total"`
}

// Service exposes audit trail queries and bulk maintenance.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Counts(ctx context.Context) (*Counts, error)
	ClearAll(ctx context.Context) (int64, error)
	DeleteSelected(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type service struct {
	repo historyRepository
}

// NewService builds the history query service.
func NewService(repo historyRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("history repository required")
	}
	return &service{repo: repo}, nil
}

const dateLayout = "2006-01-02"

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{limit: pkgpagination.LimitWithBuffer(params.Limit)}

	if params.Action != "" {
		action, err := enums.ParseHistoryAction(params.Action)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action filter")
		}
		query.action = &action
	}
	if params.From != "" {
		if _, err := time.Parse(dateLayout, params.From); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from date")
		}
		from := params.From
		query.from = &from
	}
	if params.To != "" {
		parsed, err := time.Parse(dateLayout, params.To)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to date")
		}
		// inclusive end date: filter strictly before the next day
		to := parsed.AddDate(0, 0, 1).Format(dateLayout)
		query.to = &to
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list history")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	return &ListResult{Items: rows, Cursor: nextCursor}, nil
}

func (s *service) Counts(ctx context.Context) (*Counts, error) {
	byAction, err := s.repo.CountByAction(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count history")
	}

	counts := &Counts{ByAction: byAction}
	for action, total := range byAction {
		counts.Total += total
		switch action {
		case enums.HistoryActionGenerateCode, enums.HistoryActionDownloadCode:
			counts.Codes += total
		case enums.HistoryActionDownloadDocument:
			counts.Documents += total
		case enums.HistoryActionUpdateAuthorization, enums.HistoryActionUpdateHolder:
			counts.Updates += total
		case enums.HistoryActionDeleteAuthorization, enums.HistoryActionDeleteHolder,
			enums.HistoryActionDeleteAuthorizationCascade, enums.HistoryActionDeleteHolderCascade:
			counts.Deletes += total
		}
	}
	return counts, nil
}

func (s *service) ClearAll(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear history")
	}
	return deleted, nil
}

func (s *service) DeleteSelected(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "at least one history id is required")
	}
	deleted, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete history entries")
	}
	return deleted, nil
}
