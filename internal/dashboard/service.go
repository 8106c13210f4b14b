package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/munitransit/permits-backend/pkg/db/models"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
)

const (
	latestAuthorizationsLimit = 5
	latestHistoryLimit        = 10
)

type dashboardRepository interface {
	CountAuthorizations(ctx context.Context) (int64, error)
	CountActiveAuthorizations(ctx context.Context) (int64, error)
	CountExpiredAuthorizations(ctx context.Context, today time.Time) (int64, error)
	CountHolders(ctx context.Context) (int64, error)
	CountActiveByType(ctx context.Context) ([]TypeCount, error)
	LatestAuthorizations(ctx context.Context, limit int) ([]models.Authorization, error)
}

type historyReader interface {
	Latest(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}

// Overview is the aggregate snapshot the landing page renders.
type Overview struct {
	TotalAuthorizations   int64                  `json:"total_authorizations"`
	ActiveAuthorizations  int64                  `json:"active_authorizations"`
	ExpiredAuthorizations int64                  `json:"expired_authorizations"`
	TotalHolders          int64                  `json:"total_holders"`
	ByType                []TypeCount            `json:"by_type"`
	LatestAuthorizations  []models.Authorization `json:"latest_authorizations"`
	LatestActivity        []models.HistoryEntry  `json:"latest_activity"`
}

// Service builds the dashboard snapshot.
type Service interface {
	Overview(ctx context.Context) (*Overview, error)
}

type service struct {
	repo    dashboardRepository
	history historyReader
	now     func() time.Time
}

// NewService builds the dashboard service.
func NewService(repo dashboardRepository, history historyReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if history == nil {
		return nil, fmt.Errorf("history reader required")
	}
	return &service{repo: repo, history: history, now: time.Now}, nil
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	overview := &Overview{}
	var err error

	if overview.TotalAuthorizations, err = s.repo.CountAuthorizations(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count authorizations")
	}
	if overview.ActiveAuthorizations, err = s.repo.CountActiveAuthorizations(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active authorizations")
	}
	if overview.ExpiredAuthorizations, err = s.repo.CountExpiredAuthorizations(ctx, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count expired authorizations")
	}
	if overview.TotalHolders, err = s.repo.CountHolders(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count holders")
	}
	if overview.ByType, err = s.repo.CountActiveByType(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count authorizations by type")
	}
	if overview.LatestAuthorizations, err = s.repo.LatestAuthorizations(ctx, latestAuthorizationsLimit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest authorizations")
	}
	if overview.LatestActivity, err = s.history.Latest(ctx, latestHistoryLimit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest activity")
	}

	return overview, nil
}
