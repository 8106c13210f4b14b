package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/pkg/db/models"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDashboardRepo struct {
	total       int64
	active      int64
	expired     int64
	holders     int64
	byType      []TypeCount
	latest      []models.Authorization
	countErr    error
	latestLimit int
}

func (f *fakeDashboardRepo) CountAuthorizations(ctx context.Context) (int64, error) {
	return f.total, f.countErr
}

func (f *fakeDashboardRepo) CountActiveAuthorizations(ctx context.Context) (int64, error) {
	return f.active, nil
}

func (f *fakeDashboardRepo) CountExpiredAuthorizations(ctx context.Context, today time.Time) (int64, error) {
	return f.expired, nil
}

func (f *fakeDashboardRepo) CountHolders(ctx context.Context) (int64, error) {
	return f.holders, nil
}

func (f *fakeDashboardRepo) CountActiveByType(ctx context.Context) ([]TypeCount, error) {
	return f.byType, nil
}

func (f *fakeDashboardRepo) LatestAuthorizations(ctx context.Context, limit int) ([]models.Authorization, error) {
	f.latestLimit = limit
	return f.latest, nil
}

type fakeHistoryReader struct {
	entries []models.HistoryEntry
	limit   int
}

func (f *fakeHistoryReader) Latest(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	f.limit = limit
	return f.entries, nil
}

func TestOverviewAssemblesSnapshot(t *testing.T) {
	repo := &fakeDashboardRepo{
		total:   42,
		active:  30,
		expired: 7,
		holders: 25,
		byType:  []TypeCount{{Code: "AUT-001", Name: "Estacionamiento Liviano", Total: 12}},
		latest:  []models.Authorization{{ID: uuid.New(), Plate: "GBA-1234"}},
	}
	reader := &fakeHistoryReader{entries: []models.HistoryEntry{{ID: uuid.New()}}}
	svc, err := NewService(repo, reader)
	require.NoError(t, err)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), overview.TotalAuthorizations)
	assert.Equal(t, int64(30), overview.ActiveAuthorizations)
	assert.Equal(t, int64(7), overview.ExpiredAuthorizations)
	assert.Equal(t, int64(25), overview.TotalHolders)
	require.Len(t, overview.ByType, 1)
	assert.Len(t, overview.LatestAuthorizations, 1)
	assert.Len(t, overview.LatestActivity, 1)

	assert.Equal(t, latestAuthorizationsLimit, repo.latestLimit)
	assert.Equal(t, latestHistoryLimit, reader.limit)
}

func TestOverviewSurfacesRepoFailure(t *testing.T) {
	repo := &fakeDashboardRepo{countErr: errors.New("connection refused")}
	svc, err := NewService(repo, &fakeHistoryReader{})
	require.NoError(t, err)

	_, err = svc.Overview(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}
