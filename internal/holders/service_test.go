package holders

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/internal/history"
	"github.com/munitransit/permits-backend/internal/identity"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/munitransit/permits-backend/pkg/enums"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errUniqueHolders = errors.New(`duplicate key value violates unique constraint "holders_national_id_key"`)

type fakeHoldersRepo struct {
	rows      []models.Holder
	createErr error
	updateErr error
	updated   []models.Holder
	lastQuery listQuery
}

func (f *fakeHoldersRepo) Create(ctx context.Context, tx *gorm.DB, row *models.Holder) (*models.Holder, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	row.ID = uuid.New()
	f.rows = append(f.rows, *row)
	return row, nil
}

func (f *fakeHoldersRepo) Update(ctx context.Context, tx *gorm.DB, row *models.Holder) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, *row)
	for i := range f.rows {
		if f.rows[i].ID == row.ID {
			f.rows[i] = *row
		}
	}
	return nil
}

func (f *fakeHoldersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Holder, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeHoldersRepo) GetWithAuthorizations(ctx context.Context, id uuid.UUID) (*models.Holder, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeHoldersRepo) FindByNationalID(ctx context.Context, tx *gorm.DB, nationalID string) (*models.Holder, error) {
	for i := range f.rows {
		if f.rows[i].NationalID != nil && *f.rows[i].NationalID == nationalID {
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeHoldersRepo) FindByTaxID(ctx context.Context, tx *gorm.DB, taxID string) (*models.Holder, error) {
	for i := range f.rows {
		if f.rows[i].TaxID != nil && *f.rows[i].TaxID == taxID {
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeHoldersRepo) List(ctx context.Context, opts listQuery) ([]models.Holder, error) {
	f.lastQuery = opts
	return f.rows, nil
}

type capturedRecord struct {
	authorizationID *uuid.UUID
	action          enums.HistoryAction
	description     string
}

type fakeRecorder struct {
	records []capturedRecord
}

func (f *fakeRecorder) Record(ctx context.Context, authorizationID *uuid.UUID, actor history.Actor, action enums.HistoryAction, description string) {
	f.records = append(f.records, capturedRecord{authorizationID: authorizationID, action: action, description: description})
}

func newTestService(t *testing.T, repo *fakeHoldersRepo) (Service, *fakeRecorder) {
	t.Helper()
	recorder := &fakeRecorder{}
	svc, err := NewService(repo, recorder)
	require.NoError(t, err)
	return svc, recorder
}

func TestResolveCreatesWhenUnmatched(t *testing.T) {
	repo := &fakeHoldersRepo{}
	svc, _ := newTestService(t, repo)

	holder, created, err := svc.Resolve(context.Background(), nil, identity.Input{
		FullName:   " Juan Pérez ",
		NationalID: "0912345678",
		Phone:      "0911111111",
	}, history.Actor{Name: "inspector"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Juan Pérez", holder.FullName)
	require.NotNil(t, holder.NationalID)
	assert.Equal(t, "0912345678", *holder.NationalID)
	assert.Nil(t, holder.TaxID)
	require.NotNil(t, holder.CreatedBy)
	assert.Equal(t, "inspector", *holder.CreatedBy)
	assert.True(t, holder.IsActive)
}

func TestResolveRequiresAnIdentifier(t *testing.T) {
	svc, _ := newTestService(t, &fakeHoldersRepo{})

	_, _, err := svc.Resolve(context.Background(), nil, identity.Input{FullName: "Juan"}, history.Actor{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestResolveMatchesByNationalIDAndMerges(t *testing.T) {
	existing := models.Holder{
		ID:         uuid.New(),
		FullName:   "Juan Pérez",
		NationalID: strPtr("0912345678"),
		IsActive:   true,
	}
	repo := &fakeHoldersRepo{rows: []models.Holder{existing}}
	svc, _ := newTestService(t, repo)

	holder, created, err := svc.Resolve(context.Background(), nil, identity.Input{
		FullName:   "Juan Pérez",
		NationalID: "0912345678",
		TaxID:      "0912345678001",
		Email:      "juan@example.com",
	}, history.Actor{})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, holder.ID)
	require.NotNil(t, holder.TaxID)
	assert.Equal(t, "0912345678001", *holder.TaxID)
	require.NotNil(t, holder.Email)
	assert.Equal(t, "juan@example.com", *holder.Email)
	require.Len(t, repo.updated, 1)
}

func TestResolveNeverBlanksStoredFields(t *testing.T) {
	existing := models.Holder{
		ID:         uuid.New(),
		FullName:   "Juan Pérez",
		NationalID: strPtr("0912345678"),
		Email:      strPtr("juan@example.com"),
		IsActive:   true,
	}
	repo := &fakeHoldersRepo{rows: []models.Holder{existing}}
	svc, _ := newTestService(t, repo)

	holder, created, err := svc.Resolve(context.Background(), nil, identity.Input{
		FullName:   "Juan Pérez",
		NationalID: "0912345678",
	}, history.Actor{})
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, holder.Email)
	assert.Equal(t, "juan@example.com", *holder.Email)
	assert.Empty(t, repo.updated)
}

func TestResolveBackfillsNationalIDOnTaxIDMatch(t *testing.T) {
	existing := models.Holder{
		ID:       uuid.New(),
		FullName: "Comercial Pérez S.A.",
		TaxID:    strPtr("0912345678001"),
		IsActive: true,
	}
	repo := &fakeHoldersRepo{rows: []models.Holder{existing}}
	svc, _ := newTestService(t, repo)

	holder, created, err := svc.Resolve(context.Background(), nil, identity.Input{
		FullName:   "Comercial Pérez S.A.",
		NationalID: "0912345678",
		TaxID:      "0912345678001",
	}, history.Actor{})
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, holder.NationalID)
	assert.Equal(t, "0912345678", *holder.NationalID)
	require.Len(t, repo.updated, 1)
}

func TestResolveDuplicateIdentifierConflict(t *testing.T) {
	repo := &fakeHoldersRepo{createErr: errUniqueHolders}
	svc, _ := newTestService(t, repo)

	_, _, err := svc.Resolve(context.Background(), nil, identity.Input{
		FullName:   "Juan Pérez",
		NationalID: "0912345678",
	}, history.Actor{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestListPassesFiltersAndPaginates(t *testing.T) {
	repo := &fakeHoldersRepo{}
	svc, _ := newTestService(t, repo)

	result, err := svc.List(context.Background(), ListParams{Search: "juan", ActiveOnly: true, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, result.Cursor)
	assert.Equal(t, "juan", repo.lastQuery.search)
	assert.True(t, repo.lastQuery.activeOnly)
	assert.Equal(t, 11, repo.lastQuery.limit)

	_, err = svc.List(context.Background(), ListParams{Cursor: "not base64"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newTestService(t, &fakeHoldersRepo{})

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateRecordsHolderHistory(t *testing.T) {
	existing := models.Holder{
		ID:         uuid.New(),
		FullName:   "Juan Pérez",
		NationalID: strPtr("0912345678"),
		IsActive:   true,
	}
	repo := &fakeHoldersRepo{rows: []models.Holder{existing}}
	svc, recorder := newTestService(t, repo)

	updated, err := svc.Update(context.Background(), existing.ID, UpdateInput{
		Identity: identity.Input{
			Mode:       enums.IdentificationModeNationalID,
			FullName:   "Juan Alberto Pérez",
			NationalID: "0912345678",
			Phone:      "0911111111",
		},
	}, history.Actor{Name: "inspector"})
	require.NoError(t, err)
	assert.Equal(t, "Juan Alberto Pérez", updated.FullName)
	require.NotNil(t, updated.Phone)

	require.Len(t, recorder.records, 1)
	assert.Nil(t, recorder.records[0].authorizationID)
	assert.Equal(t, enums.HistoryActionUpdateHolder, recorder.records[0].action)
	assert.Contains(t, recorder.records[0].description, "Juan Alberto Pérez")
}

func TestUpdateRejectsInvalidIdentity(t *testing.T) {
	existing := models.Holder{ID: uuid.New(), FullName: "Juan", IsActive: true}
	repo := &fakeHoldersRepo{rows: []models.Holder{existing}}
	svc, recorder := newTestService(t, repo)

	_, err := svc.Update(context.Background(), existing.ID, UpdateInput{
		Identity: identity.Input{
			Mode:       enums.IdentificationModeNationalID,
			FullName:   "Juan",
			NationalID: "123",
		},
	}, history.Actor{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Empty(t, recorder.records)
}

func TestUpdateTogglesActiveFlag(t *testing.T) {
	existing := models.Holder{
		ID:         uuid.New(),
		FullName:   "Juan Pérez",
		NationalID: strPtr("0912345678"),
		IsActive:   true,
	}
	repo := &fakeHoldersRepo{rows: []models.Holder{existing}}
	svc, _ := newTestService(t, repo)

	inactive := false
	updated, err := svc.Update(context.Background(), existing.ID, UpdateInput{
		Identity: identity.Input{
			Mode:       enums.IdentificationModeNationalID,
			FullName:   "Juan Pérez",
			NationalID: "0912345678",
		},
		IsActive: &inactive,
	}, history.Actor{})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}
