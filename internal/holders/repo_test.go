package holders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(v string) *string { return &v }

func TestRepositoryCreateNormalizesBlanks(t *testing.T) {
	db := setupHoldersTestDB(t)
	repo := NewRepository(db)

	created, err := repo.Create(context.Background(), nil, &models.Holder{
		FullName:   "Juan Pérez",
		NationalID: strPtr("0912345678"),
		TaxID:      strPtr("  "),
		Email:      strPtr(""),
		IsActive:   true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Nil(t, created.TaxID)
	assert.Nil(t, created.Email)
	require.NotNil(t, created.NationalID)
	assert.Equal(t, "0912345678", *created.NationalID)
}

func TestRepositoryIdentifierLookups(t *testing.T) {
	db := setupHoldersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, nil, &models.Holder{
		FullName:   "María López",
		NationalID: strPtr("0911111111"),
		TaxID:      strPtr("0911111111001"),
		IsActive:   true,
	})
	require.NoError(t, err)

	byNational, err := repo.FindByNationalID(ctx, nil, "0911111111")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byNational.ID)

	byTax, err := repo.FindByTaxID(ctx, nil, "0911111111001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byTax.ID)

	_, err = repo.FindByNationalID(ctx, nil, "0999999999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListSearchAndActiveFilter(t *testing.T) {
	db := setupHoldersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, nil, &models.Holder{FullName: "Juan Pérez", NationalID: strPtr("0911111111"), IsActive: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, nil, &models.Holder{FullName: "María López", Phone: strPtr("0922222222"), IsActive: true})
	require.NoError(t, err)
	inactive, err := repo.Create(ctx, nil, &models.Holder{FullName: "Pedro Inactivo", IsActive: false})
	require.NoError(t, err)
	_ = inactive

	byName, err := repo.List(ctx, listQuery{search: "maría", limit: 10})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "María López", byName[0].FullName)

	byPhone, err := repo.List(ctx, listQuery{search: "092222", limit: 10})
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "María López", byPhone[0].FullName)

	activeOnly, err := repo.List(ctx, listQuery{activeOnly: true, limit: 10})
	require.NoError(t, err)
	assert.Len(t, activeOnly, 2)

	all, err := repo.List(ctx, listQuery{limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepositoryListOrdersNewestFirst(t *testing.T) {
	db := setupHoldersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	older := &models.Holder{FullName: "Primero", IsActive: true}
	_, err := repo.Create(ctx, nil, older)
	require.NoError(t, err)
	require.NoError(t, db.Model(older).Update("created_at", time.Now().Add(-time.Hour)).Error)

	_, err = repo.Create(ctx, nil, &models.Holder{FullName: "Segundo", IsActive: true})
	require.NoError(t, err)

	rows, err := repo.List(ctx, listQuery{limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Segundo", rows[0].FullName)
	assert.Equal(t, "Primero", rows[1].FullName)
}

func TestRepositoryGetWithAuthorizations(t *testing.T) {
	db := setupHoldersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	holder, err := repo.Create(ctx, nil, &models.Holder{FullName: "Juan Pérez", NationalID: strPtr("0911111111"), IsActive: true})
	require.NoError(t, err)

	require.NoError(t, db.Exec(
		`INSERT INTO authorizations (id, holder_id, type_id, plate, number, expires_on) VALUES (?, ?, ?, 'GBA-1234', 'N-1', '2026-12-31')`,
		uuid.NewString(), holder.ID.String(), uuid.NewString(),
	).Error)

	got, err := repo.GetWithAuthorizations(ctx, holder.ID)
	require.NoError(t, err)
	require.Len(t, got.Authorizations, 1)
	assert.Equal(t, "GBA-1234", got.Authorizations[0].Plate)

	count, err := repo.CountAuthorizations(ctx, nil, holder.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryDelete(t *testing.T) {
	db := setupHoldersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	holder, err := repo.Create(ctx, nil, &models.Holder{FullName: "Juan Pérez", IsActive: true})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, nil, holder.ID))
	assert.ErrorIs(t, repo.Delete(ctx, nil, holder.ID), gorm.ErrRecordNotFound)
}
