package authorizations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/munitransit/permits-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type seededPermit struct {
	holder models.Holder
	typ    models.AuthorizationType
	auth   models.Authorization
}

func seedPermit(t *testing.T, db *gorm.DB, plate, number string, expiresOn time.Time, active bool) seededPermit {
	t.Helper()

	national := "09" + uuid.NewString()[:8]
	holder := models.Holder{ID: uuid.New(), FullName: "Juan Pérez", NationalID: &national, IsActive: true}
	require.NoError(t, db.Create(&holder).Error)

	typ := models.AuthorizationType{ID: uuid.New(), Code: "AUT-" + uuid.NewString()[:6], Name: "Estacionamiento Liviano", IsActive: true}
	require.NoError(t, db.Create(&typ).Error)

	auth := models.Authorization{
		ID:        uuid.New(),
		HolderID:  holder.ID,
		TypeID:    typ.ID,
		Plate:     plate,
		Number:    number,
		ExpiresOn: expiresOn,
		IsActive:  active,
	}
	require.NoError(t, db.Create(&auth).Error)

	return seededPermit{holder: holder, typ: typ, auth: auth}
}

func TestRepositoryCreateAndFindByID(t *testing.T) {
	db := setupAuthorizationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedPermit(t, db, "GBA-1234", "N-1", date(2026, time.December, 31), true)

	created, err := repo.Create(ctx, nil, &models.Authorization{
		HolderID:  seeded.holder.ID,
		TypeID:    seeded.typ.ID,
		Plate:     "GBA-5678",
		Number:    "N-2",
		ExpiresOn: date(2026, time.December, 31),
		IsActive:  true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Holder)
	require.NotNil(t, got.Type)
	assert.Equal(t, seeded.holder.FullName, got.Holder.FullName)
}

func TestRepositoryExistsChecks(t *testing.T) {
	db := setupAuthorizationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedPermit(t, db, "GBA-1234", "N-1", date(2026, time.December, 31), true)

	taken, err := repo.ExistsByNumber(ctx, nil, "N-1")
	require.NoError(t, err)
	assert.True(t, taken)

	free, err := repo.ExistsByNumber(ctx, nil, "N-9")
	require.NoError(t, err)
	assert.False(t, free)

	dup, err := repo.ExistsByHolderPlateType(ctx, nil, seeded.holder.ID, seeded.typ.ID, "GBA-1234")
	require.NoError(t, err)
	assert.True(t, dup)

	other, err := repo.ExistsByHolderPlateType(ctx, nil, seeded.holder.ID, seeded.typ.ID, "GBA-9999")
	require.NoError(t, err)
	assert.False(t, other)
}

func TestRepositoryFindActiveByPlateNumber(t *testing.T) {
	db := setupAuthorizationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedPermit(t, db, "GBA-1234", "N-1", date(2026, time.December, 31), true)
	seedPermit(t, db, "GBA-5678", "N-2", date(2026, time.December, 31), false)

	found, err := repo.FindActiveByPlateNumber(ctx, "GBA-1234", "N-1")
	require.NoError(t, err)
	require.NotNil(t, found.Holder)
	assert.Equal(t, "GBA-1234", found.Plate)

	_, err = repo.FindActiveByPlateNumber(ctx, "GBA-5678", "N-2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListSearchSelectors(t *testing.T) {
	db := setupAuthorizationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedPermit(t, db, "GBA-1234", "N-1", date(2026, time.December, 31), true)
	seedPermit(t, db, "XYZ-9999", "N-2", date(2026, time.December, 31), true)

	byPlate, err := repo.List(ctx, listQuery{searchField: SearchPlate, search: "gba", limit: 10})
	require.NoError(t, err)
	require.Len(t, byPlate, 1)
	assert.Equal(t, "GBA-1234", byPlate[0].Plate)

	byNational, err := repo.List(ctx, listQuery{searchField: SearchNationalID, search: *seeded.holder.NationalID, limit: 10})
	require.NoError(t, err)
	require.Len(t, byNational, 1)
	assert.Equal(t, seeded.auth.ID, byNational[0].ID)

	byNumber, err := repo.List(ctx, listQuery{searchField: SearchNumber, search: "n-2", limit: 10})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, "XYZ-9999", byNumber[0].Plate)
}

func TestRepositoryListStateFilter(t *testing.T) {
	db := setupAuthorizationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	today := date(2026, time.March, 10)

	current := seedPermit(t, db, "GBA-1111", "N-1", date(2026, time.December, 31), true)
	lapsed := seedPermit(t, db, "GBA-2222", "N-2", date(2026, time.January, 1), true)
	disabled := seedPermit(t, db, "GBA-3333", "N-3", date(2026, time.December, 31), false)

	active := enums.AuthorizationStateActive
	rows, err := repo.List(ctx, listQuery{state: &active, today: today, limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	expired := enums.AuthorizationStateExpired
	rows, err = repo.List(ctx, listQuery{state: &expired, today: today, limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, lapsed.auth.ID, rows[0].ID)

	inactive := enums.AuthorizationStateInactive
	rows, err = repo.List(ctx, listQuery{state: &inactive, today: today, limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, disabled.auth.ID, rows[0].ID)
	_ = current
}

func TestRepositoryListPreloadsAssociations(t *testing.T) {
	db := setupAuthorizationsTestDB(t)
	repo := NewRepository(db)

	seedPermit(t, db, "GBA-1234", "N-1", date(2026, time.December, 31), true)

	rows, err := repo.List(context.Background(), listQuery{limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Holder)
	require.NotNil(t, rows[0].Type)
}

func TestRepositoryListByHolderAndCount(t *testing.T) {
	db := setupAuthorizationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedPermit(t, db, "GBA-1234", "N-1", date(2026, time.December, 31), true)
	_, err := repo.Create(ctx, nil, &models.Authorization{
		HolderID:  seeded.holder.ID,
		TypeID:    seeded.typ.ID,
		Plate:     "GBA-5678",
		Number:    "N-2",
		ExpiresOn: date(2026, time.December, 31),
		IsActive:  true,
	})
	require.NoError(t, err)

	rows, err := repo.ListByHolder(ctx, nil, seeded.holder.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	count, err := repo.CountByHolder(ctx, nil, seeded.holder.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepositoryDelete(t *testing.T) {
	db := setupAuthorizationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedPermit(t, db, "GBA-1234", "N-1", date(2026, time.December, 31), true)

	require.NoError(t, repo.Delete(ctx, nil, seeded.auth.ID))
	assert.ErrorIs(t, repo.Delete(ctx, nil, seeded.auth.ID), gorm.ErrRecordNotFound)
}
