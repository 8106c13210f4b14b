package staff

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStaffTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS staff_users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupStaffTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.StaffUser{
		Email:        "inspector@example.gob.ec",
		PasswordHash: "hash",
		FullName:     "Inspector Uno",
		IsActive:     true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	byEmail, err := repo.FindByEmail(ctx, "inspector@example.gob.ec")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Inspector Uno", byID.FullName)

	_, err = repo.FindByEmail(ctx, "nobody@example.gob.ec")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	db := setupStaffTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.StaffUser{
		Email:        "inspector@example.gob.ec",
		PasswordHash: "hash",
		FullName:     "Inspector Uno",
		IsActive:     true,
	})
	require.NoError(t, err)

	at := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, at))

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.Equal(t, at, got.LastLoginAt.UTC())
}
