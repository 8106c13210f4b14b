package holders

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHoldersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS holders (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL,
  national_id TEXT UNIQUE,
  tax_id TEXT UNIQUE,
  email TEXT UNIQUE,
  phone TEXT UNIQUE,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS authorization_types (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS authorizations (
  id TEXT PRIMARY KEY,
  holder_id TEXT NOT NULL,
  type_id TEXT NOT NULL,
  plate TEXT NOT NULL,
  number TEXT NOT NULL UNIQUE,
  expires_on DATE NOT NULL,
  payload TEXT,
  code_generated INTEGER NOT NULL DEFAULT 0,
  code_downloaded_at DATETIME,
  document_downloaded_at DATETIME,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}
