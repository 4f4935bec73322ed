package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesDirectoryAndMigrates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "ferry.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0700), info.Mode().Perm())

	var count int
	require.NoError(t, db.Handle().QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	// Running again applies nothing new
	require.NoError(t, Migrate(db.Handle()))

	var count int
	require.NoError(t, db.Handle().QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ferry.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
