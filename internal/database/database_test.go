package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mrlokans/bookdb/internal/errors"
	"github.com/mrlokans/bookdb/internal/logging"
)

// setupTestDB creates a fresh file-backed store in a temporary directory
func setupTestDB(t *testing.T) (*Database, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "library.db")
	db, err := NewDatabase(Options{Path: dbPath, Create: true, Logger: logging.Nop()})
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}
	return db, cleanup
}

func TestNewDatabase_CreatesFile(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := os.Stat(db.Path())
	require.NoError(t, err)
	assert.True(t, db.FileBacked())
}

func TestNewDatabase_MissingFileWithoutCreate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")

	_, err := NewDatabase(Options{Path: dbPath, Logger: logging.Nop()})

	assert.ErrorIs(t, err, apperrors.ErrConnection)
	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "open without create must not create the file")
}

func TestNewDatabase_EmptyPath(t *testing.T) {
	_, err := NewDatabase(Options{Path: "  ", Logger: logging.Nop()})
	assert.ErrorIs(t, err, apperrors.ErrConnection)
}

func TestNewDatabase_UnreachableDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "no", "such", "dir", "library.db")

	_, err := NewDatabase(Options{Path: dbPath, Create: true, Logger: logging.Nop()})
	assert.ErrorIs(t, err, apperrors.ErrConnection)
}

func TestNewDatabase_ForeignKeysEnabled(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	var enabled int
	require.NoError(t, db.DB.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}

func TestNewDatabase_Memory(t *testing.T) {
	db, err := NewDatabase(Options{Path: MemoryPath, Logger: logging.Nop()})
	require.NoError(t, err)
	defer db.Close()

	assert.False(t, db.FileBacked())
	require.NoError(t, db.DB.Exec("CREATE TABLE t (id INTEGER)").Error)
	require.NoError(t, db.DB.Exec("INSERT INTO t (id) VALUES (1)").Error)

	var count int64
	require.NoError(t, db.DB.Raw("SELECT count(*) FROM t").Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNewDatabase_ReopenExisting(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "library.db")
	db, err := NewDatabase(Options{Path: dbPath, Create: true, Logger: logging.Nop()})
	require.NoError(t, err)
	require.NoError(t, db.DB.Exec("CREATE TABLE t (id INTEGER)").Error)
	require.NoError(t, db.Close())

	reopened, err := NewDatabase(Options{Path: dbPath, Logger: logging.Nop()})
	require.NoError(t, err)
	defer reopened.Close()

	assert.True(t, reopened.DB.Migrator().HasTable("t"))
}

func TestNewDatabase_PathWithURIDelimiters(t *testing.T) {
	for _, name := range []string{"my#lib.db", "lib?x.db", "a%20b.db", "two words.db"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			dbPath := filepath.Join(dir, name)

			db, err := NewDatabase(Options{Path: dbPath, Create: true, Logger: logging.Nop()})
			require.NoError(t, err)
			require.NoError(t, db.DB.Exec("CREATE TABLE t (id INTEGER)").Error)
			require.NoError(t, db.Close())

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, name, entries[0].Name())

			reopened, err := NewDatabase(Options{Path: dbPath, Logger: logging.Nop()})
			require.NoError(t, err)
			defer reopened.Close()
			assert.True(t, reopened.DB.Migrator().HasTable("t"))
		})
	}
}

func TestDSN_EscapesPath(t *testing.T) {
	assert.Equal(t, "file:/data/my%23lib.db?_foreign_keys=on&mode=rw", dsn("/data/my#lib.db", false))
	assert.Equal(t, "file:lib%3Fx.db?_foreign_keys=on&mode=rwc", dsn("lib?x.db", true))
	assert.Equal(t, "file:a%2520b.db?_foreign_keys=on&mode=rw", dsn("a%20b.db", false))
}
