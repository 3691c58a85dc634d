package database

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	apperrors "github.com/mrlokans/bookdb/internal/errors"
	"github.com/mrlokans/bookdb/internal/logging"
)

// MemoryPath opens a private in-memory store, used by tests.
const MemoryPath = ":memory:"

// Options configures how a store file is opened.
type Options struct {
	Path   string
	Create bool // Create the file when it does not exist; otherwise it must already exist
	SQLLog bool
	Logger zerolog.Logger
}

// Database is the single open handle on a catalog store.
type Database struct {
	DB     *gorm.DB
	path   string
	logger zerolog.Logger
}

// NewDatabase opens the store at opts.Path for reading and writing.
// Failures are reported as connection errors.
func NewDatabase(opts Options) (*Database, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, apperrors.Connection("database path is empty")
	}

	if opts.Path != MemoryPath && !opts.Create {
		if _, err := os.Stat(opts.Path); err != nil {
			return nil, apperrors.Connectionf("database %s is not accessible", opts.Path).WithCause(err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn(opts.Path, opts.Create)), &gorm.Config{
		Logger: logging.GormLogger(opts.Logger, opts.SQLLog),
	})
	if err != nil {
		return nil, apperrors.Connectionf("failed to connect to database %s", opts.Path).WithCause(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperrors.Connection("failed to get sql handle").WithCause(err)
	}

	// One writer, one reader, one process: a single connection keeps every
	// statement of a transaction on the same handle and an in-memory store alive.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, apperrors.Connectionf("failed to open database %s", opts.Path).WithCause(err)
	}

	opts.Logger.Debug().Str("path", opts.Path).Bool("create", opts.Create).Msg("database opened")

	return &Database{DB: db, path: opts.Path, logger: opts.Logger}, nil
}

// dsn builds a SQLite URI with foreign keys enforced. Without create the
// file is opened read-write only, so a missing file is never created.
// The path is percent-escaped: SQLite reads '?' and '#' as URI delimiters
// and decodes %XX, so a raw path could name a different file.
func dsn(path string, create bool) string {
	mode := "rw"
	if create {
		mode = "rwc"
	}
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	if path == MemoryPath {
		return "file::memory:?" + params.Encode()
	}
	params.Set("mode", mode)
	return fmt.Sprintf("file:%s?%s", (&url.URL{Path: path}).EscapedPath(), params.Encode())
}

// Path returns the path the store was opened from.
func (d *Database) Path() string {
	return d.path
}

// FileBacked reports whether the store lives in a file on disk.
func (d *Database) FileBacked() bool {
	return d.path != MemoryPath
}

// Close releases the handle.
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
