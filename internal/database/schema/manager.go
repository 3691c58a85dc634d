// Package schema owns the catalog DDL, the schema version record, and the
// forward-only upgrade path between versions.
//
// # Versions
//
// The version is a single integer stored in the one-row schema_version table.
// Version 1 is the baseline catalog; every later version is reached by a Delta
// registered under the version it upgrades from. Initialize builds the baseline
// and runs the full delta chain, so a new store and an upgraded store end up
// with the same schema.
//
// # Usage
//
//	mgr := schema.NewManager(db.DB, logger, schema.WithSnapshotter(snap))
//	if err := mgr.Initialize(); err != nil { ... } // new store
//	status, err := mgr.Open()                       // existing store
package schema

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mrlokans/bookdb/internal/entities"
	apperrors "github.com/mrlokans/bookdb/internal/errors"
)

const (
	// BaselineVersion is the schema created before any delta runs.
	BaselineVersion = 1

	// SupportedVersion is the newest schema this program understands.
	// It should always be an integer and must never be decreased.
	SupportedVersion = 2

	versionTable = "schema_version"
)

// Snapshotter copies the store before an upgrade touches it.
type Snapshotter interface {
	Snapshot(version int) error
}

// Status describes a store after Open.
type Status struct {
	Stored    int // Version found in the store before Open
	Current   int // Version after Open
	Supported int
	Upgraded  bool
}

// Manager creates, validates, and upgrades the catalog schema.
type Manager struct {
	db          *gorm.DB
	logger      zerolog.Logger
	supported   int
	deltas      map[int]Delta
	snapshotter Snapshotter
}

// Option customizes a Manager.
type Option func(*Manager)

// WithSnapshotter snapshots the store before every upgrade.
func WithSnapshotter(s Snapshotter) Option {
	return func(m *Manager) {
		m.snapshotter = s
	}
}

// NewManager creates a schema manager for the program's supported version.
func NewManager(db *gorm.DB, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		db:        db,
		logger:    logger.With().Str("module", "schema").Logger(),
		supported: SupportedVersion,
		deltas:    DefaultDeltas(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Supported returns the version this manager upgrades to.
func (m *Manager) Supported() int {
	return m.supported
}

// Initialize creates every table, seeds the binding types, and records the
// supported version. It runs as one transaction: on failure no table exists.
func (m *Manager) Initialize() error {
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if tx.Migrator().HasTable(versionTable) {
			return apperrors.Schema("store is already initialized")
		}

		if err := createBaseline(tx); err != nil {
			return err
		}
		return m.applyDeltas(tx, BaselineVersion)
	})
	if err != nil {
		return asSchemaError("initialize schema", err)
	}

	m.logger.Info().Int("version", m.supported).Msg("schema initialized")
	return nil
}

// createBaseline builds the version 1 catalog.
func createBaseline(tx *gorm.DB) error {
	if err := tx.AutoMigrate(entities.CatalogModels()...); err != nil {
		return fmt.Errorf("create catalog tables: %w", err)
	}

	if err := tx.Exec(`CREATE TABLE ` + versionTable + ` (version INTEGER NOT NULL)`).Error; err != nil {
		return fmt.Errorf("create %s: %w", versionTable, err)
	}

	bindings := make([]entities.BindingType, len(entities.DefaultBindingTypes))
	copy(bindings, entities.DefaultBindingTypes)
	if err := tx.Create(&bindings).Error; err != nil {
		return fmt.Errorf("seed binding types: %w", err)
	}

	if err := tx.Exec(`INSERT INTO `+versionTable+` (version) VALUES (?)`, BaselineVersion).Error; err != nil {
		return fmt.Errorf("seed %s: %w", versionTable, err)
	}
	return nil
}

// Version reads the stored schema version without changing anything.
// Exactly one version row must exist.
func (m *Manager) Version() (int, error) {
	return readVersion(m.db)
}

func readVersion(db *gorm.DB) (int, error) {
	if !db.Migrator().HasTable(versionTable) {
		return 0, apperrors.Schema("store is not initialized: schema_version table is missing")
	}

	var versions []int
	if err := db.Raw(`SELECT version FROM ` + versionTable).Scan(&versions).Error; err != nil {
		return 0, apperrors.Schema("read schema version").WithCause(err)
	}

	switch len(versions) {
	case 1:
		return versions[0], nil
	case 0:
		return 0, apperrors.Schema("malformed store: schema_version has no rows")
	default:
		return 0, apperrors.Schemaf("malformed store: schema_version has %d rows", len(versions))
	}
}

// Open validates the stored version against the supported one and upgrades
// older stores. A store written by a newer program is rejected untouched.
func (m *Manager) Open() (Status, error) {
	stored, err := readVersion(m.db)
	if err != nil {
		return Status{}, err
	}

	status := Status{Stored: stored, Current: stored, Supported: m.supported}

	switch {
	case stored > m.supported:
		return status, apperrors.VersionMismatch(stored, m.supported)
	case stored == m.supported:
		m.logger.Debug().Int("version", stored).Msg("schema is current")
		return status, nil
	}

	if err := m.Upgrade(stored); err != nil {
		return status, err
	}

	status.Current = m.supported
	status.Upgraded = true
	return status, nil
}

// Upgrade applies every delta from oldVersion up to the supported version in a
// single transaction. Upgrading from the supported version does nothing. On any
// failure the store stays at oldVersion.
func (m *Manager) Upgrade(oldVersion int) error {
	switch {
	case oldVersion > m.supported:
		return apperrors.VersionMismatch(oldVersion, m.supported)
	case oldVersion == m.supported:
		return nil
	case oldVersion < BaselineVersion:
		return apperrors.Schemaf("unknown schema version %d", oldVersion)
	}

	for v := oldVersion; v < m.supported; v++ {
		if _, ok := m.deltas[v]; !ok {
			return apperrors.Schemaf("no upgrade registered from schema version %d", v)
		}
	}

	if m.snapshotter != nil {
		if err := m.snapshotter.Snapshot(oldVersion); err != nil {
			return apperrors.Schema("snapshot before upgrade").WithCause(err)
		}
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		stored, err := readVersion(tx)
		if err != nil {
			return err
		}
		if stored != oldVersion {
			return apperrors.Schemaf("store is at version %d, expected %d", stored, oldVersion)
		}
		return m.applyDeltas(tx, oldVersion)
	})
	if err != nil {
		return asSchemaError(fmt.Sprintf("upgrade schema from version %d", oldVersion), err)
	}

	m.logger.Info().Int("from", oldVersion).Int("to", m.supported).Msg("schema upgraded")
	return nil
}

// applyDeltas runs the deltas in order starting at from and records the
// reached version after each one.
func (m *Manager) applyDeltas(tx *gorm.DB, from int) error {
	for v := from; v < m.supported; v++ {
		delta, ok := m.deltas[v]
		if !ok {
			return apperrors.Schemaf("no upgrade registered from schema version %d", v)
		}

		applied, err := delta.Applied(tx)
		if err != nil {
			return fmt.Errorf("check delta %d (%s): %w", v, delta.Description, err)
		}
		if applied {
			m.logger.Debug().Int("from", v).Str("delta", delta.Description).Msg("delta already present, skipping")
		} else {
			if err := delta.Apply(tx); err != nil {
				return fmt.Errorf("apply delta %d (%s): %w", v, delta.Description, err)
			}
			m.logger.Debug().Int("from", v).Str("delta", delta.Description).Msg("delta applied")
		}

		if err := tx.Exec(`UPDATE `+versionTable+` SET version = ?`, v+1).Error; err != nil {
			return fmt.Errorf("record schema version %d: %w", v+1, err)
		}
	}
	return nil
}

// asSchemaError keeps domain errors as they are and wraps anything else.
func asSchemaError(msg string, err error) error {
	if apperrors.CodeOf(err) != "" {
		return err
	}
	return apperrors.Schema(msg).WithCause(err)
}
