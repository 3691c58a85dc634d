// Package backup takes copies of a store file before it is modified in place.
package backup

import (
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"
)

// Snapshotter copies a store file next to itself.
type Snapshotter struct {
	path   string
	logger zerolog.Logger
}

// NewSnapshotter creates a snapshotter for the store file at path.
func NewSnapshotter(path string, logger zerolog.Logger) *Snapshotter {
	return &Snapshotter{path: path, logger: logger}
}

// PathFor returns where the snapshot of the given schema version is written.
func (s *Snapshotter) PathFor(version int) string {
	return fmt.Sprintf("%s.v%d.bak", s.path, version)
}

// Snapshot copies the store file to PathFor(version). The copy is written to a
// temporary file and renamed into place, so a partial snapshot is never visible.
func (s *Snapshotter) Snapshot(version int) error {
	src, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open store for snapshot: %w", err)
	}
	defer src.Close()

	dst := s.PathFor(version)
	if err := atomic.WriteFile(dst, src); err != nil {
		return fmt.Errorf("write snapshot %s: %w", dst, err)
	}

	s.logger.Info().Str("snapshot", dst).Int("version", version).Msg("store snapshot written")
	return nil
}
