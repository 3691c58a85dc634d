package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookdb/internal/logging"
)

func TestSnapshotter_Snapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	require.NoError(t, os.WriteFile(path, []byte("sqlite bytes"), 0o644))

	s := NewSnapshotter(path, logging.Nop())
	require.NoError(t, s.Snapshot(1))

	assert.Equal(t, path+".v1.bak", s.PathFor(1))
	data, err := os.ReadFile(s.PathFor(1))
	require.NoError(t, err)
	assert.Equal(t, "sqlite bytes", string(data))
}

func TestSnapshotter_OverwritesPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	s := NewSnapshotter(path, logging.Nop())

	require.NoError(t, os.WriteFile(path, []byte("first"), 0o644))
	require.NoError(t, s.Snapshot(3))
	require.NoError(t, os.WriteFile(path, []byte("second"), 0o644))
	require.NoError(t, s.Snapshot(3))

	data, err := os.ReadFile(s.PathFor(3))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestSnapshotter_MissingStore(t *testing.T) {
	s := NewSnapshotter(filepath.Join(t.TempDir(), "missing.db"), logging.Nop())

	assert.Error(t, s.Snapshot(1))
}
