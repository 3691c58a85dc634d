package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.False(t, cfg.Database.SQLLog)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, LogFormatConsole, cfg.Log.Format)
	assert.True(t, cfg.Migration.BackupBeforeUpgrade)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/shelf.db")
	t.Setenv("SQL_LOG", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("BACKUP_BEFORE_UPGRADE", "false")

	cfg := NewConfig()

	assert.Equal(t, "/tmp/shelf.db", cfg.Database.Path)
	assert.True(t, cfg.Database.SQLLog)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, LogFormatJSON, cfg.Log.Format)
	assert.False(t, cfg.Migration.BackupBeforeUpgrade)
}
