package config

import (
	"github.com/spf13/viper"
)

type LogFormat string

const (
	LogFormatConsole LogFormat = "console" // Human-readable output (default)
	LogFormatJSON    LogFormat = "json"    // One JSON object per line
)

type (
	Config struct {
		Database
		Log
		Migration
	}

	Database struct {
		Path   string
		SQLLog bool // Log every SQL statement through the gorm logger
	}
	Log struct {
		Level  string
		Format LogFormat
	}
	Migration struct {
		BackupBeforeUpgrade bool // Snapshot the store file before applying schema deltas
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("sql_log", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", string(LogFormatConsole))
	v.SetDefault("backup_before_upgrade", true)

	return &Config{
		Database: Database{
			Path:   v.GetString("DATABASE_PATH"),
			SQLLog: v.GetBool("SQL_LOG"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: LogFormat(v.GetString("LOG_FORMAT")),
		},
		Migration: Migration{
			BackupBeforeUpgrade: v.GetBool("BACKUP_BEFORE_UPGRADE"),
		},
	}
}
