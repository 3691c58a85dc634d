package cli

import (
	"os"

	"github.com/mrlokans/bookdb/internal/database"
	"github.com/mrlokans/bookdb/internal/database/schema"
	apperrors "github.com/mrlokans/bookdb/internal/errors"
)

// InitCommand creates a new, empty library.
type InitCommand struct {
	env          *Env
	DatabasePath string
}

func NewInitCommand(env *Env) *InitCommand {
	return &InitCommand{env: env}
}

func (cmd *InitCommand) ParseFlags(args []string) error {
	fs := cmd.env.newFlagSet("init", "init [--db <path>]",
		"Create a new library database with every table and the seeded binding types.", &cmd.DatabasePath)
	return fs.Parse(args)
}

func (cmd *InitCommand) Run() error {
	if _, err := os.Stat(cmd.DatabasePath); err == nil {
		return apperrors.Schemaf("%s already exists; refusing to initialize over it", cmd.DatabasePath)
	}

	db, err := database.NewDatabase(database.Options{
		Path:   cmd.DatabasePath,
		Create: true,
		SQLLog: cmd.env.Config.Database.SQLLog,
		Logger: cmd.env.Logger,
	})
	if err != nil {
		return err
	}

	mgr := schema.NewManager(db.DB, cmd.env.Logger)
	if err := mgr.Initialize(); err != nil {
		db.Close()
		// Nothing was committed; do not leave an empty file that blocks a retry.
		os.Remove(cmd.DatabasePath)
		return err
	}
	if err := db.Close(); err != nil {
		return apperrors.Connection("close database").WithCause(err)
	}

	cmd.env.printf("Initialized library at %s (schema version %d)\n", cmd.DatabasePath, mgr.Supported())
	return nil
}
