package cli

import (
	"github.com/mrlokans/bookdb/internal/database"
	"github.com/mrlokans/bookdb/internal/database/catalog"
	"github.com/mrlokans/bookdb/internal/database/schema"
)

// StatsCommand prints row counts for the library.
type StatsCommand struct {
	env          *Env
	DatabasePath string
}

func NewStatsCommand(env *Env) *StatsCommand {
	return &StatsCommand{env: env}
}

func (cmd *StatsCommand) ParseFlags(args []string) error {
	fs := cmd.env.newFlagSet("stats", "stats [--db <path>]", "Show how many books, printings, and copies the library holds.", &cmd.DatabasePath)
	return fs.Parse(args)
}

func (cmd *StatsCommand) Run() error {
	db, err := cmd.env.openStore(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := catalog.NewRepository(db.DB).Stats()
	if err != nil {
		return err
	}

	cmd.env.printf("Books:         %d\n", s.Books)
	cmd.env.printf("Printings:     %d\n", s.Printings)
	cmd.env.printf("Copies:        %d\n", s.Copies)
	cmd.env.printf("Ownerships:    %d\n", s.Ownerships)
	cmd.env.printf("Owners:        %d\n", s.Owners)
	cmd.env.printf("Authors:       %d\n", s.Authors)
	cmd.env.printf("Genres:        %d\n", s.Genres)
	cmd.env.printf("Binding types: %d\n", s.BindingTypes)
	return nil
}

// PruneCommand deletes catalog rows nothing refers to anymore.
type PruneCommand struct {
	env          *Env
	DatabasePath string
	Catalog      bool
}

func NewPruneCommand(env *Env) *PruneCommand {
	return &PruneCommand{env: env}
}

func (cmd *PruneCommand) ParseFlags(args []string) error {
	fs := cmd.env.newFlagSet("prune", "prune [--catalog]",
		"Delete authors, genres, and owners that nothing refers to. Removing copies never\n"+
			"deletes these on its own.", &cmd.DatabasePath)
	fs.BoolVar(&cmd.Catalog, "catalog", false, "Also delete printings nobody owns and books left without printings")
	return fs.Parse(args)
}

func (cmd *PruneCommand) Run() error {
	db, err := cmd.env.openStore(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := catalog.NewRepository(db.DB).Prune(catalog.PruneOptions{Catalog: cmd.Catalog})
	if err != nil {
		return err
	}

	if result.Total() == 0 {
		cmd.env.printf("Nothing to prune\n")
		return nil
	}
	cmd.env.printf("Pruned %d printing(s), %d book(s), %d author(s), %d genre(s), %d owner(s)\n",
		result.Printings, result.Books, result.Authors, result.Genres, result.Owners)
	return nil
}

// VersionCommand reports the program and schema versions without changing the store.
type VersionCommand struct {
	env          *Env
	DatabasePath string
}

func NewVersionCommand(env *Env) *VersionCommand {
	return &VersionCommand{env: env}
}

func (cmd *VersionCommand) ParseFlags(args []string) error {
	fs := cmd.env.newFlagSet("version", "version [--db <path>]",
		"Print the program version and the library's schema version. Never upgrades.", &cmd.DatabasePath)
	return fs.Parse(args)
}

func (cmd *VersionCommand) Run() error {
	cmd.env.printf("bookdb %s\n", cmd.env.Version)
	cmd.env.printf("Supported schema version: %d\n", schema.SupportedVersion)

	db, err := database.NewDatabase(database.Options{Path: cmd.DatabasePath, Logger: cmd.env.Logger})
	if err != nil {
		return err
	}
	defer db.Close()

	stored, err := schema.NewManager(db.DB, cmd.env.Logger).Version()
	if err != nil {
		return err
	}
	cmd.env.printf("Library schema version:   %d (%s)\n", stored, cmd.DatabasePath)
	return nil
}
