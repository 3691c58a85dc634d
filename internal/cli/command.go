// Package cli implements the bookdb subcommands.
//
// Every command follows the same two steps: ParseFlags validates the command
// line, then Run opens the store, does its work, and closes the store before
// returning.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/mrlokans/bookdb/internal/backup"
	"github.com/mrlokans/bookdb/internal/config"
	"github.com/mrlokans/bookdb/internal/database"
	"github.com/mrlokans/bookdb/internal/database/schema"
	"github.com/mrlokans/bookdb/internal/entities"
	apperrors "github.com/mrlokans/bookdb/internal/errors"
)

// Command is a parsed, runnable subcommand.
type Command interface {
	ParseFlags(args []string) error
	Run() error
}

// Env carries what every command shares.
type Env struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Out     io.Writer
	Err     io.Writer
	Version string
}

// NewEnv returns an Env writing to the process's stdout and stderr.
func NewEnv(cfg *config.Config, logger zerolog.Logger, version string) *Env {
	return &Env{Config: cfg, Logger: logger, Out: os.Stdout, Err: os.Stderr, Version: version}
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

// newFlagSet creates a flag set with the shared --db flag bound to dbPath.
func (e *Env) newFlagSet(name, usage, description string, dbPath *string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.Err)
	fs.SortFlags = false
	fs.StringVar(dbPath, "db", e.Config.Database.Path, "Path to the library database file (env DATABASE_PATH)")
	fs.Usage = func() {
		fmt.Fprintf(e.Err, "Usage: bookdb %s\n\n", usage)
		fmt.Fprintf(e.Err, "%s\n\n", description)
		fmt.Fprintf(e.Err, "Options:\n")
		fs.PrintDefaults()
	}
	return fs
}

// openStore opens an existing store and brings its schema up to date.
// The caller closes the returned handle.
func (e *Env) openStore(path string) (*database.Database, error) {
	db, err := database.NewDatabase(database.Options{
		Path:   path,
		SQLLog: e.Config.Database.SQLLog,
		Logger: e.Logger,
	})
	if err != nil {
		return nil, err
	}

	var opts []schema.Option
	if e.Config.Migration.BackupBeforeUpgrade && db.FileBacked() {
		opts = append(opts, schema.WithSnapshotter(backup.NewSnapshotter(path, e.Logger)))
	}

	status, err := schema.NewManager(db.DB, e.Logger, opts...).Open()
	if err != nil {
		db.Close()
		return nil, err
	}
	if status.Upgraded {
		e.printf("Upgraded library schema from version %d to %d\n", status.Stored, status.Current)
	}
	return db, nil
}

// ExitCode picks the process exit code for an error returned by a command.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return apperrors.CodeOf(err).ExitCode()
}

// fatalHints explain what to do about errors that leave the store unusable
// for every command, not just the one that failed.
var fatalHints = map[apperrors.Code]string{
	apperrors.CodeConnection:      "Check --db or DATABASE_PATH, or run 'bookdb init' to create a library.",
	apperrors.CodeSchema:          "The file is not a usable library; restore a .bak snapshot or init a new one.",
	apperrors.CodeVersionMismatch: "The library was written by a newer bookdb; upgrade the program to open it.",
}

// ReportError writes err to w. Ambiguous matches list their candidates;
// fatal errors say that no command can use the library until they are fixed.
func ReportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		return
	}

	if domainErr.Code.Fatal() {
		fmt.Fprintf(w, "The library was not modified and cannot be used until this is fixed.\n")
		if hint, ok := fatalHints[domainErr.Code]; ok {
			fmt.Fprintf(w, "%s\n", hint)
		}
		return
	}

	if domainErr.Code != apperrors.CodeAmbiguousMatch {
		return
	}
	candidates, ok := domainErr.Details.([]entities.Printing)
	if !ok {
		return
	}
	fmt.Fprintf(w, "Candidates:\n")
	for _, p := range candidates {
		fmt.Fprintf(w, "  #%d %s\n", p.ID, describePrinting(p))
	}
	fmt.Fprintf(w, "Add --binding, --author, or --subtitle to pick one.\n")
}

func describePrinting(p entities.Printing) string {
	var b strings.Builder
	b.WriteString(p.Book.Title)
	if p.Book.Subtitle != "" {
		b.WriteString(": ")
		b.WriteString(p.Book.Subtitle)
	}
	if p.Year != nil {
		fmt.Fprintf(&b, " (%d)", *p.Year)
	}
	if p.BindingType != nil {
		fmt.Fprintf(&b, " [%s]", p.BindingType.Name)
	}
	if p.ISBN != nil {
		fmt.Fprintf(&b, " ISBN %s", *p.ISBN)
	}
	if p.PrintingNumber > 1 {
		fmt.Fprintf(&b, " printing %d", p.PrintingNumber)
	}
	return b.String()
}
