package main

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/mrlokans/bookdb/internal/cli"
	"github.com/mrlokans/bookdb/internal/config"
	"github.com/mrlokans/bookdb/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	cfg := config.NewConfig()
	logger := logging.New(os.Stderr, cfg.Log.Level, string(cfg.Log.Format)).
		With().Str("commit", Commit).Logger()
	env := cli.NewEnv(cfg, logger, Version)

	var cmd cli.Command
	switch command {
	case "init":
		cmd = cli.NewInitCommand(env)
	case "add":
		cmd = cli.NewAddCommand(env)
	case "remove":
		cmd = cli.NewRemoveCommand(env)
	case "search":
		cmd = cli.NewSearchCommand(env)
	case "stats":
		cmd = cli.NewStatsCommand(env)
	case "prune":
		cmd = cli.NewPruneCommand(env)
	case "version":
		cmd = cli.NewVersionCommand(env)

	case "-h", "--help", "help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		cli.ReportError(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  init      Create a new library database\n")
	fmt.Fprintf(os.Stderr, "  add       Add copies of a book to an owner's shelf\n")
	fmt.Fprintf(os.Stderr, "  remove    Remove copies of a book from an owner's shelf\n")
	fmt.Fprintf(os.Stderr, "  search    Find copies by title, author, owner, binding, year, isbn, or genre\n")
	fmt.Fprintf(os.Stderr, "  stats     Show catalog counts\n")
	fmt.Fprintf(os.Stderr, "  prune     Delete catalog rows nothing refers to\n")
	fmt.Fprintf(os.Stderr, "  version   Show program and schema versions\n")
	fmt.Fprintf(os.Stderr, "\nThe database path defaults to $DATABASE_PATH or %s.\n", config.DefaultDatabasePath)
	fmt.Fprintf(os.Stderr, "Use '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
