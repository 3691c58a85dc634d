package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookdb/internal/backup"
	"github.com/mrlokans/bookdb/internal/cli"
	"github.com/mrlokans/bookdb/internal/database/catalog"
	"github.com/mrlokans/bookdb/internal/database/schema"
	"github.com/mrlokans/bookdb/internal/search"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Lookup implementations
var _ search.Lookup = (*catalog.Repository)(nil)

// Snapshotter implementations
var _ schema.Snapshotter = (*backup.Snapshotter)(nil)

// =============================================================================
// Commands
// =============================================================================

var (
	_ cli.Command = (*cli.InitCommand)(nil)
	_ cli.Command = (*cli.AddCommand)(nil)
	_ cli.Command = (*cli.RemoveCommand)(nil)
	_ cli.Command = (*cli.SearchCommand)(nil)
	_ cli.Command = (*cli.StatsCommand)(nil)
	_ cli.Command = (*cli.PruneCommand)(nil)
	_ cli.Command = (*cli.VersionCommand)(nil)
)
