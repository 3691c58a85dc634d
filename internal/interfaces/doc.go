// Package interfaces documents the extension points of bookdb.
//
// # Interfaces
//
//   - search.Lookup: resolves a query's text to row IDs (internal/search/engine.go)
//   - schema.Snapshotter: copies the store before an upgrade (internal/database/schema/manager.go)
//   - cli.Command: a parsed, runnable subcommand (internal/cli/command.go)
//
// # Adding a Search Field
//
//  1. Add a Field constant and its name in internal/search/field.go.
//
//  2. Add a target in internal/search/targets.go naming the result column the
//     field anchors on and the subquery that produces matching keys:
//
//     FieldPublisher: {
//         anchor: "b.id",
//         from:   "books", key: "id", column: "publisher",
//         match:  matchContains,
//         value:  containsValue,
//     },
//
// # Adding a Schema Delta
//
//  1. Bump SupportedVersion in internal/database/schema/manager.go.
//
//  2. Register a Delta in DefaultDeltas (internal/database/schema/deltas.go)
//     keyed by the version it upgrades from. Apply runs inside
//     the upgrade transaction; Applied lets a partially upgraded store skip it.
//
// # Adding a Command
//
//  1. Implement cli.Command in internal/cli/ using Env.newFlagSet for the
//     shared --db flag and Env.openStore to open and upgrade the store.
//
//  2. Add a case to the switch in main.go.
//
//  3. Add a compile-time check to checks.go:
//
//     var _ cli.Command = (*cli.ExportCommand)(nil)
//
// # Compile-Time Interface Checks
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
