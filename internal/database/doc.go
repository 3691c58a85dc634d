// Package database opens the catalog store.
//
// # Architecture
//
// The data layer is split into sub-packages:
//
//	database/
//	├── database.go      # Opening and closing the SQLite file
//	├── schema/          # Baseline creation, version checks, and upgrades
//	└── catalog/         # Books, printings, people, lookups, and ownership
//
// # Using Sub-packages
//
// Open the store, bring its schema up to date, then hand the gorm handle to
// the repositories:
//
//	db, err := database.NewDatabase(database.Options{Path: "./library.db"})
//
//	if _, err := schema.NewManager(db.DB, logger).Open(); err != nil {
//		return err
//	}
//
//	repo := catalog.NewRepository(db.DB)
//	book, err := repo.GetBook(1)
//
// A store is only ever created by database.Options{Create: true} followed by
// schema.Manager.Initialize. Opening with Create unset never creates a file.
//
// # Interface Implementations
//
//   - catalog.Repository: implements search.Lookup
//   - backup.Snapshotter: implements schema.Snapshotter
package database
