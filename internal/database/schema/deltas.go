package schema

import (
	"fmt"

	"gorm.io/gorm"
)

// Delta upgrades the schema by one version. Deltas only ever add; they never
// drop tables, columns, or rows.
type Delta struct {
	Description string
	// Applied reports whether the delta's changes are already present.
	Applied func(tx *gorm.DB) (bool, error)
	Apply   func(tx *gorm.DB) error
}

// DefaultDeltas returns the registered deltas keyed by the version they upgrade from.
func DefaultDeltas() map[int]Delta {
	return map[int]Delta{
		1: searchIndexesDelta(),
	}
}

type index struct {
	name, table, columns string
}

// searchIndexes back the columns the search engine and the identity resolver filter on.
var searchIndexes = []index{
	{"idx_books_title", "books", "title"},
	{"idx_printings_book", "printings", "book_id"},
	{"idx_printings_year", "printings", "year"},
	{"idx_printings_isbn", "printings", "isbn"},
	{"idx_authors_last_name", "authors", "last_name"},
	{"idx_owners_last_name", "owners", "last_name"},
}

func searchIndexesDelta() Delta {
	return Delta{
		Description: "add search indexes",
		Applied: func(tx *gorm.DB) (bool, error) {
			names := make([]string, len(searchIndexes))
			for i, idx := range searchIndexes {
				names[i] = idx.name
			}
			var count int64
			err := tx.Raw(`SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name IN ?`, names).
				Scan(&count).Error
			if err != nil {
				return false, err
			}
			return count == int64(len(searchIndexes)), nil
		},
		Apply: func(tx *gorm.DB) error {
			for _, idx := range searchIndexes {
				stmt := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s)`, idx.name, idx.table, idx.columns)
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("create index %s: %w", idx.name, err)
				}
			}
			return nil
		},
	}
}
