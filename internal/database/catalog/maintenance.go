package catalog

import (
	"gorm.io/gorm"
)

// Stats holds row counts for the catalog.
type Stats struct {
	Books        int64 `json:"books"`
	Printings    int64 `json:"printings"`
	Owners       int64 `json:"owners"`
	Authors      int64 `json:"authors"`
	Genres       int64 `json:"genres"`
	BindingTypes int64 `json:"binding_types"`
	Ownerships   int64 `json:"ownerships"`
	Copies       int64 `json:"copies"`
}

// Stats counts the rows of every catalog table and the total copies held.
func (r *Repository) Stats() (Stats, error) {
	var s Stats
	counts := []struct {
		table string
		dest  *int64
	}{
		{"books", &s.Books},
		{"printings", &s.Printings},
		{"owners", &s.Owners},
		{"authors", &s.Authors},
		{"genres", &s.Genres},
		{"binding_types", &s.BindingTypes},
		{"ownerships", &s.Ownerships},
	}
	for _, c := range counts {
		if err := r.db.Table(c.table).Count(c.dest).Error; err != nil {
			return Stats{}, err
		}
	}
	if err := r.db.Table("ownerships").Select("COALESCE(SUM(quantity), 0)").Scan(&s.Copies).Error; err != nil {
		return Stats{}, err
	}
	return s, nil
}

// PruneOptions selects what Prune may delete.
type PruneOptions struct {
	// Catalog also deletes printings nobody owns and books left without printings.
	Catalog bool
}

// PruneResult reports how many rows Prune deleted per entity.
type PruneResult struct {
	Printings int64 `json:"printings"`
	Books     int64 `json:"books"`
	Authors   int64 `json:"authors"`
	Genres    int64 `json:"genres"`
	Owners    int64 `json:"owners"`
}

// Total returns the number of deleted rows across all entities.
func (p PruneResult) Total() int64 {
	return p.Printings + p.Books + p.Authors + p.Genres + p.Owners
}

// Prune deletes rows nothing references anymore. Removing copies never
// cascades on its own; this is the only way unreferenced authors, genres,
// owners, printings, and books go away. Binding types are never pruned.
func (r *Repository) Prune(opts PruneOptions) (PruneResult, error) {
	var result PruneResult

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if opts.Catalog {
			res := tx.Exec(`
				DELETE FROM printings
				WHERE id NOT IN (SELECT printing_id FROM ownerships)
			`)
			if res.Error != nil {
				return res.Error
			}
			result.Printings = res.RowsAffected

			orphanBooks := `SELECT id FROM books WHERE id NOT IN (SELECT book_id FROM printings)`
			if err := tx.Exec(`DELETE FROM book_authors WHERE book_id IN (` + orphanBooks + `)`).Error; err != nil {
				return err
			}
			if err := tx.Exec(`DELETE FROM book_genres WHERE book_id IN (` + orphanBooks + `)`).Error; err != nil {
				return err
			}
			res = tx.Exec(`DELETE FROM books WHERE id NOT IN (SELECT book_id FROM printings)`)
			if res.Error != nil {
				return res.Error
			}
			result.Books = res.RowsAffected
		}

		res := tx.Exec(`DELETE FROM authors WHERE id NOT IN (SELECT author_id FROM book_authors)`)
		if res.Error != nil {
			return res.Error
		}
		result.Authors = res.RowsAffected

		res = tx.Exec(`DELETE FROM genres WHERE id NOT IN (SELECT genre_id FROM book_genres)`)
		if res.Error != nil {
			return res.Error
		}
		result.Genres = res.RowsAffected

		res = tx.Exec(`DELETE FROM owners WHERE id NOT IN (SELECT owner_id FROM ownerships)`)
		if res.Error != nil {
			return res.Error
		}
		result.Owners = res.RowsAffected
		return nil
	})
	if err != nil {
		return PruneResult{}, err
	}
	return result, nil
}
