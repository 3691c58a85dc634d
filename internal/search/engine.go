// Package search finds catalog records by a single field.
//
// A search names a Field and some query text. The text is turned into a bound
// value (a LIKE pattern, a year, an ISBN, or a set of resolved IDs) and the
// field's target decides which subquery constrains the result join. Records
// come back one per (book, printing, owner) with the book's authors in order
// and its genres by name.
//
// # Usage
//
//	engine := search.NewEngine(db, catalog.NewRepository(db), logger)
//	records, err := engine.Search(search.FieldYear, "1965")
//	for rec, err := range records { ... }
package search

import (
	"fmt"
	"iter"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	apperrors "github.com/mrlokans/bookdb/internal/errors"
	"github.com/mrlokans/bookdb/internal/names"
)

// Lookup resolves query text for name and lookup fields into stored IDs.
type Lookup interface {
	MatchAuthorIDs(name names.Name) ([]uint, error)
	MatchOwnerIDs(name names.Name) ([]uint, error)
	MatchGenreIDs(name string) ([]uint, error)
	MatchBindingTypeIDs(name string) ([]uint, error)
}

// Record is one printing held by one owner.
type Record struct {
	BookID         uint
	Title          string
	Subtitle       string
	PrintingID     uint
	ISBN           string
	Year           *int
	Binding        string
	PrintingNumber int
	OwnerID        uint
	Owner          names.Name
	Quantity       int
	Authors        []names.Name
	Genres         []string
}

const resultQuery = `
SELECT
	b.id AS book_id, b.title, b.subtitle,
	p.id AS printing_id, p.isbn, p.year, p.printing_number,
	bt.name AS binding,
	o.id AS owner_id, o.last_name AS owner_last, o.first_name AS owner_first,
	o.middle_name AS owner_middle, o.suffix AS owner_suffix,
	own.quantity,
	a.id AS author_id, a.last_name AS author_last, a.first_name AS author_first,
	a.middle_name AS author_middle, a.suffix AS author_suffix,
	g.name AS genre
FROM books b
JOIN printings p ON p.book_id = b.id
JOIN ownerships own ON own.printing_id = p.id
JOIN owners o ON o.id = own.owner_id
LEFT JOIN binding_types bt ON bt.id = p.binding_type_id
LEFT JOIN book_authors ba ON ba.book_id = b.id
LEFT JOIN authors a ON a.id = ba.author_id
LEFT JOIN book_genres bg ON bg.book_id = b.id
LEFT JOIN genres g ON g.id = bg.genre_id
WHERE %s
ORDER BY b.title, b.id, p.id, o.id, ba.author_order, g.name`

// resultRow is one row of the fan-out join. Every author and genre of a
// book repeats the printing and owner columns.
type resultRow struct {
	BookID         uint    `gorm:"column:book_id"`
	Title          string  `gorm:"column:title"`
	Subtitle       string  `gorm:"column:subtitle"`
	PrintingID     uint    `gorm:"column:printing_id"`
	ISBN           *string `gorm:"column:isbn"`
	Year           *int    `gorm:"column:year"`
	PrintingNumber int     `gorm:"column:printing_number"`
	Binding        *string `gorm:"column:binding"`
	OwnerID        uint    `gorm:"column:owner_id"`
	OwnerLast      string  `gorm:"column:owner_last"`
	OwnerFirst     string  `gorm:"column:owner_first"`
	OwnerMiddle    string  `gorm:"column:owner_middle"`
	OwnerSuffix    string  `gorm:"column:owner_suffix"`
	Quantity       int     `gorm:"column:quantity"`
	AuthorID       *uint   `gorm:"column:author_id"`
	AuthorLast     *string `gorm:"column:author_last"`
	AuthorFirst    *string `gorm:"column:author_first"`
	AuthorMiddle   *string `gorm:"column:author_middle"`
	AuthorSuffix   *string `gorm:"column:author_suffix"`
	Genre          *string `gorm:"column:genre"`
}

// Engine runs searches against one store handle.
type Engine struct {
	db     *gorm.DB
	lookup Lookup
	logger zerolog.Logger
}

// NewEngine creates a search engine.
func NewEngine(db *gorm.DB, lookup Lookup, logger zerolog.Logger) *Engine {
	return &Engine{
		db:     db,
		lookup: lookup,
		logger: logger.With().Str("module", "search").Logger(),
	}
}

// Search returns the records whose field matches text. Invalid input fails
// here with a QueryError before anything is read; store errors while reading
// are yielded by the sequence, which then ends.
//
// The sequence holds the store's only connection until it finishes, so the
// caller must not issue other queries from inside the loop.
func (e *Engine) Search(field Field, text string) (iter.Seq2[Record, error], error) {
	t, ok := targets[field]
	if !ok {
		return nil, apperrors.Queryf("unknown search field %d", int(field))
	}
	text = names.Text(text)
	if text == "" {
		return nil, apperrors.Queryf("empty %s query", field)
	}

	value, ok, err := t.value(e.lookup, text)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.logger.Debug().Stringer("field", field).Str("text", text).Msg("query matches nothing")
		return func(func(Record, error) bool) {}, nil
	}

	query := fmt.Sprintf(resultQuery, t.clause())
	e.logger.Debug().Stringer("field", field).Str("text", text).Msg("search")

	return func(yield func(Record, error) bool) {
		rows, err := e.db.Raw(query, value).Rows()
		if err != nil {
			yield(Record{}, err)
			return
		}
		defer rows.Close()

		var acc accumulator
		for rows.Next() {
			var row resultRow
			if err := e.db.ScanRows(rows, &row); err != nil {
				yield(Record{}, err)
				return
			}
			if done, ok := acc.add(row); ok && !yield(done, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Record{}, err)
			return
		}
		if done, ok := acc.flush(); ok {
			yield(done, nil)
		}
	}, nil
}

// Collect drains a search into a slice, stopping at the first error.
func Collect(seq iter.Seq2[Record, error]) ([]Record, error) {
	var records []Record
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// accumulator folds consecutive rows of the same (book, printing, owner)
// into one Record, keeping each author and genre once.
type accumulator struct {
	cur     *Record
	authors map[uint]bool
	genres  map[string]bool
}

// add folds row in. When row starts a new triple the finished record is
// returned with ok set.
func (a *accumulator) add(row resultRow) (done Record, ok bool) {
	if a.cur != nil && (a.cur.BookID != row.BookID || a.cur.PrintingID != row.PrintingID || a.cur.OwnerID != row.OwnerID) {
		done, ok = a.flush()
	}
	if a.cur == nil {
		a.start(row)
	}

	if row.AuthorID != nil && !a.authors[*row.AuthorID] {
		a.authors[*row.AuthorID] = true
		a.cur.Authors = append(a.cur.Authors, names.Name{
			Last:   deref(row.AuthorLast),
			First:  deref(row.AuthorFirst),
			Middle: deref(row.AuthorMiddle),
			Suffix: deref(row.AuthorSuffix),
		})
	}
	if row.Genre != nil && !a.genres[*row.Genre] {
		a.genres[*row.Genre] = true
		a.cur.Genres = append(a.cur.Genres, *row.Genre)
	}
	return done, ok
}

func (a *accumulator) start(row resultRow) {
	a.cur = &Record{
		BookID:         row.BookID,
		Title:          row.Title,
		Subtitle:       row.Subtitle,
		PrintingID:     row.PrintingID,
		ISBN:           deref(row.ISBN),
		Year:           row.Year,
		Binding:        deref(row.Binding),
		PrintingNumber: row.PrintingNumber,
		OwnerID:        row.OwnerID,
		Owner: names.Name{
			Last:   row.OwnerLast,
			First:  row.OwnerFirst,
			Middle: row.OwnerMiddle,
			Suffix: row.OwnerSuffix,
		},
		Quantity: row.Quantity,
	}
	a.authors = map[uint]bool{}
	a.genres = map[string]bool{}
}

func (a *accumulator) flush() (Record, bool) {
	if a.cur == nil {
		return Record{}, false
	}
	done := *a.cur
	a.cur = nil
	return done, true
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
