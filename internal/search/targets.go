package search

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/mrlokans/bookdb/internal/errors"
	"github.com/mrlokans/bookdb/internal/names"
)

// matchKind is how a target column is compared with the bound value.
type matchKind int

const (
	matchContains matchKind = iota
	matchEqual
	matchAnyOf
)

func (m matchKind) condition(column string) string {
	switch m {
	case matchContains:
		return column + ` LIKE ? ESCAPE '\'`
	case matchAnyOf:
		return column + " IN ?"
	default:
		return column + " = ?"
	}
}

// target narrows the result query to rows whose anchor column is selected by
//
//	anchor IN (SELECT key FROM from WHERE column <match> ?)
//
// Every identifier comes from the targets table; query text only ever reaches
// the store as the bound value produced by value.
type target struct {
	anchor string
	from   string
	key    string
	column string
	match  matchKind
	// value turns query text into the bound value. ok is false when the text
	// can match nothing, so the search is empty without querying.
	value func(lookup Lookup, text string) (v any, ok bool, err error)
}

func (t target) clause() string {
	return fmt.Sprintf("%s IN (SELECT %s FROM %s WHERE %s)", t.anchor, t.key, t.from, t.match.condition(t.column))
}

var targets = map[Field]target{
	FieldTitle: {
		anchor: "b.id", from: "books", key: "id", column: "title",
		match: matchContains, value: containsValue,
	},
	FieldAuthor: {
		anchor: "b.id", from: "book_authors", key: "book_id", column: "author_id",
		match: matchAnyOf, value: func(l Lookup, text string) (any, bool, error) {
			return idsValue(l.MatchAuthorIDs(names.Parse(text)))
		},
	},
	FieldOwner: {
		anchor: "own.owner_id", from: "owners", key: "id", column: "id",
		match: matchAnyOf, value: func(l Lookup, text string) (any, bool, error) {
			return idsValue(l.MatchOwnerIDs(names.Parse(text)))
		},
	},
	FieldBinding: {
		anchor: "p.id", from: "printings", key: "id", column: "binding_type_id",
		match: matchAnyOf, value: func(l Lookup, text string) (any, bool, error) {
			return idsValue(l.MatchBindingTypeIDs(text))
		},
	},
	FieldYear: {
		anchor: "p.id", from: "printings", key: "id", column: "year",
		match: matchEqual, value: yearValue,
	},
	FieldISBN: {
		anchor: "p.id", from: "printings", key: "id", column: "isbn",
		match: matchEqual, value: func(_ Lookup, text string) (any, bool, error) {
			isbn := names.ISBN(text)
			return isbn, isbn != "", nil
		},
	},
	FieldGenre: {
		anchor: "b.id", from: "book_genres", key: "book_id", column: "genre_id",
		match: matchAnyOf, value: func(l Lookup, text string) (any, bool, error) {
			return idsValue(l.MatchGenreIDs(text))
		},
	},
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsValue(_ Lookup, text string) (any, bool, error) {
	return "%" + likeEscaper.Replace(text) + "%", true, nil
}

func yearValue(_ Lookup, text string) (any, bool, error) {
	year, err := strconv.Atoi(text)
	if err != nil {
		return nil, false, apperrors.Queryf("year %q is not a number", text)
	}
	return year, true, nil
}

func idsValue(ids []uint, err error) (any, bool, error) {
	if err != nil {
		return nil, false, err
	}
	return ids, len(ids) > 0, nil
}
