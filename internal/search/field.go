package search

import (
	"strings"

	apperrors "github.com/mrlokans/bookdb/internal/errors"
)

// Field selects which attribute a search matches on.
type Field int

const (
	FieldTitle Field = iota + 1
	FieldAuthor
	FieldOwner
	FieldBinding
	FieldYear
	FieldISBN
	FieldGenre
)

var fieldNames = map[Field]string{
	FieldTitle:   "title",
	FieldAuthor:  "author",
	FieldOwner:   "owner",
	FieldBinding: "binding",
	FieldYear:    "year",
	FieldISBN:    "isbn",
	FieldGenre:   "genre",
}

// Fields lists every searchable field in display order.
func Fields() []Field {
	return []Field{FieldTitle, FieldAuthor, FieldOwner, FieldBinding, FieldYear, FieldISBN, FieldGenre}
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseField parses a field name, ignoring case.
func ParseField(s string) (Field, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for f, name := range fieldNames {
		if name == want {
			return f, nil
		}
	}
	return 0, apperrors.Queryf("unknown search field %q", s)
}
