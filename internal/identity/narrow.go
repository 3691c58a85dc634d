package identity

import (
	"slices"

	"golang.org/x/text/cases"

	"github.com/mrlokans/bookdb/internal/database/catalog"
	"github.com/mrlokans/bookdb/internal/entities"
)

// predicate keeps the candidates that agree with the description on one
// attribute. ok is false when the description does not supply the attribute.
type predicate struct {
	name  string
	apply func(tx *catalog.Repository, d BookDescription, authorIDs []uint, c []entities.Printing) (kept []entities.Printing, ok bool, err error)
}

// narrowing is applied in order until one candidate remains.
var narrowing = []predicate{
	{name: "binding", apply: byBinding},
	{name: "authors", apply: byAuthors},
	{name: "subtitle", apply: bySubtitle},
}

// narrow reduces candidates to one if the description can tell them apart.
// A predicate that would reject every candidate is skipped. The returned slice
// holds more than one printing only when every predicate is exhausted.
func narrow(tx *catalog.Repository, d BookDescription, authorIDs []uint, candidates []entities.Printing) ([]entities.Printing, error) {
	for _, p := range narrowing {
		if len(candidates) <= 1 {
			break
		}
		kept, ok, err := p.apply(tx, d, authorIDs, candidates)
		if err != nil {
			return nil, err
		}
		if !ok || len(kept) == 0 {
			continue
		}
		candidates = kept
	}
	return candidates, nil
}

func byBinding(_ *catalog.Repository, d BookDescription, _ []uint, candidates []entities.Printing) ([]entities.Printing, bool, error) {
	if d.Binding == "" {
		return nil, false, nil
	}
	fold := cases.Fold()
	want := fold.String(d.Binding)
	var kept []entities.Printing
	for _, c := range candidates {
		if c.BindingType != nil && fold.String(c.BindingType.Name) == want {
			kept = append(kept, c)
		}
	}
	return kept, true, nil
}

func byAuthors(tx *catalog.Repository, d BookDescription, authorIDs []uint, candidates []entities.Printing) ([]entities.Printing, bool, error) {
	if len(d.Authors) == 0 {
		return nil, false, nil
	}
	var kept []entities.Printing
	for _, c := range candidates {
		ids, err := tx.BookAuthorIDs(c.BookID)
		if err != nil {
			return nil, false, err
		}
		if sameSet(ids, authorIDs) {
			kept = append(kept, c)
		}
	}
	return kept, true, nil
}

func bySubtitle(_ *catalog.Repository, d BookDescription, _ []uint, candidates []entities.Printing) ([]entities.Printing, bool, error) {
	if d.Subtitle == "" {
		return nil, false, nil
	}
	var kept []entities.Printing
	for _, c := range candidates {
		if c.Book.Subtitle == d.Subtitle {
			kept = append(kept, c)
		}
	}
	return kept, true, nil
}

// sameSet reports whether a and b hold the same IDs, ignoring order.
// A zero ID never matches, so an unknown author keeps a set from matching.
func sameSet(a, b []uint) bool {
	if slices.Contains(b, 0) {
		return false
	}
	a = slices.Compact(slices.Sorted(slices.Values(a)))
	b = slices.Compact(slices.Sorted(slices.Values(b)))
	return slices.Equal(a, b)
}
