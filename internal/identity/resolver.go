// Package identity decides which canonical book and printing a description
// refers to and changes the owner's quantity of it.
//
// Two descriptions name the same printing only when title, year, and ISBN are
// all equal; an absent year or ISBN equals only another absent one. When more
// than one printing qualifies, binding type, author set, and subtitle are used
// in that order to tell them apart. If they cannot, the operation fails with an
// AmbiguousMatch error carrying the remaining candidates and writes nothing.
package identity

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrlokans/bookdb/internal/database/catalog"
	"github.com/mrlokans/bookdb/internal/entities"
	apperrors "github.com/mrlokans/bookdb/internal/errors"
	"github.com/mrlokans/bookdb/internal/names"
)

// Resolver adds and removes copies of books.
type Resolver struct {
	repo   *catalog.Repository
	logger zerolog.Logger
}

// NewResolver creates a resolver over repo.
func NewResolver(repo *catalog.Repository, logger zerolog.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		logger: logger.With().Str("module", "identity").Logger(),
	}
}

// Add records d.Quantity more copies of the described printing for d.Owner.
// A printing with no match is created, along with any missing book, author,
// genre, binding type, or owner. Everything happens in one transaction.
func (r *Resolver) Add(d BookDescription) (*Result, error) {
	d = d.normalized()
	if err := d.validate(); err != nil {
		return nil, err
	}

	var result Result
	err := r.repo.Transaction(func(tx *catalog.Repository) error {
		printing, created, err := r.resolve(tx, d, true)
		if err != nil {
			return err
		}

		for _, name := range d.Genres {
			genre, err := tx.FindOrCreateGenre(name)
			if err != nil {
				return err
			}
			if err := tx.LinkGenre(printing.BookID, genre.ID); err != nil {
				return err
			}
		}

		owner, err := tx.FindOrCreateOwner(d.Owner)
		if err != nil {
			return err
		}
		quantity, err := tx.AdjustQuantity(printing.ID, owner.ID, d.Quantity)
		if err != nil {
			return err
		}

		result = Result{Book: printing.Book, Printing: *printing, Owner: *owner, Quantity: quantity, Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("title", result.Book.Title).
		Uint("printing_id", result.Printing.ID).
		Str("owner", d.Owner.String()).
		Int("quantity", result.Quantity).
		Bool("created", result.Created).
		Msg("copies added")
	return &result, nil
}

// Remove takes d.Quantity copies of the described printing away from d.Owner.
// The printing and owner must already exist. Removing more copies than the
// owner holds fails with ConstraintViolation and changes nothing.
func (r *Resolver) Remove(d BookDescription) (*Result, error) {
	d = d.normalized()
	if err := d.validate(); err != nil {
		return nil, err
	}

	var result Result
	err := r.repo.Transaction(func(tx *catalog.Repository) error {
		printing, _, err := r.resolve(tx, d, false)
		if err != nil {
			return err
		}

		owner, err := tx.FindOwner(d.Owner)
		if err != nil {
			return err
		}
		quantity, err := tx.AdjustQuantity(printing.ID, owner.ID, -d.Quantity)
		if err != nil {
			return err
		}

		result = Result{Book: printing.Book, Printing: *printing, Owner: *owner, Quantity: quantity}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("title", result.Book.Title).
		Uint("printing_id", result.Printing.ID).
		Str("owner", d.Owner.String()).
		Int("quantity", result.Quantity).
		Msg("copies removed")
	return &result, nil
}

// resolve finds the single printing d describes. With create set, a missing
// printing is created; otherwise it is NotFound.
func (r *Resolver) resolve(tx *catalog.Repository, d BookDescription, create bool) (*entities.Printing, bool, error) {
	candidates, err := tx.FindCandidates(d.Title, d.Year, d.isbn())
	if err != nil {
		return nil, false, err
	}

	if len(candidates) == 0 {
		if !create {
			return nil, false, apperrors.NotFoundf("no printing of %q matches", d.Title)
		}
		printing, err := r.createPrinting(tx, d)
		return printing, true, err
	}

	authorIDs, err := lookupAuthorIDs(tx, d.Authors)
	if err != nil {
		return nil, false, err
	}
	remaining, err := narrow(tx, d, authorIDs, candidates)
	if err != nil {
		return nil, false, err
	}
	if len(remaining) > 1 {
		r.logger.Debug().Str("title", d.Title).Int("candidates", len(remaining)).Msg("ambiguous description")
		return nil, false, apperrors.AmbiguousMatch(
			fmt.Sprintf("description matches %d printings of %q", len(remaining), d.Title), remaining)
	}
	return &remaining[0], false, nil
}

// createPrinting creates the printing d describes, reusing a book only when
// exactly one book has the same title, subtitle, and author set.
func (r *Resolver) createPrinting(tx *catalog.Repository, d BookDescription) (*entities.Printing, error) {
	authorIDs := make([]uint, 0, len(d.Authors))
	for _, name := range d.Authors {
		author, err := tx.FindOrCreateAuthor(name)
		if err != nil {
			return nil, err
		}
		authorIDs = append(authorIDs, author.ID)
	}

	book, err := findOrCreateBook(tx, d, authorIDs)
	if err != nil {
		return nil, err
	}

	printing := &entities.Printing{
		BookID:         book.ID,
		ISBN:           d.isbn(),
		Year:           d.Year,
		PrintingNumber: d.PrintingNumber,
	}
	if d.Binding != "" {
		binding, err := tx.FindOrCreateBindingType(d.Binding)
		if err != nil {
			return nil, err
		}
		printing.BindingTypeID = &binding.ID
		printing.BindingType = binding
	}
	if err := tx.CreatePrinting(printing); err != nil {
		return nil, err
	}
	printing.Book = *book

	r.logger.Debug().Str("title", d.Title).Uint("book_id", book.ID).Uint("printing_id", printing.ID).Msg("printing created")
	return printing, nil
}

func findOrCreateBook(tx *catalog.Repository, d BookDescription, authorIDs []uint) (*entities.Book, error) {
	books, err := tx.FindBooks(d.Title, d.Subtitle)
	if err != nil {
		return nil, err
	}

	var same []entities.Book
	for _, b := range books {
		ids, err := tx.BookAuthorIDs(b.ID)
		if err != nil {
			return nil, err
		}
		if sameSet(ids, authorIDs) {
			same = append(same, b)
		}
	}
	if len(same) == 1 {
		return &same[0], nil
	}

	book := &entities.Book{Title: d.Title, Subtitle: d.Subtitle}
	if err := tx.CreateBook(book); err != nil {
		return nil, err
	}
	for _, id := range authorIDs {
		if err := tx.LinkAuthor(book.ID, id); err != nil {
			return nil, err
		}
	}
	return book, nil
}

// lookupAuthorIDs resolves author names without creating them. An unknown
// author resolves to ID 0, which no stored author set contains.
func lookupAuthorIDs(tx *catalog.Repository, authors []names.Name) ([]uint, error) {
	ids := make([]uint, 0, len(authors))
	for _, name := range authors {
		author, err := tx.FindAuthor(name)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			ids = append(ids, 0)
		case err != nil:
			return nil, err
		default:
			ids = append(ids, author.ID)
		}
	}
	return ids, nil
}
