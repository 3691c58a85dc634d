package identity

import (
	"github.com/mrlokans/bookdb/internal/entities"
	apperrors "github.com/mrlokans/bookdb/internal/errors"
	"github.com/mrlokans/bookdb/internal/names"
)

// BookDescription is a caller's description of copies of a book held by an owner.
// Empty strings and a nil Year mean the attribute is absent.
type BookDescription struct {
	Title          string
	Subtitle       string
	Year           *int
	ISBN           string
	Binding        string
	PrintingNumber int
	Authors        []names.Name
	Genres         []string
	Owner          names.Name
	Quantity       int
}

// normalized returns a copy with all text normalized.
func (d BookDescription) normalized() BookDescription {
	out := BookDescription{
		Title:          names.Text(d.Title),
		Subtitle:       names.Text(d.Subtitle),
		ISBN:           names.ISBN(d.ISBN),
		Binding:        names.Text(d.Binding),
		PrintingNumber: d.PrintingNumber,
		Owner:          d.Owner.Normalize(),
		Quantity:       d.Quantity,
	}
	if d.Year != nil {
		year := *d.Year
		out.Year = &year
	}
	for _, a := range d.Authors {
		if a = a.Normalize(); !a.IsZero() {
			out.Authors = append(out.Authors, a)
		}
	}
	for _, g := range d.Genres {
		if g = names.Text(g); g != "" {
			out.Genres = append(out.Genres, g)
		}
	}
	if out.PrintingNumber == 0 {
		out.PrintingNumber = 1
	}
	return out
}

// validate checks the description before anything is written.
func (d BookDescription) validate() error {
	switch {
	case d.Title == "":
		return apperrors.ConstraintViolation("title is required")
	case !d.Owner.Complete():
		return apperrors.ConstraintViolation("owner last and first name are required")
	case d.Quantity <= 0:
		return apperrors.ConstraintViolationf("quantity must be positive, got %d", d.Quantity)
	case d.PrintingNumber < 0:
		return apperrors.ConstraintViolationf("printing number must be positive, got %d", d.PrintingNumber)
	}
	for _, a := range d.Authors {
		if a.Last == "" {
			return apperrors.ConstraintViolationf("author %q has no last name", a.String())
		}
	}
	return nil
}

// isbn returns the ISBN as stored, nil when absent.
func (d BookDescription) isbn() *string {
	if d.ISBN == "" {
		return nil
	}
	isbn := d.ISBN
	return &isbn
}

// Result is the outcome of a resolved add or remove.
type Result struct {
	Book     entities.Book
	Printing entities.Printing
	Owner    entities.Owner
	// Quantity is the owner's copies of the printing after the change.
	Quantity int
	// Created is set when the add created a new printing.
	Created bool
}
