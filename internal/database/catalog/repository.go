// Package catalog provides the primitive, non-resolving database operations
// over books, printings, people, lookups, and their junctions.
//
// The repository never decides whether two descriptions are the same book;
// that belongs to the identity resolver, which composes these primitives
// inside one transaction:
//
//	err := repo.Transaction(func(tx *catalog.Repository) error {
//	    author, err := tx.FindOrCreateAuthor(name)
//	    ...
//	})
package catalog

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookdb/internal/entities"
	apperrors "github.com/mrlokans/bookdb/internal/errors"
)

// Repository handles catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn with a repository bound to a single transaction.
// Any error returned by fn rolls back every write made through it.
func (r *Repository) Transaction(fn func(tx *Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// CreateBook inserts a book.
func (r *Repository) CreateBook(book *entities.Book) error {
	if book.Title == "" {
		return apperrors.ConstraintViolation("book title is required")
	}
	return translate(r.db.Create(book).Error, "create book")
}

// GetBook retrieves a book by ID.
func (r *Repository) GetBook(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, notFound(err, "book %d", id)
	}
	return &book, nil
}

// FindBooks returns the books with exactly this title and subtitle.
func (r *Repository) FindBooks(title, subtitle string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("title = ? AND subtitle = ?", title, subtitle).Order("id").Find(&books).Error
	return books, err
}

// CreatePrinting inserts a printing of an existing book.
func (r *Repository) CreatePrinting(printing *entities.Printing) error {
	if printing.PrintingNumber == 0 {
		printing.PrintingNumber = 1
	}
	err := r.db.Omit(clause.Associations).Create(printing).Error
	return translate(err, "create printing")
}

// GetPrinting retrieves a printing with its book and binding type.
func (r *Repository) GetPrinting(id uint) (*entities.Printing, error) {
	var printing entities.Printing
	err := r.db.Preload("Book").Preload("BindingType").First(&printing, id).Error
	if err != nil {
		return nil, notFound(err, "printing %d", id)
	}
	return &printing, nil
}

// FindCandidates returns the printings whose book title, year, and ISBN all
// equal the given values. A nil year or ISBN matches only a printing where
// that value is absent.
func (r *Repository) FindCandidates(title string, year *int, isbn *string) ([]entities.Printing, error) {
	query := r.db.Model(&entities.Printing{}).
		Joins("JOIN books ON books.id = printings.book_id").
		Where("books.title = ?", title)

	if year == nil {
		query = query.Where("printings.year IS NULL")
	} else {
		query = query.Where("printings.year = ?", *year)
	}
	if isbn == nil {
		query = query.Where("printings.isbn IS NULL")
	} else {
		query = query.Where("printings.isbn = ?", *isbn)
	}

	var printings []entities.Printing
	err := query.Preload("Book").Preload("BindingType").Order("printings.id").Find(&printings).Error
	return printings, err
}

// translate maps store constraint failures to ConstraintViolation and leaves
// every other error wrapped as is.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if apperrors.CodeOf(err) != "" {
		return err
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return apperrors.ConstraintViolationf("%s: %s", op, sqliteErr.Error()).WithCause(err)
	}
	return err
}

// notFound maps gorm's missing-record error to NotFound.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFoundf(format+" not found", args...)
	}
	return err
}
