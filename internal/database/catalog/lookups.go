package catalog

import (
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"golang.org/x/text/cases"

	"github.com/mrlokans/bookdb/internal/entities"
	apperrors "github.com/mrlokans/bookdb/internal/errors"
	"github.com/mrlokans/bookdb/internal/names"
)

type lookupRow struct {
	ID   uint
	Name string
}

// foldKey is the case-insensitive comparison key for lookup names. SQLite's
// LOWER only folds ASCII, so lookup names are compared in Go.
func foldKey(s string) string {
	return cases.Fold().String(names.Text(s))
}

// matchLookupIDs returns the IDs of rows in table whose name folds to the same
// key as name, in ID order. Lookup tables are small.
func matchLookupIDs(db *gorm.DB, table, name string) ([]uint, error) {
	key := foldKey(name)
	if key == "" {
		return nil, nil
	}

	var rows []lookupRow
	if err := db.Table(table).Select("id, name").Order("id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	var ids []uint
	for _, row := range rows {
		if foldKey(row.Name) == key {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}

// GetGenre retrieves a genre by ID.
func (r *Repository) GetGenre(id uint) (*entities.Genre, error) {
	var genre entities.Genre
	if err := r.db.First(&genre, id).Error; err != nil {
		return nil, notFound(err, "genre %d", id)
	}
	return &genre, nil
}

// FindOrCreateGenre retrieves or creates a genre (case-insensitive).
func (r *Repository) FindOrCreateGenre(name string) (*entities.Genre, error) {
	name = names.Text(name)
	if name == "" {
		return nil, apperrors.ConstraintViolation("genre name is required")
	}

	ids, err := r.MatchGenreIDs(name)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		return r.GetGenre(ids[0])
	}

	genre := &entities.Genre{Name: name}
	if err := r.db.Create(genre).Error; err != nil {
		return nil, translate(err, "create genre")
	}
	return genre, nil
}

// MatchGenreIDs returns the IDs of genres named name, ignoring case.
func (r *Repository) MatchGenreIDs(name string) ([]uint, error) {
	return matchLookupIDs(r.db, entities.Genre{}.TableName(), name)
}

// GetBindingType retrieves a binding type by ID.
func (r *Repository) GetBindingType(id uint) (*entities.BindingType, error) {
	var binding entities.BindingType
	if err := r.db.First(&binding, id).Error; err != nil {
		return nil, notFound(err, "binding type %d", id)
	}
	return &binding, nil
}

// FindOrCreateBindingType retrieves or creates a binding type (case-insensitive).
func (r *Repository) FindOrCreateBindingType(name string) (*entities.BindingType, error) {
	name = names.Text(name)
	if name == "" {
		return nil, apperrors.ConstraintViolation("binding type name is required")
	}

	ids, err := r.MatchBindingTypeIDs(name)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		return r.GetBindingType(ids[0])
	}

	binding := &entities.BindingType{Name: name}
	if err := r.db.Create(binding).Error; err != nil {
		return nil, translate(err, "create binding type")
	}
	return binding, nil
}

// MatchBindingTypeIDs returns the IDs of binding types named name, ignoring case.
func (r *Repository) MatchBindingTypeIDs(name string) ([]uint, error) {
	return matchLookupIDs(r.db, entities.BindingType{}.TableName(), name)
}

// LinkAuthor appends an author to a book's author list. Linking an author
// who is already on the book changes nothing.
func (r *Repository) LinkAuthor(bookID, authorID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&entities.BookAuthor{}).
			Where("book_id = ? AND author_id = ?", bookID, authorID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		var maxOrder sql.NullInt64
		if err := tx.Model(&entities.BookAuthor{}).
			Where("book_id = ?", bookID).
			Select("MAX(author_order)").
			Scan(&maxOrder).Error; err != nil {
			return err
		}

		link := entities.BookAuthor{BookID: bookID, AuthorID: authorID, AuthorOrder: nextAuthorOrder(maxOrder)}
		return translate(tx.Omit(clause.Associations).Create(&link).Error, "link author")
	})
}

// UnlinkAuthor removes an author from a book and closes the gap in the
// remaining author order.
func (r *Repository) UnlinkAuthor(bookID, authorID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var link entities.BookAuthor
		err := tx.Where("book_id = ? AND author_id = ?", bookID, authorID).First(&link).Error
		if err != nil {
			return notFound(err, "author %d on book %d", authorID, bookID)
		}
		if err := tx.Delete(&link).Error; err != nil {
			return err
		}

		// Shift down one row at a time in ascending order so the
		// (book_id, author_order) index never sees a duplicate.
		var later []entities.BookAuthor
		if err := tx.Where("book_id = ? AND author_order > ?", bookID, link.AuthorOrder).
			Order("author_order").Find(&later).Error; err != nil {
			return err
		}
		for _, l := range later {
			if err := tx.Model(&entities.BookAuthor{}).
				Where("book_id = ? AND author_id = ?", l.BookID, l.AuthorID).
				Update("author_order", l.AuthorOrder-1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// nextAuthorOrder is the order of an author appended after maxOrder, the
// highest order on the book, which is NULL when the book has no authors yet.
func nextAuthorOrder(maxOrder sql.NullInt64) int {
	if !maxOrder.Valid {
		return entities.AuthorOrderBase
	}
	return int(maxOrder.Int64) + 1
}

// BookAuthorIDs returns a book's author IDs in author order.
func (r *Repository) BookAuthorIDs(bookID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entities.BookAuthor{}).
		Where("book_id = ?", bookID).
		Order("author_order").
		Pluck("author_id", &ids).Error
	return ids, err
}

// BookAuthors returns a book's authors in author order.
func (r *Repository) BookAuthors(bookID uint) ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.Joins("JOIN book_authors ON book_authors.author_id = authors.id").
		Where("book_authors.book_id = ?", bookID).
		Order("book_authors.author_order").
		Find(&authors).Error
	return authors, err
}

// LinkGenre associates a genre with a book. It is idempotent.
func (r *Repository) LinkGenre(bookID, genreID uint) error {
	link := entities.BookGenre{BookID: bookID, GenreID: genreID}
	err := r.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
	return translate(err, "link genre")
}

// UnlinkGenre removes a genre from a book.
func (r *Repository) UnlinkGenre(bookID, genreID uint) error {
	result := r.db.Where("book_id = ? AND genre_id = ?", bookID, genreID).Delete(&entities.BookGenre{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundf("genre %d on book %d not found", genreID, bookID)
	}
	return nil
}

// BookGenres returns a book's genres ordered by name.
func (r *Repository) BookGenres(bookID uint) ([]entities.Genre, error) {
	var genres []entities.Genre
	err := r.db.Joins("JOIN book_genres ON book_genres.genre_id = genres.id").
		Where("book_genres.book_id = ?", bookID).
		Order("genres.name").
		Find(&genres).Error
	return genres, err
}
