package catalog

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/bookdb/internal/entities"
	apperrors "github.com/mrlokans/bookdb/internal/errors"
	"github.com/mrlokans/bookdb/internal/names"
)

// OwnerName returns the name parts stored on an owner.
func OwnerName(o entities.Owner) names.Name {
	return names.Name{Last: o.LastName, First: o.FirstName, Middle: o.MiddleName, Suffix: o.Suffix}
}

// GetOwner retrieves an owner by ID.
func (r *Repository) GetOwner(id uint) (*entities.Owner, error) {
	var owner entities.Owner
	if err := r.db.First(&owner, id).Error; err != nil {
		return nil, notFound(err, "owner %d", id)
	}
	return &owner, nil
}

// FindOwner retrieves the owner whose name parts all equal name's.
func (r *Repository) FindOwner(name names.Name) (*entities.Owner, error) {
	name = name.Normalize()
	var owner entities.Owner
	err := r.db.Where("last_name = ? AND first_name = ? AND middle_name = ? AND suffix = ?",
		name.Last, name.First, name.Middle, name.Suffix).First(&owner).Error
	if err != nil {
		return nil, notFound(err, "owner %q", name.String())
	}
	return &owner, nil
}

// FindOrCreateOwner returns the owner with exactly these name parts, creating
// it on first reference. Last and first name are required.
func (r *Repository) FindOrCreateOwner(name names.Name) (*entities.Owner, error) {
	name = name.Normalize()
	if !name.Complete() {
		return nil, apperrors.ConstraintViolation("owner last and first name are required")
	}

	owner, err := r.FindOwner(name)
	if err == nil {
		return owner, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	owner = &entities.Owner{LastName: name.Last, FirstName: name.First, MiddleName: name.Middle, Suffix: name.Suffix}
	if err := r.db.Create(owner).Error; err != nil {
		return nil, translate(err, "create owner")
	}
	return owner, nil
}

// GetAuthor retrieves an author by ID.
func (r *Repository) GetAuthor(id uint) (*entities.Author, error) {
	var author entities.Author
	if err := r.db.First(&author, id).Error; err != nil {
		return nil, notFound(err, "author %d", id)
	}
	return &author, nil
}

// FindOrCreateAuthor returns the author with exactly these name parts,
// creating it on first reference. Only the last name is required, so
// single-name authors are allowed.
func (r *Repository) FindOrCreateAuthor(name names.Name) (*entities.Author, error) {
	name = name.Normalize()
	if name.Last == "" {
		return nil, apperrors.ConstraintViolation("author last name is required")
	}

	author, err := r.FindAuthor(name)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	author = &entities.Author{LastName: name.Last, FirstName: name.First, MiddleName: name.Middle, Suffix: name.Suffix}
	if err := r.db.Create(author).Error; err != nil {
		return nil, translate(err, "create author")
	}
	return author, nil
}

// FindAuthor retrieves the author whose name parts all equal name's.
func (r *Repository) FindAuthor(name names.Name) (*entities.Author, error) {
	name = name.Normalize()
	var author entities.Author
	err := r.db.Where("last_name = ? AND first_name = ? AND middle_name = ? AND suffix = ?",
		name.Last, name.First, name.Middle, name.Suffix).First(&author).Error
	if err != nil {
		return nil, notFound(err, "author %q", name.String())
	}
	return &author, nil
}

// MatchAuthorIDs returns the IDs of authors whose last name equals name.Last
// and whose other parts equal the ones name supplies. Parts name leaves empty
// match anything.
func (r *Repository) MatchAuthorIDs(name names.Name) ([]uint, error) {
	return matchPersonIDs(r.db.Model(&entities.Author{}), name)
}

// MatchOwnerIDs is MatchAuthorIDs for owners.
func (r *Repository) MatchOwnerIDs(name names.Name) ([]uint, error) {
	return matchPersonIDs(r.db.Model(&entities.Owner{}), name)
}

type personRow struct {
	ID         uint
	LastName   string
	FirstName  string
	MiddleName string
	Suffix     string
}

// matchPersonIDs compares folded name parts in Go, as matchLookupIDs does,
// so non-ASCII names match regardless of case.
func matchPersonIDs(query *gorm.DB, name names.Name) ([]uint, error) {
	name = name.Normalize()
	if name.Last == "" {
		return nil, nil
	}

	var rows []personRow
	if err := query.Select("id, last_name, first_name, middle_name, suffix").Order("id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	matches := func(want, got string) bool {
		return want == "" || foldKey(want) == foldKey(got)
	}
	var ids []uint
	for _, row := range rows {
		if foldKey(name.Last) == foldKey(row.LastName) &&
			matches(name.First, row.FirstName) &&
			matches(name.Middle, row.MiddleName) &&
			matches(name.Suffix, row.Suffix) {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}
