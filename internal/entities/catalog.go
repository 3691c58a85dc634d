package entities

import "time"

// Seeded binding types.
const (
	BindingHardcover = "Hardcover"
	BindingSoftcover = "Softcover"
)

// DefaultBindingTypes is the fixed set seeded when a store is initialized.
var DefaultBindingTypes = []BindingType{
	{Name: BindingHardcover},
	{Name: BindingSoftcover},
}

// AuthorOrderBase is the order assigned to a book's first author.
const AuthorOrderBase = 1

// Book is a logical work, independent of any printing.
type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null;size:512" json:"title"`
	Subtitle  string    `gorm:"not null;default:'';size:512" json:"subtitle,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Printing is a specific edition or printing of a Book.
// ISBN and Year are nil when unknown; nil only ever matches nil.
type Printing struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	BookID         uint         `gorm:"not null" json:"book_id"`
	ISBN           *string      `gorm:"size:20" json:"isbn,omitempty"`
	Year           *int         `json:"year,omitempty"`
	BindingTypeID  *uint        `json:"binding_type_id,omitempty"`
	PrintingNumber int          `gorm:"not null;default:1" json:"printing_number"`
	Book           Book         `gorm:"foreignKey:BookID;constraint:OnDelete:RESTRICT" json:"book"`
	BindingType    *BindingType `gorm:"foreignKey:BindingTypeID;constraint:OnDelete:RESTRICT" json:"binding_type,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Owner holds copies of printings.
type Owner struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	LastName   string `gorm:"not null;size:128;uniqueIndex:idx_owner_name" json:"last_name"`
	FirstName  string `gorm:"not null;size:128;uniqueIndex:idx_owner_name" json:"first_name"`
	MiddleName string `gorm:"not null;default:'';size:128;uniqueIndex:idx_owner_name" json:"middle_name,omitempty"`
	Suffix     string `gorm:"not null;default:'';size:32;uniqueIndex:idx_owner_name" json:"suffix,omitempty"`
}

// Author wrote one or more books.
type Author struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	LastName   string `gorm:"not null;size:128;uniqueIndex:idx_author_name" json:"last_name"`
	FirstName  string `gorm:"not null;size:128;uniqueIndex:idx_author_name" json:"first_name"`
	MiddleName string `gorm:"not null;default:'';size:128;uniqueIndex:idx_author_name" json:"middle_name,omitempty"`
	Suffix     string `gorm:"not null;default:'';size:32;uniqueIndex:idx_author_name" json:"suffix,omitempty"`
}

// BindingType is a lookup row such as Hardcover or Softcover.
type BindingType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;uniqueIndex;size:64" json:"name"`
}

// Genre is a free-form tag attached to books.
type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;uniqueIndex;size:100" json:"name"`
}

// BookAuthor links a book to an author in citation order.
type BookAuthor struct {
	BookID      uint   `gorm:"primaryKey;autoIncrement:false;uniqueIndex:idx_book_author_order,priority:1" json:"book_id"`
	AuthorID    uint   `gorm:"primaryKey;autoIncrement:false" json:"author_id"`
	AuthorOrder int    `gorm:"not null;uniqueIndex:idx_book_author_order,priority:2" json:"author_order"`
	Book        Book   `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	Author      Author `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT" json:"-"`
}

// BookGenre links a book to a genre.
type BookGenre struct {
	BookID  uint  `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	GenreID uint  `gorm:"primaryKey;autoIncrement:false" json:"genre_id"`
	Book    Book  `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	Genre   Genre `gorm:"foreignKey:GenreID;constraint:OnDelete:RESTRICT" json:"-"`
}

// Ownership is the quantity of a printing held by an owner.
type Ownership struct {
	PrintingID uint      `gorm:"primaryKey;autoIncrement:false" json:"printing_id"`
	OwnerID    uint      `gorm:"primaryKey;autoIncrement:false" json:"owner_id"`
	Quantity   int       `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	Printing   Printing  `gorm:"foreignKey:PrintingID;constraint:OnDelete:RESTRICT" json:"-"`
	Owner      Owner     `gorm:"foreignKey:OwnerID;constraint:OnDelete:RESTRICT" json:"-"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (Printing) TableName() string {
	return "printings"
}

func (Owner) TableName() string {
	return "owners"
}

func (Author) TableName() string {
	return "authors"
}

func (BindingType) TableName() string {
	return "binding_types"
}

func (Genre) TableName() string {
	return "genres"
}

func (BookAuthor) TableName() string {
	return "book_authors"
}

func (BookGenre) TableName() string {
	return "book_genres"
}

func (Ownership) TableName() string {
	return "ownerships"
}

// CatalogModels lists every catalog table model in dependency order.
func CatalogModels() []any {
	return []any{
		&Book{},
		&BindingType{},
		&Printing{},
		&Owner{},
		&Author{},
		&Genre{},
		&BookAuthor{},
		&BookGenre{},
		&Ownership{},
	}
}
