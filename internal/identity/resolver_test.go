package identity

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookdb/internal/database"
	"github.com/mrlokans/bookdb/internal/database/catalog"
	"github.com/mrlokans/bookdb/internal/database/schema"
	"github.com/mrlokans/bookdb/internal/entities"
	apperrors "github.com/mrlokans/bookdb/internal/errors"
	"github.com/mrlokans/bookdb/internal/logging"
	"github.com/mrlokans/bookdb/internal/names"
)

func setupTestResolver(t *testing.T) (*Resolver, *catalog.Repository, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "library.db")
	db, err := database.NewDatabase(database.Options{Path: dbPath, Create: true, Logger: logging.Nop()})
	require.NoError(t, err)
	require.NoError(t, schema.NewManager(db.DB, logging.Nop()).Initialize())

	repo := catalog.NewRepository(db.DB)
	return NewResolver(repo, logging.Nop()), repo, func() { db.Close() }
}

func year(v int) *int { return &v }

var (
	smith = names.Name{Last: "Smith", First: "Anna"}
	jones = names.Name{Last: "Jones", First: "Bob"}
)

func dune(owner names.Name, qty int) BookDescription {
	return BookDescription{
		Title:    "Dune",
		Year:     year(1965),
		ISBN:     "9780441013593",
		Authors:  []names.Name{{Last: "Herbert", First: "Frank"}},
		Owner:    owner,
		Quantity: qty,
	}
}

func stats(t *testing.T, repo *catalog.Repository) catalog.Stats {
	t.Helper()
	s, err := repo.Stats()
	require.NoError(t, err)
	return s
}

func TestResolver_AddCreatesBookAndPrinting(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()

	result, err := resolver.Add(dune(smith, 1))
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Equal(t, 1, result.Quantity)
	assert.Equal(t, "Dune", result.Book.Title)
	require.NotNil(t, result.Printing.ISBN)
	assert.Equal(t, "9780441013593", *result.Printing.ISBN)

	s := stats(t, repo)
	assert.Equal(t, int64(1), s.Books)
	assert.Equal(t, int64(1), s.Printings)
	assert.Equal(t, int64(1), s.Ownerships)
	assert.Equal(t, int64(1), s.Copies)

	authors, err := repo.BookAuthors(result.Book.ID)
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, "Herbert", authors[0].LastName)
}

func TestResolver_ReAddIncrementsQuantity(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()

	first, err := resolver.Add(dune(smith, 1))
	require.NoError(t, err)
	second, err := resolver.Add(dune(smith, 1))
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Printing.ID, second.Printing.ID)
	assert.Equal(t, 2, second.Quantity)

	s := stats(t, repo)
	assert.Equal(t, int64(1), s.Books)
	assert.Equal(t, int64(1), s.Printings)
	assert.Equal(t, int64(1), s.Ownerships)
}

func TestResolver_AddForAnotherOwner(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()

	first, err := resolver.Add(dune(smith, 1))
	require.NoError(t, err)
	second, err := resolver.Add(dune(jones, 3))
	require.NoError(t, err)

	assert.Equal(t, first.Printing.ID, second.Printing.ID)
	assert.NotEqual(t, first.Owner.ID, second.Owner.ID)
	assert.Equal(t, 3, second.Quantity)

	s := stats(t, repo)
	assert.Equal(t, int64(1), s.Printings)
	assert.Equal(t, int64(2), s.Ownerships)
	assert.Equal(t, int64(4), s.Copies)
}

func TestResolver_RemoveUnderflowChangesNothing(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()

	added, err := resolver.Add(dune(smith, 1))
	require.NoError(t, err)

	_, err = resolver.Remove(dune(smith, 2))
	require.ErrorIs(t, err, apperrors.ErrConstraintViolation)

	ownership, err := repo.GetOwnership(added.Printing.ID, added.Owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, ownership.Quantity)
}

func TestResolver_RemoveLastCopyKeepsCatalog(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()

	_, err := resolver.Add(dune(smith, 2))
	require.NoError(t, err)

	result, err := resolver.Remove(dune(smith, 2))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Quantity)

	s := stats(t, repo)
	assert.Equal(t, int64(0), s.Ownerships)
	assert.Equal(t, int64(1), s.Printings, "no cascade on zero quantity")
	assert.Equal(t, int64(1), s.Books)
	assert.Equal(t, int64(1), s.Authors)
	assert.Equal(t, int64(1), s.Owners)
}

func TestResolver_RemoveNotFound(t *testing.T) {
	resolver, _, cleanup := setupTestResolver(t)
	defer cleanup()

	_, err := resolver.Remove(dune(smith, 1))
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "no matching printing")

	_, err = resolver.Add(dune(smith, 1))
	require.NoError(t, err)

	_, err = resolver.Remove(dune(jones, 1))
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "unknown owner")

	_, err = resolver.Add(dune(names.Name{Last: "Brown", First: "Carl"}, 1))
	require.NoError(t, err)
	_, err = resolver.Remove(dune(names.Name{Last: "Brown", First: "Carl"}, 1))
	require.NoError(t, err)
	_, err = resolver.Remove(dune(names.Name{Last: "Brown", First: "Carl"}, 1))
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "owner holds no copies")
}

func TestResolver_DifferentISBNNeverMerges(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()

	first, err := resolver.Add(dune(smith, 1))
	require.NoError(t, err)

	other := dune(smith, 1)
	other.ISBN = "9780593099322"
	second, err := resolver.Add(other)
	require.NoError(t, err)

	assert.True(t, second.Created)
	assert.NotEqual(t, first.Printing.ID, second.Printing.ID)
	assert.Equal(t, first.Book.ID, second.Book.ID, "same title and authors share the book")
	assert.Equal(t, int64(2), stats(t, repo).Printings)
}

func TestResolver_AbsentISBNIsItsOwnValue(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()

	_, err := resolver.Add(dune(smith, 1))
	require.NoError(t, err)

	noISBN := dune(smith, 1)
	noISBN.ISBN = ""
	result, err := resolver.Add(noISBN)
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Nil(t, result.Printing.ISBN)

	noYear := noISBN
	noYear.Year = nil
	result, err = resolver.Add(noYear)
	require.NoError(t, err)
	assert.True(t, result.Created)

	assert.Equal(t, int64(3), stats(t, repo).Printings)
}

func TestResolver_ISBNIsNormalized(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()

	_, err := resolver.Add(dune(smith, 1))
	require.NoError(t, err)

	hyphenated := dune(smith, 1)
	hyphenated.ISBN = "978-0-441-01359-3"
	hyphenated.Title = "  Dune "
	result, err := resolver.Add(hyphenated)
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Equal(t, 2, result.Quantity)
	assert.Equal(t, int64(1), stats(t, repo).Printings)
}

func TestResolver_BookReuseRequiresSameAuthors(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()

	first, err := resolver.Add(dune(smith, 1))
	require.NoError(t, err)

	reprint := dune(smith, 1)
	reprint.Year = year(1990)
	reprint.ISBN = ""
	second, err := resolver.Add(reprint)
	require.NoError(t, err)
	assert.Equal(t, first.Book.ID, second.Book.ID)

	homage := dune(smith, 1)
	homage.Year = year(2001)
	homage.ISBN = ""
	homage.Authors = []names.Name{{Last: "Herbert", First: "Brian"}, {Last: "Anderson", First: "Kevin"}}
	third, err := resolver.Add(homage)
	require.NoError(t, err)
	assert.NotEqual(t, first.Book.ID, third.Book.ID)

	authors, err := repo.BookAuthors(third.Book.ID)
	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, "Herbert", authors[0].LastName)
	assert.Equal(t, "Anderson", authors[1].LastName)
	assert.Equal(t, int64(2), stats(t, repo).Books)
}

// seedTwins stores two printings with the same title, year, and ISBN that
// differ in binding, authors, and subtitle, as a hand-edited store might.
func seedTwins(t *testing.T, repo *catalog.Repository) (hard, soft entities.Printing) {
	t.Helper()

	create := func(subtitle, binding string, author names.Name) entities.Printing {
		book := &entities.Book{Title: "Emma", Subtitle: subtitle}
		require.NoError(t, repo.CreateBook(book))
		a, err := repo.FindOrCreateAuthor(author)
		require.NoError(t, err)
		require.NoError(t, repo.LinkAuthor(book.ID, a.ID))
		b, err := repo.FindOrCreateBindingType(binding)
		require.NoError(t, err)
		p := &entities.Printing{BookID: book.ID, Year: year(1815), BindingTypeID: &b.ID}
		require.NoError(t, repo.CreatePrinting(p))
		return *p
	}

	hard = create("A Novel", entities.BindingHardcover, names.Name{Last: "Austen", First: "Jane"})
	soft = create("Annotated", entities.BindingSoftcover, names.Name{Last: "Shapard", First: "David"})
	return hard, soft
}

func emma(owner names.Name) BookDescription {
	return BookDescription{Title: "Emma", Year: year(1815), Owner: owner, Quantity: 1}
}

func TestResolver_AmbiguousMatchWritesNothing(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()
	hard, soft := seedTwins(t, repo)
	before := stats(t, repo)

	_, err := resolver.Add(emma(smith))
	require.ErrorIs(t, err, apperrors.ErrAmbiguousMatch)

	var domainErr *apperrors.Error
	require.ErrorAs(t, err, &domainErr)
	candidates, ok := domainErr.Details.([]entities.Printing)
	require.True(t, ok)
	require.Len(t, candidates, 2)
	assert.ElementsMatch(t, []uint{hard.ID, soft.ID}, []uint{candidates[0].ID, candidates[1].ID})
	assert.Equal(t, "Emma", candidates[0].Book.Title)

	assert.Equal(t, before, stats(t, repo), "ambiguous add must not create the owner")

	_, err = resolver.Remove(emma(smith))
	assert.ErrorIs(t, err, apperrors.ErrAmbiguousMatch)
}

func TestResolver_NarrowsByBinding(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()
	_, soft := seedTwins(t, repo)

	d := emma(smith)
	d.Binding = "softcover"
	result, err := resolver.Add(d)
	require.NoError(t, err)
	assert.Equal(t, soft.ID, result.Printing.ID)
	assert.False(t, result.Created)
}

func TestResolver_NarrowsByAuthorsAfterUselessBinding(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()
	hard, _ := seedTwins(t, repo)

	d := emma(smith)
	d.Binding = "Leather"
	d.Authors = []names.Name{{Last: "Austen", First: "Jane"}}
	result, err := resolver.Add(d)
	require.NoError(t, err)
	assert.Equal(t, hard.ID, result.Printing.ID)

	ids, err := repo.MatchBindingTypeIDs("Leather")
	require.NoError(t, err)
	assert.Empty(t, ids, "narrowing never creates lookup rows")
}

func TestResolver_NarrowsBySubtitle(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()
	_, soft := seedTwins(t, repo)

	d := emma(smith)
	d.Subtitle = "Annotated"
	d.Authors = []names.Name{{Last: "Nobody", First: "Known"}}
	result, err := resolver.Remove(d)
	require.ErrorIs(t, err, apperrors.ErrNotFound, "resolved, but the owner does not exist yet")
	assert.Nil(t, result)

	result, err = resolver.Add(d)
	require.NoError(t, err)
	assert.Equal(t, soft.ID, result.Printing.ID)
}

func TestResolver_GenresLinkedToBook(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()

	d := dune(smith, 1)
	d.Genres = []string{"Science Fiction", "Classics"}
	result, err := resolver.Add(d)
	require.NoError(t, err)

	d.Genres = []string{"science fiction"}
	_, err = resolver.Add(d)
	require.NoError(t, err)

	genres, err := repo.BookGenres(result.Book.ID)
	require.NoError(t, err)
	var got []string
	for _, g := range genres {
		got = append(got, g.Name)
	}
	assert.Equal(t, []string{"Classics", "Science Fiction"}, got)
}

func TestResolver_Validation(t *testing.T) {
	resolver, repo, cleanup := setupTestResolver(t)
	defer cleanup()

	tests := []struct {
		name   string
		mutate func(*BookDescription)
	}{
		{"missing title", func(d *BookDescription) { d.Title = "  " }},
		{"owner without first name", func(d *BookDescription) { d.Owner = names.Name{Last: "Smith"} }},
		{"zero quantity", func(d *BookDescription) { d.Quantity = 0 }},
		{"negative quantity", func(d *BookDescription) { d.Quantity = -1 }},
		{"author without last name", func(d *BookDescription) { d.Authors = []names.Name{{First: "Frank"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dune(smith, 1)
			tt.mutate(&d)

			_, err := resolver.Add(d)
			assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
			_, err = resolver.Remove(d)
			assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
		})
	}

	s := stats(t, repo)
	assert.Zero(t, s.Books)
	assert.Zero(t, s.Owners)
	assert.Zero(t, s.Authors)
}

func TestSameSet(t *testing.T) {
	assert.True(t, sameSet(nil, []uint{}))
	assert.True(t, sameSet([]uint{3, 1, 2}, []uint{1, 2, 3}))
	assert.False(t, sameSet([]uint{1, 2}, []uint{1}))
	assert.False(t, sameSet([]uint{1}, []uint{0}))
}
