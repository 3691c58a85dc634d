package cli

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/mrlokans/bookdb/internal/database/catalog"
	"github.com/mrlokans/bookdb/internal/identity"
	"github.com/mrlokans/bookdb/internal/names"
)

// copiesFlags are the description flags shared by add and remove.
type copiesFlags struct {
	DatabasePath   string
	Title          string
	Subtitle       string
	Year           int
	ISBN           string
	Binding        string
	PrintingNumber int
	Authors        []string
	Genres         []string
	Owner          string
	Quantity       int

	yearSet bool
}

func (f *copiesFlags) register(fs *flag.FlagSet, withGenres bool) {
	fs.StringVarP(&f.Title, "title", "t", "", "Book title (required)")
	fs.StringVar(&f.Subtitle, "subtitle", "", "Book subtitle")
	fs.IntVarP(&f.Year, "year", "y", 0, "Publication year of the printing")
	fs.StringVar(&f.ISBN, "isbn", "", "ISBN of the printing")
	fs.StringVarP(&f.Binding, "binding", "b", "", "Binding type, e.g. Hardcover or Softcover")
	fs.IntVar(&f.PrintingNumber, "printing", 1, "Printing number")
	fs.StringArrayVarP(&f.Authors, "author", "a", nil, `Author as "Last, First Middle, Suffix" or "First Last"; repeat in citation order`)
	if withGenres {
		fs.StringArrayVarP(&f.Genres, "genre", "g", nil, "Genre; repeat for several")
	}
	fs.StringVarP(&f.Owner, "owner", "o", "", `Owner as "Last, First" or "First Last" (required)`)
	fs.IntVarP(&f.Quantity, "quantity", "q", 1, "Number of copies")
}

func (f *copiesFlags) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if f.Title == "" {
		return fmt.Errorf("required flag --title not provided")
	}
	if f.Owner == "" {
		return fmt.Errorf("required flag --owner not provided")
	}
	f.yearSet = fs.Changed("year")
	return nil
}

func (f *copiesFlags) description() identity.BookDescription {
	d := identity.BookDescription{
		Title:          f.Title,
		Subtitle:       f.Subtitle,
		ISBN:           f.ISBN,
		Binding:        f.Binding,
		PrintingNumber: f.PrintingNumber,
		Genres:         f.Genres,
		Owner:          names.Parse(f.Owner),
		Quantity:       f.Quantity,
	}
	if f.yearSet {
		year := f.Year
		d.Year = &year
	}
	for _, a := range f.Authors {
		d.Authors = append(d.Authors, names.Parse(a))
	}
	return d
}

// AddCommand records copies of a book for an owner.
type AddCommand struct {
	env *Env
	copiesFlags
}

func NewAddCommand(env *Env) *AddCommand {
	return &AddCommand{env: env}
}

func (cmd *AddCommand) ParseFlags(args []string) error {
	fs := cmd.env.newFlagSet("add", "add --title <title> --owner <name> [options]",
		"Add copies of a book to an owner's shelf. A printing is matched on title, year,\n"+
			"and ISBN; when none matches a new one is created.", &cmd.DatabasePath)
	cmd.register(fs, true)
	return cmd.parse(fs, args)
}

func (cmd *AddCommand) Run() error {
	db, err := cmd.env.openStore(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	resolver := identity.NewResolver(catalog.NewRepository(db.DB), cmd.env.Logger)
	result, err := resolver.Add(cmd.description())
	if err != nil {
		return err
	}

	verb := "Added to"
	if result.Created {
		verb = "Created"
	}
	cmd.env.printf("%s %s\n", verb, describePrinting(result.Printing))
	cmd.env.printf("%s now holds %d\n", catalog.OwnerName(result.Owner), result.Quantity)
	return nil
}

// RemoveCommand takes copies of a book away from an owner.
type RemoveCommand struct {
	env *Env
	copiesFlags
}

func NewRemoveCommand(env *Env) *RemoveCommand {
	return &RemoveCommand{env: env}
}

func (cmd *RemoveCommand) ParseFlags(args []string) error {
	fs := cmd.env.newFlagSet("remove", "remove --title <title> --owner <name> [options]",
		"Remove copies of a book from an owner's shelf. The printing and the owner must\n"+
			"exist, and the owner must hold at least --quantity copies.", &cmd.DatabasePath)
	cmd.register(fs, false)
	return cmd.parse(fs, args)
}

func (cmd *RemoveCommand) Run() error {
	db, err := cmd.env.openStore(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	resolver := identity.NewResolver(catalog.NewRepository(db.DB), cmd.env.Logger)
	result, err := resolver.Remove(cmd.description())
	if err != nil {
		return err
	}

	cmd.env.printf("Removed from %s\n", describePrinting(result.Printing))
	cmd.env.printf("%s now holds %d\n", catalog.OwnerName(result.Owner), result.Quantity)
	return nil
}
