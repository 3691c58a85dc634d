package cli

import (
	"fmt"
	"strings"

	"github.com/mrlokans/bookdb/internal/database/catalog"
	"github.com/mrlokans/bookdb/internal/search"
)

// SearchCommand lists the copies matching a query on one field.
type SearchCommand struct {
	env          *Env
	DatabasePath string
	Field        search.Field
	Query        string
}

func NewSearchCommand(env *Env) *SearchCommand {
	return &SearchCommand{env: env}
}

func (cmd *SearchCommand) ParseFlags(args []string) error {
	fieldNames := make([]string, 0, len(search.Fields()))
	for _, f := range search.Fields() {
		fieldNames = append(fieldNames, f.String())
	}

	var field string
	fs := cmd.env.newFlagSet("search", "search [--field <field>] <query>",
		"Search the library. Fields: "+strings.Join(fieldNames, ", ")+".", &cmd.DatabasePath)
	fs.StringVarP(&field, "field", "f", search.FieldTitle.String(), "Field to match the query against")

	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := search.ParseField(field)
	if err != nil {
		return err
	}
	cmd.Field = f
	cmd.Query = strings.Join(fs.Args(), " ")
	if strings.TrimSpace(cmd.Query) == "" {
		return fmt.Errorf("search query not provided")
	}
	return nil
}

func (cmd *SearchCommand) Run() error {
	db, err := cmd.env.openStore(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := search.NewEngine(db.DB, catalog.NewRepository(db.DB), cmd.env.Logger)
	records, err := engine.Search(cmd.Field, cmd.Query)
	if err != nil {
		return err
	}

	count := 0
	for rec, err := range records {
		if err != nil {
			return err
		}
		count++
		cmd.env.printf("%s\n", formatRecord(rec))
	}

	if count == 0 {
		cmd.env.printf("No copies match %s %q\n", cmd.Field, cmd.Query)
		return nil
	}
	cmd.env.printf("%d match(es)\n", count)
	return nil
}

func formatRecord(rec search.Record) string {
	var b strings.Builder
	b.WriteString(rec.Title)
	if rec.Subtitle != "" {
		b.WriteString(": " + rec.Subtitle)
	}
	if rec.Year != nil {
		fmt.Fprintf(&b, " (%d)", *rec.Year)
	}
	if rec.Binding != "" {
		fmt.Fprintf(&b, " [%s]", rec.Binding)
	}
	if rec.ISBN != "" {
		fmt.Fprintf(&b, " ISBN %s", rec.ISBN)
	}

	if len(rec.Authors) > 0 {
		authors := make([]string, len(rec.Authors))
		for i, a := range rec.Authors {
			authors[i] = a.String()
		}
		fmt.Fprintf(&b, "\n    by %s", strings.Join(authors, ", "))
	}
	if len(rec.Genres) > 0 {
		fmt.Fprintf(&b, "\n    genres: %s", strings.Join(rec.Genres, ", "))
	}
	fmt.Fprintf(&b, "\n    %s holds %d", rec.Owner, rec.Quantity)
	return b.String()
}
