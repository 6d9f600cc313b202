package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"booklib/cmd/booklib/ui"
	"booklib/internal/api"
	"booklib/internal/books"
	"booklib/internal/library"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// confirmInput is where delete reads its confirmation from.
var confirmInput io.Reader = os.Stdin

type listOptions struct {
	query string
}

func newListCmd() *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the book collection",
		Long: `Fetches the collection and prints it as a table.

Example:
  booklib list
  booklib list --query orwell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "Only show books whose title or author contains the text")
	return cmd
}

func runList(ctx context.Context, opts *listOptions) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	if err := store.Refresh(orBackground(ctx)); err != nil {
		return serviceError("failed to load books", err)
	}

	st := store.State()
	list := library.Filter(st.Books, opts.query)
	logger.Debug("listing books",
		zap.Int("total", len(st.Books)),
		zap.Int("shown", len(list)),
		zap.Uint64("revision", st.Revision))

	if len(list) == 0 {
		fmt.Println(library.EmptyTitle)
		fmt.Println(library.EmptySubtitle)
		return nil
	}

	table := ui.NewSimpleTable("", []string{"ID", "Title", "Author", "Category", "Rating"})
	table.Cap(1, ui.TitleMaxWidth)
	table.Cap(2, 32)
	for _, b := range list {
		table.AddRow(strconv.FormatInt(b.ID, 10), b.Title, b.Author, b.Category, ui.PlainStars(b.Rating))
	}
	fmt.Print(table.View(ui.DefaultStyles()))
	return nil
}

// bookFlags are the editable fields shared by add and edit.
type bookFlags struct {
	title    string
	author   string
	category string
	rating   string
	cover    string
}

func (f *bookFlags) register(cmd *cobra.Command, defaults books.Draft) {
	cmd.Flags().StringVar(&f.title, "title", defaults.Title, "Book title")
	cmd.Flags().StringVar(&f.author, "author", defaults.Author, "Author name")
	cmd.Flags().StringVar(&f.category, "category", defaults.Category, "Category, e.g. Fiction")
	cmd.Flags().StringVar(&f.rating, "rating", defaults.Rating, "Rating from 0 to 5")
	cmd.Flags().StringVar(&f.cover, "cover", defaults.CoverURL, "Cover image URL")
}

func (f *bookFlags) draft() books.Draft {
	return books.Draft{
		Title:    f.title,
		Author:   f.author,
		Category: f.category,
		Rating:   f.rating,
		CoverURL: f.cover,
	}
}

// apply copies the flags the user set onto d.
func (f *bookFlags) apply(cmd *cobra.Command, d books.Draft) books.Draft {
	fields := map[string]books.Field{
		"title":    books.FieldTitle,
		"author":   books.FieldAuthor,
		"category": books.FieldCategory,
		"rating":   books.FieldRating,
		"cover":    books.FieldCoverURL,
	}
	for name, field := range fields {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetString(name)
			d.Set(field, v)
		}
	}
	return d
}

func newAddCmd() *cobra.Command {
	flags := &bookFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Long: `Validates the fields locally, then creates the book on the service.

Example:
  booklib add --title Dune --author "Frank Herbert" --category Sci-Fi \
    --rating 4.5 --cover https://example.com/dune.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd.Context(), flags.draft())
		},
	}
	flags.register(cmd, books.NewDraft())
	return cmd
}

func runAdd(ctx context.Context, draft books.Draft) error {
	in, err := validateDraft(draft)
	if err != nil {
		return err
	}

	store, err := newStore()
	if err != nil {
		return err
	}
	b, err := store.Add(orBackground(ctx), in)
	if err != nil {
		return serviceError("failed to add book", err)
	}

	fmt.Printf("Added #%d %q by %s\n", b.ID, b.Title, b.Author)
	return nil
}

func newEditCmd() *cobra.Command {
	flags := &bookFlags{}
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a book",
		Long: `Updates a book. Fields without a flag keep their current value.

Example:
  booklib edit 1 --rating 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runEdit(cmd.Context(), id, func(d books.Draft) books.Draft {
				return flags.apply(cmd, d)
			})
		},
	}
	flags.register(cmd, books.Draft{})
	return cmd
}

func runEdit(ctx context.Context, id int64, change func(books.Draft) books.Draft) error {
	ctx = orBackground(ctx)

	store, err := newStore()
	if err != nil {
		return err
	}
	if err := store.Refresh(ctx); err != nil {
		return serviceError("failed to load books", err)
	}

	current, ok := store.Find(id)
	if !ok {
		return fmt.Errorf("book %d not found", id)
	}

	in, err := validateDraft(change(books.DraftFromBook(current)))
	if err != nil {
		return err
	}

	b, err := store.Edit(ctx, id, in)
	if err != nil {
		return serviceError(fmt.Sprintf("failed to update book %d", id), err)
	}

	fmt.Printf("Updated #%d %q (%s)\n", b.ID, b.Title, ui.PlainStars(b.Rating))
	return nil
}

type deleteOptions struct {
	yes bool
}

func newDeleteCmd() *cobra.Command {
	opts := &deleteOptions{}
	cmd := &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"rm"},
		Short:   "Delete a book",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runDelete(cmd.Context(), id, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func runDelete(ctx context.Context, id int64, opts *deleteOptions) error {
	ctx = orBackground(ctx)

	store, err := newStore()
	if err != nil {
		return err
	}
	if err := store.Refresh(ctx); err != nil {
		return serviceError("failed to load books", err)
	}

	b, ok := store.Find(id)
	if !ok {
		return fmt.Errorf("book %d not found", id)
	}

	if !opts.yes {
		fmt.Printf("This will permanently remove %q from your library. Continue? [y/N] ", b.Title)
		answer, _ := bufio.NewReader(confirmInput).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			fmt.Println("Cancelled")
			return nil
		}
	}

	if err := store.Remove(ctx, id); err != nil {
		return serviceError(fmt.Sprintf("failed to delete book %d", id), err)
	}

	fmt.Printf("Deleted #%d %q\n", id, b.Title)
	return nil
}

// validateDraft prints field errors the way the form shows them.
func validateDraft(d books.Draft) (books.Input, error) {
	in, err := books.Validate(d)
	if ve, ok := books.AsValidationError(err); ok {
		for _, field := range books.Fields {
			if msg := ve.Fields.Get(field); msg != "" {
				fmt.Printf("  %-10s %s\n", field.Label()+":", msg)
			}
		}
		return books.Input{}, fmt.Errorf("invalid book: %w", err)
	}
	return in, err
}

// serviceError adds the HTTP status when the service rejected the request.
func serviceError(action string, err error) error {
	if status := api.StatusCode(err); status != 0 {
		return fmt.Errorf("%s (HTTP %d): %w", action, status, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid book id %q", s)
	}
	return id, nil
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
