package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var booksJSON bool

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Show ingested books",
	Long:  `Lists ingested books, or shows one book's ingestion details.`,
	RunE:  runBooksList,
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested books",
	Args:  cobra.NoArgs,
	RunE:  runBooksList,
}

var booksShowCmd = &cobra.Command{
	Use:   "show [book-id]",
	Short: "Show a book's ingestion details",
	Args:  cobra.ExactArgs(1),
	RunE:  runBooksShow,
}

func init() {
	booksCmd.PersistentFlags().BoolVar(&booksJSON, "json", false, "output as JSON")
	booksCmd.AddCommand(booksListCmd)
	booksCmd.AddCommand(booksShowCmd)
	rootCmd.AddCommand(booksCmd)
}

func runBooksList(cmd *cobra.Command, _ []string) error {
	if ingestionService == nil {
		return errIngestionNotConfigured
	}

	books, err := ingestionService.Books(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}

	if booksJSON {
		return printJSON(cmd, books)
	}
	if len(books) == 0 {
		cmd.Println("No books ingested yet. Run 'bookrag ingest' first.")
		return nil
	}

	cmd.Println("Books:")
	for i := range books {
		b := &books[i]
		cmd.Printf("  %-24s %-12s %5d chunks  %s\n", b.ID, b.Status, b.TotalChunks, b.Title)
	}
	return nil
}

func runBooksShow(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errIngestionNotConfigured
	}

	book, err := ingestionService.Book(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get book %s: %w", args[0], err)
	}

	if booksJSON {
		return printJSON(cmd, book)
	}

	cmd.Printf("ID:          %s\n", book.ID)
	cmd.Printf("Title:       %s\n", book.Title)
	if book.Author != "" {
		cmd.Printf("Author:      %s\n", book.Author)
	}
	cmd.Printf("Status:      %s\n", book.Status)
	cmd.Printf("Words:       %d\n", book.WordCount)
	cmd.Printf("Chunks:      %d\n", book.TotalChunks)
	if book.IngestionStartedAt != nil {
		cmd.Printf("Started:     %s\n", book.IngestionStartedAt.Local().Format(time.DateTime))
	}
	if book.IngestionCompletedAt != nil {
		cmd.Printf("Completed:   %s\n", book.IngestionCompletedAt.Local().Format(time.DateTime))
	}
	return nil
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
