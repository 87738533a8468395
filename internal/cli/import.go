package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/AlexTsikhun/book-management-system/internal/config"
	"github.com/AlexTsikhun/book-management-system/internal/importers"
)

// ImportCommand loads a JSON, CSV or XLSX file of books into the catalog.
type ImportCommand struct {
	FilePath     string
	DatabasePath string
	Verbose      bool

	Out    io.Writer
	config *config.Config
}

func NewImportCommand(cfg *config.Config) *ImportCommand {
	return &ImportCommand{config: cfg}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to a .json, .csv or .xlsx file of books (required)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "SQLite database path (defaults to DATABASE_PATH)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every rejected record")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books into the catalog. Valid records are saved, invalid ones are reported.\n\n")
		fmt.Fprintf(os.Stderr, "The file needs title, author_name, genre and published_year fields.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file books.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import -file books.xlsx -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	if _, err := importers.ParserFor(cmd.FilePath); err != nil {
		return err
	}

	return nil
}

func (cmd *ImportCommand) Run() error {
	out := outputOrStdout(cmd.Out)

	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	db, err := openDatabase(cmd.config.Database, cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(out, "Importing %s\n", cmd.FilePath)

	result, err := newBookService(db, cmd.config.Catalog).BulkImport(context.Background(), cmd.FilePath, file)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintln(out, "\n=== Import Summary ===")
	fmt.Fprintf(out, "Total records: %d\n", result.Total)
	fmt.Fprintf(out, "Imported: %d\n", result.Successful)
	fmt.Fprintf(out, "Rejected: %d\n", result.Failed)

	if cmd.Verbose && len(result.FailedInfo) > 0 {
		fmt.Fprintln(out, "\nRejected records:")
		for _, failed := range result.FailedInfo {
			fmt.Fprintf(out, "  [ERROR] %v: %s\n", failed.Record["title"], failed.Reason)
		}
	}

	return nil
}
