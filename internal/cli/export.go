package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/AlexTsikhun/book-management-system/internal/config"
)

// ExportCommand writes the catalog in one of the export formats.
type ExportCommand struct {
	Format       string
	OutputPath   string
	DatabasePath string

	Out    io.Writer
	config *config.Config
}

func NewExportCommand(cfg *config.Config) *ExportCommand {
	return &ExportCommand{config: cfg}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)

	fs.StringVar(&cmd.Format, "format", "json", "Export format: json, csv, yaml or xlsx")
	fs.StringVar(&cmd.OutputPath, "out", "", "Output file (defaults to stdout)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "SQLite database path (defaults to DATABASE_PATH)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export the catalog, capped at CATALOG_EXPORT_LIMIT books.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s export -format csv -out books.csv\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Format == "xlsx" && cmd.OutputPath == "" {
		return fmt.Errorf("xlsx export requires -out")
	}

	return nil
}

func (cmd *ExportCommand) Run() error {
	db, err := openDatabase(cmd.config.Database, cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	export, err := newBookService(db, cmd.config.Catalog).ExportBooks(context.Background(), cmd.Format)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if cmd.OutputPath == "" {
		_, err := outputOrStdout(cmd.Out).Write(export.Data)
		return err
	}

	if err := os.WriteFile(cmd.OutputPath, export.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Exported %d books to %s\n", export.Count, cmd.OutputPath)
	return nil
}
