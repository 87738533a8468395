package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AlexTsikhun/book-management-system/internal/config"
	"github.com/AlexTsikhun/book-management-system/internal/database"
	"github.com/AlexTsikhun/book-management-system/internal/exporters"
	"github.com/AlexTsikhun/book-management-system/internal/services"
)

// openDatabase opens the configured store, with path overriding the SQLite
// file when set.
func openDatabase(cfg config.Database, path string) (*database.Database, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
		}
		cfg.Path = abs
	}
	db, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func newBookService(db *database.Database, cfg config.Catalog) *services.BookService {
	return services.NewBookService(db, nil, exporters.DefaultRegistry(), cfg)
}

func outputOrStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
