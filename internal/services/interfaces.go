package services

import (
	"context"
	"io"

	"github.com/AlexTsikhun/book-management-system/internal/database"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
	"github.com/AlexTsikhun/book-management-system/internal/exporters"
)

// Transactor runs a function inside a fresh unit of work.
// *database.Database satisfies it.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context, uow *database.UnitOfWork) error) error
}

// Importer turns parsed records into books.
// Use this interface when you only need the reconciliation step.
type Importer interface {
	Import(ctx context.Context, records []entities.RawRecord) (entities.ImportResult, error)
}

// BulkImporter imports an uploaded file. The filename selects the parser.
type BulkImporter interface {
	BulkImport(ctx context.Context, filename string, r io.Reader) (entities.ImportResult, error)
}

// CatalogExporter produces the catalog in a registered format.
type CatalogExporter interface {
	ExportBooks(ctx context.Context, format string) (*Export, error)
}

// SerializerSource resolves export formats.
type SerializerSource interface {
	Get(format string) (exporters.Serializer, error)
}

// Export is a serialized catalog ready to be sent or written.
type Export struct {
	Format      string
	ContentType string
	Extension   string
	Count       int
	Data        []byte
}
