package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/AlexTsikhun/book-management-system/internal/auth"
	"github.com/AlexTsikhun/book-management-system/internal/database"
	"github.com/AlexTsikhun/book-management-system/internal/database/authors"
	"github.com/AlexTsikhun/book-management-system/internal/database/books"
	"github.com/AlexTsikhun/book-management-system/internal/database/users"
	"github.com/AlexTsikhun/book-management-system/internal/exporters"
	"github.com/AlexTsikhun/book-management-system/internal/http"
	"github.com/AlexTsikhun/book-management-system/internal/importers"
	"github.com/AlexTsikhun/book-management-system/internal/scheduler"
	"github.com/AlexTsikhun/book-management-system/internal/services"
	"github.com/AlexTsikhun/book-management-system/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ database.AuthorRepository = (*authors.Repository)(nil)
var _ database.BookRepository = (*books.Repository)(nil)
var _ database.UserRepository = (*users.Repository)(nil)

// Units of work
var _ services.Transactor = (*database.Database)(nil)
var _ auth.Transactor = (*database.Database)(nil)
var _ importers.Transactor = (*database.Database)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Use Cases
// =============================================================================

var _ http.BookUseCases = (*services.BookService)(nil)
var _ http.AuthorUseCases = (*services.AuthorService)(nil)
var _ services.BulkImporter = (*services.BookService)(nil)
var _ services.CatalogExporter = (*services.BookService)(nil)
var _ services.Importer = (*importers.Pipeline)(nil)

var _ http.AuthUseCases = (*auth.Service)(nil)
var _ auth.TokenAuthenticator = (*auth.Service)(nil)

// =============================================================================
// Import and Export Formats
// =============================================================================

var _ importers.Parser = importers.JSONParser{}
var _ importers.Parser = importers.CSVParser{}
var _ importers.Parser = importers.XLSXParser{}

var _ exporters.Serializer = exporters.JSONSerializer{}
var _ exporters.Serializer = exporters.CSVSerializer{}
var _ exporters.Serializer = exporters.YAMLSerializer{}
var _ exporters.Serializer = exporters.XLSXSerializer{}
var _ services.SerializerSource = (*exporters.Registry)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.SnapshotRunner = (*scheduler.ExportSnapshotScheduler)(nil)
var _ scheduler.SnapshotStore = (*exporters.SnapshotWriter)(nil)

// =============================================================================
// Rate Limiting
// =============================================================================

var _ auth.Limiter = (*auth.MemoryLimiter)(nil)
var _ auth.Limiter = (*auth.RedisLimiter)(nil)
