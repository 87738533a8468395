// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - Repository[T]: generic CRUD over one entity (internal/database/repositories.go)
//   - AuthorRepository, BookRepository, UserRepository: entity lookups and search
//   - Transactor: runs a function inside a fresh unit of work. Defined in
//     services, auth and importers; *database.Database satisfies all three.
//
// ## Use Case Interfaces
//
//   - BookUseCases, AuthorUseCases, AuthUseCases: what the HTTP layer needs
//     from the services (internal/http/config.go)
//   - BulkImporter, CatalogExporter: file import and export, consumed by the
//     task queue and the snapshot scheduler (internal/services/interfaces.go)
//   - TokenAuthenticator: resolves a bearer token to a user (internal/auth/middleware.go)
//
// ## Format Interfaces
//
//   - Parser: reads an upload into raw records (internal/importers/parsers.go)
//   - Validator: turns a raw record into a typed book (internal/importers/validator.go)
//   - Serializer: renders export records (internal/exporters/serializer.go)
//
// ## Background Work Interfaces
//
//   - TaskQueue: enqueue and poll background imports (internal/http/config.go)
//   - SnapshotRunner, SnapshotStore: periodic catalog snapshots (internal/scheduler)
//   - Limiter: request rate limiting, in memory or Redis (internal/auth/ratelimit.go)
//
// # Adding a New Import Format
//
//  1. Implement Parser in internal/importers/
//
//     type NDJSONParser struct{}
//
//     func (NDJSONParser) Parse(r io.Reader) ([]entities.RawRecord, error)
//
//  2. Select it by extension in importers.ParserFor
//
//  3. Add a compile-time check in checks.go
//
// # Adding a New Export Format
//
//  1. Implement Serializer in internal/exporters/formats.go
//
//     type TOMLSerializer struct{}
//
//     func (TOMLSerializer) Format() string
//     func (TOMLSerializer) ContentType() string
//     func (TOMLSerializer) Extension() string
//     func (TOMLSerializer) Serialize(records []entities.ExportRecord) ([]byte, error)
//
//  2. Register it in exporters.DefaultRegistry. The HTTP export endpoint,
//     the export command and the snapshot scheduler pick it up by name.
//
// # Adding a New Background Task
//
//  1. Define the task and its queue in internal/tasks/, following import_books.go
//
//  2. Register the queue in entrypoint.go next to NewImportBooksQueue
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
