// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go        # Connection setup, driver selection, migrations
//	├── unit_of_work.go    # Transaction scope owning one repository per entity
//	├── repositories.go    # Repository contracts
//	├── crud/              # Generic gorm repository, paging, error translation
//	├── authors/           # Author lookups by natural key
//	├── books/             # Book join view (book + author name)
//	└── users/             # User lookups by username and email
//
// # Units of Work
//
// Every business operation runs inside exactly one unit of work. The scope
// commits when the callback succeeds and rolls back on error, panic or
// cancellation:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	err = db.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
//		author, err := uow.Authors().RetrieveByName(ctx, "Jane Doe")
//		if err != nil {
//			return err
//		}
//		_, err = uow.Books().Create(ctx, &entities.Book{AuthorID: author.ID})
//		return err
//	})
//
// Units of work do not nest. Repositories never cache across units of work.
//
// # Errors
//
// Repositories return errors classified by internal/apperrors: NotFound,
// ConstraintViolation for uniqueness and foreign key failures on both SQLite
// and Postgres, and InvalidParameter for sort fields outside the allow-list.
package database
