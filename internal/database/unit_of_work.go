package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/AlexTsikhun/book-management-system/internal/database/authors"
	"github.com/AlexTsikhun/book-management-system/internal/database/books"
	"github.com/AlexTsikhun/book-management-system/internal/database/crud"
	"github.com/AlexTsikhun/book-management-system/internal/database/users"
)

// UnitOfWork bounds one transaction and exposes one repository per entity
// bound to it. A unit of work serves a single operation and must not be
// shared between goroutines.
//
// Repositories are available between Begin and Commit or Rollback. A
// repository kept past the end of its scope fails with ErrNoTransaction.
type UnitOfWork struct {
	db    *gorm.DB
	sorts SortSettings

	tx      *gorm.DB
	authors AuthorRepository
	books   BookRepository
	users   UserRepository
}

func NewUnitOfWork(db *gorm.DB, sorts SortSettings) *UnitOfWork {
	return &UnitOfWork{db: db, sorts: sorts}
}

// Begin opens the transaction and binds fresh repositories to it.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTransactionActive
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	u.tx = tx
	u.authors = authors.NewRepository(tx, u.sorts.Authors)
	u.books = books.NewRepository(tx, u.sorts.Books)
	u.users = users.NewRepository(tx, u.sorts.Users)
	return nil
}

// Commit makes every write since Begin durable.
func (u *UnitOfWork) Commit() error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Commit().Error; err != nil {
		return crud.Translate(err, "transaction")
	}
	return nil
}

// Rollback discards every write since Begin.
func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Rollback().Error; err != nil {
		return crud.Translate(err, "transaction")
	}
	return nil
}

// Active reports whether a transaction is open.
func (u *UnitOfWork) Active() bool {
	return u.tx != nil
}

// Do runs fn inside one transaction. The transaction commits when fn returns
// nil and ctx is still live; it rolls back when fn fails, panics or ctx is
// cancelled. The error from fn is returned unchanged and a panic is re-raised
// after the rollback.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, uow *UnitOfWork) error) (err error) {
	if err := u.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = u.Rollback()
			panic(r)
		}
		if u.Active() {
			_ = u.Rollback()
		}
	}()

	if err := fn(ctx, u); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return u.Commit()
}

func (u *UnitOfWork) Authors() AuthorRepository {
	return u.authors
}

func (u *UnitOfWork) Books() BookRepository {
	return u.books
}

func (u *UnitOfWork) Users() UserRepository {
	return u.users
}
