package database

import (
	"context"

	"github.com/AlexTsikhun/book-management-system/internal/database/crud"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

type (
	Page       = crud.Page
	Direction  = crud.Direction
	SortFields = crud.SortFields
	Patch      = crud.Patch
)

var (
	ErrNoTransaction     = crud.ErrNoTransaction
	ErrTransactionActive = crud.ErrTransactionActive
)

// Repository is the contract every entity repository fulfils.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) (*T, error)
	Retrieve(ctx context.Context, id uint) (*T, error)
	Update(ctx context.Context, id uint, patch Patch) (*T, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page Page) ([]T, error)
	Count(ctx context.Context) (int64, error)
	BulkCreate(ctx context.Context, rows []T) ([]T, error)
	SortFields() SortFields
}

type AuthorRepository interface {
	Repository[entities.Author]
	RetrieveByName(ctx context.Context, name string) (*entities.Author, error)
	RetrieveManyByNames(ctx context.Context, names []string) ([]entities.Author, error)
}

// BookRepository reads through the join view: every returned book carries
// its author's name.
type BookRepository interface {
	Repository[entities.Book]
	Search(ctx context.Context, query string, page Page) ([]entities.Book, error)
	CountMatching(ctx context.Context, query string) (int64, error)
	RetrieveManyByIDs(ctx context.Context, ids []uint) ([]entities.Book, error)
}

type UserRepository interface {
	Repository[entities.User]
	RetrieveByUsername(ctx context.Context, username string) (*entities.User, error)
	RetrieveByEmail(ctx context.Context, email string) (*entities.User, error)
	RetrieveManyByUsernames(ctx context.Context, usernames []string) ([]entities.User, error)
}
