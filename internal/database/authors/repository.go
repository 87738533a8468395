// Package authors provides database operations for authors.
//
// # Usage
//
//	repo := authors.NewRepository(tx, authors.DefaultSortFields)
//	author, err := repo.RetrieveByName(ctx, "Ursula K. Le Guin")
package authors

import (
	"context"

	"gorm.io/gorm"

	"github.com/AlexTsikhun/book-management-system/internal/database/crud"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

// DefaultSortFields is the full allow-list for listing authors.
var DefaultSortFields = crud.SortFields{
	"id":   "id",
	"name": "name",
}

// Repository handles all author database operations.
type Repository struct {
	crud.Base[entities.Author]
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB, sorts crud.SortFields) *Repository {
	return &Repository{Base: crud.NewBase[entities.Author](db, "author", sorts)}
}

// RetrieveByName looks an author up by exact, case-sensitive name.
func (r *Repository) RetrieveByName(ctx context.Context, name string) (*entities.Author, error) {
	return r.RetrieveBy(ctx, "name", name)
}

// RetrieveManyByNames returns the authors that exist among names.
func (r *Repository) RetrieveManyByNames(ctx context.Context, names []string) ([]entities.Author, error) {
	return r.RetrieveManyBy(ctx, "name", names)
}
