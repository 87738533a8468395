// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(tx, users.DefaultSortFields)
//	user, err := repo.RetrieveByUsername(ctx, "alice")
package users

import (
	"context"

	"gorm.io/gorm"

	"github.com/AlexTsikhun/book-management-system/internal/database/crud"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

var DefaultSortFields = crud.SortFields{
	"id":         "id",
	"username":   "username",
	"email":      "email",
	"created_at": "created_at",
}

// Repository handles all user database operations.
type Repository struct {
	crud.Base[entities.User]
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB, sorts crud.SortFields) *Repository {
	return &Repository{Base: crud.NewBase[entities.User](db, "user", sorts)}
}

// RetrieveByUsername retrieves a user by username.
func (r *Repository) RetrieveByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.RetrieveBy(ctx, "username", username)
}

// RetrieveByEmail retrieves a user by email.
func (r *Repository) RetrieveByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.RetrieveBy(ctx, "email", email)
}

func (r *Repository) RetrieveManyByUsernames(ctx context.Context, usernames []string) ([]entities.User, error) {
	return r.RetrieveManyBy(ctx, "username", usernames)
}
