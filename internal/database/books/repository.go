// Package books provides database operations for the book catalog.
//
// Reads go through a join view that carries the owning author's name, so
// callers never chain an author lookup after fetching a book.
//
// # Usage
//
//	repo := books.NewRepository(tx, books.DefaultSortFields)
//	book, err := repo.Retrieve(ctx, 7)
//	fmt.Println(book.Title, book.AuthorName)
package books

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
	"github.com/AlexTsikhun/book-management-system/internal/database/crud"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

// DefaultSortFields is the full allow-list for listing books. The author key
// orders by the joined author name.
var DefaultSortFields = crud.SortFields{
	"id":             "books.id",
	"title":          "books.title",
	"genre":          "books.genre",
	"published_year": "books.published_year",
	"author":         "authors.name",
}

// Repository handles all book database operations.
type Repository struct {
	crud.Base[entities.Book]
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB, sorts crud.SortFields) *Repository {
	return &Repository{Base: crud.NewBase[entities.Book](db, "book", sorts)}
}

func joinView() sq.SelectBuilder {
	return sq.Select(
		"books.id",
		"books.title",
		"books.author_id",
		"books.genre",
		"books.published_year",
		"authors.name AS author_name",
	).
		From("books").
		Join("authors ON authors.id = books.author_id").
		PlaceholderFormat(sq.Question)
}

// Create inserts a book and returns it through the join view.
func (r *Repository) Create(ctx context.Context, book *entities.Book) (*entities.Book, error) {
	created, err := r.Base.Create(ctx, book)
	if err != nil {
		return nil, err
	}
	return r.Retrieve(ctx, created.ID)
}

// Retrieve returns a book with its author name.
func (r *Repository) Retrieve(ctx context.Context, id uint) (*entities.Book, error) {
	found, err := r.query(ctx, joinView().Where(sq.Eq{"books.id": id}))
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, apperrors.NotFound("book", id)
	}
	return &found[0], nil
}

// Update applies patch and returns the book through the join view.
func (r *Repository) Update(ctx context.Context, id uint, patch crud.Patch) (*entities.Book, error) {
	if _, err := r.Base.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return r.Retrieve(ctx, id)
}

// List returns one page of the join view.
func (r *Repository) List(ctx context.Context, page crud.Page) ([]entities.Book, error) {
	return r.Search(ctx, "", page)
}

// Search lists books whose title or author name contains query, ignoring
// case. An empty query matches every book.
func (r *Repository) Search(ctx context.Context, query string, page crud.Page) ([]entities.Book, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	col := "books.id"
	if page.SortField != "" {
		var err error
		if col, err = r.SortFields().Column(page.SortField); err != nil {
			return nil, err
		}
	}
	if page.Limit <= 0 {
		page.Limit = crud.DefaultLimit
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	dir := "ASC"
	if page.SortDirection == crud.Desc {
		dir = "DESC"
	}

	builder := matching(joinView(), query).
		OrderBy(col+" "+dir, "books.id ASC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset))

	return r.query(ctx, builder)
}

// CountMatching counts the books Search would return across all pages.
func (r *Repository) CountMatching(ctx context.Context, query string) (int64, error) {
	sql, args, err := matching(
		sq.Select("COUNT(*)").From("books").Join("authors ON authors.id = books.author_id").PlaceholderFormat(sq.Question),
		query,
	).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.DB(ctx).Raw(sql, args...).Scan(&n).Error; err != nil {
		return 0, crud.Translate(err, "book")
	}
	return n, nil
}

func matching(builder sq.SelectBuilder, query string) sq.SelectBuilder {
	if query = strings.TrimSpace(query); query == "" {
		return builder
	}
	pattern := "%" + strings.ToLower(query) + "%"
	return builder.Where(sq.Or{
		sq.Like{"LOWER(books.title)": pattern},
		sq.Like{"LOWER(authors.name)": pattern},
	})
}

// RetrieveManyByIDs returns the books among ids, ordered by id.
func (r *Repository) RetrieveManyByIDs(ctx context.Context, ids []uint) ([]entities.Book, error) {
	if len(ids) == 0 {
		return []entities.Book{}, nil
	}
	return r.query(ctx, joinView().Where(sq.Eq{"books.id": ids}).OrderBy("books.id ASC"))
}

func (r *Repository) query(ctx context.Context, builder sq.SelectBuilder) ([]entities.Book, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	out := []entities.Book{}
	if err := r.DB(ctx).Raw(query, args...).Scan(&out).Error; err != nil {
		return nil, crud.Translate(err, "book")
	}
	return out, nil
}
