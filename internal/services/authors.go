package services

import (
	"context"

	"github.com/AlexTsikhun/book-management-system/internal/database"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

// DefaultAuthorSort orders author listings when the caller gives no sort.
const DefaultAuthorSort = "name"

// AuthorService exposes read access to authors. Authors are created as a
// side effect of book writes.
type AuthorService struct {
	tx Transactor
}

func NewAuthorService(tx Transactor) *AuthorService {
	return &AuthorService{tx: tx}
}

func (s *AuthorService) ListAuthors(ctx context.Context, req PageRequest) (*PageOf[entities.Author], error) {
	page, err := req.toPage()
	if err != nil {
		return nil, err
	}

	out := &PageOf[entities.Author]{Page: page.Offset/page.Limit + 1, PerPage: page.Limit}
	err = s.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		if page.SortField == "" {
			page.SortField = uow.Authors().SortFields().Default(DefaultAuthorSort)
		}
		var err error
		if out.Items, err = uow.Authors().List(ctx, page); err != nil {
			return err
		}
		out.Total, err = uow.Authors().Count(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AuthorService) RetrieveAuthor(ctx context.Context, id uint) (*entities.Author, error) {
	var author *entities.Author
	err := s.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		var err error
		author, err = uow.Authors().Retrieve(ctx, id)
		return err
	})
	return author, err
}

// RetrieveAuthorByName matches the name exactly, including case.
func (s *AuthorService) RetrieveAuthorByName(ctx context.Context, name string) (*entities.Author, error) {
	var author *entities.Author
	err := s.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		var err error
		author, err = uow.Authors().RetrieveByName(ctx, name)
		return err
	})
	return author, err
}
