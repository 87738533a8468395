package services

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
	"github.com/AlexTsikhun/book-management-system/internal/config"
	"github.com/AlexTsikhun/book-management-system/internal/database"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
	"github.com/AlexTsikhun/book-management-system/internal/importers"
	"github.com/AlexTsikhun/book-management-system/internal/recommend"
)

// DefaultBookSort orders book listings when the caller gives no sort.
const DefaultBookSort = "title"

// BookInput is the full set of writable book fields.
type BookInput struct {
	Title         string `json:"title"`
	AuthorName    string `json:"author_name"`
	Genre         string `json:"genre"`
	PublishedYear int    `json:"published_year"`
}

func (in BookInput) record() entities.RawRecord {
	return entities.RawRecord{
		"title":          in.Title,
		"author_name":    in.AuthorName,
		"genre":          in.Genre,
		"published_year": in.PublishedYear,
	}
}

// BookListRequest selects a page of books, optionally filtered by a search
// term matched against title and author name.
type BookListRequest struct {
	PageRequest
	Query string
}

// BookService implements the book catalog use cases. Each call runs in its
// own unit of work.
type BookService struct {
	tx          Transactor
	validator   importers.Validator
	importer    Importer
	serializers SerializerSource
	config      config.Catalog
}

// NewBookService wires the use cases. A nil validator selects the default
// catalog rules with cfg.MinYear.
func NewBookService(tx Transactor, validator importers.Validator, serializers SerializerSource, cfg config.Catalog) *BookService {
	if validator == nil {
		v := importers.NewBookRecordValidator()
		if cfg.MinYear > 0 {
			v.MinYear = cfg.MinYear
		}
		validator = v
	}
	if cfg.ExportLimit <= 0 {
		cfg.ExportLimit = config.DefaultExportLimit
	}
	if cfg.RecommendationLimit <= 0 {
		cfg.RecommendationLimit = 5
	}
	return &BookService{
		tx:          tx,
		validator:   validator,
		importer:    importers.NewPipeline(tx, validator),
		serializers: serializers,
		config:      cfg,
	}
}

// CreateBook stores a book, creating its author when the name is new.
func (s *BookService) CreateBook(ctx context.Context, in BookInput) (*entities.Book, error) {
	record, err := s.validator.Validate(in.record())
	if err != nil {
		return nil, err
	}

	var book *entities.Book
	err = s.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		authors, err := importers.ResolveAuthors(ctx, uow.Authors(), []string{record.AuthorName})
		if err != nil {
			return err
		}
		book, err = uow.Books().Create(ctx, &entities.Book{
			Title:         record.Title,
			AuthorID:      authors[record.AuthorName].ID,
			Genre:         record.Genre,
			PublishedYear: record.PublishedYear,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("book_id", book.ID).Str("author", book.AuthorName).Msg("book created")
	return book, nil
}

func (s *BookService) RetrieveBook(ctx context.Context, id uint) (*entities.Book, error) {
	var book *entities.Book
	err := s.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		var err error
		book, err = uow.Books().Retrieve(ctx, id)
		return err
	})
	return book, err
}

// ListBooks returns one page of books. Sort keys are the repository's
// configured allow-list; the default is title ascending, or id when title
// is not allowed.
func (s *BookService) ListBooks(ctx context.Context, req BookListRequest) (*PageOf[entities.Book], error) {
	page, err := req.toPage()
	if err != nil {
		return nil, err
	}

	out := &PageOf[entities.Book]{Page: page.Offset/page.Limit + 1, PerPage: page.Limit}
	err = s.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		if page.SortField == "" {
			page.SortField = uow.Books().SortFields().Default(DefaultBookSort)
		}
		var err error
		if out.Items, err = uow.Books().Search(ctx, req.Query, page); err != nil {
			return err
		}
		out.Total, err = uow.Books().CountMatching(ctx, req.Query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateBook replaces the book's fields. The author must already exist;
// unlike CreateBook, an unknown author name is NotFound.
func (s *BookService) UpdateBook(ctx context.Context, id uint, in BookInput) (*entities.Book, error) {
	record, err := s.validator.Validate(in.record())
	if err != nil {
		return nil, err
	}

	var book *entities.Book
	err = s.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		author, err := uow.Authors().RetrieveByName(ctx, record.AuthorName)
		if err != nil {
			return err
		}
		book, err = uow.Books().Update(ctx, id, entities.BookPatch{
			Title:         &record.Title,
			AuthorID:      &author.ID,
			Genre:         &record.Genre,
			PublishedYear: &record.PublishedYear,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *BookService) DeleteBook(ctx context.Context, id uint) error {
	err := s.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		return uow.Books().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	log.Info().Uint("book_id", id).Msg("book deleted")
	return nil
}

// BulkImport parses an uploaded file and imports its records. The file
// extension selects the parser.
func (s *BookService) BulkImport(ctx context.Context, filename string, r io.Reader) (entities.ImportResult, error) {
	parser, err := importers.ParserFor(filename)
	if err != nil {
		return entities.ImportResult{}, err
	}
	records, err := parser.Parse(r)
	if err != nil {
		return entities.ImportResult{}, err
	}

	log.Debug().Str("filename", filename).Int("records", len(records)).Msg("parsed import file")
	return s.importer.Import(ctx, records)
}

// ExportBooks serializes up to the configured export limit of books, ordered
// by id.
func (s *BookService) ExportBooks(ctx context.Context, format string) (*Export, error) {
	serializer, err := s.serializers.Get(format)
	if err != nil {
		return nil, err
	}

	books, err := s.allBooks(ctx)
	if err != nil {
		return nil, err
	}

	data, err := serializer.Serialize(lo.Map(books, func(b entities.Book, _ int) entities.ExportRecord {
		return entities.NewExportRecord(b)
	}))
	if err != nil {
		return nil, fmt.Errorf("serialize %s export: %w", serializer.Format(), err)
	}

	return &Export{
		Format:      serializer.Format(),
		ContentType: serializer.ContentType(),
		Extension:   serializer.Extension(),
		Count:       len(books),
		Data:        data,
	}, nil
}

// RecommendBooks ranks the catalog by similarity to the book's title, genre
// and author. A zero limit selects the configured default.
func (s *BookService) RecommendBooks(ctx context.Context, id uint, limit int) ([]entities.Book, error) {
	if limit == 0 {
		limit = s.config.RecommendationLimit
	}
	if limit < 1 || limit > MaxPerPage {
		return nil, apperrors.InvalidParameter("limit must be between 1 and %d", MaxPerPage)
	}

	var (
		target *entities.Book
		books  []entities.Book
	)
	err := s.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		var err error
		if target, err = uow.Books().Retrieve(ctx, id); err != nil {
			return err
		}
		books, err = s.listAll(ctx, uow)
		return err
	})
	if err != nil {
		return nil, err
	}

	ranked := recommend.Rank(document(*target), lo.Map(books, func(b entities.Book, _ int) recommend.Document {
		return document(b)
	}), limit)

	byID := lo.KeyBy(books, func(b entities.Book) uint { return b.ID })
	return lo.Map(ranked, func(id uint, _ int) entities.Book { return byID[id] }), nil
}

func (s *BookService) allBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := s.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		var err error
		books, err = s.listAll(ctx, uow)
		return err
	})
	return books, err
}

func (s *BookService) listAll(ctx context.Context, uow *database.UnitOfWork) ([]entities.Book, error) {
	return uow.Books().List(ctx, database.Page{Limit: s.config.ExportLimit})
}

func document(b entities.Book) recommend.Document {
	return recommend.Document{ID: b.ID, Text: fmt.Sprintf("%s %s %s", b.Title, b.Genre, b.AuthorName)}
}
