package importers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
	"github.com/AlexTsikhun/book-management-system/internal/database"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

// MaxAuthorAttempts bounds how often author resolution retries after losing
// a creation race to a concurrent operation.
const MaxAuthorAttempts = 3

// Transactor runs a function inside a fresh unit of work.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context, uow *database.UnitOfWork) error) error
}

// Pipeline handles the bulk import workflow:
// check required fields → validate → resolve authors → insert books.
//
// Record-level validation failures are collected into the result; any other
// error aborts the whole import and nothing is persisted.
type Pipeline struct {
	tx        Transactor
	validator Validator

	// wrapAuthors lets tests observe the author repository of each scope.
	wrapAuthors func(database.AuthorRepository) database.AuthorRepository
}

// NewPipeline creates a new import pipeline. A nil validator selects
// BookRecordValidator.
func NewPipeline(tx Transactor, validator Validator) *Pipeline {
	if validator == nil {
		validator = NewBookRecordValidator()
	}
	return &Pipeline{tx: tx, validator: validator}
}

// Import partitions records into importable and rejected ones and imports the
// former in one unit of work.
func (p *Pipeline) Import(ctx context.Context, records []entities.RawRecord) (entities.ImportResult, error) {
	result := entities.ImportResult{
		Total:      len(records),
		FailedInfo: []entities.FailedRecord{},
	}

	valid := make([]BookRecord, 0, len(records))
	for _, record := range records {
		if missing := missingFields(record); len(missing) > 0 {
			result.FailedInfo = append(result.FailedInfo, entities.FailedRecord{
				Record: record,
				Reason: "missing fields: " + strings.Join(missing, ", "),
			})
			continue
		}

		book, err := p.validator.Validate(record)
		if err != nil {
			if !errors.Is(err, apperrors.ErrValidationFailed) {
				return entities.ImportResult{}, err
			}
			result.FailedInfo = append(result.FailedInfo, entities.FailedRecord{Record: record, Reason: err.Error()})
			continue
		}
		valid = append(valid, book)
	}
	result.Failed = len(result.FailedInfo)

	if len(valid) == 0 {
		return result, nil
	}

	err := p.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		authorsRepo := uow.Authors()
		if p.wrapAuthors != nil {
			authorsRepo = p.wrapAuthors(authorsRepo)
		}

		names := lo.Uniq(lo.Map(valid, func(b BookRecord, _ int) string { return b.AuthorName }))
		authorsByName, err := ResolveAuthors(ctx, authorsRepo, names)
		if err != nil {
			return err
		}

		rows := lo.Map(valid, func(b BookRecord, _ int) entities.Book {
			return entities.Book{
				Title:         b.Title,
				AuthorID:      authorsByName[b.AuthorName].ID,
				Genre:         b.Genre,
				PublishedYear: b.PublishedYear,
			}
		})
		imported, err := uow.Books().BulkCreate(ctx, rows)
		if err != nil {
			return err
		}
		result.Successful = len(imported)
		return nil
	})
	if err != nil {
		return entities.ImportResult{}, err
	}

	log.Info().
		Int("total", result.Total).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("bulk import finished")

	return result, nil
}

// ResolveAuthors returns an author for every name, creating the missing ones
// in a single batch. Existing authors are found with one lookup. When a
// concurrent operation creates one of the names first, the batch fails with a
// constraint violation and the lookup is retried.
//
// Names match exactly: "Jane Doe" and "jane doe" are different authors.
func ResolveAuthors(ctx context.Context, repo database.AuthorRepository, names []string) (map[string]entities.Author, error) {
	names = lo.Uniq(names)

	for attempt := 1; ; attempt++ {
		existing, err := repo.RetrieveManyByNames(ctx, names)
		if err != nil {
			return nil, err
		}
		byName := lo.KeyBy(existing, func(a entities.Author) string { return a.Name })

		missing := lo.Filter(names, func(name string, _ int) bool {
			_, ok := byName[name]
			return !ok
		})
		if len(missing) == 0 {
			return byName, nil
		}

		created, err := repo.BulkCreate(ctx, lo.Map(missing, func(name string, _ int) entities.Author {
			return entities.Author{Name: name}
		}))
		if err == nil {
			for _, a := range created {
				byName[a.Name] = a
			}
			return byName, nil
		}
		if !errors.Is(err, apperrors.ErrConstraintViolation) || attempt >= MaxAuthorAttempts {
			return nil, fmt.Errorf("resolve authors: %w", err)
		}

		log.Debug().Int("attempt", attempt).Strs("names", missing).Msg("author created concurrently, retrying lookup")
	}
}

func missingFields(record entities.RawRecord) []string {
	return lo.Filter(entities.RequiredBookFields, func(field string, _ int) bool {
		value, ok := record[field]
		if !ok || value == nil {
			return true
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			return true
		}
		return false
	})
}
