package importers

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

// BookRecord is a record that passed validation, ready for author resolution.
type BookRecord struct {
	Title         string         `json:"title"`
	AuthorName    string         `json:"author_name"`
	Genre         entities.Genre `json:"genre"`
	PublishedYear int            `json:"published_year"`
}

// Validator checks the field values of a record that has every required
// field. Failures are reported as *apperrors.ValidationError.
type Validator interface {
	Validate(record entities.RawRecord) (BookRecord, error)
}

// BookRecordValidator enforces the catalog rules: non-empty title and author
// name, a known genre and a publication year between MinYear and the current
// year.
type BookRecordValidator struct {
	MinYear int
	Now     func() time.Time
}

func NewBookRecordValidator() *BookRecordValidator {
	return &BookRecordValidator{MinYear: entities.MinPublishedYear, Now: time.Now}
}

func (v *BookRecordValidator) Validate(record entities.RawRecord) (BookRecord, error) {
	var (
		out        BookRecord
		typeErrors = validation.Errors{}
		err        error
	)

	if out.Title, err = stringField(record, "title"); err != nil {
		typeErrors["title"] = err
	}
	if out.AuthorName, err = stringField(record, "author_name"); err != nil {
		typeErrors["author_name"] = err
	}
	rawGenre, err := stringField(record, "genre")
	if err != nil {
		typeErrors["genre"] = err
	}
	if out.PublishedYear, err = intField(record, "published_year"); err != nil {
		typeErrors["published_year"] = err
	}
	if len(typeErrors) > 0 {
		return BookRecord{}, apperrors.Validation(typeErrors)
	}

	out.Genre = entities.Genre(rawGenre)
	if genre, ok := entities.ParseGenre(rawGenre); ok {
		out.Genre = genre
	}

	if err := v.validate(&out); err != nil {
		return BookRecord{}, err
	}
	return out, nil
}

func (v *BookRecordValidator) validate(r *BookRecord) error {
	currentYear := v.Now().Year()
	genres := make([]any, len(entities.Genres))
	for i, g := range entities.Genres {
		genres[i] = g
	}

	return apperrors.Validation(validation.ValidateStruct(r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 255).Error("title must be at most 255 characters"),
		),
		validation.Field(&r.AuthorName,
			validation.Required.Error("author name is required"),
			validation.Length(1, 255).Error("author name must be at most 255 characters"),
		),
		validation.Field(&r.Genre,
			validation.Required.Error("genre is required"),
			validation.In(genres...).Error("genre must be one of "+genreList()),
		),
		validation.Field(&r.PublishedYear,
			validation.Min(v.MinYear).Error(fmt.Sprintf("year must be between %d and %d", v.MinYear, currentYear)),
			validation.Max(currentYear).Error(fmt.Sprintf("year must be between %d and %d", v.MinYear, currentYear)),
		),
	))
}

func genreList() string {
	names := make([]string, len(entities.Genres))
	for i, g := range entities.Genres {
		names[i] = string(g)
	}
	return strings.Join(names, ", ")
}

func stringField(record entities.RawRecord, name string) (string, error) {
	switch v := record[name].(type) {
	case string:
		return strings.TrimSpace(v), nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("must be a string")
	}
}

func intField(record entities.RawRecord, name string) (int, error) {
	switch v := record[name].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("must be an integer")
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer")
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("must be an integer")
		}
		return n, nil
	default:
		return 0, fmt.Errorf("must be an integer")
	}
}

var _ Validator = (*BookRecordValidator)(nil)
