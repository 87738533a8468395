package services

import (
	"strings"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
	"github.com/AlexTsikhun/book-management-system/internal/database"
	"github.com/AlexTsikhun/book-management-system/internal/database/crud"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// ParseSort splits "field" or "field:direction". The field is checked later
// against the repository allow-list.
func ParseSort(raw string) (string, database.Direction, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", crud.Asc, nil
	}
	field, direction, _ := strings.Cut(raw, ":")
	field = strings.TrimSpace(field)
	if field == "" {
		return "", "", apperrors.InvalidParameter("invalid sort %q, expected field:direction", raw)
	}
	dir, err := crud.ParseDirection(direction)
	if err != nil {
		return "", "", err
	}
	return field, dir, nil
}

// PageRequest is a 1-based page with a sort expression.
type PageRequest struct {
	Page    int
	PerPage int
	Sort    string
}

// toPage converts a 1-based request into an offset window. An empty sort
// leaves SortField empty for the caller to fill from the allow-list.
func (r PageRequest) toPage() (database.Page, error) {
	if r.Page == 0 {
		r.Page = DefaultPage
	}
	if r.PerPage == 0 {
		r.PerPage = DefaultPerPage
	}
	if r.Page < 1 {
		return database.Page{}, apperrors.InvalidParameter("page must be at least 1")
	}
	if r.PerPage < 1 || r.PerPage > MaxPerPage {
		return database.Page{}, apperrors.InvalidParameter("per_page must be between 1 and %d", MaxPerPage)
	}
	field, dir, err := ParseSort(r.Sort)
	if err != nil {
		return database.Page{}, err
	}
	return database.Page{
		Offset:        (r.Page - 1) * r.PerPage,
		Limit:         r.PerPage,
		SortField:     field,
		SortDirection: dir,
	}, nil
}

// PageOf is one page of results with the total across pages.
type PageOf[T any] struct {
	Items   []T   `json:"items"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}
