package crud

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
)

var (
	ErrNoTransaction     = errors.New("no active transaction")
	ErrTransactionActive = errors.New("transaction already active")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
)

// Translate maps store errors onto the application taxonomy. Errors that are
// already classified, and errors with no taxonomy kind, are returned wrapped
// but otherwise unchanged.
func Translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case apperrors.Kind(err) != nil:
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &apperrors.Error{Kind: apperrors.ErrNotFound, Entity: entity, Message: "not found"}
	case IsConstraintViolation(err):
		return apperrors.Constraint(entity, err)
	case errors.Is(err, sql.ErrTxDone):
		return fmt.Errorf("%s: %w", entity, ErrNoTransaction)
	default:
		return fmt.Errorf("%s: %w", entity, err)
	}
}

// IsConstraintViolation recognises uniqueness and referential failures for
// every dialect the store supports.
func IsConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation, pgNotNullViolation:
			return true
		}
	}
	return false
}
