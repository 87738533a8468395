// Package apperrors defines the error taxonomy shared by repositories, use
// cases and transports.
//
// Every error produced by the data-access core wraps exactly one of the kind
// sentinels, so callers branch with errors.Is:
//
//	if errors.Is(err, apperrors.ErrNotFound) {
//		// 404
//	}
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrValidationFailed    = errors.New("validation failed")
)

// Error carries a taxonomy kind together with the entity involved and an
// optional underlying cause.
type Error struct {
	Kind    error
	Entity  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Entity != "" {
		b.WriteString(e.Entity)
		b.WriteString(": ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NotFound reports that entity identified by key does not exist.
func NotFound(entity string, key any) *Error {
	return &Error{
		Kind:    ErrNotFound,
		Entity:  entity,
		Message: fmt.Sprintf("%v not found", key),
	}
}

// Constraint reports a uniqueness or referential invariant broken at write time.
func Constraint(entity string, cause error) *Error {
	return &Error{
		Kind:    ErrConstraintViolation,
		Entity:  entity,
		Message: "constraint violation",
		Err:     cause,
	}
}

// Conflict is a constraint violation on a named field, detected before the write.
func Conflict(entity, field string) *Error {
	return &Error{
		Kind:    ErrConstraintViolation,
		Entity:  entity,
		Message: field + " already exists",
	}
}

func InvalidParameter(format string, args ...any) *Error {
	return &Error{
		Kind:    ErrInvalidParameter,
		Message: fmt.Sprintf(format, args...),
	}
}

// FieldError is a single failed rule on a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Validation converts an ozzo-validation result into a *ValidationError.
// Fields are ordered by name. Errors that are not field errors are returned
// unchanged.
func Validation(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	names := make([]string, 0, len(fieldErrs))
	for name := range fieldErrs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := &ValidationError{Fields: make([]FieldError, 0, len(names))}
	for _, name := range names {
		out.Fields = append(out.Fields, FieldError{Field: name, Message: fieldErrs[name].Error()})
	}
	return out
}

// Kind returns the taxonomy sentinel err belongs to, or nil.
func Kind(err error) error {
	for _, kind := range []error{ErrNotFound, ErrConstraintViolation, ErrInvalidParameter, ErrValidationFailed} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
