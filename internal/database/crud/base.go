package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
)

// BatchSize bounds the rows sent in one INSERT statement by BulkCreate.
const BatchSize = 200

// Base implements the generic repository contract for one entity type.
type Base[T any] struct {
	db     *gorm.DB
	entity string
	sorts  SortFields
}

func NewBase[T any](db *gorm.DB, entity string, sorts SortFields) Base[T] {
	return Base[T]{db: db, entity: entity, sorts: sorts}
}

// DB returns the handle bound to ctx.
func (b *Base[T]) DB(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

func (b *Base[T]) Entity() string {
	return b.entity
}

func (b *Base[T]) SortFields() SortFields {
	return b.sorts
}

// Create inserts one row and fills in its identity.
func (b *Base[T]) Create(ctx context.Context, entity *T) (*T, error) {
	err := b.DB(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(entity).Error
	})
	if err != nil {
		return nil, Translate(err, b.entity)
	}
	return entity, nil
}

func (b *Base[T]) Retrieve(ctx context.Context, id uint) (*T, error) {
	var out T
	if err := b.DB(ctx).First(&out, id).Error; err != nil {
		return nil, b.notFound(err, id)
	}
	return &out, nil
}

// RetrieveBy returns the single row whose column equals value.
func (b *Base[T]) RetrieveBy(ctx context.Context, column string, value any) (*T, error) {
	var out T
	err := b.DB(ctx).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).First(&out).Error
	if err != nil {
		return nil, b.notFound(err, value)
	}
	return &out, nil
}

// RetrieveManyBy returns every row whose column is one of values. Duplicate
// values never produce duplicate rows.
func (b *Base[T]) RetrieveManyBy(ctx context.Context, column string, values []string) ([]T, error) {
	out := []T{}
	if len(values) == 0 {
		return out, nil
	}
	err := b.DB(ctx).
		Where(clause.IN{Column: clause.Column{Name: column}, Values: toAny(values)}).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, Translate(err, b.entity)
	}
	return out, nil
}

// Update applies patch to the row with the given id and returns the result.
func (b *Base[T]) Update(ctx context.Context, id uint, patch Patch) (*T, error) {
	if _, err := b.Retrieve(ctx, id); err != nil {
		return nil, err
	}
	if cols := patch.Columns(); len(cols) > 0 {
		err := b.DB(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Model(new(T)).Where("id = ?", id).Updates(cols).Error
		})
		if err != nil {
			return nil, Translate(err, b.entity)
		}
	}
	return b.Retrieve(ctx, id)
}

func (b *Base[T]) Delete(ctx context.Context, id uint) error {
	result := b.DB(ctx).Delete(new(T), id)
	if result.Error != nil {
		return Translate(result.Error, b.entity)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound(b.entity, id)
	}
	return nil
}

// List returns one page ordered by the requested field, ties broken by id.
func (b *Base[T]) List(ctx context.Context, page Page) ([]T, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	page = page.normalized()
	col, err := b.sorts.Column(page.SortField)
	if err != nil {
		return nil, err
	}

	out := []T{}
	err = b.DB(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: page.SortDirection == Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&out).Error
	if err != nil {
		return nil, Translate(err, b.entity)
	}
	return out, nil
}

func (b *Base[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := b.DB(ctx).Model(new(T)).Count(&n).Error; err != nil {
		return 0, Translate(err, b.entity)
	}
	return n, nil
}

// BulkCreate inserts every row or none of them.
func (b *Base[T]) BulkCreate(ctx context.Context, rows []T) ([]T, error) {
	if len(rows) == 0 {
		return []T{}, nil
	}
	err := b.DB(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, BatchSize).Error
	})
	if err != nil {
		return nil, Translate(err, b.entity)
	}
	return rows, nil
}

func (b *Base[T]) notFound(err error, key any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(b.entity, key)
	}
	return Translate(err, b.entity)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
