package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups of ids that do not exist.
var ErrNotFound = errors.New("record not found")

// Filter is an equality filter keyed by column name. Slice values match with IN.
type Filter map[string]any

// Repository is the generic per-entity store.
type Repository[T any] struct {
	db    *gorm.DB
	order string
}

// NewRepository creates a repository whose FindAll results are sorted by order.
func NewRepository[T any](db *gorm.DB, order string) Repository[T] {
	return Repository[T]{db: db, order: order}
}

// FindByID returns ErrNotFound when no row has the id.
func (r Repository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var rec T
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// FindAll returns every row matching filter; a nil filter matches all rows.
func (r Repository[T]) FindAll(ctx context.Context, filter Filter) ([]T, error) {
	q := r.db.WithContext(ctx).Order(r.order)
	if len(filter) > 0 {
		q = q.Where(map[string]any(filter))
	}
	list := make([]T, 0)
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Insert creates rec and fills in its generated id.
func (r Repository[T]) Insert(ctx context.Context, rec *T) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// Update applies fields to the row with id. It reports false when the row does not exist.
func (r Repository[T]) Update(ctx context.Context, id uint, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the row with id. It reports false when the row does not exist.
func (r Repository[T]) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
