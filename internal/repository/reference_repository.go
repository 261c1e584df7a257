package repository

import (
	"context"

	"gorm.io/gorm"
)

// ReferenceRepository stores one flat lookup table. T must carry an is_active column.
type ReferenceRepository[T any] struct {
	db *gorm.DB
}

func NewReferenceRepository[T any](db *gorm.DB) *ReferenceRepository[T] {
	return &ReferenceRepository[T]{db: db}
}

func (r *ReferenceRepository[T]) WithTx(tx *gorm.DB) *ReferenceRepository[T] {
	if tx == nil {
		return r
	}
	return &ReferenceRepository[T]{db: tx}
}

func (r *ReferenceRepository[T]) List(ctx context.Context, active *bool) ([]T, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if active != nil {
		query = query.Where("is_active = ?", *active)
	}
	var items []T
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ReferenceRepository[T]) Get(ctx context.Context, id int64) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ReferenceRepository[T]) Create(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update overwrites every column but the key and creation time.
func (r *ReferenceRepository[T]) Update(ctx context.Context, id int64, item *T) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(item)
	return result.RowsAffected, result.Error
}

func (r *ReferenceRepository[T]) Deactivate(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
