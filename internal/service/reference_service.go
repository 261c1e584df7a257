package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/repository"
)

// ReferenceService exposes CRUD over one lookup table. Delete deactivates.
// Role gating for writes happens at the route.
type ReferenceService[T any] struct {
	entity string
	repo   *repository.ReferenceRepository[T]
}

func NewReferenceService[T any](entity string, repo *repository.ReferenceRepository[T]) *ReferenceService[T] {
	return &ReferenceService[T]{entity: entity, repo: repo}
}

func (s *ReferenceService[T]) Entity() string {
	return s.entity
}

func (s *ReferenceService[T]) List(ctx context.Context, active *bool) ([]T, error) {
	items, err := s.repo.List(ctx, active)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *ReferenceService[T]) Get(ctx context.Context, id int64) (*T, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, s.entity, id)
	}
	return item, nil
}

func (s *ReferenceService[T]) Create(ctx context.Context, item *T) (*T, error) {
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, storeError(err, "%s with the same name already exists", s.entity)
	}
	return item, nil
}

func (s *ReferenceService[T]) Update(ctx context.Context, id int64, item *T) (*T, error) {
	affected, err := s.repo.Update(ctx, id, item)
	if err != nil {
		return nil, storeError(err, "%s with the same name already exists", s.entity)
	}
	if affected == 0 {
		return nil, notFound(gorm.ErrRecordNotFound, s.entity, id)
	}
	return s.Get(ctx, id)
}

func (s *ReferenceService[T]) Deactivate(ctx context.Context, id int64) error {
	affected, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound(gorm.ErrRecordNotFound, s.entity, id)
	}
	return nil
}
