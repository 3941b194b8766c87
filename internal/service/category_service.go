package service

import (
	"context"
	"log"

	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/validation"
)

// CategoryService creates and resolves categories scoped to one user.
type CategoryService struct {
	store *repository.Store
}

func NewCategoryService(store *repository.Store) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) Create(ctx context.Context, userID uint, name string) (*model.Category, error) {
	if err := validation.CategoryName(name); err != nil {
		return nil, err
	}

	category := &model.Category{UserID: userID, Name: name}
	if err := s.store.Categories.Create(ctx, category); err != nil {
		return nil, err
	}
	log.Printf("[info] category created id=%d user=%d", category.ID, userID)
	return category, nil
}

// List returns the user's categories in insertion order.
func (s *CategoryService) List(ctx context.Context, userID uint) ([]model.Category, error) {
	return s.store.Categories.ListByUser(ctx, userID)
}

// ResolveID maps a category name to its id for userID. With duplicate names
// the oldest category is used.
func (s *CategoryService) ResolveID(ctx context.Context, userID uint, name string) (uint, error) {
	category, err := s.store.Categories.FindByName(ctx, userID, name)
	if err != nil {
		return 0, err
	}
	return category.ID, nil
}

// Name returns the display name of a category owned by userID, or "" when
// the task has no category or it cannot be read.
func (s *CategoryService) Name(ctx context.Context, userID uint, categoryID *uint) string {
	if categoryID == nil {
		return ""
	}
	category, err := s.store.Categories.GetByID(ctx, *categoryID)
	if err != nil || category.UserID != userID {
		return ""
	}
	return category.Name
}
