package repository

import (
	"context"

	"gorm.io/gorm"

	"task-manager/internal/apperr"
	"task-manager/internal/model"
)

// Store is the single access path to persisted users, categories and tasks.
// Every method is one atomic unit against the database; operations that span
// several statements run inside a transaction.
type Store struct {
	db         *gorm.DB
	Users      *UserRepository
	Categories *CategoryRepository
	Tasks      *TaskRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Users:      NewUserRepository(db),
		Categories: NewCategoryRepository(db),
		Tasks:      NewTaskRepository(db),
	}
}

// Transaction runs fn against a Store bound to one database transaction.
// Any error from fn rolls back every write fn made.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
	return apperr.Storage("transaction", err)
}

// CreateUserWithCategory inserts user and a category named categoryName owned
// by it. Either both rows are written or neither is.
func (s *Store) CreateUserWithCategory(ctx context.Context, user *model.User, categoryName string) (*model.Category, error) {
	var category *model.Category
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			return err
		}
		category = &model.Category{UserID: user.ID, Name: categoryName}
		return tx.Categories.Create(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}
