package service

import (
	"context"
	"log"

	"task-manager/internal/apperr"
	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/validation"
)

// TaskInput represents the user-editable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	DueDate     string // day-month-year, e.g. 04-01-2025
	Category    string
	Priority    model.Priority
}

// TaskService wraps task-related business logic. Every task belongs to one
// user and references one of that user's categories.
type TaskService struct {
	store      *repository.Store
	categories *CategoryService
}

func NewTaskService(store *repository.Store, categories *CategoryService) *TaskService {
	return &TaskService{store: store, categories: categories}
}

// Create validates input, resolves its category for userID and stores a new
// pending task.
func (s *TaskService) Create(ctx context.Context, userID uint, input TaskInput) (*model.Task, error) {
	dueDate, categoryID, err := s.prepare(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		UserID:      userID,
		CategoryID:  &categoryID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     dueDate,
		Priority:    input.Priority,
		Status:      model.StatusPending,
	}
	if err := s.store.Tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	log.Printf("[info] task created id=%d user=%d", task.ID, userID)
	return task, nil
}

// Update overwrites every mutable field of a task owned by userID. The
// status is not touched.
func (s *TaskService) Update(ctx context.Context, userID, taskID uint, input TaskInput) (*model.Task, error) {
	dueDate, categoryID, err := s.prepare(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:          taskID,
		UserID:      userID,
		CategoryID:  &categoryID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     dueDate,
		Priority:    input.Priority,
	}
	if err := s.store.Tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	log.Printf("[info] task updated id=%d user=%d", taskID, userID)
	return s.store.Tasks.FindByID(ctx, taskID)
}

// MarkCompleted moves a task to completed. Completing a completed task, or
// an id that does not exist, does nothing.
func (s *TaskService) MarkCompleted(ctx context.Context, userID, taskID uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		task, err := ownedOrAbsent(ctx, tx, userID, taskID)
		if err != nil || task == nil || task.Status == model.StatusCompleted {
			return err
		}
		if err := tx.Tasks.SetStatus(ctx, taskID, model.StatusCompleted); err != nil {
			return err
		}
		log.Printf("[info] task completed id=%d user=%d", taskID, userID)
		return nil
	})
}

// Delete removes a task permanently. Deleting an id that does not exist does
// nothing.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		task, err := ownedOrAbsent(ctx, tx, userID, taskID)
		if err != nil || task == nil {
			return err
		}
		if err := tx.Tasks.Delete(ctx, taskID); err != nil {
			return err
		}
		log.Printf("[info] task deleted id=%d user=%d", taskID, userID)
		return nil
	})
}

// Get returns a task owned by userID.
func (s *TaskService) Get(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	task, err := s.store.Tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, apperr.NotFound("task", taskID)
	}
	return task, nil
}

func (s *TaskService) prepare(ctx context.Context, userID uint, input TaskInput) (string, uint, error) {
	dueDate, err := validation.TaskFields(input.Title, input.Description, input.DueDate, input.Category, input.Priority)
	if err != nil {
		return "", 0, err
	}
	categoryID, err := s.categories.ResolveID(ctx, userID, input.Category)
	if err != nil {
		return "", 0, err
	}
	return dueDate, categoryID, nil
}

// ownedOrAbsent returns (nil, nil) when the task does not exist and a
// NotFoundError when it exists but belongs to someone else.
func ownedOrAbsent(ctx context.Context, store *repository.Store, userID, taskID uint) (*model.Task, error) {
	task, err := store.Tasks.FindByID(ctx, taskID)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, apperr.NotFound("task", taskID)
	}
	return task, nil
}
