package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"task-manager/internal/apperr"
	"task-manager/internal/model"
)

// TaskQuery is the predicate for TaskRepository.List. Zero-valued fields do
// not filter.
type TaskQuery struct {
	UserID     uint
	Status     model.Status
	DueDates   []string
	CategoryID *uint
	// ByPriority orders by priority descending instead of fetch order.
	ByPriority bool
}

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return apperr.Storage("create task", err)
	}
	return nil
}

// Update overwrites the mutable fields of the task matching both task.ID and
// task.UserID. Status is left alone. A task owned by someone else is
// reported as not found.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"due_date":    task.DueDate,
			"priority":    task.Priority,
			"category_id": task.CategoryID,
		})
	if result.Error != nil {
		return apperr.Storage("update task", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("task", task.ID)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, taskID).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound("task", taskID)
	default:
		return nil, apperr.Storage("find task", err)
	}
}

func (r *TaskRepository) SetStatus(ctx context.Context, taskID uint, status model.Status) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).
		Update("status", status).Error; err != nil {
		return apperr.Storage("set task status", err)
	}
	return nil
}

// Delete removes the task. Deleting an unknown id is not an error.
func (r *TaskRepository) Delete(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Where("id = ?", taskID).Delete(&model.Task{}).Error; err != nil {
		return apperr.Storage("delete task", err)
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context, q TaskQuery) ([]model.Task, error) {
	db := r.db.WithContext(ctx).Where("user_id = ?", q.UserID)
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if len(q.DueDates) > 0 {
		db = db.Where("due_date IN ?", q.DueDates)
	}
	if q.CategoryID != nil {
		db = db.Where("category_id = ?", *q.CategoryID)
	}
	if q.ByPriority {
		db = db.Order("priority DESC")
	}

	var tasks []model.Task
	if err := db.Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, apperr.Storage("list tasks", err)
	}
	return tasks, nil
}
