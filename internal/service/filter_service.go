package service

import (
	"context"
	"fmt"
	"time"

	"task-manager/internal/apperr"
	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// FilterKind names a task view.
type FilterKind string

const (
	FilterAll       FilterKind = "all"
	FilterToday     FilterKind = "today"
	FilterCompleted FilterKind = "completed"
	FilterCategory  FilterKind = "category"
)

// Filter selects a task view. Category is only read for FilterCategory.
type Filter struct {
	Kind     FilterKind
	Category string
}

func AllTasks() Filter {
	return Filter{Kind: FilterAll}
}

func DueToday() Filter {
	return Filter{Kind: FilterToday}
}

func CompletedTasks() Filter {
	return Filter{Kind: FilterCompleted}
}

func InCategory(name string) Filter {
	return Filter{Kind: FilterCategory, Category: name}
}

// FilterService produces task views ordered by priority, highest first, with
// older tasks first inside one priority.
type FilterService struct {
	store      *repository.Store
	categories *CategoryService
	now        func() time.Time
}

func NewFilterService(store *repository.Store, categories *CategoryService) *FilterService {
	return &FilterService{store: store, categories: categories, now: time.Now}
}

func (s *FilterService) List(ctx context.Context, userID uint, filter Filter) ([]model.Task, error) {
	query := repository.TaskQuery{UserID: userID, Status: model.StatusPending, ByPriority: true}

	switch filter.Kind {
	case FilterAll, "":
	case FilterToday:
		query.DueDates = []string{model.FormatDueDate(s.now())}
	case FilterCompleted:
		query.Status = model.StatusCompleted
	case FilterCategory:
		categoryID, err := s.categories.ResolveID(ctx, userID, filter.Category)
		if err != nil {
			return nil, err
		}
		query.CategoryID = &categoryID
	default:
		return nil, apperr.Invalid("filter", fmt.Sprintf("Unknown filter %q.", filter.Kind))
	}

	return s.store.Tasks.List(ctx, query)
}
