package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"task-manager/internal/auth"
	"task-manager/internal/model"
	"task-manager/internal/repository"
)

const strongPassword = "Str0ng1!"

type services struct {
	store      *repository.Store
	auth       *AuthService
	categories *CategoryService
	tasks      *TaskService
	filters    *FilterService
	reminders  *ReminderService
}

func setupServices(t *testing.T) *services {
	t.Helper()
	db, err := repository.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := repository.NewStore(db)
	categories := NewCategoryService(store)
	return &services{
		store:      store,
		auth:       NewAuthService(store, auth.SHA256Hasher{}, auth.NewSessionIssuer("test-secret", time.Hour)),
		categories: categories,
		tasks:      NewTaskService(store, categories),
		filters:    NewFilterService(store, categories),
		reminders:  NewReminderService(store),
	}
}

func (s *services) signUp(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := s.auth.SignUp(context.Background(), username, strongPassword)
	require.NoError(t, err)
	return user
}

func (s *services) createTask(t *testing.T, userID uint, title, due string, priority model.Priority) *model.Task {
	t.Helper()
	task, err := s.tasks.Create(context.Background(), userID, TaskInput{
		Title:    title,
		DueDate:  due,
		Category: model.DefaultCategoryName,
		Priority: priority,
	})
	require.NoError(t, err)
	return task
}

func taskTitles(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}
