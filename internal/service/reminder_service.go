package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// ReminderTitle is the notification title of every reminder.
const ReminderTitle = "Task Reminder"

// reminderOffsets are the day distances that produce a reminder.
var reminderOffsets = []int{0, 1, 3}

// Reminder pairs a due-soon task with the message shown for it.
type Reminder struct {
	Task    model.Task
	Message string
}

// ReminderService finds pending tasks due today, tomorrow or in three days.
type ReminderService struct {
	store *repository.Store
}

func NewReminderService(store *repository.Store) *ReminderService {
	return &ReminderService{store: store}
}

// ComputeDueReminders returns one reminder per pending task of userID due
// 0, 1 or 3 days after today, in fetch order. Only the calendar date of
// today is used.
func (s *ReminderService) ComputeDueReminders(ctx context.Context, userID uint, today time.Time) ([]Reminder, error) {
	start := calendarDay(today)
	dates := make([]string, 0, len(reminderOffsets))
	for _, offset := range reminderOffsets {
		dates = append(dates, model.FormatDueDate(start.AddDate(0, 0, offset)))
	}

	tasks, err := s.store.Tasks.List(ctx, repository.TaskQuery{
		UserID:   userID,
		Status:   model.StatusPending,
		DueDates: dates,
	})
	if err != nil {
		return nil, err
	}

	reminders := make([]Reminder, 0, len(tasks))
	for _, task := range tasks {
		due, err := task.Due(start.Location())
		if err != nil {
			log.Printf("[info] skip reminder for task %d: %v", task.ID, err)
			continue
		}
		message, ok := reminderMessage(task.Title, daysBetween(start, due))
		if !ok {
			continue
		}
		reminders = append(reminders, Reminder{Task: task, Message: message})
	}
	return reminders, nil
}

// Dispatch computes the reminders for userID and forwards each one to
// notifier. It returns how many were delivered.
func (s *ReminderService) Dispatch(ctx context.Context, userID uint, today time.Time, notifier Notifier) (int, error) {
	reminders, err := s.ComputeDueReminders(ctx, userID, today)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, reminder := range reminders {
		if err := notifier.Notify(ReminderTitle, reminder.Message); err != nil {
			return sent, fmt.Errorf("notify task %d: %w", reminder.Task.ID, err)
		}
		sent++
	}
	return sent, nil
}

func reminderMessage(title string, days int) (string, bool) {
	switch days {
	case 0:
		return fmt.Sprintf("'%s' is due today.", title), true
	case 1:
		return fmt.Sprintf("'%s' is due tomorrow.", title), true
	case 3:
		return fmt.Sprintf("'%s' is due in 3 days.", title), true
	default:
		return "", false
	}
}

func calendarDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	// Every UTC day is exactly 24h.
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
