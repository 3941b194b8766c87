package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/internal/model"
)

type recordingNotifier struct {
	titles   []string
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(title, message string) error {
	if n.err != nil {
		return n.err
	}
	n.titles = append(n.titles, title)
	n.messages = append(n.messages, message)
	return nil
}

var newYear = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestComputeDueReminders_Messages(t *testing.T) {
	cases := []struct {
		due     string
		message string
	}{
		{"01-01-2025", "'Pay rent' is due today."},
		{"02-01-2025", "'Pay rent' is due tomorrow."},
		{"04-01-2025", "'Pay rent' is due in 3 days."},
	}

	for _, tc := range cases {
		t.Run(tc.due, func(t *testing.T) {
			s := setupServices(t)
			alice := s.signUp(t, "alice")
			s.createTask(t, alice.ID, "Pay rent", tc.due, model.PriorityHigh)

			reminders, err := s.reminders.ComputeDueReminders(context.Background(), alice.ID, newYear)

			require.NoError(t, err)
			require.Len(t, reminders, 1)
			assert.Equal(t, tc.message, reminders[0].Message)
			assert.Equal(t, "Pay rent", reminders[0].Task.Title)
		})
	}
}

func TestComputeDueReminders_SkipsOtherDaysAndCompleted(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	alice := s.signUp(t, "alice")
	bobby := s.signUp(t, "bobby")
	s.createTask(t, alice.ID, "in two days", "03-01-2025", model.PriorityHigh)
	s.createTask(t, alice.ID, "in four days", "05-01-2025", model.PriorityHigh)
	s.createTask(t, alice.ID, "yesterday", "31-12-2024", model.PriorityHigh)
	done := s.createTask(t, alice.ID, "done", "01-01-2025", model.PriorityHigh)
	require.NoError(t, s.tasks.MarkCompleted(ctx, alice.ID, done.ID))
	s.createTask(t, bobby.ID, "not alice's", "01-01-2025", model.PriorityHigh)

	reminders, err := s.reminders.ComputeDueReminders(ctx, alice.ID, newYear)

	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestComputeDueReminders_FetchOrderAndTimeOfDay(t *testing.T) {
	s := setupServices(t)
	alice := s.signUp(t, "alice")
	s.createTask(t, alice.ID, "c", "04-01-2025", model.PriorityLow)
	s.createTask(t, alice.ID, "a", "01-01-2025", model.PriorityHigh)
	s.createTask(t, alice.ID, "b", "02-01-2025", model.PriorityMedium)

	evening := newYear.Add(23 * time.Hour)
	reminders, err := s.reminders.ComputeDueReminders(context.Background(), alice.ID, evening)

	require.NoError(t, err)
	messages := make([]string, 0, len(reminders))
	for _, r := range reminders {
		messages = append(messages, r.Message)
	}
	assert.Equal(t, []string{
		"'c' is due in 3 days.",
		"'a' is due today.",
		"'b' is due tomorrow.",
	}, messages)
}

func TestComputeDueReminders_AcrossMonthEnd(t *testing.T) {
	s := setupServices(t)
	alice := s.signUp(t, "alice")
	s.createTask(t, alice.ID, "leap", "01-03-2024", model.PriorityLow)

	reminders, err := s.reminders.ComputeDueReminders(context.Background(), alice.ID, time.Date(2024, time.February, 27, 8, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "'leap' is due in 3 days.", reminders[0].Message)
}

func TestDispatch_ForwardsToNotifier(t *testing.T) {
	s := setupServices(t)
	alice := s.signUp(t, "alice")
	s.createTask(t, alice.ID, "Pay rent", "01-01-2025", model.PriorityHigh)
	s.createTask(t, alice.ID, "Dentist", "02-01-2025", model.PriorityLow)
	notifier := &recordingNotifier{}

	sent, err := s.reminders.Dispatch(context.Background(), alice.ID, newYear, notifier)

	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{ReminderTitle, ReminderTitle}, notifier.titles)
	assert.Equal(t, []string{"'Pay rent' is due today.", "'Dentist' is due tomorrow."}, notifier.messages)
}

func TestDispatch_NothingDue(t *testing.T) {
	s := setupServices(t)
	alice := s.signUp(t, "alice")
	notifier := &recordingNotifier{}

	sent, err := s.reminders.Dispatch(context.Background(), alice.ID, newYear, notifier)

	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, notifier.messages)
}

func TestDispatch_NotifierFailure(t *testing.T) {
	s := setupServices(t)
	alice := s.signUp(t, "alice")
	s.createTask(t, alice.ID, "Pay rent", "01-01-2025", model.PriorityHigh)
	boom := errors.New("toast failed")

	sent, err := s.reminders.Dispatch(context.Background(), alice.ID, newYear, &recordingNotifier{err: boom})

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, sent)
}
