package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/internal/auth"
	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

type sentMessage struct {
	ChatID int64
	Text   string
	Markup any
}

type fakeAPI struct {
	sent     []sentMessage
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, sentMessage{ChatID: msg.ChatID, Text: msg.Text, Markup: msg.ReplyMarkup})
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) last() sentMessage {
	if len(f.sent) == 0 {
		return sentMessage{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeAPI) textsFor(chatID int64) []string {
	var out []string
	for _, msg := range f.sent {
		if msg.ChatID == chatID {
			out = append(out, msg.Text)
		}
	}
	return out
}

// 10 March 2025, mid-morning.
var fixedNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.Local)

func setupBot(t *testing.T) (*Bot, *fakeAPI) {
	t.Helper()
	db, err := repository.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := repository.NewStore(db)
	categories := service.NewCategoryService(store)
	api := &fakeAPI{}
	b := newBot(api, Services{
		Auth:       service.NewAuthService(store, auth.SHA256Hasher{}, auth.NewSessionIssuer("test-secret", time.Hour)),
		Categories: categories,
		Tasks:      service.NewTaskService(store, categories),
		Filters:    service.NewFilterService(store, categories),
		Reminders:  service.NewReminderService(store),
	})
	b.now = func() time.Time { return fixedNow }
	return b, api
}

func command(chatID int64, text string) *tgbotapi.Message {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return &tgbotapi.Message{
		From:     &tgbotapi.User{ID: chatID},
		Chat:     &tgbotapi.Chat{ID: chatID, Type: "private"},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func send(t *testing.T, b *Bot, chatID int64, text string) {
	t.Helper()
	require.NoError(t, b.handleMessage(context.Background(), command(chatID, text)))
}

func loginAs(t *testing.T, b *Bot, chatID int64, username string) {
	t.Helper()
	send(t, b, chatID, "/signup "+username+" Str0ng1!")
	send(t, b, chatID, "/login "+username+" Str0ng1!")
}

func TestSignUpAndLogin(t *testing.T) {
	b, api := setupBot(t)

	send(t, b, 1, "/signup alice Str0ng1!")
	assert.Contains(t, api.last().Text, "Account <b>alice</b> created")

	send(t, b, 1, "/login alice Str0ng1!")
	assert.Contains(t, api.last().Text, "Login successful")
}

func TestSignUp_ValidationMessages(t *testing.T) {
	b, api := setupBot(t)

	send(t, b, 1, "/signup bob Str0ng1!")
	assert.Equal(t, "⚠️ Username must be 4+ characters.", api.last().Text)

	send(t, b, 1, "/signup alice weak")
	assert.Equal(t, "⚠️ Password must be at least 8 characters long.", api.last().Text)

	send(t, b, 1, "/signup alice")
	assert.Contains(t, api.last().Text, "Usage: /signup")
}

func TestLogin_WrongPassword(t *testing.T) {
	b, api := setupBot(t)
	send(t, b, 1, "/signup alice Str0ng1!")

	send(t, b, 1, "/login alice Wr0ng!!!")

	assert.Equal(t, "⚠️ Invalid username or password", api.last().Text)
}

func TestCommandsRequireLogin(t *testing.T) {
	b, api := setupBot(t)

	send(t, b, 1, "/tasks")

	assert.Equal(t, "Please /login first.", api.last().Text)
}

func TestLoginElsewhereEndsOtherChat(t *testing.T) {
	b, api := setupBot(t)
	loginAs(t, b, 1, "alice")
	loginAs(t, b, 2, "bobby")

	send(t, b, 1, "/categories")

	assert.Equal(t, "Please /login first.", api.last().Text)
	send(t, b, 2, "/categories")
	assert.Contains(t, api.last().Text, "• None")
}

func TestLogout_RequiresSessionInThisChat(t *testing.T) {
	b, api := setupBot(t)
	loginAs(t, b, 1, "alice")

	send(t, b, 99, "/logout")
	assert.Equal(t, "Please /login first.", api.last().Text)

	send(t, b, 1, "/categories")
	assert.Contains(t, api.last().Text, "• None")

	send(t, b, 1, "/logout")
	assert.Equal(t, "Logged out.", api.last().Text)
	send(t, b, 1, "/categories")
	assert.Equal(t, "Please /login first.", api.last().Text)
}

func TestTasks_ExpiredSessionAsksForLogin(t *testing.T) {
	b, api := setupBot(t)
	loginAs(t, b, 1, "alice")
	expired, _, err := auth.NewSessionIssuer("test-secret", -time.Minute).Issue(1, "old-session")
	require.NoError(t, err)
	b.sessions[1] = expired

	send(t, b, 1, "/tasks")

	assert.Equal(t, "Session expired. Please /login again.", api.last().Text)
	assert.Empty(t, b.sessions)
}

func TestCreateAndListTasks(t *testing.T) {
	b, api := setupBot(t)
	loginAs(t, b, 1, "alice")

	send(t, b, 1, "/newcategory Work")
	assert.Contains(t, api.last().Text, "Category <b>Work</b> created")

	send(t, b, 1, "/newtask Report | 20-3-2025 | Work | high | quarterly numbers")
	saved := api.last().Text
	assert.Contains(t, saved, "Task saved")
	assert.Contains(t, saved, "Due: 20-03-2025")
	assert.Contains(t, saved, "Category: Work")
	assert.Contains(t, saved, "Priority: High")

	send(t, b, 1, "/newtask Groceries | 21-03-2025 | None | low")
	send(t, b, 1, "/tasks")
	list := api.last()
	assert.Contains(t, list.Text, "Pending tasks")
	assert.Less(t, strings.Index(list.Text, "Report"), strings.Index(list.Text, "Groceries"))
	markup, ok := list.Markup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, markup.InlineKeyboard, 2)

	send(t, b, 1, "/tasks category Work")
	assert.Contains(t, api.last().Text, "Report")
	assert.NotContains(t, api.last().Text, "Groceries")
}

func TestNewTask_Errors(t *testing.T) {
	b, api := setupBot(t)
	loginAs(t, b, 1, "alice")

	send(t, b, 1, "/newtask only a title")
	assert.Contains(t, api.last().Text, "Usage: /newtask")

	send(t, b, 1, "/newtask Report | 2025-03-20 | None | high")
	assert.Equal(t, "⚠️ Due date must be in format DD-MM-YYYY.", api.last().Text)

	send(t, b, 1, "/newtask Report | 20-03-2025 | None | urgent")
	assert.Equal(t, "⚠️ Please select a priority.", api.last().Text)

	send(t, b, 1, "/newtask Report | 20-03-2025 | Missing | high")
	assert.Contains(t, api.last().Text, "not found")
}

func TestEditTask(t *testing.T) {
	b, api := setupBot(t)
	loginAs(t, b, 1, "alice")
	send(t, b, 1, "/newtask Report | 20-03-2025 | None | low")

	send(t, b, 1, "/edit 1 | Final report | 22-03-2025 | None | medium | send to Bob")

	text := api.last().Text
	assert.Contains(t, text, "Task updated")
	assert.Contains(t, text, "Final report")
	assert.Contains(t, text, "Due: 22-03-2025")
	assert.Contains(t, text, "Priority: Medium")
	assert.Contains(t, text, "Description: send to Bob")
}

func TestCompleteAndDelete(t *testing.T) {
	b, api := setupBot(t)
	loginAs(t, b, 1, "alice")
	send(t, b, 1, "/newtask Report | 20-03-2025 | None | low")

	send(t, b, 1, "/complete 1")
	assert.Equal(t, "✅ Task #1 completed.", api.last().Text)

	send(t, b, 1, "/tasks")
	assert.Contains(t, api.last().Text, "No tasks here")

	send(t, b, 1, "/tasks completed")
	assert.Contains(t, api.last().Text, "Report")

	send(t, b, 1, "/delete 1")
	assert.Equal(t, "🗑 Task #1 deleted.", api.last().Text)

	send(t, b, 1, "/view 1")
	assert.Contains(t, api.last().Text, "not found")

	send(t, b, 1, "/complete abc")
	assert.Equal(t, "Task ID must be a number.", api.last().Text)
}

func TestOtherUsersTaskIsHidden(t *testing.T) {
	b, api := setupBot(t)
	loginAs(t, b, 1, "alice")
	send(t, b, 1, "/newtask Secret | 20-03-2025 | None | low")
	loginAs(t, b, 2, "bobby")

	send(t, b, 2, "/view 1")
	assert.Contains(t, api.last().Text, "not found")

	send(t, b, 2, "/delete 1")
	assert.Contains(t, api.last().Text, "not found")
}

func TestCallbackCompletesTask(t *testing.T) {
	b, api := setupBot(t)
	loginAs(t, b, 1, "alice")
	send(t, b, 1, "/newtask Report | 20-03-2025 | None | low")

	err := b.handleCallback(context.Background(), &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 1},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1, Type: "private"}},
		Data:    "complete:1",
	})

	require.NoError(t, err)
	assert.Len(t, api.requests, 1)
	assert.Equal(t, "✅ Task #1 completed.", api.last().Text)
}

func TestRemindersOnLoginAndSchedule(t *testing.T) {
	b, api := setupBot(t)
	loginAs(t, b, 1, "alice")
	send(t, b, 1, "/newtask Today | 10-03-2025 | None | low")
	send(t, b, 1, "/newtask Tomorrow | 11-03-2025 | None | low")
	send(t, b, 1, "/newtask Later | 12-03-2025 | None | low")
	send(t, b, 1, "/logout")

	send(t, b, 1, "/login alice Str0ng1!")
	texts := api.textsFor(1)
	require.GreaterOrEqual(t, len(texts), 2)
	// Quotes in the message are HTML-escaped.
	assert.Contains(t, texts[len(texts)-2], "&#39;Today&#39; is due today.")
	assert.Contains(t, texts[len(texts)-1], "&#39;Tomorrow&#39; is due tomorrow.")
	assert.Contains(t, texts[len(texts)-1], service.ReminderTitle)

	before := len(api.sent)
	require.NoError(t, b.SendDueReminders(context.Background()))
	assert.Equal(t, before+2, len(api.sent))
}

func TestSendDueReminders_SkipsEndedSessions(t *testing.T) {
	b, api := setupBot(t)
	loginAs(t, b, 1, "alice")
	send(t, b, 1, "/newtask Today | 10-03-2025 | None | low")
	_, err := b.svc.Auth.Login(context.Background(), "alice", "Str0ng1!")
	require.NoError(t, err)

	before := len(api.sent)
	require.NoError(t, b.SendDueReminders(context.Background()))

	assert.Equal(t, before, len(api.sent))
	assert.Empty(t, b.sessions)
}

func TestRemindCommand_NothingDue(t *testing.T) {
	b, api := setupBot(t)
	loginAs(t, b, 1, "alice")
	send(t, b, 1, "/newtask Later | 12-03-2025 | None | "+model.PriorityHigh.String())

	send(t, b, 1, "/remind")

	assert.Contains(t, api.last().Text, "Nothing is due")
}
