package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"task-manager/internal/apperr"
	"task-manager/internal/model"
	"task-manager/internal/service"
)

const (
	cbCompletePrefix = "complete:"
	cbDeletePrefix   = "delete:"
)

// telegramAPI is the part of *tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Services are the entry points the bot calls into.
type Services struct {
	Auth       *service.AuthService
	Categories *service.CategoryService
	Tasks      *service.TaskService
	Filters    *service.FilterService
	Reminders  *service.ReminderService
}

// Bot serves the task manager over Telegram. Each private chat holds at most
// one session token; a login anywhere invalidates every other chat's token.
type Bot struct {
	api      telegramAPI
	svc      Services
	sessions map[int64]string
	now      func() time.Time
	mu       sync.Mutex
}

func New(token string, svc Services) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)
	return newBot(api, svc), nil
}

func newBot(api telegramAPI, svc Services) *Bot {
	return &Bot{
		api:      api,
		svc:      svc,
		sessions: make(map[int64]string),
		now:      time.Now,
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return ctx.Err()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I only understand commands. Try /help.")
	}

	log.Printf("[info] command from chat=%d: /%s", msg.Chat.ID, msg.Command())
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		return b.sendText(chatID, helpText)
	case "signup":
		return b.handleSignUp(ctx, chatID, args)
	case "login":
		return b.handleLogin(ctx, chatID, args)
	case "logout":
		return b.handleLogout(ctx, chatID)
	}

	user, err := b.currentUser(ctx, chatID)
	if err != nil {
		return b.replyError(chatID, err)
	}

	switch msg.Command() {
	case "categories":
		return b.handleCategories(ctx, chatID, user)
	case "newcategory":
		return b.handleNewCategory(ctx, chatID, user, args)
	case "newtask":
		return b.handleNewTask(ctx, chatID, user, args)
	case "edit":
		return b.handleEdit(ctx, chatID, user, args)
	case "tasks":
		return b.handleTasks(ctx, chatID, user, args)
	case "view":
		return b.handleView(ctx, chatID, user, args)
	case "complete":
		return b.withTaskID(chatID, args, "/complete 12", func(taskID uint) error {
			return b.completeTask(ctx, chatID, user, taskID)
		})
	case "delete":
		return b.withTaskID(chatID, args, "/delete 12", func(taskID uint) error {
			return b.deleteTask(ctx, chatID, user, taskID)
		})
	case "remind":
		return b.handleRemind(ctx, chatID, user)
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleSignUp(ctx context.Context, chatID int64, args string) error {
	username, password, ok := splitCredentials(args)
	if !ok {
		return b.sendText(chatID, "Usage: /signup &lt;username&gt; &lt;password&gt;")
	}
	if _, err := b.svc.Auth.SignUp(ctx, username, password); err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Account <b>%s</b> created. Now /login.", escape(username)))
}

func (b *Bot) handleLogin(ctx context.Context, chatID int64, args string) error {
	username, password, ok := splitCredentials(args)
	if !ok {
		return b.sendText(chatID, "Usage: /login &lt;username&gt; &lt;password&gt;")
	}
	session, err := b.svc.Auth.Login(ctx, username, password)
	if err != nil {
		return b.replyError(chatID, err)
	}

	b.mu.Lock()
	// Tokens held by other chats are dead now.
	b.sessions = map[int64]string{chatID: session.Token}
	b.mu.Unlock()

	if err := b.sendText(chatID, fmt.Sprintf("👋 Login successful! Welcome, <b>%s</b>.", escape(session.Username))); err != nil {
		return err
	}
	_, err = b.svc.Reminders.Dispatch(ctx, session.UserID, b.now(), b.chatNotifier(chatID))
	return err
}

// handleLogout ends the session held by this chat. A chat without a live
// session cannot log anyone out.
func (b *Bot) handleLogout(ctx context.Context, chatID int64) error {
	if _, err := b.currentUser(ctx, chatID); err != nil {
		return b.replyError(chatID, err)
	}
	if err := b.svc.Auth.Logout(ctx); err != nil {
		return b.replyError(chatID, err)
	}
	b.mu.Lock()
	b.sessions = make(map[int64]string)
	b.mu.Unlock()
	return b.sendText(chatID, "Logged out.")
}

func (b *Bot) handleCategories(ctx context.Context, chatID int64, user *model.User) error {
	categories, err := b.svc.Categories.List(ctx, user.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, formatCategories(categories))
}

func (b *Bot) handleNewCategory(ctx context.Context, chatID int64, user *model.User, args string) error {
	category, err := b.svc.Categories.Create(ctx, user.ID, args)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("📂 Category <b>%s</b> created.", escape(category.Name)))
}

func (b *Bot) handleNewTask(ctx context.Context, chatID int64, user *model.User, args string) error {
	input, err := parseTaskInput(args)
	if err != nil {
		return b.sendText(chatID, escape(err.Error())+"\nUsage: "+newTaskUsage)
	}
	task, err := b.svc.Tasks.Create(ctx, user.ID, input)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendTaskDetails(ctx, chatID, user, task, "✅ <b>Task saved</b>")
}

func (b *Bot) handleEdit(ctx context.Context, chatID int64, user *model.User, args string) error {
	taskID, input, err := parseEditInput(args)
	if err != nil {
		return b.sendText(chatID, escape(err.Error())+"\nUsage: "+editUsage)
	}
	task, err := b.svc.Tasks.Update(ctx, user.ID, taskID, input)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendTaskDetails(ctx, chatID, user, task, "✏️ <b>Task updated</b>")
}

func (b *Bot) handleTasks(ctx context.Context, chatID int64, user *model.User, args string) error {
	filter, err := parseFilter(args)
	if err != nil {
		return b.sendText(chatID, escape(err.Error()))
	}
	tasks, err := b.svc.Filters.List(ctx, user.ID, filter)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "No tasks here. Add one with /newtask.")
	}

	msg := tgbotapi.NewMessage(chatID, formatTaskList(filter, tasks))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = taskButtons(tasks)
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleView(ctx context.Context, chatID int64, user *model.User, args string) error {
	return b.withTaskID(chatID, args, "/view 12", func(taskID uint) error {
		task, err := b.svc.Tasks.Get(ctx, user.ID, taskID)
		if err != nil {
			return b.replyError(chatID, err)
		}
		return b.sendTaskDetails(ctx, chatID, user, task, "📝 <b>Task</b>")
	})
}

func (b *Bot) handleRemind(ctx context.Context, chatID int64, user *model.User) error {
	sent, err := b.svc.Reminders.Dispatch(ctx, user.ID, b.now(), b.chatNotifier(chatID))
	if err != nil {
		return b.replyError(chatID, err)
	}
	if sent == 0 {
		return b.sendText(chatID, "Nothing is due today, tomorrow or in 3 days.")
	}
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	chatID := cb.Message.Chat.ID
	user, err := b.currentUser(ctx, chatID)
	if err != nil {
		return b.replyError(chatID, err)
	}

	switch {
	case strings.HasPrefix(cb.Data, cbCompletePrefix):
		taskID, err := parseTaskID(strings.TrimPrefix(cb.Data, cbCompletePrefix))
		if err != nil {
			return nil
		}
		return b.completeTask(ctx, chatID, user, taskID)
	case strings.HasPrefix(cb.Data, cbDeletePrefix):
		taskID, err := parseTaskID(strings.TrimPrefix(cb.Data, cbDeletePrefix))
		if err != nil {
			return nil
		}
		return b.deleteTask(ctx, chatID, user, taskID)
	default:
		return nil
	}
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, user *model.User, taskID uint) error {
	if err := b.svc.Tasks.MarkCompleted(ctx, user.ID, taskID); err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Task #%d completed.", taskID))
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, user *model.User, taskID uint) error {
	if err := b.svc.Tasks.Delete(ctx, user.ID, taskID); err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Task #%d deleted.", taskID))
}

// SendDueReminders delivers reminders to every chat whose session is still
// active.
func (b *Bot) SendDueReminders(ctx context.Context) error {
	b.mu.Lock()
	chats := make(map[int64]string, len(b.sessions))
	for chatID, token := range b.sessions {
		chats[chatID] = token
	}
	b.mu.Unlock()

	now := b.now()
	for chatID, token := range chats {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		user, err := b.svc.Auth.Authenticate(ctx, token)
		if err != nil {
			b.dropSession(chatID)
			continue
		}
		sent, err := b.svc.Reminders.Dispatch(ctx, user.ID, now, b.chatNotifier(chatID))
		if err != nil {
			log.Printf("reminders for chat %d: %v", chatID, err)
			continue
		}
		log.Printf("[info] sent %d reminders user=%d", sent, user.ID)
	}
	return nil
}

// currentUser authenticates the chat's session token.
func (b *Bot) currentUser(ctx context.Context, chatID int64) (*model.User, error) {
	b.mu.Lock()
	token, ok := b.sessions[chatID]
	b.mu.Unlock()
	if !ok {
		return nil, apperr.ErrNoActiveUser
	}

	user, err := b.svc.Auth.Authenticate(ctx, token)
	if err != nil {
		if apperr.IsAuth(err) {
			b.dropSession(chatID)
		}
		return nil, err
	}
	return user, nil
}

func (b *Bot) dropSession(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, chatID)
}

func (b *Bot) withTaskID(chatID int64, args, example string, fn func(taskID uint) error) error {
	if args == "" {
		return b.sendText(chatID, "Give me the task ID: "+example)
	}
	taskID, err := parseTaskID(args)
	if err != nil {
		return b.sendText(chatID, "Task ID must be a number.")
	}
	return fn(taskID)
}

func (b *Bot) sendTaskDetails(ctx context.Context, chatID int64, user *model.User, task *model.Task, header string) error {
	categoryName := b.svc.Categories.Name(ctx, user.ID, task.CategoryID)
	return b.sendText(chatID, header+"\n"+formatTaskDetails(*task, categoryName))
}

// replyError turns a service error into a message for the user. Only storage
// and unexpected errors are returned to the caller for logging.
func (b *Bot) replyError(chatID int64, err error) error {
	switch {
	case errors.Is(err, apperr.ErrNoActiveUser):
		return b.sendText(chatID, "Please /login first.")
	case apperr.IsAuth(err) && !errors.Is(err, apperr.ErrInvalidCredentials):
		return b.sendText(chatID, escape(err.Error())+". Please /login again.")
	case apperr.IsValidation(err), apperr.IsAuth(err), apperr.IsNotFound(err):
		return b.sendText(chatID, "⚠️ "+escape(err.Error()))
	default:
		if sendErr := b.sendText(chatID, "Something went wrong, please try again."); sendErr != nil {
			log.Printf("send error reply: %v", sendErr)
		}
		return err
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

// chatNotifier delivers reminders into one chat.
type chatNotifier struct {
	bot    *Bot
	chatID int64
}

func (b *Bot) chatNotifier(chatID int64) service.Notifier {
	return chatNotifier{bot: b, chatID: chatID}
}

func (n chatNotifier) Notify(title, message string) error {
	return n.bot.sendText(n.chatID, fmt.Sprintf("⏰ <b>%s</b>\n%s", escape(title), escape(message)))
}
