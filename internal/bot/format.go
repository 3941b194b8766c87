package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"task-manager/internal/model"
	"task-manager/internal/service"
)

const (
	newTaskUsage = "/newtask title | DD-MM-YYYY | category | low/medium/high [| description]"
	editUsage    = "/edit id | title | DD-MM-YYYY | category | low/medium/high [| description]"
)

const helpText = `<b>Task manager</b>

<b>Account</b>
/signup &lt;username&gt; &lt;password&gt;
/login &lt;username&gt; &lt;password&gt;
/logout

<b>Categories</b>
/categories - list your categories
/newcategory &lt;name&gt;

<b>Tasks</b>
` + "/newtask title | DD-MM-YYYY | category | priority [| description]\n" +
	"/edit id | title | DD-MM-YYYY | category | priority [| description]\n" +
	`/tasks - pending tasks by priority
/tasks today - pending tasks due today
/tasks completed
/tasks category &lt;name&gt;
/view &lt;id&gt;
/complete &lt;id&gt;
/delete &lt;id&gt;
/remind - reminders for today, tomorrow and in 3 days

Priority is low, medium or high.`

var (
	errTaskFieldCount = errors.New("Expected 4 or 5 fields separated by |.")
	errBadTaskID      = errors.New("Task ID must be a number.")
)

func escape(s string) string {
	return html.EscapeString(s)
}

func splitCredentials(args string) (string, string, bool) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}

func parseTaskID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, errBadTaskID
	}
	return uint(id), nil
}

// parseTaskInput reads "title | due | category | priority [| description]".
// Field content is left for the service to validate.
func parseTaskInput(args string) (service.TaskInput, error) {
	parts := strings.Split(args, "|")
	if len(parts) < 4 || len(parts) > 5 {
		return service.TaskInput{}, errTaskFieldCount
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	input := service.TaskInput{
		Title:    parts[0],
		DueDate:  parts[1],
		Category: parts[2],
		Priority: model.ParsePriority(parts[3]),
	}
	if len(parts) == 5 {
		input.Description = parts[4]
	}
	return input, nil
}

func parseEditInput(args string) (uint, service.TaskInput, error) {
	rawID, rest, ok := strings.Cut(args, "|")
	if !ok {
		return 0, service.TaskInput{}, errTaskFieldCount
	}
	taskID, err := parseTaskID(rawID)
	if err != nil {
		return 0, service.TaskInput{}, err
	}
	input, err := parseTaskInput(rest)
	if err != nil {
		return 0, service.TaskInput{}, err
	}
	return taskID, input, nil
}

func parseFilter(args string) (service.Filter, error) {
	keyword, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	switch strings.ToLower(keyword) {
	case "", "all":
		return service.AllTasks(), nil
	case "today":
		return service.DueToday(), nil
	case "completed", "done":
		return service.CompletedTasks(), nil
	case "category":
		name := strings.TrimSpace(rest)
		if name == "" {
			return service.Filter{}, errors.New("Usage: /tasks category <name>")
		}
		return service.InCategory(name), nil
	default:
		return service.Filter{}, fmt.Errorf("Unknown view %q. Use today, completed or category <name>.", keyword)
	}
}

func formatCategories(categories []model.Category) string {
	var sb strings.Builder
	sb.WriteString("📂 <b>Your categories</b>\n")
	for _, category := range categories {
		sb.WriteString("• " + escape(category.Name) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func filterTitle(filter service.Filter) string {
	switch filter.Kind {
	case service.FilterToday:
		return "Due today"
	case service.FilterCompleted:
		return "Completed tasks"
	case service.FilterCategory:
		return "Category: " + escape(filter.Category)
	default:
		return "Pending tasks"
	}
}

func formatTaskLine(task model.Task) string {
	return fmt.Sprintf("<b>#%d %s</b>\nDue: %s Priority: %s", task.ID, escape(task.Title), task.DueDate, task.Priority)
}

func formatTaskList(filter service.Filter, tasks []model.Task) string {
	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, "📋 <b>"+filterTitle(filter)+"</b>")
	for _, task := range tasks {
		lines = append(lines, formatTaskLine(task))
	}
	return strings.Join(lines, "\n\n")
}

func formatTaskDetails(task model.Task, categoryName string) string {
	description := task.Description
	if description == "" {
		description = "-"
	}
	return fmt.Sprintf(
		"#%d <b>%s</b>\nDescription: %s\nDue: %s\nCategory: %s\nPriority: %s\nStatus: %s",
		task.ID,
		escape(task.Title),
		escape(description),
		task.DueDate,
		escape(categoryName),
		task.Priority,
		task.Status,
	)
}

// taskButtons offers complete and delete for pending tasks and delete only
// for completed ones.
func taskButtons(tasks []model.Task) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks))
	for _, task := range tasks {
		id := strconv.FormatUint(uint64(task.ID), 10)
		var row []tgbotapi.InlineKeyboardButton
		if task.Status != model.StatusCompleted {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("✅ #"+id, cbCompletePrefix+id))
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑 #"+id, cbDeletePrefix+id))
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
