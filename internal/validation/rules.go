// Package validation holds the field rules applied before anything is
// written. Every check returns nil or an *apperr.ValidationError carrying the
// message shown to the user.
package validation

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"task-manager/internal/apperr"
	"task-manager/internal/model"
)

const (
	MinUsernameLength     = 4
	MinPasswordLength     = 8
	MaxTitleLength        = 30
	MaxDescriptionLength  = 200
	MaxCategoryNameLength = 20

	// SpecialCharacters lists the characters that satisfy the password
	// special-character rule.
	SpecialCharacters = "!£$%^&*()@"

	// CategoryPlaceholder is what an untouched category picker reports.
	CategoryPlaceholder = "Select Category"
)

// Day and month may be written without the leading zero.
const dueDateInputLayout = "2-1-2006"

func Username(username string) error {
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return apperr.Invalid("username", "Username must be 4+ characters.")
	}
	return nil
}

// Password checks length, uppercase, digit and special character, in that
// order, and reports only the first unmet rule.
func Password(password string) error {
	switch {
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return apperr.Invalid("password", "Password must be at least 8 characters long.")
	case strings.IndexFunc(password, unicode.IsUpper) < 0:
		return apperr.Invalid("password", "Password must contain at least one uppercase letter.")
	case strings.IndexFunc(password, unicode.IsDigit) < 0:
		return apperr.Invalid("password", "Password must contain at least one digit.")
	case !strings.ContainsAny(password, SpecialCharacters):
		return apperr.Invalid("password", "Password must contain at least one special character.")
	}
	return nil
}

func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperr.Invalid("title", "Title cannot be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return apperr.Invalid("title", "Title must be less than 30 characters.")
	}
	return nil
}

// Description is optional; only its length is bounded.
func Description(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return apperr.Invalid("description", "Description must be less than 200 characters.")
	}
	return nil
}

// DueDate parses a day-month-year date and returns it in
// model.DueDateLayout.
func DueDate(raw string) (string, error) {
	day, err := time.Parse(dueDateInputLayout, raw)
	if err != nil {
		return "", apperr.Invalid("due_date", "Due date must be in format DD-MM-YYYY.")
	}
	return model.FormatDueDate(day), nil
}

// CategorySelected rejects an empty or placeholder category choice.
func CategorySelected(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed == CategoryPlaceholder {
		return apperr.Invalid("category", "Please select a category.")
	}
	return nil
}

func PrioritySelected(priority model.Priority) error {
	if !priority.Valid() {
		return apperr.Invalid("priority", "Please select a priority.")
	}
	return nil
}

func CategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Invalid("name", "Category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return apperr.Invalid("name", "Category name must be less than 20 characters")
	}
	return nil
}

// TaskFields runs the task rules in display order (title, description, due
// date, category, priority) and returns the normalized due date.
func TaskFields(title, description, dueDate, category string, priority model.Priority) (string, error) {
	if err := Title(title); err != nil {
		return "", err
	}
	if err := Description(description); err != nil {
		return "", err
	}
	normalized, err := DueDate(dueDate)
	if err != nil {
		return "", err
	}
	if err := CategorySelected(category); err != nil {
		return "", err
	}
	if err := PrioritySelected(priority); err != nil {
		return "", err
	}
	return normalized, nil
}
