package model

import (
	"strconv"
	"strings"
	"time"
)

// DueDateLayout is the storage and comparison format of Task.DueDate.
const DueDateLayout = "02-01-2006"

// Priority orders tasks; higher values sort first.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return "None"
	}
}

// Valid reports whether p is one of Low, Medium or High.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// ParsePriority accepts a label (low, medium, high) or its numeric value.
// Anything else yields PriorityNone.
func ParsePriority(raw string) Priority {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "low", "l":
		return PriorityLow
	case "medium", "med", "m":
		return PriorityMedium
	case "high", "h":
		return PriorityHigh
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return PriorityNone
	}
	if p := Priority(n); p.Valid() {
		return p
	}
	return PriorityNone
}

// Status is the lifecycle state of a task. The only transition is
// pending -> completed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Task represents a single item in the tracker.
type Task struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;not null"`
	CategoryID  *uint  `gorm:"index"`
	Title       string `gorm:"not null"`
	Description string
	DueDate     string   `gorm:"index"`
	Priority    Priority `gorm:"not null"`
	Status      Status   `gorm:"default:pending;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Due parses DueDate in loc.
func (t Task) Due(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DueDateLayout, t.DueDate, loc)
}

// FormatDueDate renders a calendar date in DueDateLayout.
func FormatDueDate(day time.Time) string {
	return day.Format(DueDateLayout)
}
