// Package task defines the task entity and the stored task blob format.
package task

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Category classifies a task. The value is the canonical label that is
// stored in the blob and used for ordering.
type Category string

const (
	CategoryHome     Category = "home"
	CategoryWork     Category = "work"
	CategorySchool   Category = "school"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
)

// DefaultCategory is used when a task is created without a category.
const DefaultCategory = CategoryPersonal

// Categories returns every category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryHome,
		CategoryWork,
		CategorySchool,
		CategoryPersonal,
		CategoryShopping,
	}
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryHome, CategoryWork, CategorySchool, CategoryPersonal, CategoryShopping:
		return true
	}
	return false
}

// String returns the canonical label.
func (c Category) String() string {
	return string(c)
}

// ParseCategory parses a canonical label, ignoring case and surrounding space.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("invalid category %q, must be one of: home, work, school, personal, shopping", s)
	}
	return c, nil
}

// UnmarshalJSON rejects labels outside the enumeration.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	if !Category(s).Valid() {
		return fmt.Errorf("invalid category %q", s)
	}
	*c = Category(s)
	return nil
}

// Priority is an ordered urgency rank.
type Priority int

const (
	PriorityLow    Priority = 0
	PriorityMedium Priority = 1
	PriorityHigh   Priority = 2
)

// DefaultPriority is used when a task is created without a priority.
const DefaultPriority = PriorityMedium

// Priorities returns every priority from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// String returns the lowercase name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// ParsePriority accepts either a name (low, medium, high) or a rank (0-2).
func ParsePriority(s string) (Priority, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "low":
		return PriorityLow, nil
	case "medium", "med":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	if n, err := strconv.Atoi(v); err == nil && Priority(n).Valid() {
		return Priority(n), nil
	}
	return 0, fmt.Errorf("invalid priority %q, must be one of: low, medium, high", s)
}

// UnmarshalJSON rejects ranks outside the enumeration.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("priority: %w", err)
	}
	if !Priority(n).Valid() {
		return fmt.Errorf("invalid priority %d", n)
	}
	*p = Priority(n)
	return nil
}

// Task is a single to-do item.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	IsCompleted     bool       `json:"isCompleted"`
	CreatedAt       time.Time  `json:"createdAt"`
	Category        Category   `json:"category"`
	Priority        Priority   `json:"priority"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	ReminderEnabled bool       `json:"reminderEnabled"`
}

// IsZero returns true if the task has no ID.
func (t *Task) IsZero() bool {
	return t.ID == ""
}

// IsOverdue reports whether the task has a due date before now and is still open.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.IsCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// HasReminder reports whether the task needs a pending reminder.
// Both the reminder flag and a due date are required.
func (t *Task) HasReminder() bool {
	return t.ReminderEnabled && t.DueDate != nil
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// CloneAll copies a collection with Clone.
func CloneAll(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}

// IndexOf returns the position of the task with id, or -1.
func IndexOf(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
