package store

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/nibzard/taskpad/internal/task"
)

// SortOption selects the order of the filtered view.
type SortOption string

const (
	// SortCreated orders newest first.
	SortCreated SortOption = "created"
	// SortPriority orders high to low.
	SortPriority SortOption = "priority"
	// SortDue orders by due date, earliest first, undated last.
	SortDue SortOption = "due"
	// SortCategory orders by category label.
	SortCategory SortOption = "category"
)

// DefaultSort is the sort option of a new store.
const DefaultSort = SortCreated

// SortOptions returns every sort option in cycling order.
func SortOptions() []SortOption {
	return []SortOption{SortCreated, SortPriority, SortDue, SortCategory}
}

// Valid reports whether s is a known sort option.
func (s SortOption) Valid() bool {
	return slices.Contains(SortOptions(), s)
}

func (s SortOption) String() string {
	return string(s)
}

// Next returns the option after s, wrapping around.
func (s SortOption) Next() SortOption {
	opts := SortOptions()
	i := slices.Index(opts, s)
	return opts[(i+1)%len(opts)]
}

// ParseSortOption parses a sort option name.
func ParseSortOption(s string) (SortOption, error) {
	opt := SortOption(strings.ToLower(strings.TrimSpace(s)))
	if !opt.Valid() {
		return "", fmt.Errorf("invalid sort %q, must be one of: created, priority, due, category", s)
	}
	return opt, nil
}

// compareFunc returns the ordering for opt. Stable sorting with it keeps
// collection order between tasks that compare equal.
func compareFunc(opt SortOption) func(a, b task.Task) int {
	switch opt {
	case SortPriority:
		return func(a, b task.Task) int { return cmp.Compare(b.Priority, a.Priority) }
	case SortDue:
		return compareDue
	case SortCategory:
		return func(a, b task.Task) int { return strings.Compare(string(a.Category), string(b.Category)) }
	default:
		return func(a, b task.Task) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}

func compareDue(a, b task.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return a.DueDate.Compare(*b.DueDate)
}
