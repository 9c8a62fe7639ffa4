package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// ReminderTitle is the fixed title of every task reminder.
const ReminderTitle = "Task Reminder"

// PendingKey is the kv key that holds pending reminders.
const PendingKey = "notifications"

// Request is one pending, non-repeating reminder.
type Request struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	FireAt time.Time `json:"fireAt"`
}

// TruncateToMinute drops seconds and below, keeping t's location.
func TruncateToMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

func decodeRequests(data []byte) ([]Request, error) {
	var reqs []Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", PendingKey, err)
	}
	for i, r := range reqs {
		if r.ID == "" {
			return nil, fmt.Errorf("parse %s: [%d]: %w", PendingKey, i, errors.New("missing id"))
		}
	}
	return reqs, nil
}

func encodeRequests(reqs []Request) ([]byte, error) {
	if reqs == nil {
		reqs = []Request{}
	}
	data, err := json.MarshalIndent(reqs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", PendingKey, err)
	}
	return append(data, '\n'), nil
}

func sortByFireAt(reqs []Request) {
	slices.SortStableFunc(reqs, func(a, b Request) int {
		return a.FireAt.Compare(b.FireAt)
	})
}

func removeID(reqs []Request, id string) ([]Request, bool) {
	n := len(reqs)
	reqs = slices.DeleteFunc(reqs, func(r Request) bool { return r.ID == id })
	return reqs, len(reqs) != n
}
