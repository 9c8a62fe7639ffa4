package utils

import (
	"fmt"
	"strings"
	"time"
)

// dueLayouts are tried in order by ParseDueDate.
var dueLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDueDate parses a user-supplied due date relative to now.
//
// Accepted forms:
//   - RFC 3339 ("2024-05-01T18:00:00+02:00")
//   - "2006-01-02 15:04" or "2006-01-02T15:04" in now's location
//   - "2006-01-02" (end of that day, 23:59, in now's location)
//   - "15:04" (today at that time)
//   - "+90m", "+2h", "+3d" (relative to now)
func ParseDueDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty due date")
	}

	if strings.HasPrefix(s, "+") {
		return parseRelative(s[1:], now)
	}

	loc := now.Location()
	for _, layout := range dueLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			t = t.Add(23*time.Hour + 59*time.Minute)
		}
		return t, nil
	}

	if t, err := time.ParseInLocation("15:04", s, loc); err == nil {
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
	}

	return time.Time{}, fmt.Errorf("invalid due date %q (use YYYY-MM-DD, \"YYYY-MM-DD HH:MM\", HH:MM, RFC 3339 or +2h/+3d)", s)
}

func parseRelative(s string, now time.Time) (time.Time, error) {
	if strings.HasSuffix(s, "d") {
		var days int
		if _, err := fmt.Sscanf(strings.TrimSuffix(s, "d"), "%d", &days); err != nil || days < 0 {
			return time.Time{}, fmt.Errorf("invalid relative due date %q", "+"+s)
		}
		return now.AddDate(0, 0, days), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return time.Time{}, fmt.Errorf("invalid relative due date %q", "+"+s)
	}
	return now.Add(d), nil
}
