package task

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{input: "home", want: CategoryHome},
		{input: "Work", want: CategoryWork},
		{input: "  school ", want: CategorySchool},
		{input: "personal", want: CategoryPersonal},
		{input: "SHOPPING", want: CategoryShopping},
		{input: "garden", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCategory(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCategory(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input   string
		want    Priority
		wantErr bool
	}{
		{input: "low", want: PriorityLow},
		{input: "Medium", want: PriorityMedium},
		{input: "high", want: PriorityHigh},
		{input: "0", want: PriorityLow},
		{input: "2", want: PriorityHigh},
		{input: "3", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "urgent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePriority(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePriority(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePriority(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePriority(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPriorityOrdering(t *testing.T) {
	if !(PriorityLow < PriorityMedium && PriorityMedium < PriorityHigh) {
		t.Fatal("priorities must be ordered low < medium < high")
	}
	if DefaultPriority != PriorityMedium {
		t.Errorf("DefaultPriority = %v, want medium", DefaultPriority)
	}
	if DefaultCategory != CategoryPersonal {
		t.Errorf("DefaultCategory = %v, want personal", DefaultCategory)
	}
}

func TestEnumJSONRejectsUnknownValues(t *testing.T) {
	var c Category
	if err := json.Unmarshal([]byte(`"garden"`), &c); err == nil {
		t.Error("expected error for unknown category")
	}
	if err := json.Unmarshal([]byte(`"work"`), &c); err != nil || c != CategoryWork {
		t.Errorf("unmarshal work: got %q, err %v", c, err)
	}

	var p Priority
	if err := json.Unmarshal([]byte(`5`), &p); err == nil {
		t.Error("expected error for out-of-range priority")
	}
	if err := json.Unmarshal([]byte(`"high"`), &p); err == nil {
		t.Error("expected error for string priority")
	}
	if err := json.Unmarshal([]byte(`2`), &p); err != nil || p != PriorityHigh {
		t.Errorf("unmarshal 2: got %v, err %v", p, err)
	}
}

func TestTaskJSONFieldNames(t *testing.T) {
	due := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	tk := Task{
		ID:              "t-1",
		Title:           "Submit report",
		CreatedAt:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Category:        CategoryWork,
		Priority:        PriorityHigh,
		DueDate:         &due,
		ReminderEnabled: true,
	}

	data, err := json.Marshal(tk)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{
		`"id":"t-1"`,
		`"isCompleted":false`,
		`"createdAt":"2024-03-01T09:00:00Z"`,
		`"category":"work"`,
		`"priority":2`,
		`"dueDate":"2024-03-01T18:00:00Z"`,
		`"reminderEnabled":true`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded task missing %s: %s", want, s)
		}
	}
	if strings.Contains(s, "notes") {
		t.Errorf("empty notes should be omitted: %s", s)
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{name: "no due date", task: Task{}, want: false},
		{name: "due in the past", task: Task{DueDate: &past}, want: true},
		{name: "due in the future", task: Task{DueDate: &future}, want: false},
		{name: "due exactly now", task: Task{DueDate: &now}, want: false},
		{name: "completed past due", task: Task{DueDate: &past, IsCompleted: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsOverdue(now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasReminder(t *testing.T) {
	due := time.Now()
	if (&Task{ReminderEnabled: true}).HasReminder() {
		t.Error("reminder without due date must not count")
	}
	if (&Task{DueDate: &due}).HasReminder() {
		t.Error("due date without reminder flag must not count")
	}
	if !(&Task{ReminderEnabled: true, DueDate: &due}).HasReminder() {
		t.Error("reminder flag and due date should count")
	}
}

func TestCloneDoesNotShareDueDate(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	original := []Task{{ID: "a", DueDate: &due}}
	copied := CloneAll(original)

	*copied[0].DueDate = due.Add(time.Hour)
	if !original[0].DueDate.Equal(due) {
		t.Fatal("CloneAll shares DueDate pointer with the original")
	}
	if CloneAll(nil) != nil {
		t.Error("CloneAll(nil) should be nil")
	}
}

func TestIndexOf(t *testing.T) {
	tasks := []Task{{ID: "a"}, {ID: "b"}}
	if got := IndexOf(tasks, "b"); got != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", got)
	}
	if got := IndexOf(tasks, "z"); got != -1 {
		t.Errorf("IndexOf(z) = %d, want -1", got)
	}
}
