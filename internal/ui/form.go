package ui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskpad/internal/store"
	"github.com/nibzard/taskpad/internal/task"
	"github.com/nibzard/taskpad/internal/utils"
)

type formField int

const (
	fieldTitle formField = iota
	fieldCategory
	fieldPriority
	fieldDue
	fieldNotes
	fieldReminder
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Category", "Priority", "Due", "Notes", "Reminder"}

// addForm collects the fields of a new task.
type addForm struct {
	title    textinput.Model
	due      textinput.Model
	notes    textinput.Model
	category task.Category
	priority task.Priority
	reminder bool
	focus    formField
	err      string
}

func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.Prompt = ""
	return ti
}

func newAddForm(category task.Category) addForm {
	f := addForm{
		title:    newTextInput("What needs doing?", 256),
		due:      newTextInput("2006-01-02 15:04, 15:04 or +2h", 32),
		notes:    newTextInput("Optional", 1024),
		category: category,
		priority: task.DefaultPriority,
	}
	f.title.Focus()
	return f
}

// input returns the text input of the focused field, or nil.
func (f *addForm) input() *textinput.Model {
	switch f.focus {
	case fieldTitle:
		return &f.title
	case fieldDue:
		return &f.due
	case fieldNotes:
		return &f.notes
	}
	return nil
}

func (f *addForm) setFocus(field formField) tea.Cmd {
	if in := f.input(); in != nil {
		in.Blur()
	}
	f.focus = (field + fieldCount) % fieldCount
	if in := f.input(); in != nil {
		return in.Focus()
	}
	return nil
}

// cycle steps the choice of the focused non-text field.
func (f *addForm) cycle(step int) {
	switch f.focus {
	case fieldCategory:
		cats := task.Categories()
		i := indexOf(cats, f.category)
		f.category = cats[(i+step+len(cats))%len(cats)]
	case fieldPriority:
		ps := task.Priorities()
		i := indexOf(ps, f.priority)
		f.priority = ps[(i+step+len(ps))%len(ps)]
	case fieldReminder:
		f.reminder = !f.reminder
	}
}

func indexOf[T comparable](xs []T, x T) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return 0
}

// update handles a key in the form. submit reports that enter was pressed.
func (f *addForm) update(msg tea.KeyMsg) (cmd tea.Cmd, submit bool) {
	switch msg.String() {
	case "enter":
		return nil, true
	case "tab", "down":
		return f.setFocus(f.focus + 1), false
	case "shift+tab", "up":
		return f.setFocus(f.focus - 1), false
	}

	if in := f.input(); in != nil {
		*in, cmd = in.Update(msg)
		return cmd, false
	}
	switch msg.String() {
	case "left", "h":
		f.cycle(-1)
	case "right", "l", " ":
		f.cycle(1)
	}
	return nil, false
}

// options validates the form and returns the title and add options.
func (f *addForm) options(now time.Time) (string, []store.AddOption, error) {
	title := strings.TrimSpace(f.title.Value())
	if title == "" {
		return "", nil, errors.New("title is required")
	}
	opts := []store.AddOption{
		store.WithPriority(f.priority),
		store.WithReminder(f.reminder),
	}
	if due := strings.TrimSpace(f.due.Value()); due != "" {
		t, err := utils.ParseDueDate(due, now)
		if err != nil {
			return "", nil, err
		}
		opts = append(opts, store.WithDueDate(t))
	}
	if notes := strings.TrimSpace(f.notes.Value()); notes != "" {
		opts = append(opts, store.WithNotes(notes))
	}
	return title, opts, nil
}

func (f *addForm) view(th Theme) string {
	var b strings.Builder
	b.WriteString(th.Title.Render("New task") + "\n\n")
	for field := fieldTitle; field < fieldCount; field++ {
		marker := "  "
		if field == f.focus {
			marker = "> "
		}
		var value string
		switch field {
		case fieldTitle:
			value = f.title.View()
		case fieldCategory:
			value = "< " + th.Category(f.category) + " >"
		case fieldPriority:
			value = "< " + th.Priority(f.priority) + " >"
		case fieldDue:
			value = f.due.View()
		case fieldNotes:
			value = f.notes.View()
		case fieldReminder:
			value = "[ ]"
			if f.reminder {
				value = "[x]"
			}
		}
		b.WriteString(marker + th.Muted.Render(padRight(fieldLabels[field], 9)) + value + "\n")
	}
	if f.err != "" {
		b.WriteString("\n" + th.Error.Render(f.err) + "\n")
	}
	b.WriteString("\n" + th.Muted.Render("tab/shift+tab move · ←/→ change · enter save · esc cancel"))
	return th.Border.Render(b.String())
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
