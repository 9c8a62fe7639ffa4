// Package ui provides the interactive terminal task list.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/taskpad/internal/notify"
	"github.com/nibzard/taskpad/internal/store"
	"github.com/nibzard/taskpad/internal/task"
)

// Preferences persists UI settings.
type Preferences interface {
	DarkMode(ctx context.Context) (bool, error)
	SetDarkMode(ctx context.Context, on bool) error
}

// TUIOption configures the TUI behavior.
type TUIOption func(*Model)

// WithPreferences loads and saves the dark mode setting through p.
func WithPreferences(p Preferences) TUIOption {
	return func(m *Model) { m.prefs = p }
}

// WithBanners shows reminders received on b as a banner.
func WithBanners(b Banners) TUIOption {
	return func(m *Model) { m.banners = b }
}

// WithLogger sets the logger for UI errors.
func WithLogger(logger *log.Logger) TUIOption {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock replaces time.Now for overdue checks and due date parsing.
func WithClock(now func() time.Time) TUIOption {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// RunTUI runs the interactive list over st until the user quits or ctx is done.
func RunTUI(ctx context.Context, st *store.Store, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := NewModel(ctx, st, opts...)
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeHelp
)

type tickMsg time.Time

type bannerMsg notify.Request

// Model is the bubbletea model of the task list.
type Model struct {
	ctx     context.Context
	store   *store.Store
	prefs   Preferences
	banners Banners
	logger  *log.Logger
	now     func() time.Time

	theme        Theme
	mode         mode
	view         []task.Task
	cursor       int
	form         addForm
	edit         textinput.Model
	editID       string
	banner       string
	status       string
	tickInterval time.Duration
	unsubscribe  func()
}

// NewModel builds the model and subscribes it to st.
func NewModel(ctx context.Context, st *store.Store, opts ...TUIOption) *Model {
	m := &Model{
		ctx:          ctx,
		store:        st,
		logger:       log.New(io.Discard),
		now:          time.Now,
		tickInterval: 30 * time.Second,
		edit:         newTextInput("Task title", 256),
	}
	for _, opt := range opts {
		opt(m)
	}

	dark := false
	if m.prefs != nil {
		on, err := m.prefs.DarkMode(ctx)
		if err != nil {
			m.logger.Warn("load dark mode failed", "err", err)
		}
		dark = on
	}
	m.theme = NewTheme(dark)

	m.view = st.FilteredTasks()
	m.unsubscribe = st.Subscribe(func(snap store.Snapshot) {
		m.view = snap.View
	})
	return m
}

// Close detaches the model from the store.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tickInterval)}
	if m.banners != nil {
		cmds = append(cmds, waitForBanner(m.banners))
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m, m.updateAdd(msg)
		case modeEdit:
			return m, m.updateEdit(msg)
		case modeHelp:
			m.mode = modeList
			return m, nil
		}
		return m.updateList(msg)
	case tea.WindowSizeMsg:
		width := max(20, msg.Width-20)
		m.edit.Width = width
		m.form.title.Width = width
		m.form.notes.Width = width
	case tickMsg:
		// Re-render so overdue highlighting follows the clock.
		return m, tickCmd(m.tickInterval)
	case bannerMsg:
		m.banner = fmt.Sprintf("%s: %s", msg.Title, msg.Body)
		return m, waitForBanner(m.banners)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.cursor = clampCursor(m.cursor-1, len(m.view))
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(m.view))
	case "a":
		category := task.DefaultCategory
		if f := m.store.Filter(); f != nil {
			category = *f
		}
		m.form = newAddForm(category)
		m.mode = modeAdd
		return m, textinput.Blink
	case "e", "enter":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editID = t.ID
		m.edit.SetValue(t.Title)
		m.edit.CursorEnd()
		m.mode = modeEdit
		return m, m.edit.Focus()
	case " ", "x":
		if t, ok := m.selected(); ok {
			m.store.Toggle(m.ctx, t.ID)
			m.follow(t.ID)
		}
	case "d", "delete":
		if _, ok := m.selected(); ok {
			m.store.Delete(m.ctx, m.cursor)
			m.cursor = clampCursor(m.cursor, len(m.view))
		}
	case "K", "shift+up":
		if t, ok := m.selected(); ok && m.cursor > 0 {
			m.store.Move(m.ctx, []int{m.cursor}, m.cursor-1)
			m.follow(t.ID)
		}
	case "J", "shift+down":
		if t, ok := m.selected(); ok && m.cursor < len(m.view)-1 {
			m.store.Move(m.ctx, []int{m.cursor}, m.cursor+2)
			m.follow(t.ID)
		}
	case "1", "2", "3", "4", "5":
		id := m.selectedID()
		m.store.ToggleCategoryFilter(task.Categories()[key[0]-'1'])
		m.follow(id)
	case "0":
		id := m.selectedID()
		m.store.SetCategoryFilter(nil)
		m.follow(id)
	case "s":
		id := m.selectedID()
		m.store.SetSortOption(m.store.Sort().Next())
		m.follow(id)
		m.status = "Sorted by " + m.store.Sort().String()
	case "t":
		m.toggleTheme()
	case "?":
		m.mode = modeHelp
	case "esc":
		m.banner = ""
	}
	return m, nil
}

func (m *Model) updateAdd(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" {
		m.mode = modeList
		return nil
	}
	cmd, submit := m.form.update(msg)
	if !submit {
		return cmd
	}
	title, opts, err := m.form.options(m.now())
	if err != nil {
		m.form.err = err.Error()
		return nil
	}
	t := m.store.Add(m.ctx, title, m.form.category, opts...)
	m.mode = modeList
	m.follow(t.ID)
	m.status = "Added " + t.Title
	return nil
}

func (m *Model) updateEdit(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.edit.Blur()
		return nil
	case "enter":
		// An empty title leaves the task unchanged.
		if title := strings.TrimSpace(m.edit.Value()); title != "" {
			m.store.UpdateTitle(m.ctx, m.editID, title)
		}
		m.mode = modeList
		m.edit.Blur()
		m.follow(m.editID)
		return nil
	}
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	return cmd
}

func (m *Model) toggleTheme() {
	dark := !m.theme.Dark
	m.theme = NewTheme(dark)
	if m.prefs == nil {
		return
	}
	if err := m.prefs.SetDarkMode(m.ctx, dark); err != nil {
		m.logger.Warn("save dark mode failed", "err", err)
		m.status = "Could not save theme"
	}
}

func (m *Model) selected() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view) {
		return task.Task{}, false
	}
	return m.view[m.cursor], true
}

func (m *Model) selectedID() string {
	t, _ := m.selected()
	return t.ID
}

// follow moves the cursor to the task with id, or keeps it in range when
// the task is no longer visible.
func (m *Model) follow(id string) {
	if i := task.IndexOf(m.view, id); i >= 0 {
		m.cursor = i
		return
	}
	m.cursor = clampCursor(m.cursor, len(m.view))
}

func (m *Model) View() string {
	var b strings.Builder
	th := m.theme

	b.WriteString(th.Title.Render("taskpad") + th.Muted.Render(fmt.Sprintf("  sorted by %s", m.store.Sort())) + "\n\n")
	b.WriteString(m.categoryBar() + "\n\n")

	if m.banner != "" {
		b.WriteString(th.Banner.Render(m.banner) + "\n\n")
	}

	switch m.mode {
	case modeHelp:
		writeHelp(&b, th)
		return b.String()
	case modeAdd:
		b.WriteString(m.form.view(th) + "\n")
		return b.String()
	}

	m.writeList(&b)

	if m.mode == modeEdit {
		b.WriteString("\n" + th.Text.Render("Edit title: ") + m.edit.View() + "\n")
		b.WriteString(th.Muted.Render("enter save · esc cancel") + "\n")
		return b.String()
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(th.Muted.Render(m.status) + "\n")
	}
	b.WriteString(th.Muted.Render("a add · e edit · space done · d delete · J/K move · 1-5 filter · s sort · t theme · ? help · q quit"))
	return b.String()
}

func (m *Model) categoryBar() string {
	filter := m.store.Filter()
	chips := make([]string, 0, len(task.Categories()))
	for i, c := range task.Categories() {
		active := filter != nil && *filter == c
		chips = append(chips, fmt.Sprintf("%d", i+1)+m.theme.CategoryChip(c, active))
	}
	return strings.Join(chips, " ")
}

func (m *Model) writeList(b *strings.Builder) {
	th := m.theme
	if len(m.view) == 0 {
		if m.store.Filter() != nil {
			b.WriteString(th.Muted.Render("No tasks in this category. Press 0 to show all.") + "\n")
		} else {
			b.WriteString(th.Muted.Render("No tasks yet. Press a to add one.") + "\n")
		}
		return
	}
	now := m.now()
	for i, t := range m.view {
		line := m.formatTask(t, now)
		if i == m.cursor {
			line = th.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
		if t.Notes != "" {
			b.WriteString("      " + th.Muted.Render(truncate(t.Notes, 60)) + "\n")
		}
	}
}

func (m *Model) formatTask(t task.Task, now time.Time) string {
	th := m.theme
	check := "[ ]"
	title := th.Text.Render(t.Title)
	if t.IsCompleted {
		check = "[x]"
		title = th.Done.Render(t.Title)
	}

	parts := []string{check, title, th.Category(t.Category), th.Priority(t.Priority)}
	if t.DueDate != nil {
		due := "due " + formatDue(*t.DueDate, now)
		if t.IsOverdue(now) {
			due = th.Overdue.Render(due + " (overdue)")
		} else {
			due = th.Muted.Render(due)
		}
		parts = append(parts, due)
	}
	if t.ReminderEnabled && t.DueDate != nil {
		parts = append(parts, "⏰")
	}
	return strings.Join(parts, "  ")
}

// formatDue omits the year for dates in the current year.
func formatDue(due, now time.Time) string {
	due = due.In(now.Location())
	if due.Year() == now.Year() {
		return due.Format("Jan 2 15:04")
	}
	return due.Format("Jan 2 2006 15:04")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func writeHelp(b *strings.Builder, th Theme) {
	b.WriteString(th.Title.Render("Keyboard Shortcuts") + "\n\n")
	b.WriteString("  j/k, ↓/↑     Move the cursor\n")
	b.WriteString("  a            Add a task\n")
	b.WriteString("  e, enter     Edit the title\n")
	b.WriteString("  space, x     Toggle done\n")
	b.WriteString("  d            Delete\n")
	b.WriteString("  J/K          Move the task down/up\n")
	b.WriteString("  1-5          Filter by category (again to clear)\n")
	b.WriteString("  0            Clear filter\n")
	b.WriteString("  s            Cycle sort order\n")
	b.WriteString("  t            Toggle dark mode\n")
	b.WriteString("  esc          Dismiss reminder banner\n")
	b.WriteString("  q, ctrl+c    Quit\n\n")
	b.WriteString(th.Muted.Render("Press any key to return"))
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForBanner(ch Banners) tea.Cmd {
	return func() tea.Msg {
		req, ok := <-ch
		if !ok {
			return nil
		}
		return bannerMsg(req)
	}
}

func clampCursor(cur, n int) int {
	if n <= 0 || cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
