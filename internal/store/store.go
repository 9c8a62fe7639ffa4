package store

import (
	"context"
	"io"
	"iter"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/taskpad/internal/notify"
	"github.com/nibzard/taskpad/internal/task"
)

// Persister saves and loads the whole collection.
type Persister interface {
	Load(ctx context.Context) ([]task.Task, error)
	Save(ctx context.Context, tasks []task.Task) error
}

// Notifier schedules and cancels reminders keyed by task ID.
type Notifier interface {
	Schedule(ctx context.Context, id, title, body string, fireAt time.Time) error
	Cancel(ctx context.Context, id string) error
}

// Snapshot is the state handed to observers after every change.
type Snapshot struct {
	Tasks  []task.Task
	View   []task.Task
	Filter *task.Category
	Sort   SortOption
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for swallowed side-effect failures.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the UUID generator for new task IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithSort sets the initial sort option.
func WithSort(opt SortOption) Option {
	return func(s *Store) {
		if opt.Valid() {
			s.sort = opt
		}
	}
}

// WithFilter sets the initial category filter.
func WithFilter(c *task.Category) Option {
	return func(s *Store) {
		if c != nil && c.Valid() {
			cat := *c
			s.filter = &cat
		}
	}
}

type observer struct {
	id int
	fn func(Snapshot)
}

// Store is the single owner of the task collection.
type Store struct {
	persister Persister
	notifier  Notifier
	logger    *log.Logger
	now       func() time.Time
	newID     func() string

	tasks  []task.Task
	filter *task.Category
	sort   SortOption

	observers []observer
	nextObsID int
}

// New creates a Store and loads the collection from p. A load failure is
// logged and the store starts empty. Either collaborator may be nil.
func New(ctx context.Context, p Persister, n Notifier, opts ...Option) *Store {
	s := &Store{
		persister: p,
		notifier:  n,
		logger:    log.New(io.Discard),
		now:       time.Now,
		newID:     uuid.NewString,
		tasks:     []task.Task{},
		sort:      DefaultSort,
	}
	for _, opt := range opts {
		opt(s)
	}

	if p != nil {
		tasks, err := p.Load(ctx)
		if err != nil {
			s.logger.Warn("load failed, starting with an empty list", "op", "load", "err", err)
		}
		if err == nil && tasks != nil {
			s.tasks = tasks
		}
	}
	return s
}

// AddOption sets an optional field of a new task.
type AddOption func(*task.Task)

// WithPriority sets the priority of a new task.
func WithPriority(p task.Priority) AddOption {
	return func(t *task.Task) {
		if p.Valid() {
			t.Priority = p
		}
	}
}

// WithDueDate sets the due date of a new task.
func WithDueDate(due time.Time) AddOption {
	return func(t *task.Task) {
		t.DueDate = &due
	}
}

// WithNotes sets the notes of a new task.
func WithNotes(notes string) AddOption {
	return func(t *task.Task) {
		t.Notes = notes
	}
}

// WithReminder enables or disables the reminder of a new task.
func WithReminder(enabled bool) AddOption {
	return func(t *task.Task) {
		t.ReminderEnabled = enabled
	}
}

// Add appends a new task and returns it. A reminder is scheduled only when
// the task has both a due date and the reminder flag. The title is not
// validated.
func (s *Store) Add(ctx context.Context, title string, category task.Category, opts ...AddOption) task.Task {
	if !category.Valid() {
		category = task.DefaultCategory
	}
	t := task.Task{
		ID:        s.newID(),
		Title:     title,
		CreatedAt: s.now().UTC(),
		Category:  category,
		Priority:  task.DefaultPriority,
	}
	for _, opt := range opts {
		opt(&t)
	}

	s.tasks = append(s.tasks, t)
	s.persist(ctx, "add")
	if t.HasReminder() {
		s.schedule(ctx, t)
	}
	s.publish()
	return t.Clone()
}

// Delete removes the tasks at the given positions of the current view and
// cancels their reminders. Positions outside the view are ignored.
func (s *Store) Delete(ctx context.Context, positions ...int) {
	view := s.view()
	doomed := make(map[string]bool, len(positions))
	for _, pos := range positions {
		if pos >= 0 && pos < len(view) {
			doomed[view[pos].ID] = true
		}
	}
	if len(doomed) == 0 {
		return
	}

	var removed []string
	s.tasks = slices.DeleteFunc(s.tasks, func(t task.Task) bool {
		if doomed[t.ID] {
			removed = append(removed, t.ID)
			return true
		}
		return false
	})

	s.persist(ctx, "delete")
	for _, id := range removed {
		s.cancel(ctx, id)
	}
	s.publish()
}

// Move reorders the current view: the tasks at from are taken out and
// reinserted, in their relative order, before the task that was at to
// (to == len(view) appends). The new view order is then written into the
// collection slots the viewed tasks occupy; tasks outside the view keep
// their slots. Invalid positions are ignored.
func (s *Store) Move(ctx context.Context, from []int, to int) {
	view := s.view()
	if len(view) == 0 {
		return
	}
	to = max(0, min(to, len(view)))

	selected := make([]bool, len(view))
	count := 0
	for _, pos := range from {
		if pos >= 0 && pos < len(view) && !selected[pos] {
			selected[pos] = true
			count++
		}
	}
	if count == 0 {
		return
	}

	moved := make([]task.Task, 0, count)
	rest := make([]task.Task, 0, len(view)-count)
	insertAt := to
	for i, t := range view {
		if selected[i] {
			moved = append(moved, t)
			if i < to {
				insertAt--
			}
			continue
		}
		rest = append(rest, t)
	}
	reordered := slices.Concat(rest[:insertAt], moved, rest[insertAt:])

	// Slots of the viewed tasks in the collection, in collection order.
	inView := make(map[string]bool, len(view))
	for _, t := range view {
		inView[t.ID] = true
	}
	slots := make([]int, 0, len(view))
	for i, t := range s.tasks {
		if inView[t.ID] {
			slots = append(slots, i)
		}
	}
	for i, slot := range slots {
		s.tasks[slot] = reordered[i]
	}

	s.persist(ctx, "move")
	s.publish()
}

// Toggle flips the completion state of the task with id. Completing a task
// cancels its reminder; reopening it does not schedule a new one.
func (s *Store) Toggle(ctx context.Context, id string) {
	i := task.IndexOf(s.tasks, id)
	if i < 0 {
		return
	}
	s.tasks[i].IsCompleted = !s.tasks[i].IsCompleted
	completed := s.tasks[i].IsCompleted

	s.persist(ctx, "toggle")
	if completed {
		s.cancel(ctx, id)
	}
	s.publish()
}

// UpdateTitle replaces the title of the task with id.
func (s *Store) UpdateTitle(ctx context.Context, id, title string) {
	i := task.IndexOf(s.tasks, id)
	if i < 0 {
		return
	}
	s.tasks[i].Title = title
	s.persist(ctx, "update_title")
	s.publish()
}

// SetCategoryFilter sets the category filter; nil shows every category.
func (s *Store) SetCategoryFilter(c *task.Category) {
	if c == nil || !c.Valid() {
		s.filter = nil
	} else {
		cat := *c
		s.filter = &cat
	}
	s.publish()
}

// ToggleCategoryFilter selects c, or clears the filter when c is already
// selected.
func (s *Store) ToggleCategoryFilter(c task.Category) {
	if s.filter != nil && *s.filter == c {
		s.SetCategoryFilter(nil)
		return
	}
	s.SetCategoryFilter(&c)
}

// SetSortOption changes the view order. Unknown options are ignored.
func (s *Store) SetSortOption(opt SortOption) {
	if !opt.Valid() {
		return
	}
	s.sort = opt
	s.publish()
}

// Filter returns the active category filter, or nil.
func (s *Store) Filter() *task.Category {
	if s.filter == nil {
		return nil
	}
	c := *s.filter
	return &c
}

// Sort returns the active sort option.
func (s *Store) Sort() SortOption {
	return s.sort
}

// Tasks returns a copy of the collection in collection order.
func (s *Store) Tasks() []task.Task {
	return task.CloneAll(s.tasks)
}

// Task returns the task with id.
func (s *Store) Task(id string) (task.Task, bool) {
	i := task.IndexOf(s.tasks, id)
	if i < 0 {
		return task.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// At returns the task at a position of the current view.
func (s *Store) At(pos int) (task.Task, bool) {
	view := s.view()
	if pos < 0 || pos >= len(view) {
		return task.Task{}, false
	}
	return view[pos], true
}

// Filtered returns the current view as a sequence. The view is computed
// each time the sequence is ranged over.
func (s *Store) Filtered() iter.Seq[task.Task] {
	return func(yield func(task.Task) bool) {
		for _, t := range s.view() {
			if !yield(t) {
				return
			}
		}
	}
}

// FilteredTasks returns the current view as a slice.
func (s *Store) FilteredTasks() []task.Task {
	return s.view()
}

// Subscribe registers fn to be called after every change. The returned
// function removes it.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		s.observers = slices.DeleteFunc(s.observers, func(o observer) bool { return o.id == id })
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Tasks:  s.Tasks(),
		View:   s.view(),
		Filter: s.Filter(),
		Sort:   s.sort,
	}
}

// view filters and sorts a copy of the collection.
func (s *Store) view() []task.Task {
	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if s.filter != nil && t.Category != *s.filter {
			continue
		}
		out = append(out, t.Clone())
	}
	slices.SortStableFunc(out, compareFunc(s.sort))
	return out
}

func (s *Store) publish() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, o := range slices.Clone(s.observers) {
		o.fn(snap)
	}
}

func (s *Store) persist(ctx context.Context, op string) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, task.CloneAll(s.tasks)); err != nil {
		s.logger.Warn("save failed", "op", op, "err", err)
	}
}

func (s *Store) schedule(ctx context.Context, t task.Task) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Schedule(ctx, t.ID, notify.ReminderTitle, t.Title, *t.DueDate); err != nil {
		s.logger.Warn("schedule reminder failed", "op", "schedule", "task_id", t.ID, "err", err)
	}
}

func (s *Store) cancel(ctx context.Context, id string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Cancel(ctx, id); err != nil {
		s.logger.Warn("cancel reminder failed", "op", "cancel", "task_id", id, "err", err)
	}
}
