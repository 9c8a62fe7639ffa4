package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskpad/internal/kv"
	"github.com/nibzard/taskpad/internal/parallel"
)

// Default dispatcher settings.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultGrace        = 60 * time.Second
	DefaultMaxWorkers   = 4
)

// AuthState is the outcome of RequestAuthorization.
type AuthState int32

const (
	AuthUnknown AuthState = iota
	AuthGranted
	AuthDenied
)

func (s AuthState) String() string {
	switch s {
	case AuthGranted:
		return "granted"
	case AuthDenied:
		return "denied"
	}
	return "unknown"
}

// Option configures a Center.
type Option func(*Center)

// WithLogger sets the logger for dispatcher and authorization messages.
func WithLogger(logger *log.Logger) Option {
	return func(c *Center) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEnabled turns delivery on or off. A disabled center still records
// pending reminders but is never authorized.
func WithEnabled(enabled bool) Option {
	return func(c *Center) { c.enabled = enabled }
}

// WithPollInterval sets how often Run checks for due reminders.
func WithPollInterval(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.poll = d
		}
	}
}

// WithGrace sets how late a reminder may still be delivered.
func WithGrace(d time.Duration) Option {
	return func(c *Center) {
		if d >= 0 {
			c.grace = d
		}
	}
}

// WithMaxWorkers bounds concurrent deliveries. 0 means unbounded.
func WithMaxWorkers(n int) Option {
	return func(c *Center) {
		if n >= 0 {
			c.maxWorkers = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Center) {
		if now != nil {
			c.now = now
		}
	}
}

// Center owns the pending reminder set and the dispatcher.
type Center struct {
	store      kv.Store
	deliverer  Deliverer
	logger     *log.Logger
	enabled    bool
	poll       time.Duration
	grace      time.Duration
	maxWorkers int
	now        func() time.Time

	mu sync.Mutex // guards read-modify-write of the pending blob

	auth     atomic.Int32
	authOnce sync.Once
	authDone chan struct{}
}

// NewCenter returns a Center that keeps pending reminders in store and
// delivers them through d.
func NewCenter(store kv.Store, d Deliverer, opts ...Option) *Center {
	c := &Center{
		store:      store,
		deliverer:  d,
		logger:     log.New(io.Discard),
		enabled:    true,
		poll:       DefaultPollInterval,
		grace:      DefaultGrace,
		maxWorkers: DefaultMaxWorkers,
		now:        time.Now,
		authDone:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Schedule records a reminder for id at fireAt, truncated to the minute.
// An existing reminder with the same id is replaced.
func (c *Center) Schedule(ctx context.Context, id, title, body string, fireAt time.Time) error {
	if id == "" {
		return errors.New("schedule reminder: empty id")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	pending, err := c.load(ctx)
	if err != nil {
		return fmt.Errorf("schedule reminder %s: %w", id, err)
	}
	pending, _ = removeID(pending, id)
	pending = append(pending, Request{
		ID:     id,
		Title:  title,
		Body:   body,
		FireAt: TruncateToMinute(fireAt),
	})
	sortByFireAt(pending)
	if err := c.save(ctx, pending); err != nil {
		return fmt.Errorf("schedule reminder %s: %w", id, err)
	}
	c.logger.Debug("reminder scheduled", "task_id", id, "fire_at", TruncateToMinute(fireAt).Format(time.RFC3339))
	return nil
}

// Cancel removes the pending reminder for id, if any.
func (c *Center) Cancel(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending, err := c.load(ctx)
	if err != nil {
		return fmt.Errorf("cancel reminder %s: %w", id, err)
	}
	pending, removed := removeID(pending, id)
	if !removed {
		return nil
	}
	if err := c.save(ctx, pending); err != nil {
		return fmt.Errorf("cancel reminder %s: %w", id, err)
	}
	c.logger.Debug("reminder canceled", "task_id", id)
	return nil
}

// Pending returns the pending reminders ordered by fire time.
func (c *Center) Pending(ctx context.Context) ([]Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// RequestAuthorization checks, once and in the background, whether reminders
// can be delivered. It never blocks and reports nothing; the outcome is
// available from Authorization.
func (c *Center) RequestAuthorization(ctx context.Context) {
	c.authOnce.Do(func() {
		go func() {
			defer close(c.authDone)
			state, err := c.authorize(ctx)
			c.auth.Store(int32(state))
			if err != nil {
				c.logger.Info("notifications unavailable", "err", err)
				return
			}
			c.logger.Debug("notifications authorized")
		}()
	})
}

func (c *Center) authorize(ctx context.Context) (AuthState, error) {
	if !c.enabled {
		return AuthDenied, errors.New("notifications disabled in config")
	}
	if c.deliverer == nil {
		return AuthDenied, errors.New("no deliverer")
	}
	if a, ok := c.deliverer.(Authorizer); ok {
		if err := a.Authorize(ctx); err != nil {
			return AuthDenied, err
		}
	}
	return AuthGranted, nil
}

// Authorization returns the current authorization state.
func (c *Center) Authorization() AuthState {
	return AuthState(c.auth.Load())
}

// AuthorizationDone is closed once RequestAuthorization has finished.
func (c *Center) AuthorizationDone() <-chan struct{} {
	return c.authDone
}

// Run requests authorization and then dispatches due reminders every poll
// interval until ctx is done.
func (c *Center) Run(ctx context.Context) error {
	c.RequestAuthorization(ctx)

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	authDone := c.authDone
	for {
		if _, err := c.Dispatch(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn("reminder dispatch failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-authDone:
			// Dispatch right away once authorization settles.
			authDone = nil
		}
	}
}

// Dispatch performs one dispatcher pass and returns how many reminders were
// delivered. Due reminders are removed from the pending set before delivery.
// Reminders more than the grace period late, or due while authorization is
// denied, expire without being delivered. While authorization is still
// unknown nothing is touched.
func (c *Center) Dispatch(ctx context.Context) (int, error) {
	state := c.Authorization()
	if state == AuthUnknown {
		return 0, nil
	}

	due, expired, err := c.takeDue(ctx, c.now(), state == AuthGranted)
	if err != nil {
		return 0, err
	}
	for _, r := range expired {
		c.logger.Debug("reminder expired", "task_id", r.ID, "fire_at", r.FireAt.Format(time.RFC3339))
	}
	if len(due) == 0 {
		return 0, nil
	}

	pool := parallel.NewWorkerPool[Request](ctx, c.maxWorkers, false)
	for _, r := range due {
		pool.Submit(r.ID, func(ctx context.Context) (Request, error) {
			return r, c.deliverer.Deliver(ctx, r)
		})
	}
	results, errs := pool.Wait()

	delivered := 0
	for _, res := range results {
		if res.Err == nil {
			delivered++
			c.logger.Info("reminder delivered", "task_id", res.ID, "duration", res.Duration)
		}
	}
	return delivered, errors.Join(errs...)
}

func (c *Center) takeDue(ctx context.Context, now time.Time, deliver bool) (due, expired []Request, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending, err := c.load(ctx)
	if err != nil {
		return nil, nil, err
	}

	keep := pending[:0:0]
	for _, r := range pending {
		switch {
		case r.FireAt.After(now):
			keep = append(keep, r)
		case deliver && now.Sub(r.FireAt) <= c.grace:
			due = append(due, r)
		default:
			expired = append(expired, r)
		}
	}
	if len(keep) == len(pending) {
		return nil, nil, nil
	}
	if err := c.save(ctx, keep); err != nil {
		return nil, nil, err
	}
	return due, expired, nil
}

func (c *Center) load(ctx context.Context) ([]Request, error) {
	data, err := c.store.Get(ctx, PendingKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []Request{}, nil
		}
		return nil, err
	}
	return decodeRequests(data)
}

func (c *Center) save(ctx context.Context, reqs []Request) error {
	data, err := encodeRequests(reqs)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, PendingKey, data)
}
