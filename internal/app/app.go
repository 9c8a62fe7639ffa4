// Package app wires configuration into a running task store: the kv
// backend, the task repository, the reminder center and the optional
// Redis change feed.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/nibzard/taskpad/internal/config"
	"github.com/nibzard/taskpad/internal/datadir"
	"github.com/nibzard/taskpad/internal/feed"
	"github.com/nibzard/taskpad/internal/kv"
	"github.com/nibzard/taskpad/internal/notify"
	"github.com/nibzard/taskpad/internal/persistence"
	"github.com/nibzard/taskpad/internal/store"
)

// App holds the components built from a Config.
type App struct {
	Config      *config.Config
	Logger      *log.Logger
	KV          kv.Store
	Repository  *persistence.Repository
	Preferences *persistence.Preferences
	Center      *notify.Center
	Store       *store.Store
	// Feed is nil unless a feed channel is configured and Redis is reachable.
	Feed *feed.Publisher

	closers []func() error
}

type settings struct {
	logger     *log.Logger
	kv         kv.Store
	deliverers []notify.Deliverer
	centerOpts []notify.Option
	storeOpts  []store.Option
}

// Option customizes Open.
type Option func(*settings)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *log.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithKV uses an already open kv store instead of opening the configured
// backend. Open does not take ownership of it.
func WithKV(store kv.Store) Option {
	return func(s *settings) { s.kv = store }
}

// WithDeliverer adds a reminder deliverer next to the configured command.
func WithDeliverer(d notify.Deliverer) Option {
	return func(s *settings) { s.deliverers = append(s.deliverers, d) }
}

// WithCenterOptions passes extra options to the reminder center.
func WithCenterOptions(opts ...notify.Option) Option {
	return func(s *settings) { s.centerOpts = append(s.centerOpts, opts...) }
}

// WithStoreOptions passes extra options to the task store.
func WithStoreOptions(opts ...store.Option) Option {
	return func(s *settings) { s.storeOpts = append(s.storeOpts, opts...) }
}

// Open builds an App from cfg. The task list is loaded before Open returns.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	a := &App{Config: cfg, Logger: s.logger}

	if s.kv != nil {
		a.KV = s.kv
	} else {
		kvStore, err := OpenKV(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.KV = kvStore
		a.closers = append(a.closers, kvStore.Close)
	}

	a.Repository = persistence.NewRepository(a.KV)
	a.Preferences = persistence.NewPreferences(a.KV)
	a.Center = newCenter(cfg, a.KV, s)

	sortOpt, err := store.ParseSortOption(cfg.Sort)
	if err != nil {
		a.Close()
		return nil, err
	}
	storeOpts := append([]store.Option{
		store.WithLogger(s.logger),
		store.WithSort(sortOpt),
	}, s.storeOpts...)
	a.Store = store.New(ctx, a.Repository, a.Center, storeOpts...)

	if cfg.FeedChannel != "" {
		a.attachFeed(ctx)
	}

	s.logger.Debug("store ready", "backend", cfg.Backend, "tasks", len(a.Store.Tasks()))
	return a, nil
}

func newCenter(cfg *config.Config, store kv.Store, s settings) *notify.Center {
	var deliverers []notify.Deliverer
	if cfg.NotifyCommand != "" {
		deliverers = append(deliverers, notify.NewCommandDeliverer(cfg.NotifyCommand))
	}
	deliverers = append(deliverers, s.deliverers...)

	var d notify.Deliverer
	switch len(deliverers) {
	case 0:
		d = notify.LogDeliverer{Logger: s.logger}
	case 1:
		d = deliverers[0]
	default:
		d = notify.Tee(deliverers...)
	}

	opts := append([]notify.Option{
		notify.WithLogger(s.logger),
		notify.WithEnabled(cfg.Notifications),
		notify.WithPollInterval(time.Duration(cfg.ReminderPollSeconds) * time.Second),
		notify.WithGrace(time.Duration(cfg.ReminderGraceSeconds) * time.Second),
		notify.WithMaxWorkers(cfg.MaxNotifyWorkers),
	}, s.centerOpts...)
	return notify.NewCenter(store, d, opts...)
}

// attachFeed publishes every store change on the configured channel. An
// unreachable Redis disables the feed with a warning.
func (a *App) attachFeed(ctx context.Context) {
	client := a.redisClient()
	if client == nil {
		c, err := OpenRedisClient(ctx, a.Config)
		if err != nil {
			a.Logger.Warn("change feed disabled", "channel", a.Config.FeedChannel, "err", err)
			return
		}
		client = c
		a.closers = append(a.closers, c.Close)
	}
	a.Feed = feed.NewPublisher(client, a.Config.FeedChannel, a.Logger)
	a.Store.Subscribe(a.Feed.Observer(ctx))
}

func (a *App) redisClient() *redis.Client {
	if r, ok := a.KV.(*kv.RedisStore); ok {
		return r.Client()
	}
	return nil
}

// Close releases everything Open opened, most recent first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenKV opens the backend named by cfg.Backend.
func OpenKV(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	switch cfg.Backend {
	case kv.BackendFile:
		s, err := kv.NewFile(datadir.StorePath(cfg.DataDir))
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return s, nil
	case kv.BackendSQLite:
		s, err := kv.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case kv.BackendRedis:
		s, err := kv.OpenRedis(ctx, kv.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case kv.BackendMemory:
		return kv.NewMemory(), nil
	}
	return nil, kv.ValidateBackend(cfg.Backend)
}

// OpenRedisClient connects to the configured Redis server and pings it.
func OpenRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}
