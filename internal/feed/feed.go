// Package feed publishes store changes on a Redis pub/sub channel and lets
// other processes follow them.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/nibzard/taskpad/internal/store"
	"github.com/nibzard/taskpad/internal/task"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "taskpad:changes"

// Message is the payload published after every store change.
type Message struct {
	Tasks  []task.Task    `json:"tasks"`
	Filter *task.Category `json:"filter"`
	Sort   string         `json:"sort"`
}

// FromSnapshot builds a Message from a store snapshot.
func FromSnapshot(snap store.Snapshot) Message {
	tasks := snap.Tasks
	if tasks == nil {
		tasks = []task.Task{}
	}
	return Message{Tasks: tasks, Filter: snap.Filter, Sort: snap.Sort.String()}
}

// Publisher sends Messages to one channel.
type Publisher struct {
	client  *redis.Client
	channel string
	logger  *log.Logger
}

// NewPublisher returns a Publisher for channel. A nil logger discards.
func NewPublisher(client *redis.Client, channel string, logger *log.Logger) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Publisher{client: client, channel: channel, logger: logger}
}

// Channel returns the channel name.
func (p *Publisher) Channel() string {
	return p.channel
}

// Publish sends msg.
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal feed message: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}
	return nil
}

// Observer returns a store observer that publishes every snapshot. Publish
// failures are logged and dropped.
func (p *Publisher) Observer(ctx context.Context) func(store.Snapshot) {
	return func(snap store.Snapshot) {
		if err := p.Publish(ctx, FromSnapshot(snap)); err != nil {
			p.logger.Warn("feed publish failed", "channel", p.channel, "err", err)
		}
	}
}

// Subscribe delivers every Message on channel to handle until ctx is done.
// Malformed payloads are logged and skipped. If the subscription drops it is
// re-established after a second.
func Subscribe(ctx context.Context, client *redis.Client, channel string, logger *log.Logger, handle func(Message)) error {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	for {
		if err := listen(ctx, client, channel, logger, handle); err != nil && ctx.Err() == nil {
			logger.Warn("feed subscription failed", "channel", channel, "err", err)
		}
		if ctx.Err() != nil {
			return nil
		}
		logger.Info("feed subscription closed, reconnecting", "channel", channel)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
		}
	}
}

func listen(ctx context.Context, client *redis.Client, channel string, logger *log.Logger, handle func(Message)) error {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	// Wait for the subscription confirmation.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("channel closed")
			}
			var m Message
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				logger.Warn("unable to parse feed message", "err", err)
				continue
			}
			handle(m)
		}
	}
}
