package ui

import (
	"context"
	"errors"

	"github.com/nibzard/taskpad/internal/notify"
)

// Banners relays delivered reminders to a running TUI, which shows them
// as an in-app banner.
type Banners chan notify.Request

// NewBanners returns a Banners with room for a few undisplayed reminders.
func NewBanners() Banners {
	return make(Banners, 8)
}

// Deliver queues req for display. It never blocks on a busy TUI.
func (b Banners) Deliver(ctx context.Context, req notify.Request) error {
	select {
	case b <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.New("banner queue full")
	}
}
