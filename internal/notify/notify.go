// Package notify delivers availability alerts over independent channels.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/SatyamPundir/product-stock-tracker/internal/metrics"
	"github.com/SatyamPundir/product-stock-tracker/internal/stock"
)

// Channel is one delivery mechanism. Sends are best-effort: a returned error
// is logged by the dispatcher and never affects other channels.
type Channel interface {
	Name() string
	// Enabled reports whether the channel is configured at all. Disabled
	// channels are skipped silently.
	Enabled() bool
	Send(ctx context.Context, event stock.Event) error
}

// Dispatcher fans one event out to every enabled channel.
type Dispatcher struct {
	channels []Channel
	logger   *zap.Logger
}

// NewDispatcher builds a Dispatcher over the given channels.
func NewDispatcher(logger *zap.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels, logger: logger}
}

// Notify sends the event on every enabled channel and returns how many
// sends succeeded. Channel failures are isolated from each other.
func (d *Dispatcher) Notify(ctx context.Context, event stock.Event) int {
	sent := 0
	for _, ch := range d.channels {
		if !ch.Enabled() {
			continue
		}
		if err := ch.Send(ctx, event); err != nil {
			metrics.RecordNotification(ch.Name(), false)
			d.logger.Error("notification failed",
				zap.String("channel", ch.Name()),
				zap.String("product", event.Product.Name),
				zap.Error(err))
			continue
		}
		metrics.RecordNotification(ch.Name(), true)
		d.logger.Info("notification sent",
			zap.String("channel", ch.Name()),
			zap.String("product", event.Product.Name))
		sent++
	}
	return sent
}
