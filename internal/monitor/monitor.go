// Package monitor drives the periodic availability check cycle.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/SatyamPundir/product-stock-tracker/internal/metrics"
	"github.com/SatyamPundir/product-stock-tracker/internal/stock"
	"github.com/SatyamPundir/product-stock-tracker/internal/tracker"
)

// Timing constants of the check cycle. The cooldown is deliberately flat:
// no backoff growth and no retry ceiling.
const (
	productPause  = 2 * time.Second
	errorCooldown = 60 * time.Second
)

// Notifier receives notify-worthy events. Implemented by notify.Dispatcher.
type Notifier interface {
	Notify(ctx context.Context, event stock.Event) int
}

// Options wires a Runner.
type Options struct {
	Products []stock.Product
	Static   stock.Checker
	Dynamic  stock.Checker
	Notifier Notifier
	Interval time.Duration
	// ProductPause overrides the fixed delay between products; zero keeps
	// the default.
	ProductPause time.Duration
	Logger       *zap.Logger
	// Cleanup runs when a monitoring run finishes for any reason; used to
	// release the shared browser session.
	Cleanup func()
}

// Runner executes check passes over the product list, sequentially and in
// declared order.
type Runner struct {
	opts     Options
	tracker  *tracker.Tracker
	pace     *rate.Limiter
	cooldown time.Duration
	passFn   func(ctx context.Context, useTracker bool) error
}

// New builds a Runner.
func New(opts Options) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = 300 * time.Second
	}
	if opts.ProductPause <= 0 {
		opts.ProductPause = productPause
	}
	r := &Runner{
		opts:     opts,
		tracker:  tracker.New(),
		pace:     rate.NewLimiter(rate.Every(opts.ProductPause), 1),
		cooldown: errorCooldown,
	}
	r.passFn = r.pass
	return r
}

// RunOnce performs a single check pass and terminates. There is no tracked
// history: every in-stock verdict is notify-worthy.
func (r *Runner) RunOnce(ctx context.Context) error {
	defer r.cleanup()
	r.opts.Logger.Info("starting single stock check")
	return r.passFn(ctx, false)
}

// Run checks continuously until the context is canceled, consulting the
// status tracker to notify only on transitions into stock. Unexpected
// errors during an iteration trigger a fixed cooldown, never termination.
func (r *Runner) Run(ctx context.Context) error {
	defer r.cleanup()
	r.opts.Logger.Info("starting continuous stock monitor",
		zap.Duration("interval", r.opts.Interval))

	for {
		err := r.passFn(ctx, true)
		if ctx.Err() != nil {
			r.opts.Logger.Info("monitor stopped")
			return ctx.Err()
		}
		if err != nil {
			r.opts.Logger.Error("monitor pass failed, cooling down",
				zap.Duration("cooldown", r.cooldown),
				zap.Error(err))
			if !sleepCtx(ctx, r.cooldown) {
				return ctx.Err()
			}
			continue
		}

		r.opts.Logger.Info("waiting before next check",
			zap.Duration("interval", r.opts.Interval))
		if !sleepCtx(ctx, r.opts.Interval) {
			r.opts.Logger.Info("monitor stopped")
			return ctx.Err()
		}
	}
}

// pass iterates the product list once.
func (r *Runner) pass(ctx context.Context, useTracker bool) error {
	log := r.opts.Logger.With(zap.String("cycle_id", uuid.NewString()))

	for _, product := range r.opts.Products {
		if err := r.pace.Wait(ctx); err != nil {
			return fmt.Errorf("pacing wait: %w", err)
		}
		r.checkProduct(ctx, log, product, useTracker)
	}

	metrics.RecordCycle()
	return nil
}

// checkProduct runs one check and dispatches notifications. Panics are
// contained so one product can never abort the rest of the pass.
func (r *Runner) checkProduct(ctx context.Context, log *zap.Logger, product stock.Product, useTracker bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("product check panicked",
				zap.String("product", product.Name),
				zap.Any("panic", rec))
		}
	}()

	log.Info("checking product", zap.String("product", product.Name))

	checker, strategy := r.checkerFor(product)
	start := time.Now()
	verdict := checker.Check(ctx, product)
	metrics.RecordCheck(product.Name, verdict.Status.String(), strategy, time.Since(start))

	switch verdict.Status {
	case stock.StatusIndeterminate:
		log.Warn("check inconclusive",
			zap.String("product", product.Name),
			zap.String("reason", verdict.Reason))

	case stock.StatusInStock:
		notifyWorthy := true
		if useTracker {
			notifyWorthy = r.tracker.Observe(product.Name, verdict)
		}
		if !notifyWorthy {
			log.Info("product still in stock, already alerted",
				zap.String("product", product.Name))
			return
		}
		log.Info("product is in stock",
			zap.String("product", product.Name),
			zap.String("reason", verdict.Reason))
		r.opts.Notifier.Notify(ctx, stock.Event{
			Product:   product,
			Verdict:   verdict,
			CheckedAt: time.Now(),
		})

	case stock.StatusOutOfStock:
		if useTracker {
			r.tracker.Observe(product.Name, verdict)
		}
		log.Info("product is out of stock",
			zap.String("product", product.Name),
			zap.String("reason", verdict.Reason))
	}
}

func (r *Runner) checkerFor(product stock.Product) (stock.Checker, string) {
	if product.UseBrowser {
		return r.opts.Dynamic, "browser"
	}
	return r.opts.Static, "static"
}

func (r *Runner) cleanup() {
	if r.opts.Cleanup != nil {
		r.opts.Cleanup()
	}
}

// sleepCtx pauses for d, returning false when the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
