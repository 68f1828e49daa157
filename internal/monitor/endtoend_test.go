package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	staticfetch "github.com/SatyamPundir/product-stock-tracker/internal/fetcher/static"
	"github.com/SatyamPundir/product-stock-tracker/internal/stock"
)

// These tests run the real static fetch and classification path against a
// local server, with only the notification channels stubbed.

func newStaticRunner(t *testing.T, notifier Notifier, url string) *Runner {
	t.Helper()
	checker := staticfetch.New(staticfetch.Config{UserAgent: "stocktracker-test/1.0"}, zaptest.NewLogger(t))
	return New(Options{
		Products:     []stock.Product{{Name: "Widget", URL: url}},
		Static:       checker,
		Dynamic:      checker,
		Notifier:     notifier,
		Interval:     time.Millisecond,
		ProductPause: time.Millisecond,
		Logger:       zaptest.NewLogger(t),
	})
}

func TestSingleCheckSoldOutPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><div class="alert alert-danger mt-3">Sold Out</div></body></html>`)) //nolint:errcheck
	}))
	defer srv.Close()

	notifier := &recordingNotifier{}
	require.NoError(t, newStaticRunner(t, notifier, srv.URL).RunOnce(context.Background()))
	assert.Zero(t, notifier.count(), "sold-out product must not notify")
}

func TestSingleCheckAvailablePage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><h1>Widget</h1><button>Add to Cart</button></body></html>`)) //nolint:errcheck
	}))
	defer srv.Close()

	notifier := &recordingNotifier{}
	require.NoError(t, newStaticRunner(t, notifier, srv.URL).RunOnce(context.Background()))

	require.Equal(t, 1, notifier.count())
	event := notifier.events[0]
	assert.Equal(t, "Widget", event.Product.Name)
	assert.Equal(t, stock.StatusInStock, event.Verdict.Status)
	assert.Contains(t, event.Verdict.Reason, "assuming product is in stock")
}

// TestContinuousRestockFlow flips the page from sold out to available and
// expects the alert exactly when the transition happens.
func TestContinuousRestockFlow(t *testing.T) {
	t.Parallel()

	var soldOut atomic.Bool
	soldOut.Store(true)
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		if soldOut.Load() {
			w.Write([]byte(`<div class="alert alert-danger mt-3">Sold Out</div>`)) //nolint:errcheck
			return
		}
		w.Write([]byte(`<button>Add to Cart</button>`)) //nolint:errcheck
	}))
	defer srv.Close()

	notifier := &recordingNotifier{}
	runner := newStaticRunner(t, notifier, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	require.Eventually(t, func() bool { return hits.Load() >= 2 }, 5*time.Second, time.Millisecond)
	assert.Zero(t, notifier.count())

	soldOut.Store(false)
	require.Eventually(t, func() bool { return notifier.count() == 1 }, 5*time.Second, time.Millisecond)

	// Further in-stock checks stay silent.
	start := hits.Load()
	require.Eventually(t, func() bool { return hits.Load() >= start+3 }, 5*time.Second, time.Millisecond)
	assert.Equal(t, 1, notifier.count())

	cancel()
	<-done
}
