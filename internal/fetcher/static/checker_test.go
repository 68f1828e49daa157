package staticfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/SatyamPundir/product-stock-tracker/internal/classify"
	"github.com/SatyamPundir/product-stock-tracker/internal/stock"
)

func newTestChecker(t *testing.T) *Checker {
	t.Helper()
	return New(Config{UserAgent: "test-agent/1.0", Timeout: 5 * time.Second}, zaptest.NewLogger(t))
}

func TestCheckSoldOutPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><div class="alert alert-danger mt-3">Sold Out</div></body></html>`)) //nolint:errcheck
	}))
	defer srv.Close()

	v := newTestChecker(t).Check(context.Background(), stock.Product{Name: "Widget", URL: srv.URL})
	assert.Equal(t, stock.StatusOutOfStock, v.Status)
	assert.Equal(t, classify.ReasonSoldOutAlert, v.Reason)
}

func TestCheckAvailablePage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><button>Add to Cart</button></body></html>`)) //nolint:errcheck
	}))
	defer srv.Close()

	v := newTestChecker(t).Check(context.Background(), stock.Product{Name: "Widget", URL: srv.URL})
	assert.Equal(t, stock.StatusInStock, v.Status)
	assert.Equal(t, classify.ReasonNoAlert, v.Reason)
}

func TestCheckSendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	var (
		mu               sync.Mutex
		gotUA, gotAccept string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		mu.Unlock()
		w.Write([]byte("<html></html>")) //nolint:errcheck
	}))
	defer srv.Close()

	newTestChecker(t).Check(context.Background(), stock.Product{Name: "Widget", URL: srv.URL})
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "test-agent/1.0", gotUA)
	assert.Contains(t, gotAccept, "text/html")
}

func TestCheckServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	v := newTestChecker(t).Check(context.Background(), stock.Product{Name: "Widget", URL: srv.URL})
	assert.Equal(t, stock.StatusIndeterminate, v.Status)
	assert.NotEmpty(t, v.Reason)
}

func TestCheckUnreachableHost(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // deliberately dead

	v := newTestChecker(t).Check(context.Background(), stock.Product{Name: "Widget", URL: srv.URL})
	assert.Equal(t, stock.StatusIndeterminate, v.Status)
}

func TestCheckRepeatedVisits(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte("<html></html>")) //nolint:errcheck
	}))
	defer srv.Close()

	checker := newTestChecker(t)
	for i := 0; i < 3; i++ {
		v := checker.Check(context.Background(), stock.Product{Name: "Widget", URL: srv.URL})
		require.Equal(t, stock.StatusInStock, v.Status)
	}
	assert.Equal(t, int32(3), hits.Load())
}
