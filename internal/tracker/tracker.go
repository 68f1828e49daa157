// Package tracker keeps per-product last-known availability and decides
// which observations warrant a notification.
package tracker

import "github.com/SatyamPundir/product-stock-tracker/internal/stock"

// Tracker records the last conclusive verdict per product. The zero state
// for a product is "unknown"; Indeterminate verdicts never touch it. It is
// not safe for concurrent use and does not need to be: the monitor has a
// single thread of control.
type Tracker struct {
	last map[string]stock.Status
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{last: make(map[string]stock.Status)}
}

// Observe records a verdict and reports whether it is notify-worthy.
// Notifications fire only on transitions into InStock from unknown or
// OutOfStock; repeated InStock observations stay silent until the product
// has gone out of stock again.
func (t *Tracker) Observe(name string, v stock.Verdict) bool {
	if !v.Conclusive() {
		return false
	}

	prev, seen := t.last[name]
	t.last[name] = v.Status

	if v.Status != stock.StatusInStock {
		return false
	}
	return !seen || prev == stock.StatusOutOfStock
}

// Last returns the tracked status for a product and whether one exists.
func (t *Tracker) Last(name string) (stock.Status, bool) {
	s, ok := t.last[name]
	return s, ok
}
