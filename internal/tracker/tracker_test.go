package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SatyamPundir/product-stock-tracker/internal/stock"
)

func TestFirstInStockNotifies(t *testing.T) {
	t.Parallel()

	tr := New()
	assert.True(t, tr.Observe("widget", stock.InStock("available")))
}

func TestRepeatedInStockNotifiesOnce(t *testing.T) {
	t.Parallel()

	tr := New()
	assert.True(t, tr.Observe("widget", stock.InStock("available")))
	assert.False(t, tr.Observe("widget", stock.InStock("available")))
	assert.False(t, tr.Observe("widget", stock.InStock("available")))
}

func TestRestockNotifiesAgain(t *testing.T) {
	t.Parallel()

	tr := New()
	assert.True(t, tr.Observe("widget", stock.InStock("available")))
	assert.False(t, tr.Observe("widget", stock.OutOfStock("sold out")))
	assert.True(t, tr.Observe("widget", stock.InStock("available")))
}

func TestOutOfStockNeverNotifies(t *testing.T) {
	t.Parallel()

	tr := New()
	assert.False(t, tr.Observe("widget", stock.OutOfStock("sold out")))
	last, ok := tr.Last("widget")
	assert.True(t, ok)
	assert.Equal(t, stock.StatusOutOfStock, last)
}

func TestIndeterminateLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	tr := New()

	// Before any conclusive observation.
	assert.False(t, tr.Observe("widget", stock.Indeterminate("timeout")))
	_, ok := tr.Last("widget")
	assert.False(t, ok)

	// After one: the tracked state survives and dedup still applies.
	assert.True(t, tr.Observe("widget", stock.InStock("available")))
	assert.False(t, tr.Observe("widget", stock.Indeterminate("timeout")))
	last, ok := tr.Last("widget")
	assert.True(t, ok)
	assert.Equal(t, stock.StatusInStock, last)
	assert.False(t, tr.Observe("widget", stock.InStock("available")))
}

func TestProductsTrackedIndependently(t *testing.T) {
	t.Parallel()

	tr := New()
	assert.True(t, tr.Observe("widget", stock.InStock("available")))
	assert.True(t, tr.Observe("gadget", stock.InStock("available")))
	assert.False(t, tr.Observe("widget", stock.InStock("available")))
}
