// Package stock defines core types shared across subsystems.
package stock

import (
	"context"
	"time"
)

// Status is the tri-state outcome of a single availability check.
type Status int

// Status values. Indeterminate means the check could not establish either
// availability state and must not influence tracked status.
const (
	StatusIndeterminate Status = iota
	StatusInStock
	StatusOutOfStock
)

// String renders the status for logs and metrics labels.
func (s Status) String() string {
	switch s {
	case StatusInStock:
		return "in_stock"
	case StatusOutOfStock:
		return "out_of_stock"
	default:
		return "indeterminate"
	}
}

// Verdict pairs a Status with the human-readable reason it was reached.
type Verdict struct {
	Status Status
	Reason string
}

// InStock builds an in-stock verdict.
func InStock(reason string) Verdict {
	return Verdict{Status: StatusInStock, Reason: reason}
}

// OutOfStock builds an out-of-stock verdict.
func OutOfStock(reason string) Verdict {
	return Verdict{Status: StatusOutOfStock, Reason: reason}
}

// Indeterminate builds a verdict for a check that failed to decide.
func Indeterminate(reason string) Verdict {
	return Verdict{Status: StatusIndeterminate, Reason: reason}
}

// Conclusive reports whether the verdict carries a real availability signal.
func (v Verdict) Conclusive() bool {
	return v.Status == StatusInStock || v.Status == StatusOutOfStock
}

// Selectors are the DOM hooks used to dismiss the pincode overlay. Zero
// values fall back to the site defaults.
type Selectors struct {
	Modal  string `mapstructure:"modal" json:"modal"`
	Input  string `mapstructure:"input" json:"input"`
	Submit string `mapstructure:"submit_button" json:"submit_button"`
}

// Default overlay selectors for the monitored storefront.
const (
	DefaultModalSelector  = "#locationWidgetModal"
	DefaultInputSelector  = "#search"
	DefaultSubmitSelector = ".btn-success"
)

// WithDefaults fills unset selectors.
func (s Selectors) WithDefaults() Selectors {
	if s.Modal == "" {
		s.Modal = DefaultModalSelector
	}
	if s.Input == "" {
		s.Input = DefaultInputSelector
	}
	if s.Submit == "" {
		s.Submit = DefaultSubmitSelector
	}
	return s
}

// Product is one monitored page, immutable for the process lifetime.
type Product struct {
	Name       string    `mapstructure:"name" json:"name"`
	URL        string    `mapstructure:"url" json:"url"`
	UseBrowser bool      `mapstructure:"use_browser" json:"use_browser"`
	Pincode    string    `mapstructure:"pincode" json:"pincode"`
	Selectors  Selectors `mapstructure:"pincode_selectors" json:"pincode_selectors"`
}

// Checker performs one availability check for a product. Implementations
// never return an error to the caller: every failure mode collapses into an
// Indeterminate verdict carrying the reason.
type Checker interface {
	Check(ctx context.Context, product Product) Verdict
}

// Event describes one notify-worthy availability observation.
type Event struct {
	Product   Product
	Verdict   Verdict
	CheckedAt time.Time
}
