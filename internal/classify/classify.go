// Package classify inspects fetched page content for availability signals.
//
// The monitored storefront announces unavailability with an explicit
// bootstrap danger alert; the absence of that alert is the in-stock signal.
// The classifier is deliberately optimistic: a missing alert means
// available, because the negative signal is reliable and explicit while a
// missed sale is the expensive failure mode.
package classify

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SatyamPundir/product-stock-tracker/internal/stock"
)

// Alert selectors. Static pages carry the mt-3 spacing class on the alert;
// the rendered DOM is matched more loosely.
const (
	staticAlertSelector   = "div.alert.alert-danger.mt-3"
	renderedAlertSelector = "div.alert.alert-danger"
)

const soldOutMarker = "sold out"

// Verdict reasons reused by tests and notifications.
const (
	ReasonSoldOutAlert = "Explicit 'Sold Out' alert found"
	ReasonNoAlert      = "No 'Sold Out' alert — assuming product is in stock"
	ReasonUnconfirmed  = "Unable to determine stock status from alert element"
)

// Static classifies raw HTML from a plain HTTP fetch. An alert element whose
// text lacks the sold-out marker is treated the same as no alert at all.
func Static(html string) stock.Verdict {
	doc, err := parse(html)
	if err != nil {
		return stock.Indeterminate(err.Error())
	}

	alert := doc.Find(staticAlertSelector).First()
	if alert.Length() > 0 && containsSoldOut(alert.Text()) {
		return stock.OutOfStock(ReasonSoldOutAlert)
	}
	return stock.InStock(ReasonNoAlert)
}

// Rendered classifies a browser-rendered DOM snapshot. Unlike Static, an
// alert element that exists but does not read "sold out" is classified
// OutOfStock: on the rendered page the alert only appears for unavailable
// products, so an unreadable alert is resolved conservatively.
func Rendered(html string) stock.Verdict {
	doc, err := parse(html)
	if err != nil {
		return stock.Indeterminate(err.Error())
	}

	alert := doc.Find(renderedAlertSelector).First()
	if alert.Length() == 0 {
		return stock.InStock(ReasonNoAlert)
	}
	if containsSoldOut(alert.Text()) {
		return stock.OutOfStock(ReasonSoldOutAlert)
	}
	return stock.OutOfStock(ReasonUnconfirmed)
}

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

func containsSoldOut(text string) bool {
	return strings.Contains(strings.ToLower(text), soldOutMarker)
}
