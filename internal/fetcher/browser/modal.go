package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/SatyamPundir/product-stock-tracker/internal/metrics"
	"github.com/SatyamPundir/product-stock-tracker/internal/stock"
)

// Overlay interaction timeouts. Presence waits that time out are the normal
// steady state once a pincode has been accepted; only interaction failures
// after the overlay is confirmed present count as errors.
const (
	modalPresenceWait = 5 * time.Second
	inputReadyWait    = 5 * time.Second
	dropdownMatchWait = 10 * time.Second
	submitWait        = 5 * time.Second
	modalDismissWait  = 10 * time.Second
	postDismissSettle = 2 * time.Second
)

// resolveModal clears the location/pincode overlay that blocks stock
// information on some product pages. A product without a pincode needs no
// handling. A nil return means classification can proceed.
func resolveModal(tabCtx context.Context, product stock.Product, logger *zap.Logger) error {
	if product.Pincode == "" {
		return nil
	}
	sel := product.Selectors.WithDefaults()

	present, err := waitForModal(tabCtx, sel.Modal)
	if err != nil {
		metrics.RecordModal("error")
		return err
	}
	if !present {
		logger.Info("no active pincode modal found", zap.String("product", product.Name))
		metrics.RecordModal("absent")
		return nil
	}
	logger.Info("pincode modal detected", zap.String("product", product.Name))

	active, err := awaitInputReady(tabCtx, sel.Input)
	if err != nil {
		metrics.RecordModal("error")
		return err
	}
	if !active {
		// A visible overlay whose input never activates is a stale or
		// decorative one; classification can proceed without it.
		logger.Info("no active pincode modal found", zap.String("product", product.Name))
		metrics.RecordModal("absent")
		return nil
	}

	if err := enterPincode(tabCtx, sel.Input, product.Pincode); err != nil {
		metrics.RecordModal("error")
		return fmt.Errorf("enter pincode: %w", err)
	}
	logger.Info("entered pincode", zap.String("pincode", product.Pincode))

	if err := selectDropdownMatch(tabCtx, product.Pincode); err != nil {
		// Best effort; the storefront often accepts the raw input.
		logger.Warn("pincode dropdown match not found, proceeding without it",
			zap.String("pincode", product.Pincode),
			zap.Error(err))
	}

	if err := submitPincode(tabCtx, sel, logger); err != nil {
		metrics.RecordModal("error")
		return fmt.Errorf("submit pincode: %w", err)
	}

	if err := awaitDismissal(tabCtx, sel.Modal); err != nil {
		metrics.RecordModal("error")
		return fmt.Errorf("modal did not close: %w", err)
	}

	logger.Info("pincode modal handled", zap.String("product", product.Name))
	metrics.RecordModal("dismissed")
	return nil
}

// waitForModal reports whether the overlay became visible within the
// presence window. A timeout is not an error: absence of the modal is the
// expected state after the first successful dismissal.
func waitForModal(tabCtx context.Context, modalSel string) (bool, error) {
	ctx, cancel := context.WithTimeout(tabCtx, modalPresenceWait)
	defer cancel()

	err := chromedp.Run(ctx, chromedp.WaitVisible(modalSel, chromedp.ByQuery))
	return presenceResult(tabCtx, err)
}

// presenceResult interprets the outcome of the visibility wait. A deadline
// hit means the overlay never appeared, which is success, unless the tab
// itself was torn down.
func presenceResult(tabCtx context.Context, err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case tabCtx.Err() != nil:
		return false, fmt.Errorf("wait for modal: %w", tabCtx.Err())
	case errors.Is(err, context.DeadlineExceeded):
		return false, nil
	default:
		return false, fmt.Errorf("wait for modal: %w", err)
	}
}

// awaitInputReady reports whether the overlay's input became interactable.
// Like the container wait, a deadline hit here is a presence check coming
// back negative, not an interaction failure.
func awaitInputReady(tabCtx context.Context, inputSel string) (bool, error) {
	ctx, cancel := context.WithTimeout(tabCtx, inputReadyWait)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.WaitVisible(inputSel, chromedp.ByQuery),
		chromedp.WaitEnabled(inputSel, chromedp.ByQuery),
	)
	return presenceResult(tabCtx, err)
}

// enterPincode fills the confirmed-ready input. Failures here are real
// interaction errors.
func enterPincode(tabCtx context.Context, inputSel, pincode string) error {
	ctx, cancel := context.WithTimeout(tabCtx, inputReadyWait)
	defer cancel()

	return chromedp.Run(ctx,
		chromedp.Clear(inputSel, chromedp.ByQuery),
		chromedp.SendKeys(inputSel, pincode, chromedp.ByQuery),
	)
}

// selectDropdownMatch clicks the suggestion whose visible text equals the
// pincode, polling up to the match window.
func selectDropdownMatch(tabCtx context.Context, pincode string) error {
	ctx, cancel := context.WithTimeout(tabCtx, dropdownMatchWait)
	defer cancel()

	xpath := fmt.Sprintf(`//p[contains(@class, "item-name") and text()=%q]`, pincode)
	return chromedp.Run(ctx, chromedp.Click(xpath, chromedp.BySearch))
}

// submitPincode clicks the configured submit control, falling back to
// committing the input field directly when the control is absent. Click
// errors on a present control are not papered over by the fallback.
func submitPincode(tabCtx context.Context, sel stock.Selectors, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(tabCtx, submitWait)
	defer cancel()

	err := chromedp.Run(ctx, chromedp.Click(sel.Submit, chromedp.ByQuery))
	if err == nil {
		logger.Info("clicked pincode submit button")
		return nil
	}
	if !controlAbsent(err) {
		return err
	}

	fallbackCtx, cancelFallback := context.WithTimeout(tabCtx, submitWait)
	defer cancelFallback()
	if err := chromedp.Run(fallbackCtx, chromedp.SendKeys(sel.Input, kb.Enter, chromedp.ByQuery)); err != nil {
		return err
	}
	logger.Info("pressed enter on pincode input")
	return nil
}

// controlAbsent reports whether a click failed because the node never
// appeared within its wait, as opposed to an interaction error on a node
// that exists. chromedp blocks Click on node lookup, so absence surfaces
// as the wait deadline.
func controlAbsent(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// awaitDismissal waits for the overlay to go away. The storefront sometimes
// hides the node and sometimes removes it from the DOM entirely, and
// chromedp.WaitNotVisible never matches a removed node, so this polls for
// absent-or-hidden instead.
func awaitDismissal(tabCtx context.Context, modalSel string) error {
	ctx, cancel := context.WithTimeout(tabCtx, modalDismissWait+postDismissSettle)
	defer cancel()

	return chromedp.Run(ctx,
		chromedp.Poll(dismissedExpr(modalSel), nil,
			chromedp.WithPollingTimeout(modalDismissWait)),
		// Let any follow-up page update settle before classification.
		chromedp.Sleep(postDismissSettle),
	)
}

// dismissedExpr builds the dismissal predicate: the overlay node is gone
// from the DOM or no longer rendered.
func dismissedExpr(modalSel string) string {
	return fmt.Sprintf(
		`(() => { const e = document.querySelector(%q); return !e || e.offsetParent === null; })()`,
		modalSel)
}
