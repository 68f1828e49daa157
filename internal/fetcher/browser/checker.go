package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/SatyamPundir/product-stock-tracker/internal/classify"
	"github.com/SatyamPundir/product-stock-tracker/internal/metrics"
	"github.com/SatyamPundir/product-stock-tracker/internal/stock"
)

// Checker implements stock.Checker for JavaScript-heavy pages. The browser
// session starts lazily on the first dynamic check; a failed start is
// reported as an Indeterminate verdict and retried on the next check.
type Checker struct {
	cfg     Config
	logger  *zap.Logger
	session *Session
}

// NewChecker builds a dynamic Checker. The browser is not launched yet.
func NewChecker(cfg Config, logger *zap.Logger) *Checker {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 15 * time.Second
	}
	return &Checker{cfg: cfg, logger: logger}
}

// Check navigates to the product page, clears the pincode overlay when one
// is configured, and classifies the rendered DOM.
func (c *Checker) Check(ctx context.Context, product stock.Product) stock.Verdict {
	sess, err := c.ensureSession()
	if err != nil {
		metrics.RecordBrowserSetupFailure()
		c.logger.Error("browser session setup failed", zap.Error(err))
		return stock.Indeterminate(fmt.Sprintf("browser session setup failed: %v", err))
	}

	tabCtx, cancelTab := chromedp.NewContext(sess.browserCtx)
	defer cancelTab()

	stopForward := forwardCancel(ctx, cancelTab)
	defer stopForward()

	if err := c.navigate(tabCtx, product.URL); err != nil {
		c.logger.Error("navigation failed",
			zap.String("product", product.Name),
			zap.Error(err))
		return stock.Indeterminate(fmt.Sprintf("browser error: %v", err))
	}

	if err := resolveModal(tabCtx, product, c.logger); err != nil {
		c.logger.Error("pincode modal handling failed",
			zap.String("product", product.Name),
			zap.Error(err))
		return stock.Indeterminate(fmt.Sprintf("failed to handle pincode modal: %v", err))
	}

	html, err := c.snapshot(tabCtx)
	if err != nil {
		return stock.Indeterminate(fmt.Sprintf("browser error: %v", err))
	}
	return classify.Rendered(html)
}

// Close releases the browser session if one was started.
func (c *Checker) Close() {
	if c.session != nil {
		c.session.Close()
		c.session = nil
		c.logger.Info("headless browser session closed")
	}
}

func (c *Checker) ensureSession() (*Session, error) {
	if c.session != nil {
		return c.session, nil
	}
	sess, err := newSession(c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.session = sess
	return sess, nil
}

func (c *Checker) navigate(tabCtx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(tabCtx, c.cfg.NavTimeout)
	defer cancel()

	tasks := chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": "en-US,en;q=0.5",
		}),
		chromedp.Navigate(url),
	}
	if err := chromedp.Run(navCtx, tasks); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// snapshot waits for the page's load-complete signal, then captures the
// rendered DOM.
func (c *Checker) snapshot(tabCtx context.Context) (string, error) {
	readyCtx, cancel := context.WithTimeout(tabCtx, c.cfg.NavTimeout)
	defer cancel()

	var html string
	tasks := chromedp.Tasks{
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(readyCtx, tasks); err != nil {
		return "", fmt.Errorf("capture rendered page: %w", err)
	}
	return html, nil
}

// forwardCancel propagates caller cancellation into a chromedp tab context.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
