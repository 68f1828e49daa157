// Package staticfetch checks product pages with a single plain HTTP GET.
package staticfetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/SatyamPundir/product-stock-tracker/internal/classify"
	"github.com/SatyamPundir/product-stock-tracker/internal/stock"
)

// DefaultTimeout bounds the whole request including body read.
const DefaultTimeout = 10 * time.Second

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Checker implements stock.Checker for static pages using a Colly collector.
type Checker struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a static Checker.
func New(cfg Config, logger *zap.Logger) *Checker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := colly.NewCollector(colly.Async(false))
	c.AllowURLRevisit = true
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)

	return &Checker{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
	}
}

// Check fetches the product page and classifies it. All transport and
// status failures collapse into an Indeterminate verdict.
func (c *Checker) Check(ctx context.Context, product stock.Product) stock.Verdict {
	body, err := c.fetch(ctx, product.URL)
	if err != nil {
		c.logger.Error("static fetch failed",
			zap.String("product", product.Name),
			zap.Error(err))
		return stock.Indeterminate(fmt.Sprintf("request failed: %v", err))
	}
	return classify.Static(string(body))
}

func (c *Checker) fetch(ctx context.Context, url string) ([]byte, error) {
	collector := c.baseCollector.Clone()
	if c.cfg.UserAgent != "" {
		collector.UserAgent = c.cfg.UserAgent
	}
	collector.SetRequestTimeout(c.cfg.Timeout)

	var (
		body     []byte
		status   int
		fetchErr error
	)

	collector.OnRequest(func(r *colly.Request) {
		for key, value := range browserHeaders() {
			r.Headers.Set(key, value)
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	if err := c.visit(ctx, collector, url); err != nil {
		return nil, err
	}

	switch {
	case fetchErr != nil:
		return nil, fetchErr
	case status < 200 || status >= 300:
		return nil, fmt.Errorf("unexpected status %d", status)
	}
	return body, nil
}

func (c *Checker) visit(ctx context.Context, collector *colly.Collector, url string) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit %s: %w", url, err)
		}
		return nil
	}
}

// browserHeaders mirrors what a desktop browser sends so the storefront
// serves the regular page. Accept-Encoding is left to the transport so
// response bodies arrive decompressed.
func browserHeaders() map[string]string {
	return map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Connection":      "keep-alive",
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
	}
}
