// Package browser checks product pages with a shared headless Chrome
// session driven through chromedp.
package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// DefaultExecPath is used when no override is configured; cloud images ship
// Chromium here.
const DefaultExecPath = "/usr/bin/chromium-browser"

// Config controls the headless browser subsystem.
type Config struct {
	ExecPath   string
	UserAgent  string
	NavTimeout time.Duration
}

// Session owns the chromedp allocator and a long-lived browser context,
// reused across checks to avoid repeated browser startup cost. It has a
// single owner and is never used from more than one goroutine.
type Session struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// newSession launches the browser and verifies it responds.
func newSession(cfg Config, logger *zap.Logger) (*Session, error) {
	// --disable-images and --single-process are deliberately not passed:
	// classification reads text only, and single-process mode is unstable
	// outside memory-starved container hosts.
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(1920, 1080),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if path := resolveExecPath(cfg.ExecPath); path != "" {
		logger.Info("using browser binary", zap.String("path", path))
		opts = append(opts, chromedp.ExecPath(path))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("browser warmup: %w", err)
	}

	logger.Info("headless browser session started")
	return &Session{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close tears down the browser and allocator contexts.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.browserCancel()
	s.allocCancel()
}

// resolveExecPath picks the binary location. An override (or the system
// default) is only used when the file actually exists; otherwise chromedp's
// own lookup applies.
func resolveExecPath(override string) string {
	candidate := override
	if candidate == "" {
		candidate = DefaultExecPath
	}
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}
