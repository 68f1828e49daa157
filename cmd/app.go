package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SatyamPundir/product-stock-tracker/internal/config"
	"github.com/SatyamPundir/product-stock-tracker/internal/diag"
	"github.com/SatyamPundir/product-stock-tracker/internal/fetcher/browser"
	staticfetch "github.com/SatyamPundir/product-stock-tracker/internal/fetcher/static"
	"github.com/SatyamPundir/product-stock-tracker/internal/logging"
	"github.com/SatyamPundir/product-stock-tracker/internal/metrics"
	"github.com/SatyamPundir/product-stock-tracker/internal/monitor"
	"github.com/SatyamPundir/product-stock-tracker/internal/notify"
)

// app holds the wired, long-lived services for one run of the monitor.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	runner *monitor.Runner
	diag   *diag.Server
}

// newApp is the application factory. It's a variable so tests can replace
// it with a stub factory.
var newApp = buildApp

func buildApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, err
	}

	metrics.Init()

	staticChecker := staticfetch.New(staticfetch.Config{
		UserAgent: cfg.UserAgent,
	}, logger)

	browserChecker := browser.NewChecker(browser.Config{
		ExecPath:   cfg.Browser.ExecPath,
		UserAgent:  cfg.UserAgent,
		NavTimeout: cfg.Browser.NavTimeout(),
	}, logger)

	dispatcher := notify.NewDispatcher(logger,
		notify.NewEmailChannel(cfg.Email),
		notify.NewTelegramChannel(cfg.Telegram),
	)

	runner := monitor.New(monitor.Options{
		Products: cfg.Products,
		Static:   staticChecker,
		Dynamic:  browserChecker,
		Notifier: dispatcher,
		Interval: cfg.CheckInterval(),
		Logger:   logger,
		Cleanup:  browserChecker.Close,
	})

	a := &app{
		cfg:    cfg,
		logger: logger,
		runner: runner,
	}
	if cfg.Diag.Port > 0 {
		a.diag = diag.New(cfg.Diag.Port, logger)
	}
	return a, nil
}

func (a *app) runOnce(ctx context.Context) error {
	defer a.shutdown()
	if len(a.cfg.Products) == 0 {
		a.logger.Warn("no products configured, nothing to check")
		return nil
	}
	a.startDiag()
	return clean(a.runner.RunOnce(ctx))
}

func (a *app) runMonitor(ctx context.Context) error {
	defer a.shutdown()
	if len(a.cfg.Products) == 0 {
		return fmt.Errorf("no products configured")
	}
	a.startDiag()
	return clean(a.runner.Run(ctx))
}

func (a *app) startDiag() {
	if a.diag != nil {
		a.diag.Start()
	}
}

func (a *app) shutdown() {
	if a.diag != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.diag.Shutdown(shutdownCtx)
	}
	a.logger.Sync() //nolint:errcheck // best-effort flush on exit
}

// clean maps an interrupt-driven stop to a zero exit.
func clean(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
