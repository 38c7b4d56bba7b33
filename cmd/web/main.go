package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"nexttripanywhere.com/web/internal/catalog"
	"nexttripanywhere.com/web/internal/cms"
	"nexttripanywhere.com/web/internal/config"
	"nexttripanywhere.com/web/internal/devreload"
	"nexttripanywhere.com/web/internal/handlers"
	"nexttripanywhere.com/web/internal/i18n"
	mw "nexttripanywhere.com/web/internal/middleware"
	"nexttripanywhere.com/web/internal/observability"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "web: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags override the environment.
	flag.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "HTTP listen address")
	flag.StringVar(&cfg.Paths.Templates, "templates", cfg.Paths.Templates, "templates directory")
	flag.StringVar(&cfg.Paths.Public, "public", cfg.Paths.Public, "public assets directory")
	flag.StringVar(&cfg.Paths.Data, "data", cfg.Paths.Data, "catalog data directory")
	flag.StringVar(&cfg.Paths.Content, "content", cfg.Paths.Content, "markdown content directory")
	flag.BoolVar(&cfg.Dev, "dev", cfg.Dev, "reparse templates per request and reload on file changes")
	flag.Parse()

	logger, err := observability.NewLogger(cfg.Dev)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Dev {
		w, err := devreload.New(app.Reload,
			[]string{cfg.Paths.Data, cfg.Paths.Content, cfg.Paths.Templates, cfg.Paths.Locales},
			devreload.WithLogger(logger))
		if err != nil {
			logger.Warn("dev reload disabled", zap.Error(err))
		} else {
			w.Start(ctx)
			defer w.Stop()
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("env", cfg.Env),
			zap.Bool("dev", cfg.Dev),
			zap.String("base_url", cfg.Site.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newApp loads locales, catalog data and templates and wires the handlers.
func newApp(cfg config.Config, logger *zap.Logger) (*handlers.App, error) {
	bundle, err := i18n.Load(cfg.Paths.Locales, "en", []string{"en", "es"})
	if err != nil {
		return nil, err
	}
	store, err := catalog.NewStore(cfg.Paths.Data, logger)
	if err != nil {
		return nil, err
	}
	if ephemeral := mw.ConfigureSession(cfg.Session.SigningKey, cfg.Session.Secure); ephemeral {
		logger.Warn("session signing key not set; sessions will not survive a restart")
	}
	return handlers.New(handlers.Options{
		Config:  cfg,
		Logger:  logger,
		Catalog: store,
		Content: cms.NewClient(cfg.Paths.Content),
		I18n:    bundle,
	})
}
