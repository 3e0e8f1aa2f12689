package dirserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/cwmc/portable-launcher/internal/api"
	"github.com/cwmc/portable-launcher/internal/factory"
	"github.com/cwmc/portable-launcher/internal/web"
)

// NewHandler combines the document API and the web routes
func NewHandler(app *factory.App, cfg Config, logger *slog.Logger) http.Handler {
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		AuthService:   app.AuthService,
		RosterService: app.RosterService,
	})
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:        logger,
		RosterService: app.RosterService,
		Title:         cfg.Title,
		ContentDir:    cfg.ContentDir,
	})

	mux := http.NewServeMux()
	mux.Handle("/teams.json", apiRouter)
	mux.Handle("/args.json", apiRouter)
	mux.Handle("/health", apiRouter)
	mux.Handle("/admin/", apiRouter)
	mux.Handle("/", webRouter)
	return mux
}

// Run starts the directory server on ln, or on the configured address when
// ln is nil, and serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config, ln net.Listener, logger *slog.Logger) error {
	app, err := factory.New(cfg.FactoryConfig(logger))
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close storage", slog.String("error", err.Error()))
		}
	}()

	if err := app.RosterService.Seed(ctx, cfg.Seed.Teams, cfg.Seed.Config); err != nil {
		return fmt.Errorf("seed documents: %w", err)
	}
	if !app.AuthService.Enabled() {
		logger.Warn("admin password hash not set, document uploads are disabled")
	}

	server := api.NewServer(NewHandler(app, cfg, logger), cfg.Server, logger)

	errCh := make(chan error, 1)
	go func() {
		if ln != nil {
			errCh <- server.Serve(ln)
			return
		}
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	if err := server.Shutdown(context.Background()); err != nil {
		return err
	}
	return <-errCh
}
