// Package server owns the process lifecycle: it builds one adapter run,
// serves the ops endpoints next to it, and shuts both down cleanly.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/corpus-crawler/internal/api"
	"github.com/JakeFAU/corpus-crawler/internal/app"
	"github.com/JakeFAU/corpus-crawler/internal/config"
	"github.com/JakeFAU/corpus-crawler/internal/id/uuid"
	"github.com/JakeFAU/corpus-crawler/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// App contains the dependencies of one crawl process.
type App struct {
	cfg       config.Config
	runID     string
	logger    *zap.Logger
	adapter   *app.Adapter
	apiServer *api.Server
}

// NewApp builds the adapter named by site and the ops API that reports on it.
func NewApp(cfg config.Config, site string, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.New().RunID()
	runLogger := logging.ForRun(logger, site, runID)

	adapter, err := app.Build(cfg, site, runLogger)
	if err != nil {
		return nil, fmt.Errorf("build %s adapter: %w", site, err)
	}
	return &App{
		cfg:       cfg,
		runID:     runID,
		logger:    runLogger,
		adapter:   adapter,
		apiServer: api.NewServer(adapter, runID, runLogger),
	}, nil
}

// RunID identifies this process in logs and the status endpoint.
func (a *App) RunID() string {
	return a.runID
}

// Handler exposes the ops router.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run starts the ops server when an address is configured, then blocks on
// the adapter. The server is shut down once the adapter returns.
func (a *App) Run(ctx context.Context) error {
	var srv *http.Server
	if addr := a.cfg.Metrics.Addr; addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		srv = &http.Server{
			Handler:           a.apiServer.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			a.logger.Info("ops server started", zap.String("addr", ln.Addr().String()))
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("ops server error", zap.Error(err))
			}
		}()
	}

	runErr := a.adapter.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("ops server shutdown failed", zap.Error(err))
		}
	}
	a.logger.Info("shutdown complete")
	return runErr
}
