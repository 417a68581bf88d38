package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/JakeFAU/corpus-crawler/internal/config"
	"github.com/JakeFAU/corpus-crawler/internal/logging"
	"github.com/JakeFAU/corpus-crawler/internal/server"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	site := flag.String("site", config.SiteWiki, "Adapter to run: wiki or catalog")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, cfg, *site, logger)
	stop()
	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg config.Config, site string, logger *zap.Logger) int {
	app, err := server.NewApp(cfg, site, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return 1
	}
	if err := app.Run(ctx); err != nil {
		logger.Error("crawl failed", zap.Error(err))
		return 1
	}
	return 0
}
