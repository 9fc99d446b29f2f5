package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"vision-assist/config"
	"vision-assist/internal/container"
	"vision-assist/internal/logging"
)

const (
	flagEnvFile  = "env-file"
	flagAddr     = "addr"
	flagLogLevel = "log-level"

	shutdownTimeout = 5 * time.Second
)

func main() {
	app := &cli.App{
		Name:  "vision-assist",
		Usage: "websocket server for object localization and accessible UI colors",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagEnvFile, Usage: "path to .env file", Value: ".env"},
			&cli.StringFlag{Name: flagAddr, Usage: "listen address, overrides LISTEN_ADDR"},
			&cli.StringFlag{Name: flagLogLevel, Usage: "log level, overrides LOG_LEVEL"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String(flagEnvFile))
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if c.IsSet(flagAddr) {
		cfg.ListenAddr = c.String(flagAddr)
	}
	if c.IsSet(flagLogLevel) {
		cfg.LogLevel = c.String(flagLogLevel)
	}

	logger, err := logging.New("vision-assist", cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Собираем сервисы приложения
	appContainer, err := container.New(cfg, logger)
	if err != nil {
		return errors.Wrap(err, "build container")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           appContainer.Server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infow("Server is running", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		appContainer.Scheduler.Start()
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if cerr := appContainer.Close(); cerr != nil {
		logger.Warnw("close failed", "error", cerr)
	}
	return err
}
