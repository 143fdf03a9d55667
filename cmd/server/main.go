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

	"go.uber.org/zap"

	"github.com/JustinWhittecar/bvcore/internal/config"
	"github.com/JustinWhittecar/bvcore/internal/handlers"
	"github.com/JustinWhittecar/bvcore/internal/logging"
	"github.com/JustinWhittecar/bvcore/internal/setup"
)

func main() {
	configPath := flag.String("config", "bv.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	env, err := setup.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	mux := http.NewServeMux()
	handlers.Register(mux,
		&handlers.EquipmentHandler{Resolver: env.Resolver, Catalog: env.Cache},
		&handlers.BVHandler{Calc: env.Calc, Logger: logger.Named("http")})

	handler := handlers.RequestID(
		handlers.AccessLog(logger.Named("access"))(
			handlers.CORS(cfg.Server.AllowedOrigins...)(mux)))

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("catalog", cfg.Catalog.Source))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
