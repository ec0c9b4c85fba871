package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/atharv3903/roamer/internal/api"
	"github.com/atharv3903/roamer/internal/app"
	"github.com/atharv3903/roamer/internal/config"
	"github.com/atharv3903/roamer/internal/logger"
)

func main() {
	_ = godotenv.Load(".env")
	log := logger.Setup()
	cfg := config.FromFlagsServer()

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error("startup_failed", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	deps := api.Deps{Planner: a.Planner, Adj: a.Adj, Logger: log}
	if a.Store != nil {
		deps.Store = a.Store
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.New(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("roamer_listening", "addr", cfg.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server_error", "err", err)
			a.Close()
			os.Exit(1)
		}
	case sig := <-shutdown:
		log.Info("shutdown_start", "signal", sig.String())
		sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn("shutdown_incomplete", "err", err)
			_ = srv.Close()
		}
		log.Info("shutdown_done")
	}
}
