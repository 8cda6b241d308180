// Command reconciler runs the assignment reconciler loop: it consumes
// Host, Target, and Deployment events and converges the Assignment set.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/orchestrator-core/controlplane/internal/config"
	"github.com/orchestrator-core/controlplane/internal/eventstream"
	"github.com/orchestrator-core/controlplane/internal/logging"
	"github.com/orchestrator-core/controlplane/internal/reconciler"
	"github.com/orchestrator-core/controlplane/internal/service"
	"github.com/orchestrator-core/controlplane/internal/store/postgres"
	"github.com/orchestrator-core/controlplane/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logging.New("reconciler", cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()

	stream := eventstream.NewPostgres(db.Pool())
	services := service.New(db, stream)

	telem, err := telemetry.New("reconciler")
	if err != nil {
		log.Fatal("starting telemetry", zap.Error(err))
	}
	defer func() { _ = telem.Shutdown(context.Background()) }()

	mux := http.NewServeMux()
	mux.Handle("/metrics", telem.Handler())
	go func() {
		if err := http.ListenAndServe(":9090", mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", zap.Error(err))
		}
	}()

	r := reconciler.New(db, stream, services, log)
	if err := r.Run(ctx); err != nil {
		log.Error("reconciler exited with error", zap.Error(err))
	}
}
