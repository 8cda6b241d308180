// Command api serves the model-service HTTP API: one huma resource group
// per entity in the data model, backed by Postgres and the durable event
// stream.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/orchestrator-core/controlplane/internal/config"
	"github.com/orchestrator-core/controlplane/internal/eventstream"
	"github.com/orchestrator-core/controlplane/internal/logging"
	"github.com/orchestrator-core/controlplane/internal/rpc/server"
	"github.com/orchestrator-core/controlplane/internal/service"
	"github.com/orchestrator-core/controlplane/internal/store/postgres"
	"github.com/orchestrator-core/controlplane/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logging.New("api", cfg.LogLevel)
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

	telem, err := telemetry.New("api")
	if err != nil {
		log.Fatal("starting telemetry", zap.Error(err))
	}
	defer func() { _ = telem.Shutdown(context.Background()) }()

	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("Orchestrator Control Plane", "v0"))
	api.UseMiddleware(server.AuthMiddleware(api, []byte(cfg.JWTSigningKey)))
	server.RegisterRoutes(api, services)
	mux.Handle("/metrics", telem.Handler())

	handler := otelhttp.NewHandler(mux, "api")

	srv := &http.Server{
		Addr:              cfg.APIListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", zap.String("addr", cfg.APIListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}
}
