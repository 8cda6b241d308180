// Command gitops runs the GitOps writer loop: it renders each Assignment's
// Template into manifests and keeps a Git working tree converged with the
// current Assignment set.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/orchestrator-core/controlplane/internal/config"
	"github.com/orchestrator-core/controlplane/internal/eventstream"
	"github.com/orchestrator-core/controlplane/internal/gitops"
	"github.com/orchestrator-core/controlplane/internal/logging"
	"github.com/orchestrator-core/controlplane/internal/service"
	"github.com/orchestrator-core/controlplane/internal/store/postgres"
	"github.com/orchestrator-core/controlplane/internal/telemetry"
	"github.com/orchestrator-core/controlplane/internal/template"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logging.New("gitops", cfg.LogLevel)
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

	renderer, err := template.New(cfg.TemplateCacheDir, cfg.GitOpsSSHKeyPath, cfg.TemplateCacheMax)
	if err != nil {
		log.Fatal("creating template renderer", zap.Error(err))
	}

	repo, err := gitops.Open(ctx, cfg.GitOpsWorkDir, cfg.GitOpsRepoURL, cfg.GitOpsBranch, cfg.GitOpsSSHKeyPath)
	if err != nil {
		log.Fatal("opening gitops working tree", zap.Error(err))
	}

	telem, err := telemetry.New("gitops")
	if err != nil {
		log.Fatal("starting telemetry", zap.Error(err))
	}
	defer func() { _ = telem.Shutdown(context.Background()) }()

	mux := http.NewServeMux()
	mux.Handle("/metrics", telem.Handler())
	go func() {
		if err := http.ListenAndServe(":9091", mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", zap.Error(err))
		}
	}()

	lockPath := filepath.Join(cfg.StateDir, "gitops.lock")
	worker := gitops.New(db, stream, services, renderer, repo, lockPath, cfg.Organization, log)
	if err := worker.Run(ctx); err != nil {
		log.Error("gitops worker exited with error", zap.Error(err))
	}
}
