package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

// ConfigService is the sole writer of the configs table.
type ConfigService struct{ w *writer }

func (s *ConfigService) Upsert(ctx context.Context, c models.Config) (models.Config, string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Key == "" {
		return models.Config{}, "", apperr.New(apperr.InvalidArgument, "config key is required")
	}
	if c.OwningID != "" {
		if err := s.w.validateOwner(ctx, c.OwningKind, c.OwningID); err != nil {
			return models.Config{}, "", err
		}
	}

	prior, err := s.w.db.GetConfig(ctx, nil, c.ID)
	evType := models.Created
	var previous *models.Config
	if err == nil {
		evType = models.Updated
		previous = &prior
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Config{}, "", notFound(err, "looking up config %s", c.ID)
	}

	opID, err := s.w.mutate(ctx, models.ModelConfig, evType, previous, &c, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.UpsertConfig(ctx, tx, c)
	})
	if err != nil {
		return models.Config{}, "", err
	}
	return c, opID, nil
}

// validateOwner checks that a non-global Config's owning_model reference
// resolves to an existing entity of the matching kind.
func (w *writer) validateOwner(ctx context.Context, kind models.ModelKind, id string) error {
	var err error
	switch kind {
	case models.ModelDeployment:
		_, err = w.db.GetDeployment(ctx, nil, id)
	case models.ModelWorkload:
		_, err = w.db.GetWorkload(ctx, nil, id)
	case models.ModelWorkspace:
		_, err = w.db.GetWorkspace(ctx, nil, id)
	default:
		return apperr.New(apperr.InvalidArgument, "configs may only be owned by deployment, workload, or workspace, got %s", kind)
	}
	if err != nil {
		return apperr.New(apperr.InvalidArgument, "owning_model %s:%s does not exist", kind, id)
	}
	return nil
}

func (s *ConfigService) Delete(ctx context.Context, id string) (string, error) {
	existing, err := s.w.db.GetConfig(ctx, nil, id)
	if err != nil {
		return "", notFound(err, "config %s not found", id)
	}
	return s.w.mutate(ctx, models.ModelConfig, models.Deleted, &existing, nil, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.DeleteConfig(ctx, tx, id)
	})
}

func (s *ConfigService) Get(ctx context.Context, id string) (models.Config, error) {
	c, err := s.w.db.GetConfig(ctx, nil, id)
	if err != nil {
		return models.Config{}, notFound(err, "config %s not found", id)
	}
	return c, nil
}

func (s *ConfigService) List(ctx context.Context) ([]models.Config, error) {
	return s.w.db.ListConfigs(ctx, nil)
}

func (s *ConfigService) ByOwningModel(ctx context.Context, kind models.ModelKind, id string) ([]models.Config, error) {
	return s.w.db.ConfigsByOwningModel(ctx, nil, kind, id)
}

// EffectiveConfig resolves the inherited key/value map for a Deployment,
// nearest owner wins: Deployment overrides Workload overrides Team
// (Workspace) overrides Global.
func (s *ConfigService) EffectiveConfig(ctx context.Context, deployment models.Deployment, workload models.Workload) (map[string]models.Config, error) {
	effective := make(map[string]models.Config)

	apply := func(configs []models.Config) {
		for _, c := range configs {
			effective[c.Key] = c
		}
	}

	global, err := s.w.db.ConfigsByOwningModel(ctx, nil, models.ModelWorkspace, "")
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "loading global configs")
	}
	apply(global)

	team, err := s.w.db.ConfigsByOwningModel(ctx, nil, models.ModelWorkspace, workload.TeamID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "loading team configs for %s", workload.TeamID)
	}
	apply(team)

	wl, err := s.w.db.ConfigsByOwningModel(ctx, nil, models.ModelWorkload, workload.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "loading workload configs for %s", workload.ID)
	}
	apply(wl)

	dep, err := s.w.db.ConfigsByOwningModel(ctx, nil, models.ModelDeployment, deployment.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "loading deployment configs for %s", deployment.ID)
	}
	apply(dep)

	return effective, nil
}
