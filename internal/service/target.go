package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

// TargetService is the sole writer of the targets table.
type TargetService struct{ w *writer }

func (s *TargetService) Upsert(ctx context.Context, t models.Target) (models.Target, string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	prior, err := s.w.db.GetTarget(ctx, nil, t.ID)
	evType := models.Created
	var previous *models.Target
	if err == nil {
		evType = models.Updated
		previous = &prior
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Target{}, "", notFound(err, "looking up target %s", t.ID)
	}

	opID, err := s.w.mutate(ctx, models.ModelTarget, evType, previous, &t, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.UpsertTarget(ctx, tx, t)
	})
	if err != nil {
		return models.Target{}, "", err
	}
	return t, opID, nil
}

// Delete rejects with Conflict while any Deployment still references this
// Target.
func (s *TargetService) Delete(ctx context.Context, id string) (string, error) {
	existing, err := s.w.db.GetTarget(ctx, nil, id)
	if err != nil {
		return "", notFound(err, "target %s not found", id)
	}

	deployments, err := s.w.db.DeploymentsByTarget(ctx, nil, id)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "checking deployments referencing target %s", id)
	}
	if len(deployments) > 0 {
		return "", apperr.New(apperr.Conflict, "target %s is still referenced by %d deployment(s)", id, len(deployments))
	}

	return s.w.mutate(ctx, models.ModelTarget, models.Deleted, &existing, nil, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.DeleteTarget(ctx, tx, id)
	})
}

func (s *TargetService) Get(ctx context.Context, id string) (models.Target, error) {
	t, err := s.w.db.GetTarget(ctx, nil, id)
	if err != nil {
		return models.Target{}, notFound(err, "target %s not found", id)
	}
	return t, nil
}

func (s *TargetService) List(ctx context.Context) ([]models.Target, error) {
	return s.w.db.ListTargets(ctx, nil)
}
