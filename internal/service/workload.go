package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

// WorkloadService is the sole writer of the workloads table.
type WorkloadService struct{ w *writer }

func (s *WorkloadService) Upsert(ctx context.Context, wl models.Workload) (models.Workload, string, error) {
	if wl.ID == "" {
		wl.ID = uuid.NewString()
	}

	if _, err := s.w.db.GetWorkspace(ctx, nil, wl.TeamID); err != nil {
		return models.Workload{}, "", apperr.New(apperr.InvalidArgument, "team_id %s does not exist", wl.TeamID)
	}
	if _, err := s.w.db.GetTemplate(ctx, nil, wl.TemplateID); err != nil {
		return models.Workload{}, "", apperr.New(apperr.InvalidArgument, "template_id %s does not exist", wl.TemplateID)
	}

	prior, err := s.w.db.GetWorkload(ctx, nil, wl.ID)
	evType := models.Created
	var previous *models.Workload
	if err == nil {
		evType = models.Updated
		previous = &prior
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Workload{}, "", notFound(err, "looking up workload %s", wl.ID)
	}

	opID, err := s.w.mutate(ctx, models.ModelWorkload, evType, previous, &wl, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.UpsertWorkload(ctx, tx, wl)
	})
	if err != nil {
		return models.Workload{}, "", err
	}
	return wl, opID, nil
}

// Delete cascades: every Deployment owned by this Workload is deleted
// first (and, transitively, its Assignments), then the Workload itself, in
// a single enclosing event-emitting transaction per deleted entity.
func (s *WorkloadService) Delete(ctx context.Context, id string) (string, error) {
	existing, err := s.w.db.GetWorkload(ctx, nil, id)
	if err != nil {
		return "", notFound(err, "workload %s not found", id)
	}

	deployments, err := s.w.db.DeploymentsByWorkload(ctx, nil, id)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "listing deployments owned by workload %s", id)
	}
	for _, d := range deployments {
		if _, err := s.w.deleteDeployment(ctx, d); err != nil {
			return "", apperr.Wrap(apperr.Internal, err, "cascading delete of deployment %s owned by workload %s", d.ID, id)
		}
	}

	return s.w.mutate(ctx, models.ModelWorkload, models.Deleted, &existing, nil, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.DeleteWorkload(ctx, tx, id)
	})
}

func (s *WorkloadService) Get(ctx context.Context, id string) (models.Workload, error) {
	wl, err := s.w.db.GetWorkload(ctx, nil, id)
	if err != nil {
		return models.Workload{}, notFound(err, "workload %s not found", id)
	}
	return wl, nil
}

func (s *WorkloadService) List(ctx context.Context) ([]models.Workload, error) {
	return s.w.db.ListWorkloads(ctx, nil)
}

func (s *WorkloadService) ByTeam(ctx context.Context, teamID string) ([]models.Workload, error) {
	return s.w.db.WorkloadsByTeam(ctx, nil, teamID)
}
