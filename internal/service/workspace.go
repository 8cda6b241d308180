package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

// WorkspaceService is the sole writer of the workspaces table.
type WorkspaceService struct{ w *writer }

// Upsert creates w (assigning an id if blank) or replaces an existing one,
// returning the operation_id correlating the resulting event.
func (s *WorkspaceService) Upsert(ctx context.Context, ws models.Workspace) (models.Workspace, string, error) {
	if ws.ID == "" {
		ws.ID = uuid.NewString()
	}

	prior, err := s.w.db.GetWorkspace(ctx, nil, ws.ID)
	evType := models.Created
	var previous *models.Workspace
	if err == nil {
		evType = models.Updated
		previous = &prior
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Workspace{}, "", notFound(err, "looking up workspace %s", ws.ID)
	}

	opID, err := s.w.mutate(ctx, models.ModelWorkspace, evType, previous, &ws, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.UpsertWorkspace(ctx, tx, ws)
	})
	if err != nil {
		return models.Workspace{}, "", err
	}
	return ws, opID, nil
}

// Delete removes a Workspace. Rejected with Conflict if any Workload still
// references it (Workloads are owned, but a Workspace delete must not
// silently cascade across team boundaries).
func (s *WorkspaceService) Delete(ctx context.Context, id string) (string, error) {
	existing, err := s.w.db.GetWorkspace(ctx, nil, id)
	if err != nil {
		return "", notFound(err, "workspace %s not found", id)
	}

	workloads, err := s.w.db.WorkloadsByTeam(ctx, nil, id)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "checking workloads owned by workspace %s", id)
	}
	if len(workloads) > 0 {
		return "", apperr.New(apperr.Conflict, "workspace %s still owns %d workload(s)", id, len(workloads))
	}

	return s.w.mutate(ctx, models.ModelWorkspace, models.Deleted, &existing, nil, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.DeleteWorkspace(ctx, tx, id)
	})
}

func (s *WorkspaceService) Get(ctx context.Context, id string) (models.Workspace, error) {
	ws, err := s.w.db.GetWorkspace(ctx, nil, id)
	if err != nil {
		return models.Workspace{}, notFound(err, "workspace %s not found", id)
	}
	return ws, nil
}

func (s *WorkspaceService) List(ctx context.Context) ([]models.Workspace, error) {
	return s.w.db.ListWorkspaces(ctx, nil)
}
