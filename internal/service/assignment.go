package service

import (
	"context"
	"errors"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

// AssignmentService is the sole writer of the assignments table.
// Assignments are a derived entity: only the reconciler calls Upsert and
// Delete, never the CLI or an external client. The service still enforces
// the (deployment_id, host_id) uniqueness and referential-integrity
// invariants, and it is the only place Assignment events are emitted.
type AssignmentService struct{ w *writer }

func (s *AssignmentService) Upsert(ctx context.Context, a models.Assignment) (models.Assignment, string, error) {
	if a.ID == "" {
		a.ID = models.MakeAssignmentID(a.DeploymentID, a.HostID)
	}
	if _, err := s.w.db.GetDeployment(ctx, nil, a.DeploymentID); err != nil {
		return models.Assignment{}, "", apperr.New(apperr.InvalidArgument, "deployment_id %s does not exist", a.DeploymentID)
	}
	if _, err := s.w.db.GetHost(ctx, nil, a.HostID); err != nil {
		return models.Assignment{}, "", apperr.New(apperr.InvalidArgument, "host_id %s does not exist", a.HostID)
	}

	prior, err := s.w.db.GetAssignment(ctx, nil, a.ID)
	evType := models.Created
	var previous *models.Assignment
	if err == nil {
		evType = models.Updated
		previous = &prior
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Assignment{}, "", notFound(err, "looking up assignment %s", a.ID)
	}

	opID, err := s.w.mutate(ctx, models.ModelAssignment, evType, previous, &a, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.UpsertAssignment(ctx, tx, a)
	})
	if err != nil {
		return models.Assignment{}, "", err
	}
	return a, opID, nil
}

func (s *AssignmentService) Delete(ctx context.Context, id string) (string, error) {
	existing, err := s.w.db.GetAssignment(ctx, nil, id)
	if err != nil {
		return "", notFound(err, "assignment %s not found", id)
	}
	return s.w.deleteAssignment(ctx, existing)
}

// deleteAssignment is the writer-level primitive shared with the Host and
// Deployment cascades, so a Host or Deployment delete emits Assignment
// events exactly the way a direct AssignmentService.Delete call would.
func (w *writer) deleteAssignment(ctx context.Context, existing models.Assignment) (string, error) {
	return w.mutate(ctx, models.ModelAssignment, models.Deleted, &existing, nil, func(ctx context.Context, tx store.Tx) error {
		return w.db.DeleteAssignment(ctx, tx, existing.ID)
	})
}

func (s *AssignmentService) Get(ctx context.Context, id string) (models.Assignment, error) {
	a, err := s.w.db.GetAssignment(ctx, nil, id)
	if err != nil {
		return models.Assignment{}, notFound(err, "assignment %s not found", id)
	}
	return a, nil
}

func (s *AssignmentService) List(ctx context.Context) ([]models.Assignment, error) {
	return s.w.db.ListAssignments(ctx, nil)
}

func (s *AssignmentService) ByDeployment(ctx context.Context, deploymentID string) ([]models.Assignment, error) {
	return s.w.db.AssignmentsByDeployment(ctx, nil, deploymentID)
}

func (s *AssignmentService) ByHost(ctx context.Context, hostID string) ([]models.Assignment, error) {
	return s.w.db.AssignmentsByHost(ctx, nil, hostID)
}
