package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

// DeploymentService is the sole writer of the deployments table.
type DeploymentService struct{ w *writer }

func (s *DeploymentService) Upsert(ctx context.Context, d models.Deployment) (models.Deployment, string, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	// host_count 0 is valid (treated by the reconciler as unassign-all, per
	// the Open Question resolved in favor of the schema's permissive range);
	// only values below the ALL sentinel are rejected.
	if d.HostCount < models.HostCountAll {
		return models.Deployment{}, "", apperr.New(apperr.InvalidArgument, "host_count %d is invalid", d.HostCount)
	}
	if _, err := s.w.db.GetWorkload(ctx, nil, d.WorkloadID); err != nil {
		return models.Deployment{}, "", apperr.New(apperr.InvalidArgument, "workload_id %s does not exist", d.WorkloadID)
	}
	if _, err := s.w.db.GetTarget(ctx, nil, d.TargetID); err != nil {
		return models.Deployment{}, "", apperr.New(apperr.InvalidArgument, "target_id %s does not exist", d.TargetID)
	}
	if d.TemplateID != "" {
		if _, err := s.w.db.GetTemplate(ctx, nil, d.TemplateID); err != nil {
			return models.Deployment{}, "", apperr.New(apperr.InvalidArgument, "template_id %s does not exist", d.TemplateID)
		}
	}

	prior, err := s.w.db.GetDeployment(ctx, nil, d.ID)
	evType := models.Created
	var previous *models.Deployment
	if err == nil {
		evType = models.Updated
		previous = &prior
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Deployment{}, "", notFound(err, "looking up deployment %s", d.ID)
	}

	opID, err := s.w.mutate(ctx, models.ModelDeployment, evType, previous, &d, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.UpsertDeployment(ctx, tx, d)
	})
	if err != nil {
		return models.Deployment{}, "", err
	}
	return d, opID, nil
}

func (s *DeploymentService) Delete(ctx context.Context, id string) (string, error) {
	existing, err := s.w.db.GetDeployment(ctx, nil, id)
	if err != nil {
		return "", notFound(err, "deployment %s not found", id)
	}
	return s.w.deleteDeployment(ctx, existing)
}

// deleteDeployment is the writer-level primitive shared with the Workload
// cascade: it first removes every Assignment the Deployment owns (the
// reconciler would otherwise do this lazily on its next poll, but an
// explicit delete must not leave dangling Assignments visible in the
// interim), then the Deployment itself.
func (w *writer) deleteDeployment(ctx context.Context, existing models.Deployment) (string, error) {
	assignments, err := w.db.AssignmentsByDeployment(ctx, nil, existing.ID)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "listing assignments for deployment %s", existing.ID)
	}
	for _, a := range assignments {
		if _, err := w.deleteAssignment(ctx, a); err != nil {
			return "", apperr.Wrap(apperr.Internal, err, "cascading delete of assignment %s for deployment %s", a.ID, existing.ID)
		}
	}

	return w.mutate(ctx, models.ModelDeployment, models.Deleted, &existing, nil, func(ctx context.Context, tx store.Tx) error {
		return w.db.DeleteDeployment(ctx, tx, existing.ID)
	})
}

func (s *DeploymentService) Get(ctx context.Context, id string) (models.Deployment, error) {
	d, err := s.w.db.GetDeployment(ctx, nil, id)
	if err != nil {
		return models.Deployment{}, notFound(err, "deployment %s not found", id)
	}
	return d, nil
}

func (s *DeploymentService) List(ctx context.Context) ([]models.Deployment, error) {
	return s.w.db.ListDeployments(ctx, nil)
}

func (s *DeploymentService) ByTarget(ctx context.Context, targetID string) ([]models.Deployment, error) {
	return s.w.db.DeploymentsByTarget(ctx, nil, targetID)
}

func (s *DeploymentService) ByWorkload(ctx context.Context, workloadID string) ([]models.Deployment, error) {
	return s.w.db.DeploymentsByWorkload(ctx, nil, workloadID)
}

func (s *DeploymentService) ByTemplate(ctx context.Context, templateID string) ([]models.Deployment, error) {
	return s.w.db.DeploymentsByTemplate(ctx, nil, templateID)
}
