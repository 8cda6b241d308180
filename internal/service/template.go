package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

// TemplateService is the sole writer of the templates table. Templates are
// referenced but not owned: a Template is immutable in spirit, replaced
// only by a full Upsert that reissues an event, never a partial patch.
type TemplateService struct{ w *writer }

func (s *TemplateService) Upsert(ctx context.Context, t models.Template) (models.Template, string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Repository == "" || t.GitRef == "" {
		return models.Template{}, "", apperr.New(apperr.InvalidArgument, "template requires repository and git_ref")
	}

	prior, err := s.w.db.GetTemplate(ctx, nil, t.ID)
	evType := models.Created
	var previous *models.Template
	if err == nil {
		evType = models.Updated
		previous = &prior
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Template{}, "", notFound(err, "looking up template %s", t.ID)
	}

	opID, err := s.w.mutate(ctx, models.ModelTemplate, evType, previous, &t, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.UpsertTemplate(ctx, tx, t)
	})
	if err != nil {
		return models.Template{}, "", err
	}
	return t, opID, nil
}

// Delete rejects with Conflict while any Workload or Deployment still
// references this Template, per the forward-edge delete policy: reject
// delete if any forward edge exists.
func (s *TemplateService) Delete(ctx context.Context, id string) (string, error) {
	existing, err := s.w.db.GetTemplate(ctx, nil, id)
	if err != nil {
		return "", notFound(err, "template %s not found", id)
	}

	workloads, err := s.w.db.WorkloadsByTemplate(ctx, nil, id)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "checking workloads referencing template %s", id)
	}
	deployments, err := s.w.db.DeploymentsByTemplate(ctx, nil, id)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "checking deployments referencing template %s", id)
	}
	if len(workloads)+len(deployments) > 0 {
		return "", apperr.New(apperr.Conflict, "template %s is still referenced by %d workload(s) and %d deployment(s)",
			id, len(workloads), len(deployments))
	}

	return s.w.mutate(ctx, models.ModelTemplate, models.Deleted, &existing, nil, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.DeleteTemplate(ctx, tx, id)
	})
}

func (s *TemplateService) Get(ctx context.Context, id string) (models.Template, error) {
	t, err := s.w.db.GetTemplate(ctx, nil, id)
	if err != nil {
		return models.Template{}, notFound(err, "template %s not found", id)
	}
	return t, nil
}

func (s *TemplateService) List(ctx context.Context) ([]models.Template, error) {
	return s.w.db.ListTemplates(ctx, nil)
}
