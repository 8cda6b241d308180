package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

// HostService is the sole writer of the hosts table.
type HostService struct{ w *writer }

func (s *HostService) Upsert(ctx context.Context, h models.Host) (models.Host, string, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}

	prior, err := s.w.db.GetHost(ctx, nil, h.ID)
	evType := models.Created
	var previous *models.Host
	if err == nil {
		evType = models.Updated
		previous = &prior
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Host{}, "", notFound(err, "looking up host %s", h.ID)
	}

	opID, err := s.w.mutate(ctx, models.ModelHost, evType, previous, &h, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.UpsertHost(ctx, tx, h)
	})
	if err != nil {
		return models.Host{}, "", err
	}
	return h, opID, nil
}

// Delete first deletes every Assignment referencing this Host (Hosts do
// not own Assignments, but referential integrity is still enforced ahead
// of the delete), then the Host itself.
func (s *HostService) Delete(ctx context.Context, id string) (string, error) {
	existing, err := s.w.db.GetHost(ctx, nil, id)
	if err != nil {
		return "", notFound(err, "host %s not found", id)
	}

	assignments, err := s.w.db.AssignmentsByHost(ctx, nil, id)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "listing assignments for host %s", id)
	}
	for _, a := range assignments {
		if _, err := s.w.deleteAssignment(ctx, a); err != nil {
			return "", apperr.Wrap(apperr.Internal, err, "cascading delete of assignment %s for host %s", a.ID, id)
		}
	}

	return s.w.mutate(ctx, models.ModelHost, models.Deleted, &existing, nil, func(ctx context.Context, tx store.Tx) error {
		return s.w.db.DeleteHost(ctx, tx, id)
	})
}

func (s *HostService) Get(ctx context.Context, id string) (models.Host, error) {
	h, err := s.w.db.GetHost(ctx, nil, id)
	if err != nil {
		return models.Host{}, notFound(err, "host %s not found", id)
	}
	return h, nil
}

func (s *HostService) List(ctx context.Context) ([]models.Host, error) {
	return s.w.db.ListHosts(ctx, nil)
}

func (s *HostService) MatchingLabels(ctx context.Context, required models.Labels) ([]models.Host, error) {
	return s.w.db.HostsMatchingLabels(ctx, nil, required)
}
