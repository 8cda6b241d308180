// Package service implements one CRUD service per entity in the data
// model. Each service is the sole writer of its table: every mutation
// validates referential integrity, computes the previous/current
// serialized state, and atomically writes the entity and appends the
// resulting Event in one transaction.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/eventstream"
	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

// Services bundles one service per entity behind the persistence and event
// stream they share. cmd/api constructs one Services and exposes it over
// the HTTP API in internal/rpc/server.
type Services struct {
	Workspace  *WorkspaceService
	Workload   *WorkloadService
	Template   *TemplateService
	Target     *TargetService
	Host       *HostService
	Deployment *DeploymentService
	Assignment *AssignmentService
	Config     *ConfigService
}

// New wires every per-entity service against the same store and stream.
func New(db store.Store, stream eventstream.Stream) *Services {
	w := &writer{db: db, stream: stream}
	return &Services{
		Workspace:  &WorkspaceService{w: w},
		Workload:   &WorkloadService{w: w},
		Template:   &TemplateService{w: w},
		Target:     &TargetService{w: w},
		Host:       &HostService{w: w},
		Deployment: &DeploymentService{w: w},
		Assignment: &AssignmentService{w: w},
		Config:     &ConfigService{w: w},
	}
}

// writer is the shared "persist the entity, append the event, in one
// transaction" helper every per-entity service delegates to. It exists so
// the eight services differ only in validation and SQL, not in how they
// talk to the store and stream.
type writer struct {
	db     store.Store
	stream eventstream.Stream
}

// mutate runs body inside a transaction, then serializes previous/current
// and appends the resulting Event to the stream on that same transaction
// (Send is passed tx so the event insert commits or rolls back together
// with body's entity write; neither is visible to a consumer unless both
// succeed).
func (w *writer) mutate(
	ctx context.Context,
	kind models.ModelKind,
	evType models.EventType,
	previous, current any,
	body func(ctx context.Context, tx store.Tx) error,
) (operationID string, err error) {
	operationID = uuid.NewString()

	prevBytes, err := serializeOrNil(previous)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "serializing previous %s state", kind)
	}
	curBytes, err := serializeOrNil(current)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "serializing current %s state", kind)
	}

	err = w.db.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := body(ctx, tx); err != nil {
			return err
		}
		return w.stream.Send(ctx, tx, models.Event{
			ID:                      operationID,
			Timestamp:               time.Now(),
			OperationID:             operationID,
			EventType:               evType,
			ModelType:               kind,
			SerializedPreviousModel: prevBytes,
			SerializedCurrentModel:  curBytes,
		})
	})
	if err != nil {
		return "", err
	}
	return operationID, nil
}

func serializeOrNil(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return models.Serialize(v)
}

// notFound translates a store.ErrNotFound into the apperr kind callers
// expect; any other error passes through wrapped as Internal.
func notFound(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperr.New(apperr.NotFound, format, args...)
	}
	return apperr.Wrap(apperr.Internal, err, format, args...)
}
