// Package store defines the persistence-layer contract: per-entity
// upsert/delete/get plus the relationship queries the reconciler and
// GitOps writer depend on. internal/store/memory and
// internal/store/postgres each implement Store against the same
// conformance suite (store/conformance).
package store

import (
	"context"

	"github.com/orchestrator-core/controlplane/internal/models"
)

// ErrNotFound is returned by Get* methods when the id does not exist.
// Services translate it to apperr.NotFound.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "not found" }

// Tx is the transaction handle WithTx passes to fn; the transaction commits
// if fn returns nil and rolls back otherwise. Implementations of Store accept a
// nil Tx for a bare non-transactional call (postgres falls back to the pool;
// memory takes its own mutex for that one call, and treats a non-nil Tx as
// a sign that WithTx already holds the mutex).
type Tx any

// Store is the full persistence contract. A single type implements all
// eight sub-interfaces; they are split out so each model service can depend
// on only the slice it needs.
type Store interface {
	WorkspaceStore
	WorkloadStore
	TemplateStore
	TargetStore
	HostStore
	DeploymentStore
	AssignmentStore
	ConfigStore

	// WithTx runs fn within one transaction and returns its error. Model
	// services use this to make the entity write and the event append
	// atomic, per the persistence layer's "all mutations are transactional
	// with the event append" requirement.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type WorkspaceStore interface {
	UpsertWorkspace(ctx context.Context, tx Tx, w models.Workspace) error
	DeleteWorkspace(ctx context.Context, tx Tx, id string) error
	GetWorkspace(ctx context.Context, tx Tx, id string) (models.Workspace, error)
	ListWorkspaces(ctx context.Context, tx Tx) ([]models.Workspace, error)
}

type WorkloadStore interface {
	UpsertWorkload(ctx context.Context, tx Tx, w models.Workload) error
	DeleteWorkload(ctx context.Context, tx Tx, id string) error
	GetWorkload(ctx context.Context, tx Tx, id string) (models.Workload, error)
	ListWorkloads(ctx context.Context, tx Tx) ([]models.Workload, error)
	WorkloadsByTeam(ctx context.Context, tx Tx, teamID string) ([]models.Workload, error)
	WorkloadsByTemplate(ctx context.Context, tx Tx, templateID string) ([]models.Workload, error)
}

type TemplateStore interface {
	UpsertTemplate(ctx context.Context, tx Tx, t models.Template) error
	DeleteTemplate(ctx context.Context, tx Tx, id string) error
	GetTemplate(ctx context.Context, tx Tx, id string) (models.Template, error)
	ListTemplates(ctx context.Context, tx Tx) ([]models.Template, error)
}

type TargetStore interface {
	UpsertTarget(ctx context.Context, tx Tx, t models.Target) error
	DeleteTarget(ctx context.Context, tx Tx, id string) error
	GetTarget(ctx context.Context, tx Tx, id string) (models.Target, error)
	ListTargets(ctx context.Context, tx Tx) ([]models.Target, error)
}

type HostStore interface {
	UpsertHost(ctx context.Context, tx Tx, h models.Host) error
	DeleteHost(ctx context.Context, tx Tx, id string) error
	GetHost(ctx context.Context, tx Tx, id string) (models.Host, error)
	ListHosts(ctx context.Context, tx Tx) ([]models.Host, error)
	// HostsMatchingLabels returns every Host whose labels are a superset of
	// required, backed by the inverted label index.
	HostsMatchingLabels(ctx context.Context, tx Tx, required models.Labels) ([]models.Host, error)
}

type DeploymentStore interface {
	UpsertDeployment(ctx context.Context, tx Tx, d models.Deployment) error
	DeleteDeployment(ctx context.Context, tx Tx, id string) error
	GetDeployment(ctx context.Context, tx Tx, id string) (models.Deployment, error)
	ListDeployments(ctx context.Context, tx Tx) ([]models.Deployment, error)
	DeploymentsByTarget(ctx context.Context, tx Tx, targetID string) ([]models.Deployment, error)
	DeploymentsByWorkload(ctx context.Context, tx Tx, workloadID string) ([]models.Deployment, error)
	DeploymentsByTemplate(ctx context.Context, tx Tx, templateID string) ([]models.Deployment, error)
}

type AssignmentStore interface {
	UpsertAssignment(ctx context.Context, tx Tx, a models.Assignment) error
	DeleteAssignment(ctx context.Context, tx Tx, id string) error
	GetAssignment(ctx context.Context, tx Tx, id string) (models.Assignment, error)
	ListAssignments(ctx context.Context, tx Tx) ([]models.Assignment, error)
	AssignmentsByDeployment(ctx context.Context, tx Tx, deploymentID string) ([]models.Assignment, error)
	AssignmentsByHost(ctx context.Context, tx Tx, hostID string) ([]models.Assignment, error)
}

type ConfigStore interface {
	UpsertConfig(ctx context.Context, tx Tx, c models.Config) error
	DeleteConfig(ctx context.Context, tx Tx, id string) error
	GetConfig(ctx context.Context, tx Tx, id string) (models.Config, error)
	ListConfigs(ctx context.Context, tx Tx) ([]models.Config, error)
	ConfigsByOwningModel(ctx context.Context, tx Tx, kind models.ModelKind, id string) ([]models.Config, error)
}
