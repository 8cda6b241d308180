// Package memory is an in-memory Store used by the conformance suite and by
// component tests that need a real Store without a database.
package memory

import (
	"context"
	"sync"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

// Store is a mutex-guarded, map-backed implementation of store.Store.
type Store struct {
	mu sync.Mutex

	workspaces  map[string]models.Workspace
	workloads   map[string]models.Workload
	templates   map[string]models.Template
	targets     map[string]models.Target
	hosts       map[string]models.Host
	deployments map[string]models.Deployment
	assignments map[string]models.Assignment
	configs     map[string]models.Config
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		workspaces:  make(map[string]models.Workspace),
		workloads:   make(map[string]models.Workload),
		templates:   make(map[string]models.Template),
		targets:     make(map[string]models.Target),
		hosts:       make(map[string]models.Host),
		deployments: make(map[string]models.Deployment),
		assignments: make(map[string]models.Assignment),
		configs:     make(map[string]models.Config),
	}
}

// txMarker is the non-nil store.Tx value WithTx threads through to the
// per-entity methods it calls, telling lockIfBare the mutex is already held.
type txMarker struct{}

// WithTx runs fn with the Store's own mutex held for the duration. On error
// it restores the pre-call snapshot of every map, giving the same
// all-or-nothing guarantee a real transaction would.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.clone()
	if err := fn(ctx, txMarker{}); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

func (s *Store) clone() *Store {
	clone := New()
	for k, v := range s.workspaces {
		clone.workspaces[k] = v
	}
	for k, v := range s.workloads {
		clone.workloads[k] = v
	}
	for k, v := range s.templates {
		clone.templates[k] = v
	}
	for k, v := range s.targets {
		clone.targets[k] = v
	}
	for k, v := range s.hosts {
		clone.hosts[k] = v
	}
	for k, v := range s.deployments {
		clone.deployments[k] = v
	}
	for k, v := range s.assignments {
		clone.assignments[k] = v
	}
	for k, v := range s.configs {
		clone.configs[k] = v
	}
	return clone
}

func (s *Store) restore(snapshot *Store) {
	s.workspaces = snapshot.workspaces
	s.workloads = snapshot.workloads
	s.templates = snapshot.templates
	s.targets = snapshot.targets
	s.hosts = snapshot.hosts
	s.deployments = snapshot.deployments
	s.assignments = snapshot.assignments
	s.configs = snapshot.configs
}

func (s *Store) lockIfBare(tx store.Tx) func() {
	if tx != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// --- Workspace ---

func (s *Store) UpsertWorkspace(ctx context.Context, tx store.Tx, w models.Workspace) error {
	defer s.lockIfBare(tx)()
	s.workspaces[w.ID] = w
	return nil
}

func (s *Store) DeleteWorkspace(ctx context.Context, tx store.Tx, id string) error {
	defer s.lockIfBare(tx)()
	delete(s.workspaces, id)
	return nil
}

func (s *Store) GetWorkspace(ctx context.Context, tx store.Tx, id string) (models.Workspace, error) {
	defer s.lockIfBare(tx)()
	w, ok := s.workspaces[id]
	if !ok {
		return models.Workspace{}, store.ErrNotFound
	}
	return w, nil
}

func (s *Store) ListWorkspaces(ctx context.Context, tx store.Tx) ([]models.Workspace, error) {
	defer s.lockIfBare(tx)()
	out := make([]models.Workspace, 0, len(s.workspaces))
	for _, w := range s.workspaces {
		out = append(out, w)
	}
	return out, nil
}

// --- Workload ---

func (s *Store) UpsertWorkload(ctx context.Context, tx store.Tx, w models.Workload) error {
	defer s.lockIfBare(tx)()
	s.workloads[w.ID] = w
	return nil
}

func (s *Store) DeleteWorkload(ctx context.Context, tx store.Tx, id string) error {
	defer s.lockIfBare(tx)()
	delete(s.workloads, id)
	return nil
}

func (s *Store) GetWorkload(ctx context.Context, tx store.Tx, id string) (models.Workload, error) {
	defer s.lockIfBare(tx)()
	w, ok := s.workloads[id]
	if !ok {
		return models.Workload{}, store.ErrNotFound
	}
	return w, nil
}

func (s *Store) ListWorkloads(ctx context.Context, tx store.Tx) ([]models.Workload, error) {
	defer s.lockIfBare(tx)()
	out := make([]models.Workload, 0, len(s.workloads))
	for _, w := range s.workloads {
		out = append(out, w)
	}
	return out, nil
}

func (s *Store) WorkloadsByTeam(ctx context.Context, tx store.Tx, teamID string) ([]models.Workload, error) {
	defer s.lockIfBare(tx)()
	var out []models.Workload
	for _, w := range s.workloads {
		if w.TeamID == teamID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *Store) WorkloadsByTemplate(ctx context.Context, tx store.Tx, templateID string) ([]models.Workload, error) {
	defer s.lockIfBare(tx)()
	var out []models.Workload
	for _, w := range s.workloads {
		if w.TemplateID == templateID {
			out = append(out, w)
		}
	}
	return out, nil
}

// --- Template ---

func (s *Store) UpsertTemplate(ctx context.Context, tx store.Tx, t models.Template) error {
	defer s.lockIfBare(tx)()
	s.templates[t.ID] = t
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, tx store.Tx, id string) error {
	defer s.lockIfBare(tx)()
	delete(s.templates, id)
	return nil
}

func (s *Store) GetTemplate(ctx context.Context, tx store.Tx, id string) (models.Template, error) {
	defer s.lockIfBare(tx)()
	t, ok := s.templates[id]
	if !ok {
		return models.Template{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTemplates(ctx context.Context, tx store.Tx) ([]models.Template, error) {
	defer s.lockIfBare(tx)()
	out := make([]models.Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	return out, nil
}

// --- Target ---

func (s *Store) UpsertTarget(ctx context.Context, tx store.Tx, t models.Target) error {
	defer s.lockIfBare(tx)()
	s.targets[t.ID] = t
	return nil
}

func (s *Store) DeleteTarget(ctx context.Context, tx store.Tx, id string) error {
	defer s.lockIfBare(tx)()
	delete(s.targets, id)
	return nil
}

func (s *Store) GetTarget(ctx context.Context, tx store.Tx, id string) (models.Target, error) {
	defer s.lockIfBare(tx)()
	t, ok := s.targets[id]
	if !ok {
		return models.Target{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTargets(ctx context.Context, tx store.Tx) ([]models.Target, error) {
	defer s.lockIfBare(tx)()
	out := make([]models.Target, 0, len(s.targets))
	for _, t := range s.targets {
		out = append(out, t)
	}
	return out, nil
}

// --- Host ---

func (s *Store) UpsertHost(ctx context.Context, tx store.Tx, h models.Host) error {
	defer s.lockIfBare(tx)()
	s.hosts[h.ID] = h
	return nil
}

func (s *Store) DeleteHost(ctx context.Context, tx store.Tx, id string) error {
	defer s.lockIfBare(tx)()
	delete(s.hosts, id)
	return nil
}

func (s *Store) GetHost(ctx context.Context, tx store.Tx, id string) (models.Host, error) {
	defer s.lockIfBare(tx)()
	h, ok := s.hosts[id]
	if !ok {
		return models.Host{}, store.ErrNotFound
	}
	return h, nil
}

func (s *Store) ListHosts(ctx context.Context, tx store.Tx) ([]models.Host, error) {
	defer s.lockIfBare(tx)()
	out := make([]models.Host, 0, len(s.hosts))
	for _, h := range s.hosts {
		out = append(out, h)
	}
	return out, nil
}

func (s *Store) HostsMatchingLabels(ctx context.Context, tx store.Tx, required models.Labels) ([]models.Host, error) {
	defer s.lockIfBare(tx)()
	var out []models.Host
	for _, h := range s.hosts {
		if h.Labels.HasSubset(required) {
			out = append(out, h)
		}
	}
	return out, nil
}

// --- Deployment ---

func (s *Store) UpsertDeployment(ctx context.Context, tx store.Tx, d models.Deployment) error {
	defer s.lockIfBare(tx)()
	s.deployments[d.ID] = d
	return nil
}

func (s *Store) DeleteDeployment(ctx context.Context, tx store.Tx, id string) error {
	defer s.lockIfBare(tx)()
	delete(s.deployments, id)
	return nil
}

func (s *Store) GetDeployment(ctx context.Context, tx store.Tx, id string) (models.Deployment, error) {
	defer s.lockIfBare(tx)()
	d, ok := s.deployments[id]
	if !ok {
		return models.Deployment{}, store.ErrNotFound
	}
	return d, nil
}

func (s *Store) ListDeployments(ctx context.Context, tx store.Tx) ([]models.Deployment, error) {
	defer s.lockIfBare(tx)()
	out := make([]models.Deployment, 0, len(s.deployments))
	for _, d := range s.deployments {
		out = append(out, d)
	}
	return out, nil
}

func (s *Store) DeploymentsByTarget(ctx context.Context, tx store.Tx, targetID string) ([]models.Deployment, error) {
	defer s.lockIfBare(tx)()
	var out []models.Deployment
	for _, d := range s.deployments {
		if d.TargetID == targetID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) DeploymentsByWorkload(ctx context.Context, tx store.Tx, workloadID string) ([]models.Deployment, error) {
	defer s.lockIfBare(tx)()
	var out []models.Deployment
	for _, d := range s.deployments {
		if d.WorkloadID == workloadID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) DeploymentsByTemplate(ctx context.Context, tx store.Tx, templateID string) ([]models.Deployment, error) {
	defer s.lockIfBare(tx)()
	var out []models.Deployment
	for _, d := range s.deployments {
		if d.TemplateID == templateID {
			out = append(out, d)
		}
	}
	return out, nil
}

// --- Assignment ---

func (s *Store) UpsertAssignment(ctx context.Context, tx store.Tx, a models.Assignment) error {
	defer s.lockIfBare(tx)()
	s.assignments[a.ID] = a
	return nil
}

func (s *Store) DeleteAssignment(ctx context.Context, tx store.Tx, id string) error {
	defer s.lockIfBare(tx)()
	delete(s.assignments, id)
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, tx store.Tx, id string) (models.Assignment, error) {
	defer s.lockIfBare(tx)()
	a, ok := s.assignments[id]
	if !ok {
		return models.Assignment{}, store.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAssignments(ctx context.Context, tx store.Tx) ([]models.Assignment, error) {
	defer s.lockIfBare(tx)()
	out := make([]models.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) AssignmentsByDeployment(ctx context.Context, tx store.Tx, deploymentID string) ([]models.Assignment, error) {
	defer s.lockIfBare(tx)()
	var out []models.Assignment
	for _, a := range s.assignments {
		if a.DeploymentID == deploymentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) AssignmentsByHost(ctx context.Context, tx store.Tx, hostID string) ([]models.Assignment, error) {
	defer s.lockIfBare(tx)()
	var out []models.Assignment
	for _, a := range s.assignments {
		if a.HostID == hostID {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- Config ---

func (s *Store) UpsertConfig(ctx context.Context, tx store.Tx, c models.Config) error {
	defer s.lockIfBare(tx)()
	s.configs[c.ID] = c
	return nil
}

func (s *Store) DeleteConfig(ctx context.Context, tx store.Tx, id string) error {
	defer s.lockIfBare(tx)()
	delete(s.configs, id)
	return nil
}

func (s *Store) GetConfig(ctx context.Context, tx store.Tx, id string) (models.Config, error) {
	defer s.lockIfBare(tx)()
	c, ok := s.configs[id]
	if !ok {
		return models.Config{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListConfigs(ctx context.Context, tx store.Tx) ([]models.Config, error) {
	defer s.lockIfBare(tx)()
	out := make([]models.Config, 0, len(s.configs))
	for _, c := range s.configs {
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) ConfigsByOwningModel(ctx context.Context, tx store.Tx, kind models.ModelKind, id string) ([]models.Config, error) {
	defer s.lockIfBare(tx)()
	var out []models.Config
	for _, c := range s.configs {
		if c.OwningKind == kind && c.OwningID == id {
			out = append(out, c)
		}
	}
	return out, nil
}
