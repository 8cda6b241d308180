package gitops

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/backoff"
	"github.com/orchestrator-core/controlplane/internal/eventstream"
	"github.com/orchestrator-core/controlplane/internal/logging"
	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/service"
	"github.com/orchestrator-core/controlplane/internal/store"
	"github.com/orchestrator-core/controlplane/internal/template"
)

// ConsumerID identifies the GitOps writer's independent bookmark in the
// event stream.
const ConsumerID = "gitops"

const batchSize = 64

// DrainDeadline bounds how long Run waits, after ctx is cancelled, for the
// in-flight batch to finish and be acknowledged.
const DrainDeadline = 30 * time.Second

// Worker converges the GitOps tree toward the rendered form of the current
// Assignment set.
type Worker struct {
	db       store.Store
	stream   eventstream.Stream
	services *service.Services
	renderer *template.Renderer
	repo     *Repo
	lock     *flock.Flock
	org      string
	log      *zap.Logger
}

// New constructs a Worker. lockPath is an advisory file lock path (e.g.
// $STATE_DIR/gitops.lock) ensuring exactly one process owns repo's working
// tree.
func New(db store.Store, stream eventstream.Stream, services *service.Services, renderer *template.Renderer, repo *Repo, lockPath, organization string, log *zap.Logger) *Worker {
	return &Worker{
		db:       db,
		stream:   stream,
		services: services,
		renderer: renderer,
		repo:     repo,
		lock:     flock.New(lockPath),
		org:      organization,
		log:      log,
	}
}

// Run acquires the advisory lock, subscribes ConsumerID, and polls until ctx
// is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	locked, err := w.lock.TryLockContext(ctx, 500*time.Millisecond)
	if err != nil || !locked {
		return apperr.New(apperr.Unavailable, "another process already owns the gitops working tree")
	}
	defer w.lock.Unlock()

	if err := w.stream.Subscribe(ctx, ConsumerID); err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "subscribing gitops writer to event stream")
	}

	poll := backoff.Poll()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// pollCtx outlives a cancellation of ctx by at most DrainDeadline,
		// so the batch in flight at cancellation can finish and be
		// acknowledged.
		pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		stopDrain := context.AfterFunc(ctx, func() { time.AfterFunc(DrainDeadline, cancel) })
		processed, err := w.pollOnce(pollCtx)
		stopDrain()
		cancel()
		if err != nil {
			w.log.Error("gitops poll failed", zap.Error(err))
		}
		if processed > 0 {
			poll.Reset()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(poll.NextBackOff()):
		}
	}
}

// relevantModels is the set of model types whose events trigger GitOps
// recomputation.
var relevantModels = map[models.ModelKind]bool{
	models.ModelAssignment: true,
	models.ModelDeployment: true,
	models.ModelTemplate:   true,
	models.ModelConfig:     true,
	models.ModelWorkload:   true,
}

// pollOnce receives one batch, renders every affected Assignment into the
// working tree, and issues a single commit+push for the whole batch so the
// commit represents a consistent snapshot.
func (w *Worker) pollOnce(ctx context.Context) (int, error) {
	events, err := w.stream.Receive(ctx, ConsumerID, batchSize)
	if err != nil {
		return 0, apperr.Wrap(apperr.Unavailable, err, "receiving events")
	}
	if len(events) == 0 {
		return 0, nil
	}

	relevant := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if relevantModels[ev.ModelType] {
			relevant = append(relevant, ev)
		}
	}

	apply := func() error {
		for _, ev := range relevant {
			if err := w.applyEvent(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	}

	if len(relevant) > 0 {
		if err := apply(); err != nil {
			opLog := logging.L(ctx, w.log)
			if apperr.Retryable(err) {
				opLog.Warn("deferring gitops batch, will retry", zap.Error(err))
				return 0, err
			}
			opLog.Error("gitops batch hit a terminal error, acknowledging without full effect", zap.Error(err))
		}

		if _, err := w.commitBatch(ctx, events, apply); err != nil {
			return 0, err
		}
	}

	processed := 0
	for _, ev := range events {
		if err := w.stream.Delete(ctx, ConsumerID, ev.ID); err != nil {
			return processed, apperr.Wrap(apperr.Unavailable, err, "acknowledging event %s", ev.ID)
		}
		processed++
	}
	return processed, nil
}

// commitBatch stages, commits, and pushes the working tree built by apply.
// All renders for the batch precede the commit, and the commit message
// names the lead event's operation id.
func (w *Worker) commitBatch(ctx context.Context, events []models.Event, reapply func() error) (bool, error) {
	if err := w.repo.StageAll(); err != nil {
		return false, err
	}
	changed, err := w.repo.HasStagedChanges()
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	message := commitMessage(events)
	when := latestTimestamp(events)
	if _, err := w.repo.Commit(message, when); err != nil {
		return false, err
	}

	if err := w.repo.PushWithRetry(ctx, func() error {
		if err := reapply(); err != nil {
			return err
		}
		if err := w.repo.StageAll(); err != nil {
			return err
		}
		_, err := w.repo.Commit(message, when)
		return err
	}); err != nil {
		return false, err
	}
	return true, nil
}

func commitMessage(events []models.Event) string {
	lead := events[0].OperationID
	if len(lead) > 12 {
		lead = lead[:12]
	}
	return fmt.Sprintf("reconcile: %s", lead)
}

func latestTimestamp(events []models.Event) time.Time {
	latest := events[0].Timestamp
	for _, ev := range events[1:] {
		if ev.Timestamp.After(latest) {
			latest = ev.Timestamp
		}
	}
	return latest
}

// applyEvent resolves ev to the set of affected Assignments and renders or
// removes each one's bundle.
func (w *Worker) applyEvent(ctx context.Context, ev models.Event) error {
	switch ev.ModelType {
	case models.ModelAssignment:
		var a models.Assignment
		if err := unmarshalEither(ev, &a); err != nil {
			return apperr.Wrap(apperr.InvalidArgument, err, "decoding assignment event payload")
		}
		if ev.EventType == models.Deleted {
			return w.removeAssignment(ctx, a)
		}
		return w.renderAssignment(ctx, a.ID)

	case models.ModelDeployment:
		var d models.Deployment
		if err := unmarshalEither(ev, &d); err != nil {
			return apperr.Wrap(apperr.InvalidArgument, err, "decoding deployment event payload")
		}
		if ev.EventType == models.Deleted {
			return nil // each of its Assignments already emitted its own Deleted event.
		}
		return w.renderDeploymentAssignments(ctx, d.ID)

	case models.ModelTemplate:
		var t models.Template
		if err := unmarshalEither(ev, &t); err != nil {
			return apperr.Wrap(apperr.InvalidArgument, err, "decoding template event payload")
		}
		return w.renderTemplateDependents(ctx, t.ID)

	case models.ModelWorkload:
		var wl models.Workload
		if err := unmarshalEither(ev, &wl); err != nil {
			return apperr.Wrap(apperr.InvalidArgument, err, "decoding workload event payload")
		}
		return w.renderWorkloadDependents(ctx, wl.ID)

	case models.ModelConfig:
		var c models.Config
		if err := unmarshalEither(ev, &c); err != nil {
			return apperr.Wrap(apperr.InvalidArgument, err, "decoding config event payload")
		}
		return w.renderConfigDependents(ctx, c)

	default:
		return nil
	}
}

func unmarshalEither(ev models.Event, out any) error {
	if len(ev.SerializedCurrentModel) > 0 {
		return models.Deserialize(ev.SerializedCurrentModel, out)
	}
	return models.Deserialize(ev.SerializedPreviousModel, out)
}

func (w *Worker) renderDeploymentAssignments(ctx context.Context, deploymentID string) error {
	assignments, err := w.db.AssignmentsByDeployment(ctx, nil, deploymentID)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "listing assignments for deployment %s", deploymentID)
	}
	for _, a := range assignments {
		if err := w.renderAssignmentValue(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) renderTemplateDependents(ctx context.Context, templateID string) error {
	direct, err := w.db.DeploymentsByTemplate(ctx, nil, templateID)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "listing deployments for template %s", templateID)
	}
	workloads, err := w.db.WorkloadsByTemplate(ctx, nil, templateID)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "listing workloads for template %s", templateID)
	}
	seen := make(map[string]bool)
	for _, d := range direct {
		seen[d.ID] = true
		if err := w.renderDeploymentAssignments(ctx, d.ID); err != nil {
			return err
		}
	}
	for _, wl := range workloads {
		inherited, err := w.db.DeploymentsByWorkload(ctx, nil, wl.ID)
		if err != nil {
			return apperr.Wrap(apperr.Unavailable, err, "listing deployments for workload %s", wl.ID)
		}
		for _, d := range inherited {
			if seen[d.ID] || d.TemplateID != "" {
				continue // overridden deployments were already covered by direct, or use their own template
			}
			if err := w.renderDeploymentAssignments(ctx, d.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Worker) renderWorkloadDependents(ctx context.Context, workloadID string) error {
	deployments, err := w.db.DeploymentsByWorkload(ctx, nil, workloadID)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "listing deployments for workload %s", workloadID)
	}
	for _, d := range deployments {
		if err := w.renderDeploymentAssignments(ctx, d.ID); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) renderConfigDependents(ctx context.Context, c models.Config) error {
	switch c.OwningKind {
	case models.ModelDeployment:
		return w.renderDeploymentAssignments(ctx, c.OwningID)
	case models.ModelWorkload:
		return w.renderWorkloadDependents(ctx, c.OwningID)
	case models.ModelWorkspace:
		if c.OwningID == "" {
			return w.renderAllDeployments(ctx)
		}
		workloads, err := w.db.WorkloadsByTeam(ctx, nil, c.OwningID)
		if err != nil {
			return apperr.Wrap(apperr.Unavailable, err, "listing workloads for team %s", c.OwningID)
		}
		for _, wl := range workloads {
			if err := w.renderWorkloadDependents(ctx, wl.ID); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func (w *Worker) renderAllDeployments(ctx context.Context) error {
	deployments, err := w.db.ListDeployments(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "listing deployments")
	}
	for _, d := range deployments {
		if err := w.renderDeploymentAssignments(ctx, d.ID); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) renderAssignment(ctx context.Context, assignmentID string) error {
	a, err := w.db.GetAssignment(ctx, nil, assignmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil // deleted between event emission and processing.
		}
		return apperr.Wrap(apperr.Unavailable, err, "loading assignment %s", assignmentID)
	}
	return w.renderAssignmentValue(ctx, a)
}

// renderAssignmentValue renders one Assignment's bundle from current
// persistence (never from the event payload, per the ordering guarantees of
// 5) and writes it at <host_id>/<team>/<workload>/<deployment>/<relative_path>.
func (w *Worker) renderAssignmentValue(ctx context.Context, a models.Assignment) error {
	d, err := w.db.GetDeployment(ctx, nil, a.DeploymentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return apperr.Wrap(apperr.Unavailable, err, "loading deployment %s", a.DeploymentID)
	}
	workload, err := w.db.GetWorkload(ctx, nil, d.WorkloadID)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "loading workload %s", d.WorkloadID)
	}
	tmpl, err := w.db.GetTemplate(ctx, nil, d.EffectiveTemplateID(workload))
	if err != nil {
		return apperr.Wrap(apperr.InvalidArgument, err, "loading template for deployment %s", d.ID)
	}
	host, err := w.db.GetHost(ctx, nil, a.HostID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return apperr.Wrap(apperr.Unavailable, err, "loading host %s", a.HostID)
	}

	effective, err := w.services.Config.EffectiveConfig(ctx, d, workload)
	if err != nil {
		return err
	}

	ordinal, err := w.ordinalOf(ctx, d.ID, a.HostID)
	if err != nil {
		return err
	}

	binding := template.Binding{
		Organization: w.org,
		Team:         workload.TeamID,
		Workload:     workload.ID,
		Deployment:   d.ID,
		Host:         host.ID,
		Ordinal:      ordinal,
	}

	files, err := w.renderer.Render(ctx, tmpl, binding, effective)
	if err != nil {
		return err
	}

	base := assignmentPath(host.ID, workload.TeamID, workload.ID, d.ID)
	for _, f := range files {
		if err := w.repo.WriteFile(path.Join(base, f.RelativePath), f.Bytes); err != nil {
			return err
		}
	}
	return nil
}

// ordinalOf is a Deployment's Assignments' host ids sorted ascending,
// matching the reconciler's stable sort-by-host-id tie-break so a host's
// ordinal does not change as long as it remains assigned.
func (w *Worker) ordinalOf(ctx context.Context, deploymentID, hostID string) (int, error) {
	assignments, err := w.db.AssignmentsByDeployment(ctx, nil, deploymentID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Unavailable, err, "listing assignments for deployment %s", deploymentID)
	}
	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.HostID)
	}
	sort.Strings(ids)
	for i, id := range ids {
		if id == hostID {
			return i, nil
		}
	}
	return 0, nil
}

func (w *Worker) removeAssignment(ctx context.Context, a models.Assignment) error {
	// With the Deployment or Workload row already gone, the subtree is
	// found by its host and deployment path segments instead.
	removeByScan := func() error {
		matches, err := filepath.Glob(filepath.Join(w.repo.Dir(), a.HostID, "*", "*", a.DeploymentID))
		for _, m := range matches {
			if rel, relErr := filepath.Rel(w.repo.Dir(), m); relErr == nil {
				if err := w.repo.RemoveSubtree(filepath.ToSlash(rel)); err != nil {
					return err
				}
			}
		}
		return err
	}
	d, err := w.db.GetDeployment(ctx, nil, a.DeploymentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return removeByScan()
		}
		return apperr.Wrap(apperr.Unavailable, err, "loading deployment %s", a.DeploymentID)
	}
	workload, err := w.db.GetWorkload(ctx, nil, d.WorkloadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return removeByScan()
		}
		return apperr.Wrap(apperr.Unavailable, err, "loading workload %s", d.WorkloadID)
	}
	return w.repo.RemoveSubtree(assignmentPath(a.HostID, workload.TeamID, workload.ID, d.ID))
}

func assignmentPath(hostID, teamID, workloadID, deploymentID string) string {
	return path.Join(hostID, teamID, workloadID, deploymentID)
}
