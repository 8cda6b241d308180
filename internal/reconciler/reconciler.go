// Package reconciler implements the assignment reconciler: it consumes
// Host, Target, and Deployment events and converges the Assignment set
// toward the desired Host-to-Deployment matching, keeping existing
// Assignments where possible and breaking ties by sorting candidate Hosts
// by id.
package reconciler

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/backoff"
	"github.com/orchestrator-core/controlplane/internal/eventstream"
	"github.com/orchestrator-core/controlplane/internal/logging"
	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/service"
	"github.com/orchestrator-core/controlplane/internal/store"
)

// ConsumerID identifies the reconciler's independent bookmark in the event
// stream.
const ConsumerID = "reconciler"

const batchSize = 64

// recomputeAllConcurrency bounds how many Deployments are recomputed in
// parallel during a Host-triggered full recompute.
const recomputeAllConcurrency = 8

// DrainDeadline bounds how long Run waits, after ctx is cancelled, for the
// in-flight event to finish and be acknowledged.
const DrainDeadline = 30 * time.Second

// Reconciler converges Assignments toward the desired set defined by
// Targets x Hosts x Deployments.
type Reconciler struct {
	db       store.Store
	stream   eventstream.Stream
	services *service.Services
	log      *zap.Logger
}

func New(db store.Store, stream eventstream.Stream, services *service.Services, log *zap.Logger) *Reconciler {
	return &Reconciler{db: db, stream: stream, services: services, log: log}
}

// Run subscribes ConsumerID and polls until ctx is cancelled, draining the
// in-flight batch before returning.
func (r *Reconciler) Run(ctx context.Context) error {
	if err := r.stream.Subscribe(ctx, ConsumerID); err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "subscribing reconciler to event stream")
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
		processed, err := r.pollOnce(pollCtx)
		stopDrain()
		cancel()
		if err != nil {
			r.log.Error("reconciler poll failed", zap.Error(err))
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

// pollOnce receives and applies one batch, returning how many events were
// successfully processed and acknowledged.
func (r *Reconciler) pollOnce(ctx context.Context) (int, error) {
	events, err := r.stream.Receive(ctx, ConsumerID, batchSize)
	if err != nil {
		return 0, apperr.Wrap(apperr.Unavailable, err, "receiving events")
	}

	processed := 0
	for _, ev := range events {
		opLog := logging.L(logging.WithOperationID(ctx, ev.OperationID), r.log)
		if err := r.processEvent(ctx, ev); err != nil {
			if apperr.Retryable(err) {
				opLog.Warn("deferring event, will retry", zap.String("event_id", ev.ID), zap.Error(err))
				continue
			}
			opLog.Error("event is terminal, acknowledging without full effect", zap.String("event_id", ev.ID), zap.Error(err))
		}
		if err := r.stream.Delete(ctx, ConsumerID, ev.ID); err != nil {
			return processed, apperr.Wrap(apperr.Unavailable, err, "acknowledging event %s", ev.ID)
		}
		processed++
	}
	return processed, nil
}

func (r *Reconciler) processEvent(ctx context.Context, ev models.Event) error {
	switch ev.ModelType {
	case models.ModelHost:
		return r.recomputeAll(ctx)
	case models.ModelTarget:
		var t models.Target
		if err := unmarshalEither(ev, &t); err != nil {
			return apperr.Wrap(apperr.InvalidArgument, err, "decoding target event payload")
		}
		return r.recomputeByTarget(ctx, t.ID)
	case models.ModelDeployment:
		var d models.Deployment
		if err := unmarshalEither(ev, &d); err != nil {
			return apperr.Wrap(apperr.InvalidArgument, err, "decoding deployment event payload")
		}
		if ev.EventType == models.Deleted {
			return r.deleteAllForDeployment(ctx, d.ID)
		}
		return r.RecomputeDeployment(ctx, d.ID)
	default:
		// Not one of {Host, Target, Deployment}: no reconciliation action,
		// acknowledge and move on.
		return nil
	}
}

func unmarshalEither(ev models.Event, out any) error {
	if len(ev.SerializedCurrentModel) > 0 {
		return models.Deserialize(ev.SerializedCurrentModel, out)
	}
	return models.Deserialize(ev.SerializedPreviousModel, out)
}

// recomputeAll conservatively recomputes every Deployment on any Host
// change, since a new or removed Host can affect any Target's match set
// and the desired-set computation is cheap. Deployments are independent of
// one another, so the recompute fans out with bounded concurrency.
func (r *Reconciler) recomputeAll(ctx context.Context) error {
	deployments, err := r.db.ListDeployments(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "listing deployments")
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(recomputeAllConcurrency)
	for _, d := range deployments {
		d := d
		group.Go(func() error {
			return r.recomputeDeploymentValue(groupCtx, d)
		})
	}
	return group.Wait()
}

func (r *Reconciler) recomputeByTarget(ctx context.Context, targetID string) error {
	deployments, err := r.db.DeploymentsByTarget(ctx, nil, targetID)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "listing deployments for target %s", targetID)
	}
	for _, d := range deployments {
		if err := r.recomputeDeploymentValue(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) RecomputeDeployment(ctx context.Context, deploymentID string) error {
	d, err := r.db.GetDeployment(ctx, nil, deploymentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Deleted between event emission and processing; nothing to do,
			// the Deleted event (if any) will drive the cascade.
			return nil
		}
		return apperr.Wrap(apperr.Unavailable, err, "loading deployment %s", deploymentID)
	}
	return r.recomputeDeploymentValue(ctx, d)
}

func (r *Reconciler) deleteAllForDeployment(ctx context.Context, deploymentID string) error {
	assignments, err := r.db.AssignmentsByDeployment(ctx, nil, deploymentID)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "listing assignments for deleted deployment %s", deploymentID)
	}
	for _, a := range assignments {
		if _, err := r.services.Assignment.Delete(ctx, a.ID); err != nil {
			return apperr.Wrap(apperr.Unavailable, err, "deleting assignment %s", a.ID)
		}
	}
	return nil
}

// recomputeDeploymentValue runs the desired-set algorithm for one
// already-loaded Deployment.
func (r *Reconciler) recomputeDeploymentValue(ctx context.Context, d models.Deployment) error {
	target, err := r.db.GetTarget(ctx, nil, d.TargetID)
	if err != nil {
		return apperr.Wrap(apperr.InvalidArgument, err, "deployment %s references missing target %s", d.ID, d.TargetID)
	}
	eligible, err := r.db.HostsMatchingLabels(ctx, nil, target.Labels)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "matching hosts for target %s", target.ID)
	}
	existing, err := r.db.AssignmentsByDeployment(ctx, nil, d.ID)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "listing assignments for deployment %s", d.ID)
	}

	desiredHostIDs := desiredHostSet(d, existing, eligible)

	desired := make(map[string]bool, len(desiredHostIDs))
	for _, h := range desiredHostIDs {
		desired[h] = true
	}

	existingByHost := make(map[string]models.Assignment, len(existing))
	for _, a := range existing {
		existingByHost[a.HostID] = a
	}

	for hostID := range desired {
		if _, ok := existingByHost[hostID]; ok {
			continue
		}
		if _, _, err := r.services.Assignment.Upsert(ctx, models.Assignment{
			DeploymentID: d.ID,
			HostID:       hostID,
		}); err != nil {
			return apperr.Wrap(apperr.Unavailable, err, "creating assignment for deployment %s host %s", d.ID, hostID)
		}
	}

	for hostID, a := range existingByHost {
		if desired[hostID] {
			continue
		}
		if _, err := r.services.Assignment.Delete(ctx, a.ID); err != nil {
			return apperr.Wrap(apperr.Unavailable, err, "deleting assignment %s", a.ID)
		}
	}
	return nil
}

// desiredHostSet computes the desired Host set: eligible hosts computed by the
// caller, ALL means every eligible host, otherwise stable-keep the
// currently-assigned eligible hosts and top up or trim to host_count,
// breaking ties by host id.
func desiredHostSet(d models.Deployment, existing []models.Assignment, eligible []models.Host) []string {
	eligibleIDs := make(map[string]bool, len(eligible))
	sortedEligible := make([]string, 0, len(eligible))
	for _, h := range eligible {
		eligibleIDs[h.ID] = true
		sortedEligible = append(sortedEligible, h.ID)
	}
	sort.Strings(sortedEligible)

	if d.IsAll() {
		return sortedEligible
	}

	n := int(d.HostCount)
	if n < 0 {
		n = 0
	}

	kept := make([]string, 0, len(existing))
	keptSet := make(map[string]bool, len(existing))
	for _, a := range existing {
		if eligibleIDs[a.HostID] {
			kept = append(kept, a.HostID)
			keptSet[a.HostID] = true
		}
	}
	sort.Strings(kept)

	if len(kept) >= n {
		return kept[:n]
	}

	var candidates []string
	for _, id := range sortedEligible {
		if !keptSet[id] {
			candidates = append(candidates, id)
		}
	}

	needed := n - len(kept)
	if needed > len(candidates) {
		needed = len(candidates)
	}

	desired := append([]string{}, kept...)
	desired = append(desired, candidates[:needed]...)
	return desired
}
