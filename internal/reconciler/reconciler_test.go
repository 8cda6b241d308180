package reconciler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestrator-core/controlplane/internal/eventstream"
	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/reconciler"
	"github.com/orchestrator-core/controlplane/internal/service"
	memorystore "github.com/orchestrator-core/controlplane/internal/store/memory"
	"go.uber.org/zap"
)

// fixture builds an in-memory store, stream, and reconciler and seeds a
// Workspace/Template/Workload so tests only need to create Hosts, Targets,
// and Deployments.
type fixture struct {
	db  *memorystore.Store
	svc *service.Services
	rec *reconciler.Reconciler
	wl  models.Workload
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memorystore.New()
	stream := eventstream.NewMemory()
	svc := service.New(db, stream)

	_, _, err := svc.Workspace.Upsert(context.Background(), models.Workspace{ID: "team"})
	require.NoError(t, err)
	tpl, _, err := svc.Template.Upsert(context.Background(), models.Template{
		ID: "tpl1", Repository: "https://example.com/repo.git", GitRef: "main", Path: "manifests",
	})
	require.NoError(t, err)
	wl, _, err := svc.Workload.Upsert(context.Background(), models.Workload{
		ID: "w1", Name: "w1", TeamID: "team", TemplateID: tpl.ID,
	})
	require.NoError(t, err)

	return &fixture{
		db:  db,
		svc: svc,
		rec: reconciler.New(db, stream, svc, zap.NewNop()),
		wl:  wl,
	}
}

func (f *fixture) createHost(t *testing.T, id string, labels models.Labels) models.Host {
	t.Helper()
	h, _, err := f.svc.Host.Upsert(context.Background(), models.Host{ID: id, Labels: labels})
	require.NoError(t, err)
	return h
}

func (f *fixture) createTarget(t *testing.T, id string, labels models.Labels) models.Target {
	t.Helper()
	tg, _, err := f.svc.Target.Upsert(context.Background(), models.Target{ID: id, Labels: labels})
	require.NoError(t, err)
	return tg
}

func (f *fixture) createDeployment(t *testing.T, id, targetID string, hostCount int32) models.Deployment {
	t.Helper()
	d, _, err := f.svc.Deployment.Upsert(context.Background(), models.Deployment{
		ID: id, Name: id, WorkloadID: f.wl.ID, TargetID: targetID, HostCount: hostCount,
	})
	require.NoError(t, err)
	return d
}

func (f *fixture) reconcile(t *testing.T, deploymentID string) {
	t.Helper()
	require.NoError(t, f.rec.RecomputeDeployment(context.Background(), deploymentID))
}

func (f *fixture) assignedHosts(t *testing.T, deploymentID string) []string {
	t.Helper()
	assignments, err := f.svc.Assignment.ByDeployment(context.Background(), deploymentID)
	require.NoError(t, err)
	hosts := make([]string, 0, len(assignments))
	for _, a := range assignments {
		hosts = append(hosts, a.HostID)
	}
	return hosts
}

func TestNewDeploymentAssignsMatchingHost(t *testing.T) {
	f := newFixture(t)
	f.createHost(t, "h1", models.Labels{"region": "eastus2"})
	f.createTarget(t, "t1", models.Labels{"region": "eastus2"})
	f.createDeployment(t, "d1", "t1", 1)

	f.reconcile(t, "d1")
	assert.ElementsMatch(t, []string{"h1"}, f.assignedHosts(t, "d1"))
}

func TestScaleUpDeploymentAddsHosts(t *testing.T) {
	f := newFixture(t)
	f.createHost(t, "h1", models.Labels{"region": "eastus2"})
	f.createHost(t, "h2", models.Labels{"region": "eastus2"})
	f.createTarget(t, "t1", models.Labels{"region": "eastus2"})
	f.createDeployment(t, "d1", "t1", 1)
	f.reconcile(t, "d1")
	require.ElementsMatch(t, []string{"h1"}, f.assignedHosts(t, "d1"))

	_, _, err := f.svc.Deployment.Upsert(context.Background(), models.Deployment{
		ID: "d1", Name: "d1", WorkloadID: f.wl.ID, TargetID: "t1", HostCount: models.HostCountAll,
	})
	require.NoError(t, err)
	f.reconcile(t, "d1")
	assert.ElementsMatch(t, []string{"h1", "h2"}, f.assignedHosts(t, "d1"))
}

func TestScaleDownDeploymentIsStable(t *testing.T) {
	f := newFixture(t)
	f.createHost(t, "h1", models.Labels{"region": "eastus2"})
	f.createHost(t, "h2", models.Labels{"region": "eastus2"})
	f.createTarget(t, "t1", models.Labels{"region": "eastus2"})
	f.createDeployment(t, "d1", "t1", models.HostCountAll)
	f.reconcile(t, "d1")
	require.ElementsMatch(t, []string{"h1", "h2"}, f.assignedHosts(t, "d1"))

	_, _, err := f.svc.Deployment.Upsert(context.Background(), models.Deployment{
		ID: "d1", Name: "d1", WorkloadID: f.wl.ID, TargetID: "t1", HostCount: 1,
	})
	require.NoError(t, err)
	f.reconcile(t, "d1")
	got := f.assignedHosts(t, "d1")
	require.Len(t, got, 1)
	assert.Equal(t, "h1", got[0], "scale-down must keep the lowest host id by stable tie-break")
}

func TestSecondMatchingHostIsStableOnAddition(t *testing.T) {
	f := newFixture(t)
	f.createHost(t, "h1", models.Labels{"region": "eastus2"})
	f.createTarget(t, "t1", models.Labels{"region": "eastus2"})
	f.createDeployment(t, "d1", "t1", 1)
	f.reconcile(t, "d1")
	require.ElementsMatch(t, []string{"h1"}, f.assignedHosts(t, "d1"))

	f.createHost(t, "h2", models.Labels{"region": "eastus2"})
	f.reconcile(t, "d1")
	assert.ElementsMatch(t, []string{"h1"}, f.assignedHosts(t, "d1"), "host_count=1 must not grow just because a new eligible host appeared")
}

func TestHostDeletedShiftsAssignment(t *testing.T) {
	f := newFixture(t)
	f.createHost(t, "h1", models.Labels{"region": "eastus2"})
	f.createHost(t, "h2", models.Labels{"region": "eastus2"})
	f.createTarget(t, "t1", models.Labels{"region": "eastus2"})
	f.createDeployment(t, "d1", "t1", 1)
	f.reconcile(t, "d1")
	require.ElementsMatch(t, []string{"h1"}, f.assignedHosts(t, "d1"))

	_, err := f.svc.Host.Delete(context.Background(), "h1")
	require.NoError(t, err)
	f.reconcile(t, "d1")
	assert.ElementsMatch(t, []string{"h2"}, f.assignedHosts(t, "d1"))
}

func TestDoNothingWhenAlreadyConverged(t *testing.T) {
	f := newFixture(t)
	f.createHost(t, "h1", models.Labels{"region": "eastus2"})
	f.createTarget(t, "t1", models.Labels{"region": "eastus2"})
	f.createDeployment(t, "d1", "t1", 1)
	f.reconcile(t, "d1")
	before := f.assignedHosts(t, "d1")

	f.reconcile(t, "d1")
	after := f.assignedHosts(t, "d1")
	assert.Equal(t, before, after)
}

func TestDeploymentDeletedRemovesAllAssignments(t *testing.T) {
	f := newFixture(t)
	f.createHost(t, "h1", models.Labels{"region": "eastus2"})
	f.createTarget(t, "t1", models.Labels{"region": "eastus2"})
	f.createDeployment(t, "d1", "t1", 1)
	f.reconcile(t, "d1")
	require.NotEmpty(t, f.assignedHosts(t, "d1"))

	_, err := f.svc.Deployment.Delete(context.Background(), "d1")
	require.NoError(t, err)
	assert.Empty(t, f.assignedHosts(t, "d1"))
}
