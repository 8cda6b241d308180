// Package conformance runs one behavioral contract against any store.Store
// implementation, so internal/store/memory and internal/store/postgres are
// held to identical CRUD and relationship-query semantics.
package conformance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

// Run exercises db, which must start empty. Callers running this against
// postgres are responsible for truncating tables between invocations; the
// in-memory store is fresh per memory.New().
func Run(t *testing.T, db store.Store) {
	t.Run("Workspace", func(t *testing.T) {
		ctx := context.Background()
		w := models.Workspace{ID: "ws-1"}
		require.NoError(t, db.UpsertWorkspace(ctx, nil, w))

		got, err := db.GetWorkspace(ctx, nil, w.ID)
		require.NoError(t, err)
		assert.Equal(t, w, got)

		list, err := db.ListWorkspaces(ctx, nil)
		require.NoError(t, err)
		assert.Contains(t, list, w)

		require.NoError(t, db.DeleteWorkspace(ctx, nil, w.ID))
		_, err = db.GetWorkspace(ctx, nil, w.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Workload", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, db.UpsertWorkspace(ctx, nil, models.Workspace{ID: "ws-workload"}))
		require.NoError(t, db.UpsertTemplate(ctx, nil, models.Template{ID: "tmpl-workload"}))

		w := models.Workload{ID: "wl-1", Name: "api", TeamID: "ws-workload", TemplateID: "tmpl-workload"}
		require.NoError(t, db.UpsertWorkload(ctx, nil, w))

		got, err := db.GetWorkload(ctx, nil, w.ID)
		require.NoError(t, err)
		assert.Equal(t, w, got)

		byTeam, err := db.WorkloadsByTeam(ctx, nil, "ws-workload")
		require.NoError(t, err)
		assert.Contains(t, byTeam, w)

		byTemplate, err := db.WorkloadsByTemplate(ctx, nil, "tmpl-workload")
		require.NoError(t, err)
		assert.Contains(t, byTemplate, w)

		require.NoError(t, db.DeleteWorkload(ctx, nil, w.ID))
		_, err = db.GetWorkload(ctx, nil, w.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Template", func(t *testing.T) {
		ctx := context.Background()
		tmpl := models.Template{ID: "tmpl-1", Repository: "git@example.com:org/repo.git", GitRef: "main", Path: "manifests"}
		require.NoError(t, db.UpsertTemplate(ctx, nil, tmpl))

		got, err := db.GetTemplate(ctx, nil, tmpl.ID)
		require.NoError(t, err)
		assert.Equal(t, tmpl, got)

		list, err := db.ListTemplates(ctx, nil)
		require.NoError(t, err)
		assert.Contains(t, list, tmpl)

		require.NoError(t, db.DeleteTemplate(ctx, nil, tmpl.ID))
		_, err = db.GetTemplate(ctx, nil, tmpl.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Target", func(t *testing.T) {
		ctx := context.Background()
		target := models.Target{ID: "tgt-1", Labels: models.Labels{"region": "us-east"}}
		require.NoError(t, db.UpsertTarget(ctx, nil, target))

		got, err := db.GetTarget(ctx, nil, target.ID)
		require.NoError(t, err)
		assert.Equal(t, target, got)

		list, err := db.ListTargets(ctx, nil)
		require.NoError(t, err)
		assert.Contains(t, list, target)

		require.NoError(t, db.DeleteTarget(ctx, nil, target.ID))
		_, err = db.GetTarget(ctx, nil, target.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Host", func(t *testing.T) {
		ctx := context.Background()
		matching := models.Host{ID: "host-1", Labels: models.Labels{"region": "us-east", "az": "a"}}
		other := models.Host{ID: "host-2", Labels: models.Labels{"region": "us-west"}}
		require.NoError(t, db.UpsertHost(ctx, nil, matching))
		require.NoError(t, db.UpsertHost(ctx, nil, other))

		got, err := db.GetHost(ctx, nil, matching.ID)
		require.NoError(t, err)
		assert.Equal(t, matching, got)

		list, err := db.ListHosts(ctx, nil)
		require.NoError(t, err)
		assert.Contains(t, list, matching)
		assert.Contains(t, list, other)

		eligible, err := db.HostsMatchingLabels(ctx, nil, models.Labels{"region": "us-east"})
		require.NoError(t, err)
		assert.Contains(t, eligible, matching)
		assert.NotContains(t, eligible, other)

		require.NoError(t, db.DeleteHost(ctx, nil, matching.ID))
		require.NoError(t, db.DeleteHost(ctx, nil, other.ID))
		_, err = db.GetHost(ctx, nil, matching.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Deployment", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, db.UpsertWorkspace(ctx, nil, models.Workspace{ID: "ws-dep"}))
		require.NoError(t, db.UpsertTemplate(ctx, nil, models.Template{ID: "tmpl-dep"}))
		require.NoError(t, db.UpsertWorkload(ctx, nil, models.Workload{ID: "wl-dep", TeamID: "ws-dep", TemplateID: "tmpl-dep"}))
		require.NoError(t, db.UpsertTarget(ctx, nil, models.Target{ID: "tgt-dep"}))

		d := models.Deployment{ID: "dep-1", Name: "api", WorkloadID: "wl-dep", TargetID: "tgt-dep", TemplateID: "tmpl-dep", HostCount: models.HostCountAll}
		require.NoError(t, db.UpsertDeployment(ctx, nil, d))

		got, err := db.GetDeployment(ctx, nil, d.ID)
		require.NoError(t, err)
		assert.Equal(t, d, got)

		byTarget, err := db.DeploymentsByTarget(ctx, nil, "tgt-dep")
		require.NoError(t, err)
		assert.Contains(t, byTarget, d)

		byWorkload, err := db.DeploymentsByWorkload(ctx, nil, "wl-dep")
		require.NoError(t, err)
		assert.Contains(t, byWorkload, d)

		byTemplate, err := db.DeploymentsByTemplate(ctx, nil, "tmpl-dep")
		require.NoError(t, err)
		assert.Contains(t, byTemplate, d)

		require.NoError(t, db.DeleteDeployment(ctx, nil, d.ID))
		_, err = db.GetDeployment(ctx, nil, d.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Assignment", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, db.UpsertWorkspace(ctx, nil, models.Workspace{ID: "ws-asg"}))
		require.NoError(t, db.UpsertTemplate(ctx, nil, models.Template{ID: "tmpl-asg"}))
		require.NoError(t, db.UpsertWorkload(ctx, nil, models.Workload{ID: "wl-asg", TeamID: "ws-asg", TemplateID: "tmpl-asg"}))
		require.NoError(t, db.UpsertTarget(ctx, nil, models.Target{ID: "tgt-asg"}))
		require.NoError(t, db.UpsertDeployment(ctx, nil, models.Deployment{ID: "dep-a", WorkloadID: "wl-asg", TargetID: "tgt-asg"}))
		require.NoError(t, db.UpsertHost(ctx, nil, models.Host{ID: "host-a"}))

		a := models.Assignment{ID: models.MakeAssignmentID("dep-a", "host-a"), DeploymentID: "dep-a", HostID: "host-a"}
		require.NoError(t, db.UpsertAssignment(ctx, nil, a))

		got, err := db.GetAssignment(ctx, nil, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a, got)

		byDeployment, err := db.AssignmentsByDeployment(ctx, nil, "dep-a")
		require.NoError(t, err)
		assert.Contains(t, byDeployment, a)

		byHost, err := db.AssignmentsByHost(ctx, nil, "host-a")
		require.NoError(t, err)
		assert.Contains(t, byHost, a)

		require.NoError(t, db.DeleteAssignment(ctx, nil, a.ID))
		_, err = db.GetAssignment(ctx, nil, a.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Config", func(t *testing.T) {
		ctx := context.Background()
		global := models.Config{ID: "cfg-1", Key: "LOG_LEVEL", Value: "info", ValueType: models.ValueTypeString}
		scoped := models.Config{ID: "cfg-2", Key: "REPLICAS", Value: "3", OwningKind: models.ModelDeployment, OwningID: "dep-cfg", ValueType: models.ValueTypeString}
		require.NoError(t, db.UpsertConfig(ctx, nil, global))
		require.NoError(t, db.UpsertConfig(ctx, nil, scoped))

		got, err := db.GetConfig(ctx, nil, scoped.ID)
		require.NoError(t, err)
		assert.Equal(t, scoped, got)

		byOwner, err := db.ConfigsByOwningModel(ctx, nil, models.ModelDeployment, "dep-cfg")
		require.NoError(t, err)
		assert.Contains(t, byOwner, scoped)
		assert.NotContains(t, byOwner, global)

		list, err := db.ListConfigs(ctx, nil)
		require.NoError(t, err)
		assert.Contains(t, list, global)
		assert.Contains(t, list, scoped)

		require.NoError(t, db.DeleteConfig(ctx, nil, global.ID))
		require.NoError(t, db.DeleteConfig(ctx, nil, scoped.ID))
		_, err = db.GetConfig(ctx, nil, scoped.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("WithTxCommitsOnSuccess", func(t *testing.T) {
		ctx := context.Background()
		err := db.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
			return db.UpsertWorkspace(ctx, tx, models.Workspace{ID: "ws-tx-commit"})
		})
		require.NoError(t, err)

		_, err = db.GetWorkspace(ctx, nil, "ws-tx-commit")
		require.NoError(t, err)
		require.NoError(t, db.DeleteWorkspace(ctx, nil, "ws-tx-commit"))
	})

	t.Run("WithTxRollsBackOnError", func(t *testing.T) {
		ctx := context.Background()
		sentinel := errors.New("reject")
		err := db.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
			if err := db.UpsertWorkspace(ctx, tx, models.Workspace{ID: "ws-tx-rollback"}); err != nil {
				return err
			}
			return sentinel
		})
		require.ErrorIs(t, err, sentinel)

		_, err = db.GetWorkspace(ctx, nil, "ws-tx-rollback")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("GetMissingReturnsErrNotFound", func(t *testing.T) {
		ctx := context.Background()
		_, err := db.GetDeployment(ctx, nil, "no-such-deployment")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("DeleteMissingIsNotAnError", func(t *testing.T) {
		ctx := context.Background()
		assert.NoError(t, db.DeleteHost(ctx, nil, "no-such-host"))
	})
}
