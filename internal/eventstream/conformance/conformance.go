// Package conformance runs one behavioral contract against any
// eventstream.Stream implementation, so the in-memory and Postgres stores
// are held to identical send/receive/delete/subscribe semantics.
package conformance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestrator-core/controlplane/internal/eventstream"
	"github.com/orchestrator-core/controlplane/internal/models"
)

// Run exercises stream, which must start with no subscribed consumers and
// no events.
func Run(t *testing.T, stream eventstream.Stream) {
	t.Run("ReceiveBeforeSubscribeIsUnknownConsumer", func(t *testing.T) {
		ctx := context.Background()
		_, err := stream.Receive(ctx, "no-such-consumer", 10)
		assert.ErrorIs(t, err, eventstream.ErrUnknownConsumer)
	})

	t.Run("SendFansOutToEverySubscriber", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, stream.Subscribe(ctx, "reconciler-a"))
		require.NoError(t, stream.Subscribe(ctx, "gitops-a"))

		ev := newEvent("evt-fanout-1")
		require.NoError(t, stream.Send(ctx, nil, ev))

		got, err := stream.Receive(ctx, "reconciler-a", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ev.ID, got[0].ID)

		got, err = stream.Receive(ctx, "gitops-a", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ev.ID, got[0].ID)
	})

	t.Run("DeleteIsPerConsumer", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, stream.Subscribe(ctx, "reconciler-b"))
		require.NoError(t, stream.Subscribe(ctx, "gitops-b"))
		drain(t, stream, "reconciler-b")
		drain(t, stream, "gitops-b")

		ev := newEvent("evt-percons-1")
		require.NoError(t, stream.Send(ctx, nil, ev))
		require.NoError(t, stream.Delete(ctx, "reconciler-b", ev.ID))

		got, err := stream.Receive(ctx, "reconciler-b", 10)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = stream.Receive(ctx, "gitops-b", 10)
		require.NoError(t, err)
		require.Len(t, got, 1, "acknowledging for one consumer must not affect another's copy")
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, stream.Subscribe(ctx, "reconciler-c"))

		ev := newEvent("evt-idempotent-1")
		require.NoError(t, stream.Send(ctx, nil, ev))
		require.NoError(t, stream.Delete(ctx, "reconciler-c", ev.ID))
		assert.NoError(t, stream.Delete(ctx, "reconciler-c", ev.ID))
	})

	t.Run("LateSubscriberBackfillsFullHistory", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, stream.Subscribe(ctx, "reconciler-d"))

		ev1 := newEvent("evt-backfill-1")
		ev2 := newEvent("evt-backfill-2")
		require.NoError(t, stream.Send(ctx, nil, ev1))
		require.NoError(t, stream.Send(ctx, nil, ev2))

		require.NoError(t, stream.Subscribe(ctx, "gitops-d"))
		want, err := stream.Receive(ctx, "reconciler-d", 10)
		require.NoError(t, err)
		got, err := stream.Receive(ctx, "gitops-d", 10)
		require.NoError(t, err)
		assert.Equal(t, eventIDs(want), eventIDs(got), "a fresh consumer must start at epoch 0 and see prior history")
		assert.Contains(t, eventIDs(got), ev1.ID)
		assert.Contains(t, eventIDs(got), ev2.ID)
	})

	t.Run("ReceiveRespectsMaxNAndOrdering", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, stream.Subscribe(ctx, "reconciler-e"))
		drain(t, stream, "reconciler-e")

		base := time.Now()
		for i, id := range []string{"evt-order-1", "evt-order-2", "evt-order-3"} {
			ev := newEvent(id)
			ev.Timestamp = base.Add(time.Duration(i) * time.Second)
			require.NoError(t, stream.Send(ctx, nil, ev))
		}

		got, err := stream.Receive(ctx, "reconciler-e", 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "evt-order-1", got[0].ID)
		assert.Equal(t, "evt-order-2", got[1].ID)
	})

	t.Run("ResubscribeIsNoOp", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, stream.Subscribe(ctx, "reconciler-f"))
		drain(t, stream, "reconciler-f")
		ev := newEvent("evt-resub-1")
		require.NoError(t, stream.Send(ctx, nil, ev))
		require.NoError(t, stream.Delete(ctx, "reconciler-f", ev.ID))

		// Re-subscribing must not resurrect already-acknowledged events.
		require.NoError(t, stream.Subscribe(ctx, "reconciler-f"))
		got, err := stream.Receive(ctx, "reconciler-f", 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

// drain acknowledges everything consumerID was backfilled with on
// Subscribe. The subtests share one stream, so a newly subscribed consumer
// starts with copies of every earlier subtest's events.
func drain(t *testing.T, stream eventstream.Stream, consumerID string) {
	t.Helper()
	ctx := context.Background()
	for {
		evs, err := stream.Receive(ctx, consumerID, 100)
		require.NoError(t, err)
		if len(evs) == 0 {
			return
		}
		for _, e := range evs {
			require.NoError(t, stream.Delete(ctx, consumerID, e.ID))
		}
	}
}

func eventIDs(evs []models.Event) []string {
	ids := make([]string, 0, len(evs))
	for _, e := range evs {
		ids = append(ids, e.ID)
	}
	return ids
}

func newEvent(id string) models.Event {
	return models.Event{
		ID:                     id,
		Timestamp:              time.Now(),
		OperationID:            id,
		EventType:              models.Created,
		ModelType:              models.ModelDeployment,
		SerializedCurrentModel: []byte(`{"id":"` + id + `"}`),
	}
}
