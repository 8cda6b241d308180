// Package eventstream implements the durable, at-least-once, per-consumer
// ordered log of model-change events: send fans an event out into one copy
// per registered consumer_id; receive/delete act on a single consumer's
// copies so acknowledging an event for one consumer never affects another
// consumer's undelivered copy.
package eventstream

import (
	"context"
	"errors"

	"github.com/orchestrator-core/controlplane/internal/models"
)

// ErrUnknownConsumer is returned by Receive and Delete for a consumer_id
// that has never been passed to Subscribe.
var ErrUnknownConsumer = errors.New("eventstream: unknown consumer")

// Stream is the event stream contract. Both the in-memory and Postgres
// implementations satisfy it and are exercised by the same conformance
// suite (eventstream/conformance).
type Stream interface {
	// Send appends event, durably, as one deliverable copy per subscribed
	// consumer. If tx is non-nil it must be the same transaction handle the
	// caller's entity write used (the value store.Store.WithTx passed into
	// that write), so the event only becomes visible if and when that
	// transaction commits; pass nil for a standalone send with its own
	// commit. Implementations that don't need transactional joining (e.g.
	// MemoryStream, whose mutations are already atomic) ignore tx.
	Send(ctx context.Context, tx any, event models.Event) error

	// Receive returns up to maxN of consumerID's undelivered events in
	// ascending (timestamp, id) order. Events remain undelivered (and are
	// eligible for redelivery) until acknowledged with Delete.
	Receive(ctx context.Context, consumerID string, maxN int) ([]models.Event, error)

	// Delete acknowledges eventID for consumerID, advancing that
	// consumer's bookmark past it. It is a no-op if already acknowledged,
	// making redelivery-then-ack idempotent.
	Delete(ctx context.Context, consumerID string, eventID string) error

	// Subscribe registers consumerID, backfilling it with a deliverable
	// copy of every earlier event the implementation still holds, so a
	// consumer_id starts at epoch 0 for cold-start reconciliation.
	// MemoryStream holds every event it was sent; PostgresStream holds an
	// event only while some consumer has not yet acknowledged it, so an
	// event every existing consumer has acknowledged is not backfilled.
	// Subscribing an already-subscribed consumer is a no-op.
	Subscribe(ctx context.Context, consumerID string) error
}
