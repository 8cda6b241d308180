package eventstream

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orchestrator-core/controlplane/internal/models"
)

// executor is satisfied by *pgxpool.Pool, matching the pattern in
// internal/store/postgres so this package needs no direct dependency on
// the store package's transaction plumbing.
type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStream persists the event log in the event_queue table, with one
// row per (event, consumer) copy: send fans out into a row per subscribed
// consumer_id, receive selects a single consumer's remaining rows, delete
// removes exactly one.
type PostgresStream struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an already-migrated pool. The event_queue and
// event_consumers tables are created by
// internal/store/postgres/migrations/00001_initial_schema.sql.
func NewPostgres(pool *pgxpool.Pool) *PostgresStream {
	return &PostgresStream{pool: pool}
}

// Subscribe registers consumerID in event_consumers and, on first
// registration, copies every event that still has an event_queue row for
// another consumer. Delete removes rows, so an event that every existing
// consumer has acknowledged is gone and is not backfilled.
func (s *PostgresStream) Subscribe(ctx context.Context, consumerID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning subscribe transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO event_consumers (consumer_id, first_seen) VALUES ($1, now())
		ON CONFLICT (consumer_id) DO NOTHING
	`, consumerID)
	if err != nil {
		return fmt.Errorf("registering consumer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already subscribed; nothing to backfill.
		return tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO event_queue (id, event_timestamp, consumer_id, operation_id, event_type, model_type,
			serialized_previous_model, serialized_current_model)
		SELECT id, event_timestamp, $1, operation_id, event_type, model_type,
			serialized_previous_model, serialized_current_model
		FROM event_queue
		WHERE id IN (SELECT DISTINCT id FROM event_queue)
		ON CONFLICT (id, consumer_id) DO NOTHING
	`, consumerID)
	if err != nil {
		return fmt.Errorf("backfilling consumer %s: %w", consumerID, err)
	}
	return tx.Commit(ctx)
}

// Send fans event out on exec, the caller's own transaction when tx is a
// pgx.Tx (so the insert commits or rolls back together with whatever
// entity write produced event), or a fresh transaction of its own when tx
// is nil.
func (s *PostgresStream) Send(ctx context.Context, tx any, event models.Event) error {
	if pgtx, ok := tx.(pgx.Tx); ok {
		return s.send(ctx, pgtx, event)
	}

	ownTx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning send transaction: %w", err)
	}
	defer func() { _ = ownTx.Rollback(ctx) }()

	if err := s.send(ctx, ownTx, event); err != nil {
		return err
	}
	return ownTx.Commit(ctx)
}

func (s *PostgresStream) send(ctx context.Context, exec executor, event models.Event) error {
	rows, err := exec.Query(ctx, `SELECT consumer_id FROM event_consumers`)
	if err != nil {
		return fmt.Errorf("listing consumers: %w", err)
	}
	var consumers []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			rows.Close()
			return fmt.Errorf("scanning consumer: %w", err)
		}
		consumers = append(consumers, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("listing consumers: %w", err)
	}

	for _, consumerID := range consumers {
		_, err := exec.Exec(ctx, `
			INSERT INTO event_queue (id, event_timestamp, consumer_id, operation_id, event_type, model_type,
				serialized_previous_model, serialized_current_model)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id, consumer_id) DO NOTHING
		`, event.ID, event.Timestamp, consumerID, event.OperationID, int(event.EventType), int(event.ModelType),
			event.SerializedPreviousModel, event.SerializedCurrentModel)
		if err != nil {
			return fmt.Errorf("fanning out event %s to consumer %s: %w", event.ID, consumerID, err)
		}
	}
	return nil
}

func (s *PostgresStream) Receive(ctx context.Context, consumerID string, maxN int) ([]models.Event, error) {
	var probe int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM event_consumers WHERE consumer_id = $1`, consumerID).Scan(&probe)
	if err == pgx.ErrNoRows {
		return nil, ErrUnknownConsumer
	}
	if err != nil {
		return nil, fmt.Errorf("checking consumer %s: %w", consumerID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, event_timestamp, operation_id, event_type, model_type,
			serialized_previous_model, serialized_current_model
		FROM event_queue
		WHERE consumer_id = $1
		ORDER BY event_timestamp ASC, id ASC
		LIMIT $2
	`, consumerID, maxN)
	if err != nil {
		return nil, fmt.Errorf("receiving events for consumer %s: %w", consumerID, err)
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		var (
			e         models.Event
			eventType int
			modelType int
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.OperationID, &eventType, &modelType,
			&e.SerializedPreviousModel, &e.SerializedCurrentModel); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.EventType = models.EventType(eventType)
		e.ModelType = models.ModelKind(modelType)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStream) Delete(ctx context.Context, consumerID string, eventID string) error {
	var probe int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM event_consumers WHERE consumer_id = $1`, consumerID).Scan(&probe)
	if err == pgx.ErrNoRows {
		return ErrUnknownConsumer
	}
	if err != nil {
		return fmt.Errorf("checking consumer %s: %w", consumerID, err)
	}

	_, err = s.pool.Exec(ctx, `DELETE FROM event_queue WHERE id = $1 AND consumer_id = $2`, eventID, consumerID)
	if err != nil {
		return fmt.Errorf("acknowledging event %s for consumer %s: %w", eventID, consumerID, err)
	}
	return nil
}
