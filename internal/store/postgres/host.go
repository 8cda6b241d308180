package postgres

import (
	"context"
	"fmt"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

func (s *Store) UpsertHost(ctx context.Context, tx store.Tx, h models.Host) error {
	_, err := s.exec(tx).Exec(ctx, `
		INSERT INTO hosts (id, labels, cpu_capacity, memory_capacity) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET labels = $2, cpu_capacity = $3, memory_capacity = $4
	`, h.ID, labelSlice(h.Labels), h.CPUCapacity, h.MemoryCapacity)
	if err != nil {
		return fmt.Errorf("upserting host: %w", err)
	}
	return nil
}

func (s *Store) DeleteHost(ctx context.Context, tx store.Tx, id string) error {
	_, err := s.exec(tx).Exec(ctx, `DELETE FROM hosts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting host: %w", err)
	}
	return nil
}

func (s *Store) GetHost(ctx context.Context, tx store.Tx, id string) (models.Host, error) {
	h, err := scanHostRow(s.exec(tx).QueryRow(ctx, `
		SELECT id, labels, cpu_capacity, memory_capacity FROM hosts WHERE id = $1
	`, id))
	if err != nil {
		return models.Host{}, wrapNotFound(err)
	}
	return h, nil
}

func (s *Store) ListHosts(ctx context.Context, tx store.Tx) ([]models.Host, error) {
	rows, err := s.exec(tx).Query(ctx, `SELECT id, labels, cpu_capacity, memory_capacity FROM hosts`)
	if err != nil {
		return nil, fmt.Errorf("listing hosts: %w", err)
	}
	defer rows.Close()
	return scanHostRows(rows)
}

// HostsMatchingLabels uses the labels GIN index's containment operator to
// find every Host whose labels are a superset of required, per the
// persistence layer's inverted label index requirement.
func (s *Store) HostsMatchingLabels(ctx context.Context, tx store.Tx, required models.Labels) ([]models.Host, error) {
	rows, err := s.exec(tx).Query(ctx, `
		SELECT id, labels, cpu_capacity, memory_capacity FROM hosts WHERE labels @> $1
	`, labelSlice(required))
	if err != nil {
		return nil, fmt.Errorf("matching hosts by labels: %w", err)
	}
	defer rows.Close()
	return scanHostRows(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHostRow(row rowScanner) (models.Host, error) {
	var (
		h      models.Host
		labels []string
	)
	if err := row.Scan(&h.ID, &labels, &h.CPUCapacity, &h.MemoryCapacity); err != nil {
		return models.Host{}, err
	}
	h.Labels = labelMap(labels)
	return h, nil
}

func scanHostRows(rows interface {
	Next() bool
	rowScanner
	Err() error
}) ([]models.Host, error) {
	var out []models.Host
	for rows.Next() {
		h, err := scanHostRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning host: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
