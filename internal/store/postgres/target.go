package postgres

import (
	"context"
	"fmt"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

func (s *Store) UpsertTarget(ctx context.Context, tx store.Tx, t models.Target) error {
	_, err := s.exec(tx).Exec(ctx, `
		INSERT INTO targets (id, labels) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET labels = $2
	`, t.ID, labelSlice(t.Labels))
	if err != nil {
		return fmt.Errorf("upserting target: %w", err)
	}
	return nil
}

func (s *Store) DeleteTarget(ctx context.Context, tx store.Tx, id string) error {
	_, err := s.exec(tx).Exec(ctx, `DELETE FROM targets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting target: %w", err)
	}
	return nil
}

func (s *Store) GetTarget(ctx context.Context, tx store.Tx, id string) (models.Target, error) {
	var (
		t      models.Target
		labels []string
	)
	err := s.exec(tx).QueryRow(ctx, `SELECT id, labels FROM targets WHERE id = $1`, id).Scan(&t.ID, &labels)
	if err != nil {
		return models.Target{}, wrapNotFound(err)
	}
	t.Labels = labelMap(labels)
	return t, nil
}

func (s *Store) ListTargets(ctx context.Context, tx store.Tx) ([]models.Target, error) {
	rows, err := s.exec(tx).Query(ctx, `SELECT id, labels FROM targets`)
	if err != nil {
		return nil, fmt.Errorf("listing targets: %w", err)
	}
	defer rows.Close()

	var out []models.Target
	for rows.Next() {
		var (
			t      models.Target
			labels []string
		)
		if err := rows.Scan(&t.ID, &labels); err != nil {
			return nil, fmt.Errorf("scanning target: %w", err)
		}
		t.Labels = labelMap(labels)
		out = append(out, t)
	}
	return out, rows.Err()
}
