package postgres

import (
	"context"
	"fmt"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

func (s *Store) UpsertWorkload(ctx context.Context, tx store.Tx, w models.Workload) error {
	_, err := s.exec(tx).Exec(ctx, `
		INSERT INTO workloads (id, name, team_id, template_id) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, team_id = $3, template_id = $4
	`, w.ID, w.Name, w.TeamID, w.TemplateID)
	if err != nil {
		return fmt.Errorf("upserting workload: %w", err)
	}
	return nil
}

func (s *Store) DeleteWorkload(ctx context.Context, tx store.Tx, id string) error {
	_, err := s.exec(tx).Exec(ctx, `DELETE FROM workloads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting workload: %w", err)
	}
	return nil
}

func (s *Store) GetWorkload(ctx context.Context, tx store.Tx, id string) (models.Workload, error) {
	var w models.Workload
	err := s.exec(tx).QueryRow(ctx, `
		SELECT id, name, team_id, template_id FROM workloads WHERE id = $1
	`, id).Scan(&w.ID, &w.Name, &w.TeamID, &w.TemplateID)
	if err != nil {
		return models.Workload{}, wrapNotFound(err)
	}
	return w, nil
}

func (s *Store) ListWorkloads(ctx context.Context, tx store.Tx) ([]models.Workload, error) {
	return s.queryWorkloads(ctx, tx, `SELECT id, name, team_id, template_id FROM workloads`)
}

func (s *Store) WorkloadsByTeam(ctx context.Context, tx store.Tx, teamID string) ([]models.Workload, error) {
	return s.queryWorkloads(ctx, tx, `
		SELECT id, name, team_id, template_id FROM workloads WHERE team_id = $1
	`, teamID)
}

func (s *Store) WorkloadsByTemplate(ctx context.Context, tx store.Tx, templateID string) ([]models.Workload, error) {
	return s.queryWorkloads(ctx, tx, `
		SELECT id, name, team_id, template_id FROM workloads WHERE template_id = $1
	`, templateID)
}

func (s *Store) queryWorkloads(ctx context.Context, tx store.Tx, sql string, args ...any) ([]models.Workload, error) {
	rows, err := s.exec(tx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workloads: %w", err)
	}
	defer rows.Close()

	var out []models.Workload
	for rows.Next() {
		var w models.Workload
		if err := rows.Scan(&w.ID, &w.Name, &w.TeamID, &w.TemplateID); err != nil {
			return nil, fmt.Errorf("scanning workload: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
