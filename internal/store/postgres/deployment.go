package postgres

import (
	"context"
	"fmt"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

func (s *Store) UpsertDeployment(ctx context.Context, tx store.Tx, d models.Deployment) error {
	_, err := s.exec(tx).Exec(ctx, `
		INSERT INTO deployments (id, name, workload_id, target_id, template_id, host_count)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		ON CONFLICT (id) DO UPDATE SET
			name = $2, workload_id = $3, target_id = $4, template_id = NULLIF($5, ''), host_count = $6
	`, d.ID, d.Name, d.WorkloadID, d.TargetID, d.TemplateID, d.HostCount)
	if err != nil {
		return fmt.Errorf("upserting deployment: %w", err)
	}
	return nil
}

func (s *Store) DeleteDeployment(ctx context.Context, tx store.Tx, id string) error {
	_, err := s.exec(tx).Exec(ctx, `DELETE FROM deployments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting deployment: %w", err)
	}
	return nil
}

func (s *Store) GetDeployment(ctx context.Context, tx store.Tx, id string) (models.Deployment, error) {
	d, err := scanDeploymentRow(s.exec(tx).QueryRow(ctx, `
		SELECT id, name, workload_id, target_id, COALESCE(template_id, ''), host_count
		FROM deployments WHERE id = $1
	`, id))
	if err != nil {
		return models.Deployment{}, wrapNotFound(err)
	}
	return d, nil
}

func (s *Store) ListDeployments(ctx context.Context, tx store.Tx) ([]models.Deployment, error) {
	return s.queryDeployments(ctx, tx, `
		SELECT id, name, workload_id, target_id, COALESCE(template_id, ''), host_count FROM deployments
	`)
}

func (s *Store) DeploymentsByTarget(ctx context.Context, tx store.Tx, targetID string) ([]models.Deployment, error) {
	return s.queryDeployments(ctx, tx, `
		SELECT id, name, workload_id, target_id, COALESCE(template_id, ''), host_count
		FROM deployments WHERE target_id = $1
	`, targetID)
}

func (s *Store) DeploymentsByWorkload(ctx context.Context, tx store.Tx, workloadID string) ([]models.Deployment, error) {
	return s.queryDeployments(ctx, tx, `
		SELECT id, name, workload_id, target_id, COALESCE(template_id, ''), host_count
		FROM deployments WHERE workload_id = $1
	`, workloadID)
}

func (s *Store) DeploymentsByTemplate(ctx context.Context, tx store.Tx, templateID string) ([]models.Deployment, error) {
	return s.queryDeployments(ctx, tx, `
		SELECT id, name, workload_id, target_id, COALESCE(template_id, ''), host_count
		FROM deployments WHERE template_id = $1
	`, templateID)
}

func scanDeploymentRow(row rowScanner) (models.Deployment, error) {
	var d models.Deployment
	if err := row.Scan(&d.ID, &d.Name, &d.WorkloadID, &d.TargetID, &d.TemplateID, &d.HostCount); err != nil {
		return models.Deployment{}, err
	}
	return d, nil
}

func (s *Store) queryDeployments(ctx context.Context, tx store.Tx, sql string, args ...any) ([]models.Deployment, error) {
	rows, err := s.exec(tx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying deployments: %w", err)
	}
	defer rows.Close()

	var out []models.Deployment
	for rows.Next() {
		d, err := scanDeploymentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning deployment: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
