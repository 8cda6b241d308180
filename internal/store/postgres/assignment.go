package postgres

import (
	"context"
	"fmt"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

func (s *Store) UpsertAssignment(ctx context.Context, tx store.Tx, a models.Assignment) error {
	_, err := s.exec(tx).Exec(ctx, `
		INSERT INTO assignments (id, deployment_id, host_id) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET deployment_id = $2, host_id = $3
	`, a.ID, a.DeploymentID, a.HostID)
	if err != nil {
		return fmt.Errorf("upserting assignment: %w", err)
	}
	return nil
}

func (s *Store) DeleteAssignment(ctx context.Context, tx store.Tx, id string) error {
	_, err := s.exec(tx).Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting assignment: %w", err)
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, tx store.Tx, id string) (models.Assignment, error) {
	var a models.Assignment
	err := s.exec(tx).QueryRow(ctx, `
		SELECT id, deployment_id, host_id FROM assignments WHERE id = $1
	`, id).Scan(&a.ID, &a.DeploymentID, &a.HostID)
	if err != nil {
		return models.Assignment{}, wrapNotFound(err)
	}
	return a, nil
}

func (s *Store) ListAssignments(ctx context.Context, tx store.Tx) ([]models.Assignment, error) {
	return s.queryAssignments(ctx, tx, `SELECT id, deployment_id, host_id FROM assignments`)
}

func (s *Store) AssignmentsByDeployment(ctx context.Context, tx store.Tx, deploymentID string) ([]models.Assignment, error) {
	return s.queryAssignments(ctx, tx, `
		SELECT id, deployment_id, host_id FROM assignments WHERE deployment_id = $1
	`, deploymentID)
}

func (s *Store) AssignmentsByHost(ctx context.Context, tx store.Tx, hostID string) ([]models.Assignment, error) {
	return s.queryAssignments(ctx, tx, `
		SELECT id, deployment_id, host_id FROM assignments WHERE host_id = $1
	`, hostID)
}

func (s *Store) queryAssignments(ctx context.Context, tx store.Tx, sql string, args ...any) ([]models.Assignment, error) {
	rows, err := s.exec(tx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying assignments: %w", err)
	}
	defer rows.Close()

	var out []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.DeploymentID, &a.HostID); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
