package postgres

import (
	"context"
	"fmt"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

func (s *Store) UpsertWorkspace(ctx context.Context, tx store.Tx, w models.Workspace) error {
	_, err := s.exec(tx).Exec(ctx, `
		INSERT INTO workspaces (id) VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, w.ID)
	if err != nil {
		return fmt.Errorf("upserting workspace: %w", err)
	}
	return nil
}

func (s *Store) DeleteWorkspace(ctx context.Context, tx store.Tx, id string) error {
	_, err := s.exec(tx).Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting workspace: %w", err)
	}
	return nil
}

func (s *Store) GetWorkspace(ctx context.Context, tx store.Tx, id string) (models.Workspace, error) {
	var w models.Workspace
	err := s.exec(tx).QueryRow(ctx, `SELECT id FROM workspaces WHERE id = $1`, id).Scan(&w.ID)
	if err != nil {
		return models.Workspace{}, wrapNotFound(err)
	}
	return w, nil
}

func (s *Store) ListWorkspaces(ctx context.Context, tx store.Tx) ([]models.Workspace, error) {
	rows, err := s.exec(tx).Query(ctx, `SELECT id FROM workspaces`)
	if err != nil {
		return nil, fmt.Errorf("listing workspaces: %w", err)
	}
	defer rows.Close()

	var out []models.Workspace
	for rows.Next() {
		var w models.Workspace
		if err := rows.Scan(&w.ID); err != nil {
			return nil, fmt.Errorf("scanning workspace: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
