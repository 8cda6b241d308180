package postgres

import (
	"context"
	"fmt"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

func (s *Store) UpsertTemplate(ctx context.Context, tx store.Tx, t models.Template) error {
	_, err := s.exec(tx).Exec(ctx, `
		INSERT INTO templates (id, repository, git_ref, path) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET repository = $2, git_ref = $3, path = $4
	`, t.ID, t.Repository, t.GitRef, t.Path)
	if err != nil {
		return fmt.Errorf("upserting template: %w", err)
	}
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, tx store.Tx, id string) error {
	_, err := s.exec(tx).Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return nil
}

func (s *Store) GetTemplate(ctx context.Context, tx store.Tx, id string) (models.Template, error) {
	var t models.Template
	err := s.exec(tx).QueryRow(ctx, `
		SELECT id, repository, git_ref, path FROM templates WHERE id = $1
	`, id).Scan(&t.ID, &t.Repository, &t.GitRef, &t.Path)
	if err != nil {
		return models.Template{}, wrapNotFound(err)
	}
	return t, nil
}

func (s *Store) ListTemplates(ctx context.Context, tx store.Tx) ([]models.Template, error) {
	rows, err := s.exec(tx).Query(ctx, `SELECT id, repository, git_ref, path FROM templates`)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var out []models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.Repository, &t.GitRef, &t.Path); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
