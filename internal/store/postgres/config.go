package postgres

import (
	"context"
	"fmt"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/store"
)

func (s *Store) UpsertConfig(ctx context.Context, tx store.Tx, c models.Config) error {
	_, err := s.exec(tx).Exec(ctx, `
		INSERT INTO configs (id, key, value, owning_kind, owning_id, value_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			key = $2, value = $3, owning_kind = $4, owning_id = $5, value_type = $6
	`, c.ID, c.Key, c.Value, int(c.OwningKind), c.OwningID, int(c.ValueType))
	if err != nil {
		return fmt.Errorf("upserting config: %w", err)
	}
	return nil
}

func (s *Store) DeleteConfig(ctx context.Context, tx store.Tx, id string) error {
	_, err := s.exec(tx).Exec(ctx, `DELETE FROM configs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting config: %w", err)
	}
	return nil
}

func (s *Store) GetConfig(ctx context.Context, tx store.Tx, id string) (models.Config, error) {
	c, err := scanConfigRow(s.exec(tx).QueryRow(ctx, `
		SELECT id, key, value, owning_kind, owning_id, value_type FROM configs WHERE id = $1
	`, id))
	if err != nil {
		return models.Config{}, wrapNotFound(err)
	}
	return c, nil
}

func (s *Store) ListConfigs(ctx context.Context, tx store.Tx) ([]models.Config, error) {
	return s.queryConfigs(ctx, tx, `SELECT id, key, value, owning_kind, owning_id, value_type FROM configs`)
}

func (s *Store) ConfigsByOwningModel(ctx context.Context, tx store.Tx, kind models.ModelKind, id string) ([]models.Config, error) {
	return s.queryConfigs(ctx, tx, `
		SELECT id, key, value, owning_kind, owning_id, value_type FROM configs
		WHERE owning_kind = $1 AND owning_id = $2
	`, int(kind), id)
}

func scanConfigRow(row rowScanner) (models.Config, error) {
	var (
		c          models.Config
		owningKind int
		valueType  int
	)
	if err := row.Scan(&c.ID, &c.Key, &c.Value, &owningKind, &c.OwningID, &valueType); err != nil {
		return models.Config{}, err
	}
	c.OwningKind = models.ModelKind(owningKind)
	c.ValueType = models.ValueType(valueType)
	return c, nil
}

func (s *Store) queryConfigs(ctx context.Context, tx store.Tx, sql string, args ...any) ([]models.Config, error) {
	rows, err := s.exec(tx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying configs: %w", err)
	}
	defer rows.Close()

	var out []models.Config
	for rows.Next() {
		c, err := scanConfigRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning config: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
