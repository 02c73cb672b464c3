package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"idreclaim/internal/vault/models"
	"idreclaim/pkg/sentinel"
)

// PostgresStore persists vaults in PostgreSQL. The unique constraint on
// owner_id makes GetOrCreate race-safe.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, vault models.Vault) (models.Vault, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO vaults (slug, owner_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id) DO NOTHING`,
		vault.Slug, vault.OwnerID, vault.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// Slug collision with another owner's vault.
			return models.Vault{}, false, sentinel.ErrConflict
		}
		return models.Vault{}, false, fmt.Errorf("create vault: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return models.Vault{}, false, fmt.Errorf("create vault: %w", err)
	}
	if inserted > 0 {
		return vault, true, nil
	}

	var existing models.Vault
	err = s.db.QueryRowContext(ctx,
		`SELECT slug, owner_id, created_at FROM vaults WHERE owner_id = $1`, vault.OwnerID).
		Scan(&existing.Slug, &existing.OwnerID, &existing.CreatedAt)
	if err != nil {
		return models.Vault{}, false, fmt.Errorf("load existing vault: %w", err)
	}
	return existing, false, nil
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (models.Vault, error) {
	var vault models.Vault
	err := s.db.QueryRowContext(ctx,
		`SELECT slug, owner_id, created_at FROM vaults WHERE slug = $1`, slug).
		Scan(&vault.Slug, &vault.OwnerID, &vault.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vault{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Vault{}, fmt.Errorf("find vault: %w", err)
	}
	return vault, nil
}
