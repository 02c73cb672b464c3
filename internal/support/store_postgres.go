package support

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"idreclaim/pkg/sentinel"
)

// PostgresStore persists support tickets in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, ticket Ticket) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO support_tickets (id, email, subject, body, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ticket.ID, ticket.Email, ticket.Subject, ticket.Body, string(ticket.Status), ticket.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("save support ticket: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListOpen(ctx context.Context) ([]Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, subject, body, status, created_at
		FROM support_tickets WHERE status = $1 ORDER BY created_at ASC`, string(StatusOpen))
	if err != nil {
		return nil, fmt.Errorf("list support tickets: %w", err)
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		var t Ticket
		var status string
		if err := rows.Scan(&t.ID, &t.Email, &t.Subject, &t.Body, &status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan support ticket: %w", err)
		}
		t.Status = Status(status)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate support tickets: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE support_tickets SET status = $2 WHERE id = $1`,
		id, string(StatusClosed))
	if err != nil {
		return fmt.Errorf("close support ticket: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close support ticket: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
