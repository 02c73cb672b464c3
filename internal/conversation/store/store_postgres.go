package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"idreclaim/internal/conversation/models"
	"idreclaim/pkg/sentinel"
)

// PostgresStore persists conversations and messages in PostgreSQL. The
// unique index over (LEAST(owner, finder), GREATEST(owner, finder)) makes
// GetOrCreate race-safe: concurrent opens collapse onto one row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, conv models.Conversation) (models.Conversation, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, report_id, owner_id, finder_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (LEAST(owner_id, finder_id), GREATEST(owner_id, finder_id)) DO NOTHING`,
		conv.ID, conv.ReportID, conv.OwnerID, conv.FinderID, conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		return models.Conversation{}, false, fmt.Errorf("create conversation: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return models.Conversation{}, false, fmt.Errorf("create conversation: %w", err)
	}
	if inserted > 0 {
		return conv, true, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, report_id, owner_id, finder_id, created_at, updated_at
		FROM conversations
		WHERE LEAST(owner_id, finder_id) = LEAST($1::text, $2::text)
		  AND GREATEST(owner_id, finder_id) = GREATEST($1::text, $2::text)`,
		conv.OwnerID, conv.FinderID,
	)
	existing, err := scanConversation(row)
	if err != nil {
		return models.Conversation{}, false, fmt.Errorf("load existing conversation: %w", err)
	}
	return existing, false, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (models.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, report_id, owner_id, finder_id, created_at, updated_at
		FROM conversations WHERE id = $1`, id)
	conv, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Conversation{}, fmt.Errorf("find conversation: %w", err)
	}
	return conv, nil
}

func (s *PostgresStore) ListForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, report_id, owner_id, finder_id, created_at, updated_at
		FROM conversations
		WHERE owner_id = $1 OR finder_id = $1
		ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.ReportID, &c.OwnerID, &c.FinderID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SaveMessage(ctx context.Context, msg models.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Body, msg.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("save message: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE conversations SET updated_at = GREATEST(updated_at, $2) WHERE id = $1`,
		msg.ConversationID, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM conversations WHERE id = $1)`, conversationID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check conversation: %w", err)
	}
	if !exists {
		return nil, sentinel.ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, body, created_at
		FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

func scanConversation(row *sql.Row) (models.Conversation, error) {
	var c models.Conversation
	err := row.Scan(&c.ID, &c.ReportID, &c.OwnerID, &c.FinderID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
