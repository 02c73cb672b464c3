package fraud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"idreclaim/pkg/sentinel"
)

// PostgresStore persists fraud reports in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, report Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fraud_reports (id, reporter_id, subject_report_id, reason, details, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		report.ID, report.ReporterID, report.SubjectReportID, report.Reason,
		report.Details, string(report.Status), report.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("save fraud report: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListOpen(ctx context.Context) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reporter_id, subject_report_id, reason, details, status, created_at
		FROM fraud_reports WHERE status = $1 ORDER BY created_at ASC`, string(StatusOpen))
	if err != nil {
		return nil, fmt.Errorf("list fraud reports: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var r Report
		var status string
		if err := rows.Scan(&r.ID, &r.ReporterID, &r.SubjectReportID, &r.Reason, &r.Details, &status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fraud report: %w", err)
		}
		r.Status = Status(status)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fraud reports: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkReviewed(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE fraud_reports SET status = $2 WHERE id = $1`,
		id, string(StatusReviewed))
	if err != nil {
		return fmt.Errorf("mark fraud report reviewed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark fraud report reviewed: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
