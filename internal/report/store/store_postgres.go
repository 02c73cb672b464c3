package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"idreclaim/internal/match"
	"idreclaim/internal/report/models"
	"idreclaim/pkg/sentinel"
)

// PostgresLostStore persists lost reports in PostgreSQL. The document-type
// prefix is materialized at insert time so candidate retrieval stays a plain
// indexed equality scan.
type PostgresLostStore struct {
	db *sql.DB
}

func NewPostgresLostStore(db *sql.DB) *PostgresLostStore {
	return &PostgresLostStore{db: db}
}

const lostColumns = `id, owner_id, document_type, full_name, id_number, date_of_birth,
	place_of_birth, date_of_issue, last_location, description, image_url, status, created_at`

func (s *PostgresLostStore) Save(ctx context.Context, report models.LostReport) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lost_reports (`+lostColumns+`, doc_type_prefix)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		report.ID, report.OwnerID, report.DocumentType, report.FullName,
		report.IDNumber, report.DateOfBirth, report.PlaceOfBirth, report.DateOfIssue,
		report.LastLocation, report.Description, report.ImageURL,
		string(report.Status), report.CreatedAt, match.DocTypePrefix(report.DocumentType),
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("save lost report: %w", err)
	}
	return nil
}

func (s *PostgresLostStore) FindByID(ctx context.Context, id uuid.UUID) (models.LostReport, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+lostColumns+` FROM lost_reports WHERE id = $1`, id)
	report, err := scanLost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LostReport{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.LostReport{}, fmt.Errorf("find lost report: %w", err)
	}
	return report, nil
}

func (s *PostgresLostStore) ListByOwner(ctx context.Context, ownerID string) ([]models.LostReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+lostColumns+` FROM lost_reports
		WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list lost reports by owner: %w", err)
	}
	return collectLost(rows)
}

func (s *PostgresLostStore) ListRecent(ctx context.Context, limit int) ([]models.LostReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+lostColumns+` FROM lost_reports
		ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent lost reports: %w", err)
	}
	return collectLost(rows)
}

func (s *PostgresLostStore) Search(ctx context.Context, query string) ([]models.LostReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+lostColumns+` FROM lost_reports
		WHERE document_type ILIKE $1 OR full_name ILIKE $1
		   OR last_location ILIKE $1 OR description ILIKE $1
		ORDER BY created_at DESC`, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("search lost reports: %w", err)
	}
	return collectLost(rows)
}

func (s *PostgresLostStore) ListEligibleByType(ctx context.Context, docPrefix string) ([]models.LostReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+lostColumns+` FROM lost_reports
		WHERE status = $1 AND doc_type_prefix = $2
		ORDER BY created_at ASC`, string(models.StatusLost), docPrefix)
	if err != nil {
		return nil, fmt.Errorf("list eligible lost reports: %w", err)
	}
	return collectLost(rows)
}

// UpdateStatus transitions in one conditional write: the row is touched only
// when it already holds the target status (no-op) or a status the transition
// table allows from. Zero rows then means either a missing report or an
// illegal transition, disambiguated with a follow-up read.
func (s *PostgresLostStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.LostStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE lost_reports SET status = $2
		WHERE id = $1 AND (status = $2 OR status = ANY($3))`,
		id, string(status), pq.Array(lostSourcesFor(status)),
	)
	if err != nil {
		return fmt.Errorf("update lost report status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lost report status: %w", err)
	}
	if affected == 0 {
		var current string
		err := s.db.QueryRowContext(ctx, `SELECT status FROM lost_reports WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("update lost report status: %w", err)
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresLostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lost_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lost report: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete lost report: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// PostgresFoundStore persists found reports in PostgreSQL.
type PostgresFoundStore struct {
	db *sql.DB
}

func NewPostgresFoundStore(db *sql.DB) *PostgresFoundStore {
	return &PostgresFoundStore{db: db}
}

const foundColumns = `id, finder_id, finder_name, document_type, full_name, id_number,
	date_of_birth, place_of_birth, date_of_issue, region, location_detail, image_url,
	target_owner_id, status, created_at`

func (s *PostgresFoundStore) Save(ctx context.Context, report models.FoundReport) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO found_reports (`+foundColumns+`, doc_type_prefix)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		report.ID, report.FinderID, report.FinderName, report.DocumentType, report.FullName,
		report.IDNumber, report.DateOfBirth, report.PlaceOfBirth, report.DateOfIssue,
		report.Region, report.LocationDetail, report.ImageURL, report.TargetOwnerID,
		string(report.Status), report.CreatedAt, match.DocTypePrefix(report.DocumentType),
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("save found report: %w", err)
	}
	return nil
}

func (s *PostgresFoundStore) FindByID(ctx context.Context, id uuid.UUID) (models.FoundReport, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+foundColumns+` FROM found_reports WHERE id = $1`, id)
	report, err := scanFound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FoundReport{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.FoundReport{}, fmt.Errorf("find found report: %w", err)
	}
	return report, nil
}

func (s *PostgresFoundStore) ListByFinder(ctx context.Context, finderID string) ([]models.FoundReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+foundColumns+` FROM found_reports
		WHERE finder_id = $1 ORDER BY created_at DESC`, finderID)
	if err != nil {
		return nil, fmt.Errorf("list found reports by finder: %w", err)
	}
	return collectFound(rows)
}

func (s *PostgresFoundStore) ListRecent(ctx context.Context, limit int) ([]models.FoundReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+foundColumns+` FROM found_reports
		ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent found reports: %w", err)
	}
	return collectFound(rows)
}

func (s *PostgresFoundStore) Search(ctx context.Context, query string) ([]models.FoundReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+foundColumns+` FROM found_reports
		WHERE document_type ILIKE $1 OR full_name ILIKE $1
		   OR region ILIKE $1 OR location_detail ILIKE $1
		ORDER BY created_at DESC`, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("search found reports: %w", err)
	}
	return collectFound(rows)
}

func (s *PostgresFoundStore) ListEligibleByType(ctx context.Context, docPrefix string) ([]models.FoundReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+foundColumns+` FROM found_reports
		WHERE status = $1 AND doc_type_prefix = $2
		ORDER BY created_at ASC`, string(models.FoundAvailable), docPrefix)
	if err != nil {
		return nil, fmt.Errorf("list eligible found reports: %w", err)
	}
	return collectFound(rows)
}

func (s *PostgresFoundStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.FoundStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE found_reports SET status = $2
		WHERE id = $1 AND (status = $2 OR status = ANY($3))`,
		id, string(status), pq.Array(foundSourcesFor(status)),
	)
	if err != nil {
		return fmt.Errorf("update found report status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update found report status: %w", err)
	}
	if affected == 0 {
		var current string
		err := s.db.QueryRowContext(ctx, `SELECT status FROM found_reports WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("update found report status: %w", err)
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresFoundStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM found_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete found report: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete found report: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// lostSourcesFor enumerates the statuses the transition table allows as a
// source for the given target.
func lostSourcesFor(target models.LostStatus) []string {
	var sources []string
	for _, from := range []models.LostStatus{models.StatusLost, models.StatusMatched, models.StatusReturned} {
		if from.CanTransitionTo(target) {
			sources = append(sources, string(from))
		}
	}
	return sources
}

func foundSourcesFor(target models.FoundStatus) []string {
	var sources []string
	for _, from := range []models.FoundStatus{models.FoundAvailable, models.FoundMatched} {
		if from.CanTransitionTo(target) {
			sources = append(sources, string(from))
		}
	}
	return sources
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func scanLost(row *sql.Row) (models.LostReport, error) {
	var r models.LostReport
	var status string
	err := row.Scan(&r.ID, &r.OwnerID, &r.DocumentType, &r.FullName, &r.IDNumber,
		&r.DateOfBirth, &r.PlaceOfBirth, &r.DateOfIssue, &r.LastLocation,
		&r.Description, &r.ImageURL, &status, &r.CreatedAt)
	r.Status = models.LostStatus(status)
	return r, err
}

func collectLost(rows *sql.Rows) ([]models.LostReport, error) {
	defer rows.Close()
	var out []models.LostReport
	for rows.Next() {
		var r models.LostReport
		var status string
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.DocumentType, &r.FullName, &r.IDNumber,
			&r.DateOfBirth, &r.PlaceOfBirth, &r.DateOfIssue, &r.LastLocation,
			&r.Description, &r.ImageURL, &status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lost report: %w", err)
		}
		r.Status = models.LostStatus(status)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lost reports: %w", err)
	}
	return out, nil
}

func scanFound(row *sql.Row) (models.FoundReport, error) {
	var r models.FoundReport
	var status string
	err := row.Scan(&r.ID, &r.FinderID, &r.FinderName, &r.DocumentType, &r.FullName,
		&r.IDNumber, &r.DateOfBirth, &r.PlaceOfBirth, &r.DateOfIssue, &r.Region,
		&r.LocationDetail, &r.ImageURL, &r.TargetOwnerID, &status, &r.CreatedAt)
	r.Status = models.FoundStatus(status)
	return r, err
}

func collectFound(rows *sql.Rows) ([]models.FoundReport, error) {
	defer rows.Close()
	var out []models.FoundReport
	for rows.Next() {
		var r models.FoundReport
		var status string
		if err := rows.Scan(&r.ID, &r.FinderID, &r.FinderName, &r.DocumentType, &r.FullName,
			&r.IDNumber, &r.DateOfBirth, &r.PlaceOfBirth, &r.DateOfIssue, &r.Region,
			&r.LocationDetail, &r.ImageURL, &r.TargetOwnerID, &status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan found report: %w", err)
		}
		r.Status = models.FoundStatus(status)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate found reports: %w", err)
	}
	return out, nil
}
