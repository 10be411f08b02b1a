package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"casevault/internal/access/models"
	"casevault/internal/platform/postgres"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const accessColumns = `id, user_id, case_id, status, requested_at, reviewed_at`

func scanAccess(row interface{ Scan(...any) error }) (*models.AccessRequest, error) {
	var (
		a          models.AccessRequest
		requestID  uuid.UUID
		userID     uuid.UUID
		caseID     uuid.UUID
		status     string
		reviewedAt sql.NullTime
	)
	if err := row.Scan(&requestID, &userID, &caseID, &status, &a.RequestedAt, &reviewedAt); err != nil {
		return nil, err
	}
	a.ID = id.AccessRequestID(requestID)
	a.UserID = id.UserID(userID)
	a.CaseID = id.CaseID(caseID)
	a.Status = models.Status(status)
	if reviewedAt.Valid {
		a.ReviewedAt = &reviewedAt.Time
	}
	return &a, nil
}

func (s *PostgresStore) Create(ctx context.Context, a *models.AccessRequest) error {
	var reviewedAt sql.NullTime
	if a.ReviewedAt != nil {
		reviewedAt = sql.NullTime{Time: *a.ReviewedAt, Valid: true}
	}
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO access_requests (`+accessColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(a.ID), uuid.UUID(a.UserID), uuid.UUID(a.CaseID), string(a.Status), a.RequestedAt, reviewedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert access request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.AccessRequestID) (*models.AccessRequest, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+accessColumns+` FROM access_requests WHERE id = $1`, uuid.UUID(requestID))
	a, err := scanAccess(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find access request: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.AccessRequest, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+accessColumns+` FROM access_requests WHERE status = $1 ORDER BY requested_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list access requests: %w", err)
	}
	defer rows.Close()
	out := make([]*models.AccessRequest, 0)
	for rows.Next() {
		a, err := scanAccess(rows)
		if err != nil {
			return nil, fmt.Errorf("scan access request: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Approve(ctx context.Context, requestID id.AccessRequestID, at time.Time) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE access_requests SET status = 'approved', reviewed_at = $2 WHERE id = $1`,
		uuid.UUID(requestID), at)
	if err != nil {
		return fmt.Errorf("approve access request: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, requestID id.AccessRequestID) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM access_requests WHERE id = $1`, uuid.UUID(requestID))
	if err != nil {
		return fmt.Errorf("delete access request: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) ApprovedCaseIDs(ctx context.Context, userID id.UserID) (map[id.CaseID]struct{}, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT case_id FROM access_requests WHERE user_id = $1 AND status = 'approved'`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list approved cases: %w", err)
	}
	defer rows.Close()
	out := make(map[id.CaseID]struct{})
	for rows.Next() {
		var caseID uuid.UUID
		if err := rows.Scan(&caseID); err != nil {
			return nil, fmt.Errorf("scan approved case: %w", err)
		}
		out[id.CaseID(caseID)] = struct{}{}
	}
	return out, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
