package caserequest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"casevault/internal/cases/models"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const requestColumns = `id, title, description, requested_by, status, case_id, requested_at, reviewed_at`

func scanRequest(row interface{ Scan(...any) error }) (*models.CaseRequest, error) {
	var (
		r           models.CaseRequest
		requestID   uuid.UUID
		requestedBy uuid.UUID
		status      string
		caseID      uuid.NullUUID
		reviewedAt  sql.NullTime
	)
	if err := row.Scan(&requestID, &r.Title, &r.Description, &requestedBy, &status,
		&caseID, &r.RequestedAt, &reviewedAt); err != nil {
		return nil, err
	}
	r.ID = id.CaseRequestID(requestID)
	r.RequestedBy = id.UserID(requestedBy)
	r.Status = models.RequestStatus(status)
	if caseID.Valid {
		c := id.CaseID(caseID.UUID)
		r.CaseID = &c
	}
	if reviewedAt.Valid {
		r.ReviewedAt = &reviewedAt.Time
	}
	return &r, nil
}

func (s *PostgresStore) Create(ctx context.Context, r *models.CaseRequest) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO case_requests (id, title, description, requested_by, status, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(r.ID), r.Title, r.Description, uuid.UUID(r.RequestedBy), string(r.Status), r.RequestedAt)
	if err != nil {
		return fmt.Errorf("insert case request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.CaseRequestID) (*models.CaseRequest, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM case_requests WHERE id = $1`, uuid.UUID(requestID))
	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find case request: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.CaseRequest, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+requestColumns+` FROM case_requests ORDER BY requested_at`)
	if err != nil {
		return nil, fmt.Errorf("list case requests: %w", err)
	}
	defer rows.Close()
	out := make([]*models.CaseRequest, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Review only touches rows still pending, so concurrent approvals of the
// same request cannot both succeed.
func (s *PostgresStore) Review(ctx context.Context, requestID id.CaseRequestID, review Review) error {
	exec := tx.Executor(ctx, s.db)
	var caseID uuid.NullUUID
	if review.CaseID != nil {
		caseID = uuid.NullUUID{UUID: uuid.UUID(*review.CaseID), Valid: true}
	}
	res, err := exec.ExecContext(ctx, `
		UPDATE case_requests SET status = $2, case_id = $3, reviewed_at = $4
		WHERE id = $1 AND status = 'pending'`,
		uuid.UUID(requestID), string(review.Status), caseID, review.ReviewedAt)
	if err != nil {
		return fmt.Errorf("review case request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM case_requests WHERE id = $1)`, uuid.UUID(requestID)).Scan(&exists); err != nil {
		return fmt.Errorf("check case request: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidState
}
