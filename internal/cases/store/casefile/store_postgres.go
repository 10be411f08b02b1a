package casefile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

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

const caseColumns = `id, title, description, status, created_by, evidence_ids, created_at, updated_at`

func scanCase(row interface{ Scan(...any) error }) (*models.Case, error) {
	var (
		c           models.Case
		caseID      uuid.UUID
		createdBy   uuid.UUID
		status      string
		evidenceIDs []string
	)
	if err := row.Scan(&caseID, &c.Title, &c.Description, &status, &createdBy,
		pq.Array(&evidenceIDs), &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ID = id.CaseID(caseID)
	c.CreatedBy = id.UserID(createdBy)
	c.Status = models.Status(status)
	c.EvidenceIDs = make([]id.EvidenceID, 0, len(evidenceIDs))
	for _, raw := range evidenceIDs {
		evidenceID, err := id.ParseEvidenceID(raw)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", caseID, err)
		}
		c.EvidenceIDs = append(c.EvidenceIDs, evidenceID)
	}
	return &c, nil
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Case) error {
	ids := make([]string, len(c.EvidenceIDs))
	for i, e := range c.EvidenceIDs {
		ids[i] = e.String()
	}
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO cases (`+caseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6::uuid[], $7, $8)`,
		uuid.UUID(c.ID), c.Title, c.Description, string(c.Status), uuid.UUID(c.CreatedBy),
		pq.Array(ids), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = $1`, uuid.UUID(caseID))
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find case: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Case, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+caseColumns+` FROM cases ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()
	out := make([]*models.Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) TransitionStatus(ctx context.Context, caseID id.CaseID, from, to models.Status, at time.Time) error {
	exec := tx.Executor(ctx, s.db)
	res, err := exec.ExecContext(ctx,
		`UPDATE cases SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		uuid.UUID(caseID), string(from), string(to), at)
	if err != nil {
		return fmt.Errorf("transition case status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM cases WHERE id = $1)`, uuid.UUID(caseID)).Scan(&exists); err != nil {
		return fmt.Errorf("check case: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidState
}

func (s *PostgresStore) AppendEvidence(ctx context.Context, caseID id.CaseID, evidenceID id.EvidenceID, at time.Time) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE cases SET evidence_ids = array_append(evidence_ids, $2), updated_at = $3 WHERE id = $1`,
		uuid.UUID(caseID), uuid.UUID(evidenceID), at)
	if err != nil {
		return fmt.Errorf("append case evidence: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
