package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"casevault/internal/evidence/models"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, e *models.Evidence) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO evidence (id, case_id, title, description, file_hash, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(e.ID), uuid.UUID(e.CaseID), e.Title, e.Description, e.FileHash, e.UploadedBy, e.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert evidence: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCase(ctx context.Context, caseID id.CaseID) ([]*models.Evidence, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT id, case_id, title, description, file_hash, uploaded_by, uploaded_at
		FROM evidence WHERE case_id = $1 ORDER BY uploaded_at, id`, uuid.UUID(caseID))
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Evidence, 0)
	for rows.Next() {
		var (
			e       models.Evidence
			rawID   uuid.UUID
			rawCase uuid.UUID
		)
		if err := rows.Scan(&rawID, &rawCase, &e.Title, &e.Description, &e.FileHash, &e.UploadedBy, &e.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		e.ID = id.EvidenceID(rawID)
		e.CaseID = id.CaseID(rawCase)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) TitlesByCase(ctx context.Context, caseIDs []id.CaseID) (map[id.CaseID][]string, error) {
	out := make(map[id.CaseID][]string, len(caseIDs))
	if len(caseIDs) == 0 {
		return out, nil
	}
	raw := make([]string, len(caseIDs))
	for i, c := range caseIDs {
		raw[i] = c.String()
		out[c] = []string{}
	}
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT case_id, title FROM evidence
		WHERE case_id = ANY($1::uuid[]) ORDER BY uploaded_at, id`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("list evidence titles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			caseID uuid.UUID
			title  string
		)
		if err := rows.Scan(&caseID, &title); err != nil {
			return nil, fmt.Errorf("scan evidence title: %w", err)
		}
		out[id.CaseID(caseID)] = append(out[id.CaseID(caseID)], title)
	}
	return out, rows.Err()
}
