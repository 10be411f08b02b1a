package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"casevault/internal/activity/models"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append inserts entries with a single multi-row statement.
func (s *PostgresStore) Append(ctx context.Context, entries ...models.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	var (
		b    strings.Builder
		args = make([]any, 0, len(entries)*6)
	)
	b.WriteString(`INSERT INTO activity_log (id, user_id, activity_type, related_id, details, created_at) VALUES `)
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 6
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args, uuid.UUID(e.ID), e.UserID, e.ActivityType, e.RelatedID, e.Details, e.CreatedAt)
	}
	if _, err := tx.Executor(ctx, s.db).ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Entry, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT id, user_id, activity_type, related_id, details, created_at
		FROM activity_log ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	out := make([]models.Entry, 0)
	for rows.Next() {
		var (
			e     models.Entry
			rawID uuid.UUID
		)
		if err := rows.Scan(&rawID, &e.UserID, &e.ActivityType, &e.RelatedID, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.ID = id.ActivityID(rawID)
		out = append(out, e)
	}
	return out, rows.Err()
}
