package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"casevault/internal/identity/models"
	"casevault/internal/platform/postgres"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/tx"
)

// PostgresStore persists users in the users table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, username, password_hash, email, full_name, batch_id, department, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var (
		u      models.User
		userID uuid.UUID
		role   string
	)
	if err := row.Scan(&userID, &u.Username, &u.PasswordHash, &u.Email, &u.FullName,
		&u.BatchID, &u.Department, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UserID(userID)
	u.Role = models.Role(role)
	return &u, nil
}

func mapConflict(err error) error {
	constraint, ok := postgres.UniqueConstraint(err)
	if !ok {
		return err
	}
	if constraint == "users_email_key" {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(u.ID), u.Username, u.PasswordHash, u.Email, u.FullName,
		u.BatchID, u.Department, string(u.Role), u.CreatedAt)
	if err != nil {
		if mapped := mapConflict(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at`, string(role))
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	out := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateRole(ctx context.Context, userID id.UserID, role models.Role) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET role = $2 WHERE id = $1`, uuid.UUID(userID), string(role))
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, userID id.UserID, p models.ProfileUpdate) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE users SET email = $2, full_name = $3, batch_id = $4, department = $5
		WHERE id = $1`,
		uuid.UUID(userID), p.Email, p.FullName, p.BatchID, p.Department)
	if err != nil {
		if mapped := mapConflict(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update user profile: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) FindSummaries(ctx context.Context, ids []id.UserID) (map[id.UserID]models.Summary, error) {
	out := make(map[id.UserID]models.Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]string, len(ids))
	for i, userID := range ids {
		raw[i] = userID.String()
	}
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT id, username, full_name FROM users WHERE id = ANY($1::uuid[])`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("find user summaries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			userID uuid.UUID
			sum    models.Summary
		)
		if err := rows.Scan(&userID, &sum.Username, &sum.FullName); err != nil {
			return nil, fmt.Errorf("scan user summary: %w", err)
		}
		sum.ID = id.UserID(userID)
		out[sum.ID] = sum
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
