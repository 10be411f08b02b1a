package revocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresTRL stores revoked token ids in token_revocations. Expired rows are
// ignored on read and pruned on write.
type PostgresTRL struct {
	db    *sql.DB
	clock Clock
}

func NewPostgresTRL(db *sql.DB, clock Clock) *PostgresTRL {
	if clock == nil {
		clock = time.Now
	}
	return &PostgresTRL{db: db, clock: clock}
}

func (t *PostgresTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	if jti == "" {
		return nil
	}
	now := t.clock()
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO token_revocations (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		jti, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if _, err := t.db.ExecContext(ctx, `DELETE FROM token_revocations WHERE expires_at < $1`, now); err != nil {
		return fmt.Errorf("prune token revocations: %w", err)
	}
	return nil
}

func (t *PostgresTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var expiresAt time.Time
	err := t.db.QueryRowContext(ctx, `SELECT expires_at FROM token_revocations WHERE jti = $1`, jti).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return !t.clock().After(expiresAt), nil
}
