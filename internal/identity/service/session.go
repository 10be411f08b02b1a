package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"casevault/internal/identity/models"
	userStore "casevault/internal/identity/store/user"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/middleware/metadata"
	"casevault/pkg/requestcontext"
)

// dummyHash keeps unknown-username logins as slow as wrong-password ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("casevault-timing-equalizer"), bcrypt.DefaultCost)

// Authenticate checks a username and password pair and returns the full user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userStore.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, dErrors.New(dErrors.CodeInvalidCredentials, "Invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidCredentials, "Invalid credentials")
	}
	return sanitize(user), nil
}

// Login authenticates and issues an access token. Pending accounts are refused.
func (s *Service) Login(ctx context.Context, username, password string) (*models.Session, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if user.IsPending() {
		return nil, dErrors.New(dErrors.CodeAccountPending, "account is awaiting admin approval")
	}

	token, _, expiresAt, err := s.tokens.GenerateAccessToken(uuid.UUID(user.ID), user.Username, string(user.Role), s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	device := metadata.DeviceName(requestcontext.UserAgent(ctx))
	s.recordActivity(ctx, user.ID.String(), "LOGIN", "", fmt.Sprintf("User logged in from %s", device))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "user logged in",
			"user_id", user.ID.String(),
			"device", device,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return &models.Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes the caller's token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context) error {
	jti := requestcontext.TokenID(ctx)
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "no active token")
	}
	ttl := requestcontext.TokenExpiry(ctx).Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revocation.RevokeToken(ctx, jti, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	s.recordActivity(ctx, actorID(ctx), "LOGOUT", "", "User logged out")
	return nil
}

// IsTokenRevoked satisfies the auth middleware's revocation check.
func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	revoked, err := s.revocation.IsRevoked(ctx, jti)
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}

// IsRoleCurrent reports whether userID still exists and holds role, so tokens
// minted before a rejection or role change stop working.
func (s *Service) IsRoleCurrent(ctx context.Context, userID id.UserID, role string) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userStore.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load account: %w", err)
	}
	return string(user.Role) == role, nil
}

// TokenTTL reports the lifetime given to new tokens.
func (s *Service) TokenTTL() time.Duration { return s.tokenTTL }
