// Package service implements registration, login and admin approval of
// casevault accounts.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"casevault/internal/identity/models"
	"casevault/internal/platform/metrics"
	"casevault/pkg/attrs"
	id "casevault/pkg/domain"
	"casevault/pkg/requestcontext"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	UpdateRole(ctx context.Context, userID id.UserID, role models.Role) error
	UpdateProfile(ctx context.Context, userID id.UserID, update models.ProfileUpdate) error
	Delete(ctx context.Context, userID id.UserID) error
	FindSummaries(ctx context.Context, ids []id.UserID) (map[id.UserID]models.Summary, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, username, role string, expiresIn time.Duration) (token, jti string, expiresAt time.Time, err error)
}

type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// ActivityRecorder appends entries to the activity log.
type ActivityRecorder interface {
	Record(ctx context.Context, userID, activityType, relatedID, details string) error
}

type Service struct {
	users      UserStore
	tokens     TokenIssuer
	revocation RevocationList
	activity   ActivityRecorder
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tokenTTL   time.Duration
	now        func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithActivityRecorder(r ActivityRecorder) Option {
	return func(s *Service) {
		s.activity = r
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(users UserStore, tokens TokenIssuer, revocation RevocationList, opts ...Option) *Service {
	s := &Service{
		users:      users,
		tokens:     tokens,
		revocation: revocation,
		tokenTTL:   12 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// logAudit writes an audit line and mirrors it to the activity log under the
// acting user when one is present.
func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, args...)
	}
	if a, ok := attrs.ActivityOf(attributes); ok {
		s.recordActivity(ctx, a.Actor, event, a.RelatedID, a.Details)
	}
}

func (s *Service) recordActivity(ctx context.Context, userID, activityType, relatedID, details string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, userID, activityType, relatedID, details); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to record activity",
			"activity_type", activityType,
			"user_id", userID,
			"error", err,
		)
	}
}

func actorID(ctx context.Context) string {
	if userID := requestcontext.UserID(ctx); !userID.IsNil() {
		return userID.String()
	}
	return ""
}
