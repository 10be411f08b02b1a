// Package service runs the case lifecycle: users request cases, admins
// approve them into open cases and later close them.
package service

import (
	"context"
	"log/slog"
	"time"

	accessModels "casevault/internal/access/models"
	"casevault/internal/cases/models"
	"casevault/internal/cases/store/caserequest"
	identityModels "casevault/internal/identity/models"
	"casevault/internal/platform/metrics"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/tx"
	"casevault/pkg/requestcontext"
)

type CaseStore interface {
	Create(ctx context.Context, c *models.Case) error
	FindByID(ctx context.Context, caseID id.CaseID) (*models.Case, error)
	TransitionStatus(ctx context.Context, caseID id.CaseID, from, to models.Status, at time.Time) error
}

type RequestStore interface {
	Create(ctx context.Context, r *models.CaseRequest) error
	FindByID(ctx context.Context, requestID id.CaseRequestID) (*models.CaseRequest, error)
	List(ctx context.Context) ([]*models.CaseRequest, error)
	Review(ctx context.Context, requestID id.CaseRequestID, review caserequest.Review) error
}

// AccessGrants records the requester's access to a newly opened case.
type AccessGrants interface {
	Create(ctx context.Context, a *accessModels.AccessRequest) error
}

type UserDirectory interface {
	Exists(ctx context.Context, userID id.UserID) (bool, error)
	Summaries(ctx context.Context, ids []id.UserID) (map[id.UserID]identityModels.Summary, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID, activityType, relatedID, details string) error
}

type Service struct {
	cases    CaseStore
	requests RequestStore
	access   AccessGrants
	users    UserDirectory
	tx       tx.Runner
	activity ActivityRecorder
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Service)

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

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(cases CaseStore, requests RequestStore, access AccessGrants, users UserDirectory, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		cases:    cases,
		requests: requests,
		access:   access,
		users:    users,
		tx:       runner,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, args...)
	}
}

func (s *Service) recordActivity(ctx context.Context, activityType, relatedID, details string) {
	actor := requestcontext.UserID(ctx)
	if s.activity == nil || actor.IsNil() {
		return
	}
	if err := s.activity.Record(ctx, actor.String(), activityType, relatedID, details); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to record activity",
			"activity_type", activityType,
			"error", err,
		)
	}
}
