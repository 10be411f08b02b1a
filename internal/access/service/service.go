// Package service decides who may see which case: users request access,
// admins approve or reject, and listings reveal evidence only to grantees.
package service

import (
	"context"
	"log/slog"
	"time"

	"casevault/internal/access/models"
	caseModels "casevault/internal/cases/models"
	identityModels "casevault/internal/identity/models"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/tx"
	"casevault/pkg/requestcontext"
)

type AccessStore interface {
	Create(ctx context.Context, a *models.AccessRequest) error
	FindByID(ctx context.Context, requestID id.AccessRequestID) (*models.AccessRequest, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.AccessRequest, error)
	Approve(ctx context.Context, requestID id.AccessRequestID, at time.Time) error
	Delete(ctx context.Context, requestID id.AccessRequestID) error
	ApprovedCaseIDs(ctx context.Context, userID id.UserID) (map[id.CaseID]struct{}, error)
}

type CaseReader interface {
	FindByID(ctx context.Context, caseID id.CaseID) (*caseModels.Case, error)
	List(ctx context.Context) ([]*caseModels.Case, error)
}

// EvidenceTitles looks up evidence titles per case, in upload order.
type EvidenceTitles interface {
	TitlesByCase(ctx context.Context, caseIDs []id.CaseID) (map[id.CaseID][]string, error)
}

type UserDirectory interface {
	Summaries(ctx context.Context, ids []id.UserID) (map[id.UserID]identityModels.Summary, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID, activityType, relatedID, details string) error
}

type Service struct {
	access   AccessStore
	cases    CaseReader
	evidence EvidenceTitles
	users    UserDirectory
	tx       tx.Runner
	activity ActivityRecorder
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
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

func New(access AccessStore, cases CaseReader, evidence EvidenceTitles, users UserDirectory, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		access:   access,
		cases:    cases,
		evidence: evidence,
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
