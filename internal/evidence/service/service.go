// Package service records evidence against open cases and runs the
// upload-anchor-record sequence for server-side submissions.
package service

import (
	"context"
	"log/slog"
	"time"

	caseModels "casevault/internal/cases/models"
	"casevault/internal/evidence/models"
	"casevault/internal/platform/metrics"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/tx"
	"casevault/pkg/requestcontext"
)

type EvidenceStore interface {
	Create(ctx context.Context, e *models.Evidence) error
	ListByCase(ctx context.Context, caseID id.CaseID) ([]*models.Evidence, error)
}

type CaseStore interface {
	FindByID(ctx context.Context, caseID id.CaseID) (*caseModels.Case, error)
	AppendEvidence(ctx context.Context, caseID id.CaseID, evidenceID id.EvidenceID, at time.Time) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID, activityType, relatedID, details string) error
}

// BlobStore keeps attachment and metadata content, addressed by hash.
type BlobStore interface {
	StoreBlob(ctx context.Context, name string, data []byte) (string, error)
}

// Anchorer writes a content hash to the ledger and returns the transaction id.
type Anchorer interface {
	AnchorHash(ctx context.Context, hash string) (string, error)
}

type Service struct {
	evidence EvidenceStore
	cases    CaseStore
	activity ActivityRecorder
	tx       tx.Runner
	blobs    BlobStore
	ledger   Anchorer
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

// WithGateways enables SubmitEvidence.
func WithGateways(blobs BlobStore, ledger Anchorer) Option {
	return func(s *Service) {
		s.blobs = blobs
		s.ledger = ledger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New wires the evidence service. activity is written inside the same unit
// of work as the evidence record, so it must share runner's storage.
func New(evidence EvidenceStore, cases CaseStore, activity ActivityRecorder, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		evidence: evidence,
		cases:    cases,
		activity: activity,
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
