// Package service appends to and reads the activity log. Entries are mirrored
// to the event stream when a publisher is configured.
package service

import (
	"context"
	"log/slog"
	"time"

	"casevault/internal/activity/models"
	identityModels "casevault/internal/identity/models"
	id "casevault/pkg/domain"
)

type Store interface {
	Append(ctx context.Context, entries ...models.Entry) error
	List(ctx context.Context) ([]models.Entry, error)
}

type UserDirectory interface {
	Summaries(ctx context.Context, ids []id.UserID) (map[id.UserID]identityModels.Summary, error)
}

// Publisher mirrors committed entries. Entries logged inside a unit of work
// reach it only after that unit commits. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, entries ...models.Entry)
}

type Service struct {
	store     Store
	users     UserDirectory
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(store Store, users UserDirectory, opts ...Option) *Service {
	s := &Service{
		store: store,
		users: users,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) publish(ctx context.Context, entries ...models.Entry) {
	if s.publisher == nil || len(entries) == 0 {
		return
	}
	s.publisher.Publish(ctx, entries...)
}
