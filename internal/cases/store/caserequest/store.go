// Package caserequest persists case creation requests.
package caserequest

import (
	"context"
	"sort"
	"sync"
	"time"

	"casevault/internal/cases/models"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/sentinel"
	"casevault/pkg/platform/tx"
)

var (
	ErrNotFound     = sentinel.ErrNotFound
	ErrInvalidState = sentinel.ErrInvalidState
)

// Review is the outcome written when an admin decides a pending request.
type Review struct {
	Status     models.RequestStatus
	CaseID     *id.CaseID
	ReviewedAt time.Time
}

type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[id.CaseRequestID]*models.CaseRequest
}

func New() *InMemoryStore {
	return &InMemoryStore{requests: make(map[id.CaseRequestID]*models.CaseRequest)}
}

func clone(r *models.CaseRequest) *models.CaseRequest {
	cp := *r
	if r.CaseID != nil {
		caseID := *r.CaseID
		cp.CaseID = &caseID
	}
	if r.ReviewedAt != nil {
		at := *r.ReviewedAt
		cp.ReviewedAt = &at
	}
	return &cp
}

func (s *InMemoryStore) Create(ctx context.Context, r *models.CaseRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remember(ctx, r.ID)
	s.requests[r.ID] = clone(r)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, requestID id.CaseRequestID) (*models.CaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r), nil
}

// List returns every request, oldest first.
func (s *InMemoryStore) List(_ context.Context) ([]*models.CaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.CaseRequest, 0, len(s.requests))
	for _, r := range s.requests {
		out = append(out, clone(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

// Review applies a decision to a pending request. A request that has already
// been reviewed yields ErrInvalidState.
func (s *InMemoryStore) Review(ctx context.Context, requestID id.CaseRequestID, review Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return ErrNotFound
	}
	if !r.IsPending() {
		return ErrInvalidState
	}
	s.remember(ctx, requestID)
	r.Status = review.Status
	r.CaseID = review.CaseID
	at := review.ReviewedAt
	r.ReviewedAt = &at
	return nil
}

// remember registers an undo that puts requestID back the way it is now.
// Callers hold s.mu.
func (s *InMemoryStore) remember(ctx context.Context, requestID id.CaseRequestID) {
	prev, existed := s.requests[requestID]
	if existed {
		prev = clone(prev)
	}
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existed {
			s.requests[requestID] = prev
			return
		}
		delete(s.requests, requestID)
	})
}
