// Package store persists access requests.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"casevault/internal/access/models"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/sentinel"
	"casevault/pkg/platform/tx"
)

var (
	ErrNotFound  = sentinel.ErrNotFound
	ErrDuplicate = fmt.Errorf("access request already exists: %w", sentinel.ErrConflict)
)

type pairKey struct {
	user id.UserID
	cs   id.CaseID
}

type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[id.AccessRequestID]*models.AccessRequest
	pairs    map[pairKey]id.AccessRequestID
}

func New() *InMemoryStore {
	return &InMemoryStore{
		requests: make(map[id.AccessRequestID]*models.AccessRequest),
		pairs:    make(map[pairKey]id.AccessRequestID),
	}
}

func clone(a *models.AccessRequest) *models.AccessRequest {
	cp := *a
	if a.ReviewedAt != nil {
		at := *a.ReviewedAt
		cp.ReviewedAt = &at
	}
	return &cp
}

// Create inserts a request; a second request for the same user and case
// fails with ErrDuplicate.
func (s *InMemoryStore) Create(ctx context.Context, a *models.AccessRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{a.UserID, a.CaseID}
	if _, exists := s.pairs[key]; exists {
		return ErrDuplicate
	}
	s.remember(ctx, a.ID)
	s.requests[a.ID] = clone(a)
	s.pairs[key] = a.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, requestID id.AccessRequestID) (*models.AccessRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.requests[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(a), nil
}

// ListByStatus returns matching requests, oldest first.
func (s *InMemoryStore) ListByStatus(_ context.Context, status models.Status) ([]*models.AccessRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AccessRequest, 0)
	for _, a := range s.requests {
		if a.Status == status {
			out = append(out, clone(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (s *InMemoryStore) Approve(ctx context.Context, requestID id.AccessRequestID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.requests[requestID]
	if !ok {
		return ErrNotFound
	}
	s.remember(ctx, requestID)
	a.Status = models.StatusApproved
	a.ReviewedAt = &at
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, requestID id.AccessRequestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.requests[requestID]
	if !ok {
		return ErrNotFound
	}
	s.remember(ctx, requestID)
	delete(s.pairs, pairKey{a.UserID, a.CaseID})
	delete(s.requests, requestID)
	return nil
}

// ApprovedCaseIDs lists the cases a user has been granted.
func (s *InMemoryStore) ApprovedCaseIDs(_ context.Context, userID id.UserID) (map[id.CaseID]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.CaseID]struct{})
	for _, a := range s.requests {
		if a.UserID == userID && a.IsApproved() {
			out[a.CaseID] = struct{}{}
		}
	}
	return out, nil
}

// remember registers an undo that puts requestID, and its user/case pair,
// back the way they are now. Callers hold s.mu.
func (s *InMemoryStore) remember(ctx context.Context, requestID id.AccessRequestID) {
	prev, existed := s.requests[requestID]
	if existed {
		prev = clone(prev)
	}
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if cur, ok := s.requests[requestID]; ok {
			delete(s.pairs, pairKey{cur.UserID, cur.CaseID})
			delete(s.requests, requestID)
		}
		if existed {
			s.requests[requestID] = prev
			s.pairs[pairKey{prev.UserID, prev.CaseID}] = requestID
		}
	})
}
