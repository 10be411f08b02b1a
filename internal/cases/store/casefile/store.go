// Package casefile persists cases.
package casefile

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

type InMemoryStore struct {
	mu    sync.RWMutex
	cases map[id.CaseID]*models.Case
}

func New() *InMemoryStore {
	return &InMemoryStore{cases: make(map[id.CaseID]*models.Case)}
}

func clone(c *models.Case) *models.Case {
	cp := *c
	cp.EvidenceIDs = append([]id.EvidenceID(nil), c.EvidenceIDs...)
	return &cp
}

func (s *InMemoryStore) Create(ctx context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remember(ctx, c.ID)
	s.cases[c.ID] = clone(c)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, caseID id.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[caseID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(c), nil
}

// List returns every case, oldest first.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Case, 0, len(s.cases))
	for _, c := range s.cases {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// TransitionStatus moves a case from one status to another, failing with
// ErrInvalidState when it is not currently in from.
func (s *InMemoryStore) TransitionStatus(ctx context.Context, caseID id.CaseID, from, to models.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[caseID]
	if !ok {
		return ErrNotFound
	}
	if c.Status != from {
		return ErrInvalidState
	}
	s.remember(ctx, caseID)
	c.Status = to
	c.UpdatedAt = at
	return nil
}

func (s *InMemoryStore) AppendEvidence(ctx context.Context, caseID id.CaseID, evidenceID id.EvidenceID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[caseID]
	if !ok {
		return ErrNotFound
	}
	s.remember(ctx, caseID)
	c.EvidenceIDs = append(c.EvidenceIDs, evidenceID)
	c.UpdatedAt = at
	return nil
}

// remember registers an undo that puts caseID back the way it is now.
// Callers hold s.mu.
func (s *InMemoryStore) remember(ctx context.Context, caseID id.CaseID) {
	prev, existed := s.cases[caseID]
	if existed {
		prev = clone(prev)
	}
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existed {
			s.cases[caseID] = prev
			return
		}
		delete(s.cases, caseID)
	})
}
