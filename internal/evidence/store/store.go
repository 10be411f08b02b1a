// Package store persists evidence records.
package store

import (
	"context"
	"sort"
	"sync"

	"casevault/internal/evidence/models"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/tx"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	byCase map[id.CaseID][]*models.Evidence
}

func New() *InMemoryStore {
	return &InMemoryStore{byCase: make(map[id.CaseID][]*models.Evidence)}
}

func (s *InMemoryStore) Create(ctx context.Context, e *models.Evidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.byCase[e.CaseID] = append(s.byCase[e.CaseID], &cp)
	tx.OnRollback(ctx, func() { s.remove(e.CaseID, cp.ID) })
	return nil
}

func (s *InMemoryStore) remove(caseID id.CaseID, evidenceID id.EvidenceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.byCase[caseID]
	kept := make([]*models.Evidence, 0, len(records))
	for _, e := range records {
		if e.ID != evidenceID {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(s.byCase, caseID)
		return
	}
	s.byCase[caseID] = kept
}

// ListByCase returns a case's evidence in upload order.
func (s *InMemoryStore) ListByCase(_ context.Context, caseID id.CaseID) ([]*models.Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.byCase[caseID]
	out := make([]*models.Evidence, len(records))
	for i, e := range records {
		cp := *e
		out[i] = &cp
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (s *InMemoryStore) TitlesByCase(ctx context.Context, caseIDs []id.CaseID) (map[id.CaseID][]string, error) {
	out := make(map[id.CaseID][]string, len(caseIDs))
	for _, caseID := range caseIDs {
		records, _ := s.ListByCase(ctx, caseID)
		titles := make([]string, len(records))
		for i, e := range records {
			titles[i] = e.Title
		}
		out[caseID] = titles
	}
	return out, nil
}
