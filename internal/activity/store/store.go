// Package store persists the activity log.
package store

import (
	"context"
	"sort"
	"sync"

	"casevault/internal/activity/models"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/tx"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	entries []models.Entry
}

func New() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(ctx context.Context, entries ...models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)

	appended := make(map[id.ActivityID]struct{}, len(entries))
	for _, e := range entries {
		appended[e.ID] = struct{}{}
	}
	tx.OnRollback(ctx, func() { s.discard(appended) })
	return nil
}

// discard drops entries appended by a unit of work that failed.
func (s *InMemoryStore) discard(ids map[id.ActivityID]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0:0]
	for _, e := range s.entries {
		if _, drop := ids[e.ID]; !drop {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

// List returns entries newest first.
func (s *InMemoryStore) List(_ context.Context) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.Entry(nil), s.entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
