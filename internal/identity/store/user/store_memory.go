package user

import (
	"context"
	"sort"
	"strings"
	"sync"

	"casevault/internal/identity/models"
	id "casevault/pkg/domain"
)

// InMemoryUserStore keeps users in a map; username and email uniqueness is
// checked under the write lock.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[id.UserID]*models.User)}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrEmailTaken
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// ListByRole returns matching users oldest first.
func (s *InMemoryUserStore) ListByRole(_ context.Context, role models.Role) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0)
	for _, u := range s.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryUserStore) UpdateRole(_ context.Context, userID id.UserID, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	return nil
}

func (s *InMemoryUserStore) UpdateProfile(_ context.Context, userID id.UserID, p models.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	for otherID, other := range s.users {
		if otherID != userID && strings.EqualFold(other.Email, p.Email) {
			return ErrEmailTaken
		}
	}
	u.Email = p.Email
	u.FullName = p.FullName
	u.BatchID = p.BatchID
	u.Department = p.Department
	return nil
}

func (s *InMemoryUserStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return ErrNotFound
	}
	delete(s.users, userID)
	return nil
}

// FindSummaries returns the summaries of the ids that exist; missing ids are skipped.
func (s *InMemoryUserStore) FindSummaries(_ context.Context, ids []id.UserID) (map[id.UserID]models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.UserID]models.Summary, len(ids))
	for _, userID := range ids {
		if u, ok := s.users[userID]; ok {
			out[userID] = models.Summary{ID: u.ID, Username: u.Username, FullName: u.FullName}
		}
	}
	return out, nil
}
