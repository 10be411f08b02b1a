package service

import (
	"context"
	"errors"

	"casevault/internal/identity/models"
	userStore "casevault/internal/identity/store/user"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/requestcontext"
)

// Get returns a user. Callers other than admins may only read themselves.
func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.User, error) {
	if err := requireSelfOrAdmin(ctx, userID); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userStore.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return sanitize(user), nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID id.UserID, update models.ProfileUpdate) (*models.User, error) {
	if err := requireSelfOrAdmin(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
		if errors.Is(err, userStore.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, translateDuplicate(err, "failed to update profile")
	}
	s.recordActivity(ctx, actorID(ctx), "PROFILE_UPDATED", userID.String(), "Profile details updated")
	return s.Get(ctx, userID)
}

// Exists reports whether a user id is registered.
func (s *Service) Exists(ctx context.Context, userID id.UserID) (bool, error) {
	_, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, userStore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup user")
	}
	return true, nil
}

// Summaries resolves usernames and full names for listings in other domains.
func (s *Service) Summaries(ctx context.Context, ids []id.UserID) (map[id.UserID]models.Summary, error) {
	out, err := s.users.FindSummaries(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve users")
	}
	return out, nil
}

func requireSelfOrAdmin(ctx context.Context, userID id.UserID) error {
	if requestcontext.IsAdmin(ctx) || requestcontext.UserID(ctx) == userID {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "cannot access another user's profile")
}
