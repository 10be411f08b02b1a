package service

import (
	"context"
	"errors"
	"fmt"

	"casevault/internal/identity/models"
	userStore "casevault/internal/identity/store/user"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
)

func (s *Service) ListPending(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.ListByRole(ctx, models.RolePending)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending users")
	}
	out := make([]*models.User, len(users))
	for i, u := range users {
		out[i] = sanitize(u)
	}
	return out, nil
}

// Approve grants role (user when empty) to a registered account.
func (s *Service) Approve(ctx context.Context, userID id.UserID, role string) (*models.User, error) {
	granted, err := models.ParseApprovalRole(role)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateRole(ctx, userID, granted); err != nil {
		if errors.Is(err, userStore.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to approve user")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	s.logAudit(ctx, "USER_APPROVED",
		"actor_id", actorID(ctx),
		"user_id", userID.String(),
		"details", fmt.Sprintf("Approved %s as %s", user.Username, granted),
	)
	return sanitize(user), nil
}

// Reject deletes a registration that is still awaiting approval. Approved
// accounts own cases and activity and cannot be rejected.
func (s *Service) Reject(ctx context.Context, userID id.UserID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userStore.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !user.IsPending() {
		return dErrors.New(dErrors.CodeInvalidState, "only pending registrations can be rejected")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, userStore.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reject user")
	}
	s.logAudit(ctx, "USER_REJECTED",
		"actor_id", actorID(ctx),
		"user_id", userID.String(),
		"details", "Registration rejected",
	)
	return nil
}
