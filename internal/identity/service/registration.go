package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"casevault/internal/identity/models"
	userStore "casevault/internal/identity/store/user"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/email"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72
)

// Register creates a pending account. The returned user carries no password
// material.
func (s *Service) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if len(reg.Password) < minPasswordLength || len(reg.Password) > maxPasswordLength {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be between 8 and 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user := &models.User{
		ID:           id.NewUserID(),
		Username:     reg.Username,
		PasswordHash: string(hash),
		Email:        reg.Email,
		FullName:     reg.FullName,
		BatchID:      reg.BatchID,
		Department:   reg.Department,
		Role:         models.RolePending,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, translateDuplicate(err, "failed to create user")
	}

	s.logAudit(ctx, "user_registered",
		"user_id", user.ID.String(),
		"username", user.Username,
	)
	if s.metrics != nil {
		s.metrics.UsersRegistered.Inc()
	}
	return sanitize(user), nil
}

// SeedAdmin creates an admin account or promotes an existing one with the
// same username. Running it twice is a no-op.
func (s *Service) SeedAdmin(ctx context.Context, username, password, mail string) (*models.User, error) {
	existing, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			if err := s.users.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to promote admin")
			}
			existing.Role = models.RoleAdmin
			s.logAudit(ctx, "admin_promoted", "user_id", existing.ID.String())
		}
		return sanitize(existing), nil
	case !errors.Is(err, userStore.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup user")
	}

	user, err := s.Register(ctx, models.Registration{
		Username:   username,
		Password:   password,
		Email:      mail,
		FullName:   email.DisplayName(mail),
		Department: "Administration",
	})
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to promote admin")
	}
	user.Role = models.RoleAdmin
	s.logAudit(ctx, "admin_seeded", "user_id", user.ID.String())
	return user, nil
}

func translateDuplicate(err error, msg string) error {
	switch {
	case errors.Is(err, userStore.ErrUsernameTaken):
		return dErrors.New(dErrors.CodeDuplicateIdentity, "Username already taken")
	case errors.Is(err, userStore.ErrEmailTaken):
		return dErrors.New(dErrors.CodeDuplicateIdentity, "Email already registered")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func sanitize(u *models.User) *models.User {
	cp := *u
	cp.PasswordHash = ""
	return &cp
}
