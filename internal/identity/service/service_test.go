package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"casevault/internal/identity/models"
	"casevault/internal/identity/service/mocks"
	userStore "casevault/internal/identity/store/user"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/middleware/metadata"
	"casevault/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	mockUsers      *mocks.MockUserStore
	mockTokens     *mocks.MockTokenIssuer
	mockRevocation *mocks.MockRevocationList
	mockActivity   *mocks.MockActivityRecorder
	service        *Service
	now            time.Time
	passwordHash   string
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupSuite() {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	s.Require().NoError(err)
	s.passwordHash = string(hash)
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockUsers = mocks.NewMockUserStore(s.ctrl)
	s.mockTokens = mocks.NewMockTokenIssuer(s.ctrl)
	s.mockRevocation = mocks.NewMockRevocationList(s.ctrl)
	s.mockActivity = mocks.NewMockActivityRecorder(s.ctrl)
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.service = New(s.mockUsers, s.mockTokens, s.mockRevocation,
		WithActivityRecorder(s.mockActivity),
		WithClock(func() time.Time { return s.now }),
		WithTokenTTL(time.Hour),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) registration() models.Registration {
	return models.Registration{
		Username:   "inspector",
		Password:   "correct-horse",
		Email:      "inspector@example.com",
		FullName:   "Jane Inspector",
		BatchID:    "B-12",
		Department: "Forensics",
	}
}

func (s *ServiceSuite) TestRegister() {
	ctx := context.Background()

	s.Run("creates pending user with hashed password", func() {
		var stored *models.User
		s.mockUsers.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *models.User) error {
			stored = u
			return nil
		})

		user, err := s.service.Register(ctx, s.registration())
		s.Require().NoError(err)
		s.Equal(models.RolePending, user.Role)
		s.Empty(user.PasswordHash)
		s.Equal(s.now, user.CreatedAt)
		s.Require().NotNil(stored)
		s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")))
	})

	s.Run("duplicate username", func() {
		s.mockUsers.EXPECT().Create(ctx, gomock.Any()).Return(userStore.ErrUsernameTaken)

		_, err := s.service.Register(ctx, s.registration())
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateIdentity))
		s.Contains(err.Error(), "Username already taken")
	})

	s.Run("duplicate email", func() {
		s.mockUsers.EXPECT().Create(ctx, gomock.Any()).Return(userStore.ErrEmailTaken)

		_, err := s.service.Register(ctx, s.registration())
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateIdentity))
		s.Contains(err.Error(), "Email already registered")
	})

	s.Run("short password never reaches the store", func() {
		reg := s.registration()
		reg.Password = "short"
		_, err := s.service.Register(ctx, reg)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store failure", func() {
		s.mockUsers.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("db down"))

		_, err := s.service.Register(ctx, s.registration())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestAuthenticate() {
	ctx := context.Background()
	user := &models.User{ID: id.NewUserID(), Username: "inspector", PasswordHash: s.passwordHash, Role: models.RoleUser}

	s.Run("unknown username", func() {
		s.mockUsers.EXPECT().FindByUsername(ctx, "ghost").Return(nil, userStore.ErrNotFound)

		_, err := s.service.Authenticate(ctx, "ghost", "whatever")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredentials))
	})

	s.Run("wrong password", func() {
		s.mockUsers.EXPECT().FindByUsername(ctx, "inspector").Return(user, nil)

		_, err := s.service.Authenticate(ctx, "inspector", "wrong-password")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredentials))
	})

	s.Run("returns user with role", func() {
		s.mockUsers.EXPECT().FindByUsername(ctx, "inspector").Return(user, nil)

		got, err := s.service.Authenticate(ctx, "inspector", "correct-horse")
		s.Require().NoError(err)
		s.Equal(models.RoleUser, got.Role)
		s.Empty(got.PasswordHash)
	})
}

func (s *ServiceSuite) TestLogin() {
	ua := "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	ctx := requestcontext.WithClientMetadata(context.Background(), "10.0.0.1", ua)

	s.Run("pending account refused", func() {
		pending := &models.User{ID: id.NewUserID(), Username: "newbie", PasswordHash: s.passwordHash, Role: models.RolePending}
		s.mockUsers.EXPECT().FindByUsername(ctx, "newbie").Return(pending, nil)

		_, err := s.service.Login(ctx, "newbie", "correct-horse")
		s.True(dErrors.HasCode(err, dErrors.CodeAccountPending))
	})

	s.Run("issues token and records login", func() {
		user := &models.User{ID: id.NewUserID(), Username: "inspector", PasswordHash: s.passwordHash, Role: models.RoleAdmin}
		exp := s.now.Add(time.Hour)
		s.mockUsers.EXPECT().FindByUsername(ctx, "inspector").Return(user, nil)
		s.mockTokens.EXPECT().GenerateAccessToken(uuid.UUID(user.ID), "inspector", "admin", time.Hour).
			Return("signed", "jti-1", exp, nil)
		s.mockActivity.EXPECT().Record(ctx, user.ID.String(), "LOGIN", "", "User logged in from "+metadata.DeviceName(ua)).Return(nil)

		session, err := s.service.Login(ctx, "inspector", "correct-horse")
		s.Require().NoError(err)
		s.Equal("signed", session.Token)
		s.Equal(exp, session.ExpiresAt)
		s.Equal(models.RoleAdmin, session.User.Role)
	})

	s.Run("activity failure does not fail login", func() {
		user := &models.User{ID: id.NewUserID(), Username: "inspector", PasswordHash: s.passwordHash, Role: models.RoleUser}
		s.mockUsers.EXPECT().FindByUsername(ctx, "inspector").Return(user, nil)
		s.mockTokens.EXPECT().GenerateAccessToken(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("signed", "jti-2", s.now.Add(time.Hour), nil)
		s.mockActivity.EXPECT().Record(gomock.Any(), gomock.Any(), "LOGIN", gomock.Any(), gomock.Any()).Return(errors.New("log down"))

		_, err := s.service.Login(ctx, "inspector", "correct-horse")
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestLogout() {
	userID := id.NewUserID()
	ctx := requestcontext.WithUserID(context.Background(), userID)

	s.Run("revokes for the remaining token lifetime", func() {
		tctx := requestcontext.WithToken(ctx, "jti-9", s.now.Add(30*time.Minute))
		s.mockRevocation.EXPECT().RevokeToken(tctx, "jti-9", 30*time.Minute).Return(nil)
		s.mockActivity.EXPECT().Record(tctx, userID.String(), "LOGOUT", "", "User logged out").Return(nil)

		s.NoError(s.service.Logout(tctx))
	})

	s.Run("expired token needs no revocation", func() {
		tctx := requestcontext.WithToken(ctx, "jti-old", s.now.Add(-time.Minute))
		s.NoError(s.service.Logout(tctx))
	})

	s.Run("missing token", func() {
		err := s.service.Logout(ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestIsRoleCurrent() {
	ctx := context.Background()
	userID := id.NewUserID()

	s.Run("matching role", func() {
		s.mockUsers.EXPECT().FindByID(ctx, userID).Return(&models.User{ID: userID, Role: models.RoleAdmin}, nil)
		current, err := s.service.IsRoleCurrent(ctx, userID, "admin")
		s.Require().NoError(err)
		s.True(current)
	})

	s.Run("demoted since the token was issued", func() {
		s.mockUsers.EXPECT().FindByID(ctx, userID).Return(&models.User{ID: userID, Role: models.RoleUser}, nil)
		current, err := s.service.IsRoleCurrent(ctx, userID, "admin")
		s.Require().NoError(err)
		s.False(current)
	})

	s.Run("account removed", func() {
		s.mockUsers.EXPECT().FindByID(ctx, userID).Return(nil, userStore.ErrNotFound)
		current, err := s.service.IsRoleCurrent(ctx, userID, "user")
		s.Require().NoError(err)
		s.False(current)
	})

	s.Run("store failure", func() {
		s.mockUsers.EXPECT().FindByID(ctx, userID).Return(nil, errors.New("db down"))
		_, err := s.service.IsRoleCurrent(ctx, userID, "user")
		s.Error(err)
	})
}

func (s *ServiceSuite) TestApproval() {
	adminID := id.NewUserID()
	ctx := requestcontext.WithRole(requestcontext.WithUserID(context.Background(), adminID), "admin")
	userID := id.NewUserID()

	s.Run("invalid role", func() {
		_, err := s.service.Approve(ctx, userID, "superuser")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown user", func() {
		s.mockUsers.EXPECT().UpdateRole(ctx, userID, models.RoleUser).Return(userStore.ErrNotFound)

		_, err := s.service.Approve(ctx, userID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("grants role and records admin activity", func() {
		s.mockUsers.EXPECT().UpdateRole(ctx, userID, models.RoleAdmin).Return(nil)
		s.mockUsers.EXPECT().FindByID(ctx, userID).Return(&models.User{ID: userID, Username: "bob", Role: models.RoleAdmin}, nil)
		s.mockActivity.EXPECT().Record(ctx, adminID.String(), "USER_APPROVED", userID.String(), "Approved bob as admin").Return(nil)

		user, err := s.service.Approve(ctx, userID, "admin")
		s.Require().NoError(err)
		s.Equal(models.RoleAdmin, user.Role)
	})

	s.Run("reject unknown user", func() {
		s.mockUsers.EXPECT().FindByID(ctx, userID).Return(nil, userStore.ErrNotFound)

		err := s.service.Reject(ctx, userID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("reject refuses approved accounts", func() {
		s.mockUsers.EXPECT().FindByID(ctx, userID).Return(&models.User{ID: userID, Username: "bob", Role: models.RoleUser}, nil)

		err := s.service.Reject(ctx, userID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("reject deletes a pending registration", func() {
		s.mockUsers.EXPECT().FindByID(ctx, userID).Return(&models.User{ID: userID, Username: "p", Role: models.RolePending}, nil)
		s.mockUsers.EXPECT().Delete(ctx, userID).Return(nil)
		s.mockActivity.EXPECT().Record(ctx, adminID.String(), "USER_REJECTED", userID.String(), "Registration rejected").Return(nil)

		s.NoError(s.service.Reject(ctx, userID))
	})

	s.Run("pending list is sanitized", func() {
		s.mockUsers.EXPECT().ListByRole(ctx, models.RolePending).
			Return([]*models.User{{ID: userID, Username: "p", PasswordHash: "secret", Role: models.RolePending}}, nil)

		users, err := s.service.ListPending(ctx)
		s.Require().NoError(err)
		s.Require().Len(users, 1)
		s.Empty(users[0].PasswordHash)
	})
}

func (s *ServiceSuite) TestProfile() {
	self := id.NewUserID()
	other := id.NewUserID()
	ctx := requestcontext.WithRole(requestcontext.WithUserID(context.Background(), self), "user")

	s.Run("cannot read another user", func() {
		_, err := s.service.Get(ctx, other)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("email taken by someone else", func() {
		update := models.ProfileUpdate{Email: "taken@example.com"}
		s.mockUsers.EXPECT().UpdateProfile(ctx, self, update).Return(userStore.ErrEmailTaken)

		_, err := s.service.UpdateProfile(ctx, self, update)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateIdentity))
	})

	s.Run("admin may update anyone", func() {
		adminCtx := requestcontext.WithRole(requestcontext.WithUserID(context.Background(), self), "admin")
		update := models.ProfileUpdate{Email: "o@example.com", FullName: "Other"}
		s.mockUsers.EXPECT().UpdateProfile(adminCtx, other, update).Return(nil)
		s.mockActivity.EXPECT().Record(adminCtx, self.String(), "PROFILE_UPDATED", other.String(), gomock.Any()).Return(nil)
		s.mockUsers.EXPECT().FindByID(adminCtx, other).Return(&models.User{ID: other, FullName: "Other"}, nil)

		user, err := s.service.UpdateProfile(adminCtx, other, update)
		s.Require().NoError(err)
		s.Equal("Other", user.FullName)
	})
}

func (s *ServiceSuite) TestSeedAdmin() {
	ctx := context.Background()

	s.Run("promotes existing user", func() {
		existing := &models.User{ID: id.NewUserID(), Username: "root", Role: models.RoleUser}
		s.mockUsers.EXPECT().FindByUsername(ctx, "root").Return(existing, nil)
		s.mockUsers.EXPECT().UpdateRole(ctx, existing.ID, models.RoleAdmin).Return(nil)

		user, err := s.service.SeedAdmin(ctx, "root", "correct-horse", "root@example.com")
		s.Require().NoError(err)
		s.Equal(models.RoleAdmin, user.Role)
	})

	s.Run("existing admin is left alone", func() {
		existing := &models.User{ID: id.NewUserID(), Username: "root", Role: models.RoleAdmin}
		s.mockUsers.EXPECT().FindByUsername(ctx, "root").Return(existing, nil)

		_, err := s.service.SeedAdmin(ctx, "root", "correct-horse", "root@example.com")
		s.NoError(err)
	})

	s.Run("creates admin with derived name", func() {
		s.mockUsers.EXPECT().FindByUsername(ctx, "root").Return(nil, userStore.ErrNotFound)
		s.mockUsers.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *models.User) error {
			s.Equal("Jane Doe", u.FullName)
			return nil
		})
		s.mockUsers.EXPECT().UpdateRole(ctx, gomock.Any(), models.RoleAdmin).Return(nil)

		user, err := s.service.SeedAdmin(ctx, "root", "correct-horse", "jane.doe@example.com")
		s.Require().NoError(err)
		s.Equal(models.RoleAdmin, user.Role)
	})
}
