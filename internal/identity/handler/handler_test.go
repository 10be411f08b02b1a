package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casevault/internal/identity/models"
	"casevault/internal/identity/service"
	"casevault/internal/identity/store/revocation"
	userStore "casevault/internal/identity/store/user"
	jwttoken "casevault/internal/jwt_token"
	id "casevault/pkg/domain"
	"casevault/pkg/testutil"
)

type fixture struct {
	router http.Handler
	svc    *service.Service
	users  *userStore.InMemoryUserStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := userStore.New()
	svc := service.New(users, jwttoken.NewJWTService("test-key"), revocation.NewInMemoryTRL(nil))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(svc, logger)
	r := chi.NewRouter()
	h.RegisterPublic(r)
	h.Register(r)
	h.RegisterAdmin(r)
	return &fixture{router: r, svc: svc, users: users}
}

func registerBody(username, email string) map[string]string {
	return map[string]string{
		"username":   username,
		"password":   "correct-horse",
		"email":      email,
		"fullName":   "Test " + username,
		"batchId":    "B-1",
		"department": "Forensics",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	testutil.Given(t, "a fresh registration", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/register", registerBody("alice", "alice@example.com")))
		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[UserEnvelope](t, rr)
		assert.Equal(t, "pending", resp.User.Role)
		assert.Equal(t, "alice", resp.User.Username)
	})

	testutil.When(t, "the same username registers again", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/register", registerBody("alice", "other@example.com")))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "duplicate_identity")
	})

	testutil.Then(t, "login is refused while pending", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/login",
			map[string]string{"username": "alice", "password": "correct-horse"}))
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "account_pending")
	})

	t.Run("approved user receives a token", func(t *testing.T) {
		u, err := f.users.FindByUsername(context.Background(), "alice")
		require.NoError(t, err)
		require.NoError(t, f.users.UpdateRole(context.Background(), u.ID, models.RoleUser))

		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/login",
			map[string]string{"username": "alice", "password": "correct-horse"}))
		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[LoginResponse](t, rr)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "user", resp.User.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/login",
			map[string]string{"username": "alice", "password": "nope-nope"}))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "invalid_credentials")
	})
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	t.Run("missing department", func(t *testing.T) {
		body := registerBody("bob", "bob@example.com")
		delete(body, "department")
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/register", body))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("role cannot be self-assigned", func(t *testing.T) {
		body := registerBody("bob", "bob@example.com")
		body["role"] = "admin"
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/register", body))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func TestApprovalQueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending, err := f.svc.Register(ctx, models.Registration{
		Username: "carol", Password: "correct-horse", Email: "carol@example.com",
		FullName: "Carol", BatchID: "B", Department: "D",
	})
	require.NoError(t, err)
	admin := id.NewUserID()

	t.Run("lists pending users", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodGet, "/pending-users"), admin, "admin")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)
		users := testutil.UnmarshalResponse[[]UserResponse](t, rr)
		require.Len(t, *users, 1)
		assert.Equal(t, "carol", (*users)[0].Username)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewJSONRequest(t, http.MethodPut, "/approve-user/"+pending.ID.String(),
			map[string]string{"role": "root"}), admin, "admin")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("approves with default role", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodPut, "/approve-user/"+pending.ID.String()), admin, "admin")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[UserEnvelope](t, rr)
		assert.Equal(t, "user", resp.User.Role)
	})

	t.Run("reject unknown user", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodDelete, "/reject-user/"+id.NewUserID().String()), admin, "admin")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("approved accounts cannot be rejected", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodDelete, "/reject-user/"+pending.ID.String()), admin, "admin")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "invalid_state")

		_, err := f.users.FindByID(ctx, pending.ID)
		assert.NoError(t, err)
	})

	t.Run("rejects a pending registration", func(t *testing.T) {
		dave, err := f.svc.Register(ctx, models.Registration{
			Username: "dave", Password: "correct-horse", Email: "dave@example.com",
			FullName: "Dave", BatchID: "B", Department: "D",
		})
		require.NoError(t, err)

		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodDelete, "/reject-user/"+dave.ID.String()), admin, "admin")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)

		_, err = f.users.FindByID(ctx, dave.ID)
		assert.ErrorIs(t, err, userStore.ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodDelete, "/reject-user/not-a-uuid"), admin, "admin")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestProfileAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.svc.Register(ctx, models.Registration{
		Username: "dave", Password: "correct-horse", Email: "dave@example.com",
		FullName: "Dave", BatchID: "B", Department: "D",
	})
	require.NoError(t, err)

	t.Run("self read", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodGet, "/users/"+user.ID.String()), user.ID, "user")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "email", "dave@example.com")
	})

	t.Run("other user's profile is forbidden", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodGet, "/users/"+user.ID.String()), id.NewUserID(), "user")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("update profile", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewJSONRequest(t, http.MethodPut, "/users/"+user.ID.String(), map[string]string{
			"email": "dave@example.org", "fullName": "Dave Two", "batchId": "B2", "department": "Cyber",
		}), user.ID, "user")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[UserEnvelope](t, rr)
		assert.Equal(t, "Dave Two", resp.User.FullName)
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodPost, "/logout"), user.ID, "user")
		req = testutil.WithToken(req, "jti-logout", time.Now().Add(time.Hour))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)

		revoked, err := f.svc.IsTokenRevoked(ctx, "jti-logout")
		require.NoError(t, err)
		assert.True(t, revoked)
	})
}
