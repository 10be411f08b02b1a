package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessStore "casevault/internal/access/store"
	"casevault/internal/cases/service"
	"casevault/internal/cases/store/casefile"
	"casevault/internal/cases/store/caserequest"
	identityModels "casevault/internal/identity/models"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/tx"
	"casevault/pkg/testutil"
)

type directory map[id.UserID]string

func (d directory) Exists(_ context.Context, userID id.UserID) (bool, error) {
	_, ok := d[userID]
	return ok, nil
}

func (d directory) Summaries(_ context.Context, ids []id.UserID) (map[id.UserID]identityModels.Summary, error) {
	out := make(map[id.UserID]identityModels.Summary)
	for _, u := range ids {
		if name, ok := d[u]; ok {
			out[u] = identityModels.Summary{ID: u, Username: name}
		}
	}
	return out, nil
}

func newRouter(users directory) http.Handler {
	cases, requests, grants := casefile.New(), caserequest.New(), accessStore.New()
	svc := service.New(cases, requests, grants, users, tx.NewLockRunner())
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)
	return r
}

func TestCaseLifecycle(t *testing.T) {
	alice := id.NewUserID()
	admin := id.NewUserID()
	router := newRouter(directory{alice: "alice", admin: "root"})

	var requestID string
	testutil.Given(t, "a submitted case request", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewJSONRequest(t, http.MethodPost, "/request-case", map[string]string{
			"title": " Burglary ", "description": "Warehouse 4", "requestedBy": alice.String(),
		}), alice, "user")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[SubmitResponse](t, rr)
		assert.Equal(t, "Burglary", resp.Request.Title)
		assert.Equal(t, "pending", resp.Request.Status)
		requestID = resp.Request.ID
	})

	var caseID string
	testutil.When(t, "an admin approves it", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodPost, "/approve-case/"+requestID), admin, "admin")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[ApprovalResponse](t, rr)
		assert.Equal(t, "open", resp.Case.Status)
		assert.Equal(t, alice.String(), resp.Case.CreatedBy)
		assert.Equal(t, "approved", resp.Access.Status)
		assert.Equal(t, alice.String(), resp.Access.UserID)
		caseID = resp.Case.ID
	})

	testutil.Then(t, "a second approval conflicts", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodPost, "/approve-case/"+requestID), admin, "admin")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "invalid_state")
	})

	t.Run("request list keeps reviewed requests", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodGet, "/case-requests"), admin, "admin")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
		list := testutil.UnmarshalResponse[[]CaseRequestResponse](t, rr)
		require.Len(t, *list, 1)
		assert.Equal(t, "approved", (*list)[0].Status)
		assert.Equal(t, "alice", (*list)[0].RequestedBy.Username)
		require.NotNil(t, (*list)[0].CaseID)
		assert.Equal(t, caseID, *(*list)[0].CaseID)
	})

	t.Run("close once", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodPut, "/cases/"+caseID+"/close"), admin, "admin")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "closed")

		rr = testutil.DoRequest(router, testutil.WithAuth(testutil.NewRequest(t, http.MethodPut, "/cases/"+caseID+"/close"), admin, "admin"))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "invalid_state")
	})
}

func TestSubmitCaseRequest_Errors(t *testing.T) {
	alice := id.NewUserID()
	router := newRouter(directory{alice: "alice"})

	t.Run("missing title", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewJSONRequest(t, http.MethodPost, "/request-case", map[string]string{
			"description": "x", "requestedBy": alice.String(),
		}), alice, "user")
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusBadRequest, "validation_error")
	})

	t.Run("acting for someone else", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewJSONRequest(t, http.MethodPost, "/request-case", map[string]string{
			"title": "t", "description": "d", "requestedBy": id.NewUserID().String(),
		}), alice, "user")
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusForbidden, "forbidden")
	})

	t.Run("unknown requester", func(t *testing.T) {
		ghost := id.NewUserID()
		req := testutil.WithAuth(testutil.NewJSONRequest(t, http.MethodPost, "/request-case", map[string]string{
			"title": "t", "description": "d", "requestedBy": ghost.String(),
		}), ghost, "user")
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusNotFound, "not_found")
	})

	t.Run("approving an unknown request", func(t *testing.T) {
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodPost, "/approve-case/"+id.NewCaseRequestID().String()), alice, "admin")
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusNotFound, "not_found")
	})
}
