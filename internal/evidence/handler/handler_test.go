package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casevault/internal/blob/memblob"
	caseModels "casevault/internal/cases/models"
	"casevault/internal/cases/store/casefile"
	"casevault/internal/evidence/service"
	"casevault/internal/evidence/store"
	"casevault/internal/ledger/memledger"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/tx"
	"casevault/pkg/testutil"
)

type recorded struct {
	userID, activityType, relatedID, details string
}

type recorder struct {
	mu      sync.Mutex
	entries []recorded
}

func (r *recorder) Record(_ context.Context, userID, activityType, relatedID, details string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, recorded{userID, activityType, relatedID, details})
	return nil
}

type fixture struct {
	router   http.Handler
	officer  id.UserID
	cases    *casefile.InMemoryStore
	activity *recorder
	ledger   *memledger.Ledger
	blobs    *memblob.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cases, evidence := casefile.New(), store.New()
	f := &fixture{
		officer: id.NewUserID(), cases: cases, activity: &recorder{},
		ledger: memledger.New(), blobs: memblob.New(),
	}
	svc := service.New(evidence, cases, f.activity, tx.NewLockRunner(),
		service.WithGateways(f.blobs, f.ledger))
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	f.router = r
	return f
}

// do sends req as the fixture's officer with the "user" role.
func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	return testutil.DoRequest(f.router, testutil.WithAuth(req, f.officer, "user"))
}

func (f *fixture) openCase(t *testing.T) id.CaseID {
	t.Helper()
	now := time.Now().UTC()
	c := &caseModels.Case{
		ID: id.NewCaseID(), Title: "Burglary", Description: "Warehouse",
		Status: caseModels.StatusOpen, CreatedBy: id.NewUserID(), CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.cases.Create(context.Background(), c))
	return c.ID
}

func TestAddAndListEvidence(t *testing.T) {
	f := newFixture(t)
	caseID := f.openCase(t)

	testutil.When(t, "evidence is added to an open case", func(t *testing.T) {
		body := map[string]string{
			"title": "  Photo ", "description": "Front door", "fileHash": "Qmabc",
			"uploadedBy": f.officer.String(), "caseId": caseID.String(),
		}
		rr := f.do(testutil.NewJSONRequest(t, http.MethodPost, "/add-evidence", body))
		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[AddEvidenceResponse](t, rr)
		assert.Equal(t, "Photo", resp.Evidence.Title)
		assert.Equal(t, caseID.String(), resp.Evidence.CaseID)
	})

	testutil.Then(t, "it is listed for the case and logged", func(t *testing.T) {
		rr := f.do(testutil.NewRequest(t, http.MethodGet, "/evidence/"+caseID.String()))
		testutil.AssertStatusOK(t, rr)
		rows := *testutil.UnmarshalResponse[[]EvidenceResponse](t, rr)
		require.Len(t, rows, 1)
		assert.Equal(t, "Qmabc", rows[0].FileHash)
		assert.Equal(t, f.officer.String(), rows[0].UploadedBy)

		require.Len(t, f.activity.entries, 1)
		assert.Equal(t, "EVIDENCE_UPLOADED", f.activity.entries[0].activityType)
	})
}

func TestAddEvidence_Errors(t *testing.T) {
	f := newFixture(t)

	t.Run("missing fields", func(t *testing.T) {
		body := map[string]string{"title": "Photo", "caseId": f.openCase(t).String()}
		rr := f.do(testutil.NewJSONRequest(t, http.MethodPost, "/add-evidence", body))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("unknown case", func(t *testing.T) {
		body := map[string]string{
			"title": "Photo", "description": "d", "fileHash": "h",
			"uploadedBy": f.officer.String(), "caseId": id.NewCaseID().String(),
		}
		rr := f.do(testutil.NewJSONRequest(t, http.MethodPost, "/add-evidence", body))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("listing a case without evidence", func(t *testing.T) {
		rr := f.do(testutil.NewRequest(t, http.MethodGet, "/evidence/"+f.openCase(t).String()))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("listing with a malformed case id", func(t *testing.T) {
		rr := f.do(testutil.NewRequest(t, http.MethodGet, "/evidence/not-a-case"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})
}

func TestSubmitEvidence(t *testing.T) {
	f := newFixture(t)
	caseID := f.openCase(t)
	path := "/cases/" + caseID.String() + "/evidence/submit"

	t.Run("anchors attachment and metadata", func(t *testing.T) {
		attachment := []byte("jpeg bytes")
		req := testutil.NewMultipartRequest(t, path, map[string]string{
			"title": "Photo", "description": "Back door", "uploadedBy": f.officer.String(),
			"metadata": `{"camera":"Nikon"}`,
		}, attachment)
		rr := f.do(req)
		testutil.AssertStatus(t, rr, http.StatusCreated)

		resp := testutil.UnmarshalResponse[SubmitEvidenceResponse](t, rr)
		assert.Equal(t, memblob.CID(attachment), resp.AttachmentHash)
		assert.Equal(t, resp.TransactionID, resp.Evidence.FileHash)

		anchored, err := f.ledger.ResolveTransaction(context.Background(), resp.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, resp.MetadataHash, anchored.Hash)

		_, err = f.blobs.FetchBlob(context.Background(), resp.MetadataHash)
		require.NoError(t, err)
	})

	t.Run("missing attachment", func(t *testing.T) {
		req := testutil.NewMultipartRequest(t, path, map[string]string{"title": "Photo", "description": "d", "uploadedBy": f.officer.String()}, nil)
		testutil.AssertStatusAndError(t, f.do(req), http.StatusBadRequest, "validation_error")
	})

	t.Run("metadata that is not an object", func(t *testing.T) {
		req := testutil.NewMultipartRequest(t, path, map[string]string{
			"title": "Photo", "description": "d", "uploadedBy": f.officer.String(), "metadata": "[1,2]",
		}, []byte("x"))
		testutil.AssertStatusAndError(t, f.do(req), http.StatusBadRequest, "validation_error")
	})

	t.Run("not a multipart body", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"title": "Photo"})
		testutil.AssertStatusAndError(t, f.do(req), http.StatusBadRequest, "bad_request")
	})

	t.Run("unknown case", func(t *testing.T) {
		req := testutil.NewMultipartRequest(t, "/cases/"+id.NewCaseID().String()+"/evidence/submit",
			map[string]string{"title": "Photo", "description": "d", "uploadedBy": f.officer.String()}, []byte("x"))
		testutil.AssertStatusAndError(t, f.do(req), http.StatusNotFound, "not_found")
	})
}

func TestEvidence_UploaderMustBeCaller(t *testing.T) {
	f := newFixture(t)
	caseID := f.openCase(t)
	victim := id.NewUserID()

	t.Run("add-evidence under another user is forbidden", func(t *testing.T) {
		body := map[string]string{
			"title": "Photo", "description": "d", "fileHash": "h",
			"uploadedBy": victim.String(), "caseId": caseID.String(),
		}
		rr := f.do(testutil.NewJSONRequest(t, http.MethodPost, "/add-evidence", body))
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("submission under another user is forbidden", func(t *testing.T) {
		req := testutil.NewMultipartRequest(t, "/cases/"+caseID.String()+"/evidence/submit",
			map[string]string{"title": "Photo", "description": "d", "uploadedBy": victim.String()}, []byte("x"))
		testutil.AssertStatusAndError(t, f.do(req), http.StatusForbidden, "forbidden")
	})

	t.Run("nothing was filed or logged", func(t *testing.T) {
		assert.Empty(t, f.activity.entries)
		rr := f.do(testutil.NewRequest(t, http.MethodGet, "/evidence/"+caseID.String()))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("admins may file on behalf of others", func(t *testing.T) {
		body := map[string]string{
			"title": "Photo", "description": "d", "fileHash": "h",
			"uploadedBy": victim.String(), "caseId": caseID.String(),
		}
		req := testutil.WithAuth(testutil.NewJSONRequest(t, http.MethodPost, "/add-evidence", body), id.NewUserID(), "admin")
		testutil.AssertStatus(t, testutil.DoRequest(f.router, req), http.StatusCreated)
		require.Len(t, f.activity.entries, 1)
		assert.Equal(t, victim.String(), f.activity.entries[0].userID)
	})
}
