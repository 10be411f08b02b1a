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

	"casevault/internal/blob"
	"casevault/internal/blob/memblob"
	"casevault/internal/platform/gateway"
	"casevault/pkg/testutil"
)

func TestFetch(t *testing.T) {
	store := memblob.New()
	hash, err := store.StoreBlob(context.Background(), "metadata.json", []byte(`{"evidence_title":"Photo"}`))
	require.NoError(t, err)

	h := New(blob.NewGuarded(store, gateway.NewGuard("blob", nil)), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)

	t.Run("found", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/blobs/"+hash))
		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, `{"evidence_title":"Photo"}`, rr.Body.String())
		assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("unknown", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/blobs/"+memblob.CID([]byte("nope"))))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("malformed", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/blobs/bad-hash"))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}
