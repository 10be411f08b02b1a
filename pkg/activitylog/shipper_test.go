package activitylog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	mu      sync.Mutex
	failing atomic.Bool
	single  []Entry
	batches [][]Entry
	auth    []string
}

func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /log-activity", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.auth = append(s.auth, r.Header.Get("Authorization"))
		if s.failing.Load() {
			http.Error(w, `{"error":"internal_error"}`, http.StatusInternalServerError)
			return
		}
		var e Entry
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil || e.ActivityType == "" {
			http.Error(w, `{"error":"validation_error"}`, http.StatusBadRequest)
			return
		}
		s.single = append(s.single, e)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /log-activity-batch", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.failing.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		var body struct {
			Entries []Entry `json:"entries"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, e := range body.Entries {
			if e.ActivityType == "" {
				http.Error(w, `{"error":"validation_error"}`, http.StatusBadRequest)
				return
			}
		}
		s.batches = append(s.batches, body.Entries)
		w.WriteHeader(http.StatusCreated)
	})
	return mux
}

func newShipper(t *testing.T, opts ...Option) (*Shipper, *server) {
	t.Helper()
	srv := &server{}
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)
	return New(ts.URL+"/", "token-123", opts...), srv
}

func TestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers with the shipper's token and a timestamp", func(t *testing.T) {
		s, srv := newShipper(t)
		require.NoError(t, s.Send(ctx, Entry{UserID: "u1", ActivityType: "LOGIN"}))
		require.Len(t, srv.single, 1)
		assert.False(t, srv.single[0].Timestamp.IsZero())
		assert.Equal(t, []string{"Bearer token-123"}, srv.auth)
		assert.Zero(t, s.Pending())
	})

	t.Run("caches on failure", func(t *testing.T) {
		s, srv := newShipper(t)
		srv.failing.Store(true)
		require.Error(t, s.Send(ctx, Entry{UserID: "u1", ActivityType: "LOGIN"}))
		assert.Equal(t, 1, s.Pending())
	})
}

func TestFlush(t *testing.T) {
	ctx := context.Background()
	s, srv := newShipper(t, WithCapacity(3))
	srv.failing.Store(true)
	for _, typ := range []string{"A", "B", "C", "D"} {
		_ = s.Send(ctx, Entry{UserID: "u1", ActivityType: typ})
	}
	require.Equal(t, 3, s.Pending())

	require.Error(t, s.Flush(ctx))
	assert.Equal(t, 3, s.Pending())

	srv.failing.Store(false)
	require.NoError(t, s.Flush(ctx))
	assert.Zero(t, s.Pending())
	require.Len(t, srv.batches, 1)
	assert.Equal(t, []string{"B", "C", "D"}, activityTypes(srv.batches[0]))

	require.NoError(t, s.Flush(ctx))
	assert.Len(t, srv.batches, 1)
}

func TestFlush_RefusedBatchIsDropped(t *testing.T) {
	ctx := context.Background()
	s, srv := newShipper(t)
	srv.failing.Store(true)
	_ = s.Send(ctx, Entry{UserID: "u1"})
	_ = s.Send(ctx, Entry{UserID: "u1", ActivityType: "VIEW"})
	require.Equal(t, 2, s.Pending())
	srv.failing.Store(false)

	err := s.Flush(ctx)
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusBadRequest, status.StatusCode)
	assert.Zero(t, s.Pending())

	srv.failing.Store(true)
	_ = s.Send(ctx, Entry{UserID: "u2", ActivityType: "LOGIN"})
	srv.failing.Store(false)
	require.NoError(t, s.Flush(ctx))
	require.Len(t, srv.batches, 1)
	assert.Equal(t, []string{"LOGIN"}, activityTypes(srv.batches[0]))
}

func TestSend_RefusedEntryIsNotCached(t *testing.T) {
	s, _ := newShipper(t)
	err := s.Send(context.Background(), Entry{UserID: "u1"})
	require.Error(t, err)
	assert.Zero(t, s.Pending())
}

func TestRunFlushesPeriodically(t *testing.T) {
	s, srv := newShipper(t, WithFlushInterval(10*time.Millisecond))
	srv.failing.Store(true)
	_ = s.Send(context.Background(), Entry{UserID: "u1", ActivityType: "VIEW"})
	srv.failing.Store(false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
