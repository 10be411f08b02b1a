// Package activitylog ships user activity entries to a casevault server.
// Entries that cannot be delivered are cached and retried in batches.
package activitylog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultCapacity      = 100
	DefaultFlushInterval = 30 * time.Second

	maxBatch = 100
)

// Entry mirrors the server's log-activity request body.
type Entry struct {
	UserID       string    `json:"userId"`
	ActivityType string    `json:"activityType"`
	RelatedID    string    `json:"relatedId,omitempty"`
	Details      string    `json:"details,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Path, e.StatusCode, e.Body)
}

// retryable reports whether err may succeed when sent again. Transport errors
// and 5xx answers are; a 4xx means the server will keep refusing the payload,
// except for throttling, timeouts and an expired token.
func retryable(err error) bool {
	var status *StatusError
	if !errors.As(err, &status) {
		return true
	}
	switch status.StatusCode {
	case http.StatusUnauthorized, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return status.StatusCode >= http.StatusInternalServerError
}

type Shipper struct {
	baseURL  string
	token    string
	client   *http.Client
	buffer   *RingBuffer
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Shipper)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Shipper) {
		if c != nil {
			s.client = c
		}
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(s *Shipper) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithCapacity(n int) Option {
	return func(s *Shipper) {
		s.buffer = NewRingBuffer(n)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Shipper) {
		s.logger = logger
	}
}

// New returns a shipper posting to baseURL with the given bearer token. The
// token is attached per request; nothing is set on a shared client.
func New(baseURL, token string, opts ...Option) *Shipper {
	s := &Shipper{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
		buffer:   NewRingBuffer(DefaultCapacity),
		interval: DefaultFlushInterval,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send delivers one entry. When delivery may succeed later the entry is
// cached for the next flush; the delivery error is returned either way.
func (s *Shipper) Send(ctx context.Context, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	if err := s.post(ctx, "/log-activity", e); err != nil {
		if !retryable(err) {
			s.logger.WarnContext(ctx, "activity refused by server; dropped",
				"activity_type", e.ActivityType,
				"error", err,
			)
			return err
		}
		s.buffer.Enqueue(e)
		s.logger.WarnContext(ctx, "activity delivery failed; cached",
			"activity_type", e.ActivityType,
			"cached", s.buffer.Len(),
			"error", err,
		)
		return err
	}
	return nil
}

// Flush posts cached entries as one batch. A batch that failed in transit or
// on a server error is put back for the next attempt; one the server refused
// is dropped so it cannot block later flushes.
func (s *Shipper) Flush(ctx context.Context) error {
	batch := s.buffer.DequeueBatch(maxBatch)
	if len(batch) == 0 {
		return nil
	}
	if err := s.post(ctx, "/log-activity-batch", struct {
		Entries []Entry `json:"entries"`
	}{batch}); err != nil {
		if !retryable(err) {
			s.logger.ErrorContext(ctx, "cached activity refused by server; dropped",
				"count", len(batch),
				"error", err,
			)
			return err
		}
		s.buffer.Requeue(batch)
		return err
	}
	s.logger.DebugContext(ctx, "flushed cached activity", "count", len(batch))
	return nil
}

// Run flushes the cache every interval until ctx is done.
func (s *Shipper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				s.logger.WarnContext(ctx, "activity flush failed",
					"cached", s.buffer.Len(),
					"error", err,
				)
			}
		}
	}
}

// Pending returns the number of cached entries.
func (s *Shipper) Pending() int {
	return s.buffer.Len()
}

func (s *Shipper) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
