package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casevault/internal/platform/metrics"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/circuit"
	"casevault/pkg/platform/sentinel"
)

func TestDo_TranslatesErrors(t *testing.T) {
	g := NewGuard("ledger", nil)
	tests := []struct {
		name string
		err  error
		code dErrors.Code
	}{
		{"unreachable", errors.New("connection refused"), dErrors.CodeLedgerUnavailable},
		{"rejected", fmt.Errorf("endorsement failed: %w", sentinel.ErrRejected), dErrors.CodeLedgerRejected},
		{"missing", fmt.Errorf("tx: %w", sentinel.ErrNotFound), dErrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Do(context.Background(), g, "anchor_hash", func(context.Context) (string, error) {
				return "", tt.err
			})
			assert.True(t, dErrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestDo_Timeout(t *testing.T) {
	g := NewGuard("blob", nil, WithTimeout(10*time.Millisecond))
	_, err := Do(context.Background(), g, "store_blob", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
	assert.Contains(t, err.Error(), "timed out")
}

func TestDo_BreakerOpensOnOutagesOnly(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	g := NewGuard("ledger", nil, WithMetrics(m))

	for range 10 {
		_, _ = Do(context.Background(), g, "anchor_hash", func(context.Context) (string, error) {
			return "", sentinel.ErrRejected
		})
	}
	assert.Equal(t, circuit.StateClosed, g.State())

	for range 5 {
		_, _ = Do(context.Background(), g, "anchor_hash", func(context.Context) (string, error) {
			return "", errors.New("peer unreachable")
		})
	}
	assert.Equal(t, circuit.StateOpen, g.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("ledger")))

	called := false
	_, err := Do(context.Background(), g, "anchor_hash", func(context.Context) (string, error) {
		called = true
		return "tx", nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
}

func TestDo_CallerCancellationDoesNotTrip(t *testing.T) {
	g := NewGuard("blob", nil)

	for range 10 {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Do(ctx, g, "store_blob", func(ctx context.Context) (string, error) {
			return "", ctx.Err()
		})
		require.Error(t, err)
	}
	assert.Equal(t, circuit.StateClosed, g.State())

	v, err := Do(context.Background(), g, "store_blob", func(context.Context) (string, error) {
		return "cid", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "cid", v)
}

func TestDo_ReturnsValue(t *testing.T) {
	g := NewGuard("ledger", nil)
	v, err := Do(context.Background(), g, "resolve", func(context.Context) (*int, error) {
		n := 7
		return &n, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, *v)
}
