package memledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casevault/pkg/platform/sentinel"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	l := New()

	txID, err := l.AnchorHash(ctx, "QmMetadata")
	require.NoError(t, err)
	assert.Len(t, txID, 64)

	tx, err := l.ResolveTransaction(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, "QmMetadata", tx.Hash)
	assert.NotEmpty(t, tx.Timestamp)

	again, err := l.AnchorHash(ctx, "QmMetadata")
	require.NoError(t, err)
	assert.NotEqual(t, txID, again)
}

func TestResolveUnknown(t *testing.T) {
	_, err := New().ResolveTransaction(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestAnchorEmptyHash(t *testing.T) {
	_, err := New().AnchorHash(context.Background(), "")
	assert.ErrorIs(t, err, sentinel.ErrRejected)
}
