// Package blob stores content-addressed attachments and metadata documents.
package blob

import (
	"context"

	"casevault/internal/platform/gateway"
)

// MaxSize caps a single blob in either direction.
const MaxSize = 32 << 20

// Store is implemented by the blob adapters. Hashes are CIDv0 strings.
type Store interface {
	StoreBlob(ctx context.Context, name string, data []byte) (string, error)
	FetchBlob(ctx context.Context, hash string) ([]byte, error)
}

// Guarded runs another store under a gateway.Guard.
type Guarded struct {
	next  Store
	guard *gateway.Guard
}

func NewGuarded(next Store, guard *gateway.Guard) *Guarded {
	return &Guarded{next: next, guard: guard}
}

func (g *Guarded) StoreBlob(ctx context.Context, name string, data []byte) (string, error) {
	return gateway.Do(ctx, g.guard, "store_blob", func(ctx context.Context) (string, error) {
		return g.next.StoreBlob(ctx, name, data)
	})
}

func (g *Guarded) FetchBlob(ctx context.Context, hash string) ([]byte, error) {
	return gateway.Do(ctx, g.guard, "fetch_blob", func(ctx context.Context) ([]byte, error) {
		return g.next.FetchBlob(ctx, hash)
	})
}
