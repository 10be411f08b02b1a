// Package ledger anchors content hashes on the evidence ledger and resolves
// transaction ids back to the anchored hash.
package ledger

import (
	"context"

	"casevault/internal/platform/gateway"
)

// Transaction is what the ledger recorded for one anchor. Timestamp is kept
// as the ledger reported it.
type Transaction struct {
	Hash      string
	Timestamp string
}

// Gateway is implemented by the ledger adapters. Adapters report failures
// with sentinel errors: ErrUnavailable when the ledger cannot be reached,
// ErrRejected when it refuses the call, ErrNotFound when the transaction
// carries no recognizable hash.
type Gateway interface {
	AnchorHash(ctx context.Context, hash string) (string, error)
	ResolveTransaction(ctx context.Context, txID string) (*Transaction, error)
}

// Guarded runs another gateway under a gateway.Guard.
type Guarded struct {
	next  Gateway
	guard *gateway.Guard
}

func NewGuarded(next Gateway, guard *gateway.Guard) *Guarded {
	return &Guarded{next: next, guard: guard}
}

func (g *Guarded) AnchorHash(ctx context.Context, hash string) (string, error) {
	return gateway.Do(ctx, g.guard, "anchor_hash", func(ctx context.Context) (string, error) {
		return g.next.AnchorHash(ctx, hash)
	})
}

func (g *Guarded) ResolveTransaction(ctx context.Context, txID string) (*Transaction, error) {
	return gateway.Do(ctx, g.guard, "resolve_transaction", func(ctx context.Context) (*Transaction, error) {
		return g.next.ResolveTransaction(ctx, txID)
	})
}
