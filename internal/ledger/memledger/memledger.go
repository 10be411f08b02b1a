// Package memledger is an in-process ledger for development and tests.
package memledger

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"casevault/internal/ledger"
	"casevault/pkg/platform/sentinel"
)

type Ledger struct {
	mu  sync.RWMutex
	txs map[string]ledger.Transaction
	now func() time.Time
}

func New() *Ledger {
	return &Ledger{txs: make(map[string]ledger.Transaction), now: time.Now}
}

// AnchorHash records hash under a fresh 64 hex character transaction id.
func (l *Ledger) AnchorHash(ctx context.Context, hash string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if hash == "" {
		return "", fmt.Errorf("empty hash: %w", sentinel.ErrRejected)
	}
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate transaction id: %w", err)
	}
	sum := sha256.Sum256(append([]byte(hash), nonce...))
	txID := hex.EncodeToString(sum[:])

	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs[txID] = ledger.Transaction{Hash: hash, Timestamp: l.now().UTC().Format(time.RFC3339Nano)}
	return txID, nil
}

func (l *Ledger) ResolveTransaction(ctx context.Context, txID string) (*ledger.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	tx, ok := l.txs[txID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", txID, sentinel.ErrNotFound)
	}
	return &tx, nil
}
