// Package memblob keeps blobs in process memory, addressed like IPFS CIDv0.
package memblob

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math/big"
	"sync"

	"casevault/internal/blob"
	"casevault/pkg/platform/sentinel"
)

type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

func (s *Store) StoreBlob(ctx context.Context, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) > blob.MaxSize {
		return "", fmt.Errorf("blob exceeds %d bytes: %w", blob.MaxSize, sentinel.ErrRejected)
	}
	hash := CID(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[hash] = append([]byte(nil), data...)
	return hash, nil
}

func (s *Store) FetchBlob(ctx context.Context, hash string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[hash]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", hash, sentinel.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// CID returns the base58 sha2-256 multihash of data, which always starts
// with "Qm" and is 46 characters long.
func CID(data []byte) string {
	sum := sha256.Sum256(data)
	mh := append([]byte{0x12, 0x20}, sum[:]...)

	n := new(big.Int).SetBytes(mh)
	radix := big.NewInt(58)
	mod := new(big.Int)
	out := make([]byte, 0, 46)
	for n.Sign() > 0 {
		n.DivMod(n, radix, mod)
		out = append(out, base58Alphabet[mod.Int64()])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
