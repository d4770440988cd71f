// Package storage defines the named-blob store the cart and checkout persist to.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when no blob is stored under the name.
var ErrNotFound = errors.New("blob not found")

// BlobStore holds opaque blobs keyed by name.
type BlobStore interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, body []byte) error
}

// CartKey and LastOrderKey name the two blobs owned by one session.
func CartKey(sid string) string      { return "cart:" + sid }
func LastOrderKey(sid string) string { return "lastOrder:" + sid }

// Memory is a process-local BlobStore.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *Memory { return &Memory{blobs: map[string][]byte{}} }

func (m *Memory) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) Set(_ context.Context, name string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = append([]byte(nil), body...)
	return nil
}
