package cart

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/storage"
)

// Store owns one ordered collection of cart lines and writes it to a named
// blob after every dispatch. Writes are best effort: failures are logged and
// reported to OnPersistError, never returned to the caller.
type Store struct {
	mu    sync.Mutex
	lines []domain.CartLine
	blobs storage.BlobStore
	key   string

	// OnPersistError, when set, is called with every failed write.
	OnPersistError func(key string, err error)
}

// NewStore rehydrates the collection stored under key. A missing or
// unreadable blob yields an empty cart.
func NewStore(ctx context.Context, blobs storage.BlobStore, key string) *Store {
	s := &Store{blobs: blobs, key: key, lines: []domain.CartLine{}}
	b, err := blobs.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		applog.Warn(nil, "cart.load.fail", err, map[string]any{"key": key})
	default:
		lines, derr := DecodeLines(b)
		if derr != nil {
			applog.Warn(nil, "cart.load.malformed", derr, map[string]any{"key": key})
			break
		}
		s.lines = lines
	}
	return s
}

func (s *Store) Key() string { return s.key }

// Lines returns a copy of the current collection.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Dispatch is the single serialized entry point for mutations.
func (s *Store) Dispatch(ctx context.Context, cmd Command) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, res := Apply(s.lines, cmd)
	s.lines = next
	s.persist(ctx)
	return res
}

func (s *Store) AddLine(ctx context.Context, p domain.Product, quantity int, size string) Result {
	return s.Dispatch(ctx, AddLine{Product: p, Quantity: quantity, Size: size})
}

func (s *Store) RemoveLine(ctx context.Context, productID int, size string) Result {
	return s.Dispatch(ctx, RemoveLine{ProductID: productID, Size: size})
}

func (s *Store) UpdateQuantity(ctx context.Context, productID, quantity int, size string) Result {
	return s.Dispatch(ctx, UpdateQuantity{ProductID: productID, Quantity: quantity, Size: size})
}

func (s *Store) Clear(ctx context.Context) Result {
	return s.Dispatch(ctx, Clear{})
}

// persist runs under s.mu so writes land in dispatch order.
func (s *Store) persist(ctx context.Context) {
	b, err := EncodeLines(s.lines)
	if err == nil {
		err = s.blobs.Set(ctx, s.key, b)
	}
	if err != nil {
		applog.Error(nil, "cart.persist.fail", err, map[string]any{"key": s.key})
		if s.OnPersistError != nil {
			s.OnPersistError(s.key, err)
		}
	}
}
