package redisstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/storage"
)

type setCall struct {
	key string
	ttl time.Duration
}

type mockCmdable struct {
	data     map[string]string
	sets     []setCall
	setErr   error
	getCalls int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	m.getCalls++
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if m.setErr != nil {
		return redis.NewStatusResult("", m.setErr)
	}
	m.sets = append(m.sets, setCall{key: key, ttl: ttl})
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	s := &Store{store: mock, ttl: time.Hour}

	require.NoError(t, s.Set(ctx, storage.CartKey("sid-1"), []byte(`[]`)))
	require.Len(t, mock.sets, 1)
	assert.Equal(t, "storefront:cart:sid-1", mock.sets[0].key)
	assert.Equal(t, time.Hour, mock.sets[0].ttl)

	got, err := s.Get(ctx, storage.CartKey("sid-1"))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestStoreMissingKeyIsNotFound(t *testing.T) {
	s := &Store{store: newMockCmdable()}
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreSetError(t *testing.T) {
	mock := newMockCmdable()
	mock.setErr = errors.New("connection refused")
	s := &Store{store: mock}
	err := s.Set(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(context.Background(), "", 0)
	assert.Error(t, err)
}
