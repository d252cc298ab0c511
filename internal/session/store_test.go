package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	st, err := NewRedisStore(mr.Addr(), "", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st, mr
}

func TestStores(t *testing.T) {
	impls := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"redis": func(t *testing.T) Store {
			st, _ := newRedisStore(t)
			return st
		},
	}

	for name, build := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st := build(t)

			_, err := st.Get(ctx, uuid.New())
			assert.ErrorIs(t, err, ErrNotFound)

			s := New()
			s.UpdatedAt = s.UpdatedAt.Truncate(time.Millisecond)
			s.BeginFileRead("doc.pdf")
			s.FinishFileRead("hello there world")
			require.NoError(t, st.Save(ctx, s))

			got, err := st.Get(ctx, s.ID)
			require.NoError(t, err)
			assert.Equal(t, s.ID, got.ID)
			assert.Equal(t, "hello there world", got.InputText)
			assert.Equal(t, "doc.pdf", *got.FileName)
			assert.Equal(t, StatusIdle, got.Status)
			assert.True(t, s.UpdatedAt.Equal(got.UpdatedAt))

			require.NoError(t, st.Delete(ctx, s.ID))
			assert.ErrorIs(t, st.Delete(ctx, s.ID), ErrNotFound)
			_, err = st.Get(ctx, s.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	st, mr := newRedisStore(t)
	ctx := context.Background()
	s := New()
	require.NoError(t, st.Save(ctx, s))

	mr.FastForward(2 * time.Hour)

	_, err := st.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	_, err := NewRedisStore("127.0.0.1:1", "", time.Minute)
	assert.Error(t, err)
}
