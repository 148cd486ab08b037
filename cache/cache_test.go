package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("set and get round trip", func(t *testing.T) {
		store := NewMemoryStore()
		defer store.Close()

		require.NoError(t, store.Set(ctx, "objects/ABC123", []byte(`{"name":"Foo"}`), 0))

		value, err := store.Get(ctx, "objects/ABC123")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"name":"Foo"}`), value)
	})

	t.Run("missing key", func(t *testing.T) {
		store := NewMemoryStore()
		defer store.Close()

		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("empty key is invalid", func(t *testing.T) {
		store := NewMemoryStore()
		defer store.Close()

		_, err := store.Get(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.ErrorIs(t, store.Set(ctx, "", nil, 0), ErrInvalidKey)
		assert.ErrorIs(t, store.Delete(ctx, ""), ErrInvalidKey)
	})

	t.Run("expired entry misses", func(t *testing.T) {
		store := NewMemoryStore()
		defer store.Close()

		require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Millisecond))
		time.Sleep(5 * time.Millisecond)

		_, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("delete removes only its key", func(t *testing.T) {
		store := NewMemoryStore()
		defer store.Close()

		require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))
		require.NoError(t, store.Set(ctx, "b", []byte("2"), 0))
		require.NoError(t, store.Delete(ctx, "a"))

		_, err := store.Get(ctx, "a")
		assert.ErrorIs(t, err, ErrMiss)
		_, err = store.Get(ctx, "b")
		assert.NoError(t, err)
	})

	t.Run("invalidate removes the whole prefix", func(t *testing.T) {
		store := NewMemoryStore()
		defer store.Close()

		require.NoError(t, store.Set(ctx, "objects/ABC123", []byte("1"), 0))
		require.NoError(t, store.Set(ctx, "objects/ABC123?fields=name", []byte("2"), 0))
		require.NoError(t, store.Set(ctx, "folders/F1", []byte("3"), 0))

		require.NoError(t, store.Invalidate(ctx, "objects/ABC123"))

		_, err := store.Get(ctx, "objects/ABC123")
		assert.ErrorIs(t, err, ErrMiss)
		_, err = store.Get(ctx, "objects/ABC123?fields=name")
		assert.ErrorIs(t, err, ErrMiss)
		_, err = store.Get(ctx, "folders/F1")
		assert.NoError(t, err)
	})

	t.Run("stored values are copied", func(t *testing.T) {
		store := NewMemoryStore()
		defer store.Close()

		value := []byte("original")
		require.NoError(t, store.Set(ctx, "k", value, 0))
		value[0] = 'X'

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("original"), got)
	})
}
