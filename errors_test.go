package sdk

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Run("message includes op, kind and cause", func(t *testing.T) {
		err := NewDecodeError("Object.Fetch", fmt.Errorf("unknown enum value %q", "widget"))
		assert.Contains(t, err.Error(), "Object.Fetch")
		assert.Contains(t, err.Error(), KindDecode)
		assert.Contains(t, err.Error(), "widget")
	})

	t.Run("context rides along in the message", func(t *testing.T) {
		err := NewTransportError("Object.Commit", ErrTransport).
			WithContext(map[string]any{"id": "ABC123"})
		assert.Contains(t, err.Error(), "ABC123")
	})

	t.Run("with context does not mutate the original", func(t *testing.T) {
		base := NewTransportError("Op", ErrTransport)
		_ = base.WithContext(map[string]any{"id": "ABC123"})
		assert.Empty(t, base.Context)
	})

	t.Run("unwraps to the sentinel", func(t *testing.T) {
		err := NewValidationError("Object.Set", fmt.Errorf("%w: id", ErrImmutable))
		assert.ErrorIs(t, err, ErrImmutable)
	})

	t.Run("matches by kind", func(t *testing.T) {
		err := NewNotFoundError("Object.Fetch", errors.New("gone"))
		assert.ErrorIs(t, err, &Error{Kind: KindNotFound})
		assert.NotErrorIs(t, err, &Error{Kind: KindTransport})
	})

	t.Run("errors.As recovers the structured form", func(t *testing.T) {
		wrapped := fmt.Errorf("outer: %w", NewVersionError("Object.Fetch", ErrVersionGated))
		var e *Error
		require.ErrorAs(t, wrapped, &e)
		assert.Equal(t, "Object.Fetch", e.Op)
		assert.Equal(t, KindVersion, e.Kind)
	})
}

func TestIsVersionGated(t *testing.T) {
	assert.False(t, IsVersionGated(nil))
	assert.False(t, IsVersionGated(errors.New("plain")))
	assert.True(t, IsVersionGated(ErrVersionGated))
	assert.True(t, IsVersionGated(fmt.Errorf("wrapped: %w", ErrVersionGated)))
	assert.True(t, IsVersionGated(NewVersionError("Object.Fetch", errors.New("requires 11.5"))))
	assert.False(t, IsVersionGated(NewTransportError("Object.Fetch", errors.New("boom"))))
}
