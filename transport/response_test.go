package transport

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/strategyone/sdk"
)

func TestResponseErr(t *testing.T) {
	t.Run("2xx is nil", func(t *testing.T) {
		r := &Response{StatusCode: http.StatusNoContent}
		assert.NoError(t, r.Err())
	})

	t.Run("404 maps to the not-found sentinel", func(t *testing.T) {
		r := &Response{StatusCode: http.StatusNotFound}
		err := r.Err()
		require.Error(t, err)
		assert.ErrorIs(t, err, sdk.ErrNotFound)
	})

	t.Run("other statuses map to transport errors", func(t *testing.T) {
		r := &Response{StatusCode: http.StatusInternalServerError}
		err := r.Err()
		require.Error(t, err)
		assert.ErrorIs(t, err, sdk.ErrTransport)
		assert.NotErrorIs(t, err, sdk.ErrNotFound)
	})

	t.Run("server message is surfaced", func(t *testing.T) {
		r := &Response{
			StatusCode: http.StatusBadRequest,
			Body:       []byte(`{"code":"ERR004","message":"Invalid object."}`),
		}
		err := r.Err()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ERR004: Invalid object.")
	})
}

func TestResponseJSON(t *testing.T) {
	t.Run("map body", func(t *testing.T) {
		r := &Response{StatusCode: 200, Body: []byte(`{"id":"ABC123"}`)}
		m, err := r.JSONMap()
		require.NoError(t, err)
		assert.Equal(t, "ABC123", m["id"])
	})

	t.Run("list body", func(t *testing.T) {
		r := &Response{StatusCode: 200, Body: []byte(`[{"id":"A"},{"id":"B"}]`)}
		l, err := r.JSONList()
		require.NoError(t, err)
		assert.Len(t, l, 2)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := &Response{StatusCode: 200, Body: []byte(`{`)}
		_, err := r.JSONMap()
		require.Error(t, err)

		var e *sdk.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, sdk.KindDecode, e.Kind)
	})
}
