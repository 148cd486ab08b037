package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	t.Run("boolean expression compiles", func(t *testing.T) {
		f, err := Compile(`o.type == "folder"`)
		require.NoError(t, err)
		assert.Equal(t, `o.type == "folder"`, f.Expr())
	})

	t.Run("non-boolean expression is rejected", func(t *testing.T) {
		_, err := Compile(`o.name`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bool")
	})

	t.Run("syntax errors are reported", func(t *testing.T) {
		_, err := Compile(`o.type ==`)
		require.Error(t, err)
	})

	t.Run("must variant panics on failure", func(t *testing.T) {
		assert.Panics(t, func() { MustCompile(`o.type ==`) })
		assert.NotPanics(t, func() { MustCompile(`o.hidden == true`) })
	})
}

func TestMatch(t *testing.T) {
	f := MustCompile(`o.type == "folder" && o.hidden != true`)

	t.Run("matching object", func(t *testing.T) {
		ok, err := f.Match(map[string]any{"type": "folder", "hidden": false})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("non-matching object", func(t *testing.T) {
		ok, err := f.Match(map[string]any{"type": "report", "hidden": false})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("referencing an absent key fails the evaluation", func(t *testing.T) {
		_, err := f.Match(map[string]any{"type": "folder"})
		require.Error(t, err)
	})

	t.Run("has guards absent keys", func(t *testing.T) {
		guarded := MustCompile(`has(o.hidden) ? o.hidden == false : true`)
		ok, err := guarded.Match(map[string]any{"type": "folder"})
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestApply(t *testing.T) {
	items := []map[string]any{
		{"name": "Public", "type": "folder"},
		{"name": "Quarterly", "type": "report"},
		{"name": "Archive", "type": "folder"},
	}

	f := MustCompile(`o.type == "folder"`)
	got, err := Apply(f, items)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "Public", got[0]["name"])
	assert.Equal(t, "Archive", got[1]["name"])

	t.Run("evaluation failure aborts", func(t *testing.T) {
		strict := MustCompile(`o.missing_key == 1`)
		_, err := Apply(strict, items)
		require.Error(t, err)
	})
}
