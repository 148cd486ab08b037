package attr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strategyone/sdk/decode"
	"github.com/strategyone/sdk/transport"
	"github.com/strategyone/sdk/types"
)

func noopGetter(_ context.Context, _ transport.Connection, _ string) (map[string]any, error) {
	return nil, nil
}

func noopPatch(_ context.Context, _ transport.Connection, _ string, _ map[string]any) (map[string]any, error) {
	return nil, nil
}

func TestNewRegistryValidation(t *testing.T) {
	t.Run("attribute in two getter groups is rejected", func(t *testing.T) {
		_, err := NewRegistry(
			WithGetter(noopGetter, "name", "description"),
			WithGetter(noopGetter, "description", "owner"),
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"description"`)
	})

	t.Run("attribute in two patch groups is rejected", func(t *testing.T) {
		_, err := NewRegistry(
			WithPatch(noopPatch, PartialMerge, "name"),
			WithPatch(noopPatch, FullReplace, "name"),
		)
		require.Error(t, err)
	})

	t.Run("duplicate decode rule is rejected", func(t *testing.T) {
		_, err := NewRegistry(
			WithRule("date_created", decode.Time(decode.FullDateTime)),
			WithRule("date_created", decode.Time(decode.DateOnly)),
		)
		require.Error(t, err)
	})

	t.Run("empty groups are rejected", func(t *testing.T) {
		_, err := NewRegistry(WithGetter(noopGetter))
		require.Error(t, err)
		_, err = NewRegistry(WithPatch(noopPatch, PartialMerge))
		require.Error(t, err)
	})

	t.Run("nil functions are rejected", func(t *testing.T) {
		_, err := NewRegistry(WithGetter(nil, "name"))
		require.Error(t, err)
		_, err = NewRegistry(WithPatch(nil, PartialMerge, "name"))
		require.Error(t, err)
		_, err = NewRegistry(WithRule("name", nil))
		require.Error(t, err)
	})

	t.Run("must variant panics on invalid registration", func(t *testing.T) {
		assert.Panics(t, func() {
			MustNewRegistry(WithGetter(noopGetter, "a"), WithGetter(noopGetter, "a"))
		})
	})
}

func TestRegistryLookup(t *testing.T) {
	reg := MustNewRegistry(
		WithObjectType(types.ObjectTypeUser),
		WithSubtypes(types.ObjectSubTypeUser, types.ObjectSubTypeUserGroup),
		WithGetter(noopGetter, "name", "description"),
		WithVersionedGetter(noopGetter, types.MustParseVersion("11.3.0600"), "memberships"),
		WithPatch(noopPatch, PartialMerge, "name", "description"),
	)

	t.Run("getter lookup covers every group attribute", func(t *testing.T) {
		g, ok := reg.Getter("description")
		require.True(t, ok)
		assert.Equal(t, []string{"name", "description"}, g.Attrs())
		assert.True(t, g.MinVersion().IsZero())

		_, ok = reg.Getter("unknown")
		assert.False(t, ok)
	})

	t.Run("versioned group carries its gate", func(t *testing.T) {
		g, ok := reg.Getter("memberships")
		require.True(t, ok)
		assert.Equal(t, "11.3.0600", g.MinVersion().String())
	})

	t.Run("patch lookup", func(t *testing.T) {
		p, ok := reg.Patch("name")
		require.True(t, ok)
		assert.Equal(t, PartialMerge, p.Strategy())
		assert.True(t, p.Contains("description"))
		assert.False(t, p.Contains("memberships"))

		_, ok = reg.Patch("memberships")
		assert.False(t, ok)
	})

	t.Run("group order follows registration order", func(t *testing.T) {
		require.Len(t, reg.Getters(), 2)
		assert.Equal(t, []string{"name", "description"}, reg.Getters()[0].Attrs())
	})

	t.Run("declared subtypes restrict acceptance", func(t *testing.T) {
		assert.True(t, reg.AcceptsSubtype(types.ObjectSubTypeUser))
		assert.False(t, reg.AcceptsSubtype(types.ObjectSubTypeFolder))

		open := MustNewRegistry()
		assert.True(t, open.AcceptsSubtype(types.ObjectSubTypeFolder))
	})
}

func TestRegistryDecode(t *testing.T) {
	reg := MustNewRegistry(
		WithRule("date_created", decode.Time(decode.FullDateTime)),
	)

	t.Run("registered rule applies", func(t *testing.T) {
		v, err := reg.Decode("date_created", "2024-06-21T14:02:30.000+0000")
		require.NoError(t, err)
		_, ok := v.(time.Time)
		assert.True(t, ok)
	})

	t.Run("nil decodes to nil regardless of rule", func(t *testing.T) {
		v, err := reg.Decode("date_created", nil)
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("attributes without a rule pass through", func(t *testing.T) {
		v, err := reg.Decode("name", "Foo")
		require.NoError(t, err)
		assert.Equal(t, "Foo", v)
	})

	t.Run("rule failure names the attribute", func(t *testing.T) {
		_, err := reg.Decode("date_created", "bogus")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "date_created")
	})
}

func TestKindCheck(t *testing.T) {
	cases := []struct {
		kind  Kind
		good  any
		bad   any
	}{
		{String, "x", 1},
		{Int, 1, "x"},
		{Float, 1.5, 1},
		{Bool, true, "true"},
		{Map, map[string]any{}, []any{}},
		{List, []any{}, map[string]any{}},
		{Time, time.Now(), "2024-06-21"},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			assert.NoError(t, tc.kind.Check(tc.good))
			assert.Error(t, tc.kind.Check(tc.bad))
			assert.NoError(t, tc.kind.Check(nil), "nil is accepted for every kind")
		})
	}

	t.Run("any accepts everything", func(t *testing.T) {
		assert.NoError(t, Any.Check(struct{}{}))
	})

	t.Run("registry validate wires the declared kind", func(t *testing.T) {
		reg := MustNewRegistry(WithKind("enabled", Bool))
		assert.NoError(t, reg.Validate("enabled", true))
		assert.Error(t, reg.Validate("enabled", "yes"))
		assert.NoError(t, reg.Validate("undeclared", struct{}{}))
	})
}
