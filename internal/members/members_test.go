package members

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fooAttrs = []string{
	"__dunder_method1__", "__init__", "_private_method1", "_private_method2",
	"public_method1", "public_method2",
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name  string
		attrs []string
		expr  []string
		want  []string
	}{
		{
			name:  "Flag then exclusion",
			attrs: []string{"__init__", "_hidden", "public_a", "public_b"},
			expr:  []string{"public$", "-public_a"},
			want:  []string{"public_b"},
		},
		{
			name:  "Public minus one plus private",
			attrs: fooAttrs,
			expr:  []string{FlagPublic, "-public_method1", FlagPrivate},
			want:  []string{"public_method2", "_private_method1", "_private_method2"},
		},
		{
			name:  "Explicit inclusions keep order and dedupe",
			attrs: fooAttrs,
			expr:  []string{"+public_method2", "public_method1", FlagPublic, FlagDunder},
			want:  []string{"public_method2", "public_method1", "__dunder_method1__", "__init__"},
		},
		{
			name:  "Alias flags and surrounding spaces",
			attrs: fooAttrs,
			expr:  []string{" all-private ", "-_private_method1"},
			want:  []string{"_private_method2"},
		},
		{
			name:  "Exclusion of unknown name is ignored",
			attrs: fooAttrs,
			expr:  []string{"public_method1", "-missing"},
			want:  []string{"public_method1"},
		},
		{
			name:  "Empty expression",
			attrs: fooAttrs,
			expr:  nil,
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.attrs, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelect_Errors(t *testing.T) {
	t.Run("Conflict names the members", func(t *testing.T) {
		_, err := Select([]string{"foo", "bar"}, []string{"+foo", "bar", "-foo", "-bar"})
		require.ErrorIs(t, err, ErrMembersConflict)
		assert.ErrorIs(t, err, ErrSelection)
		assert.Contains(t, err.Error(), "foo, bar")
	})

	t.Run("Missing member", func(t *testing.T) {
		_, err := Select(fooAttrs, []string{"nope"})
		require.ErrorIs(t, err, ErrMemberNotFound)
		assert.Contains(t, err.Error(), "nope")
	})

	t.Run("Empty entry", func(t *testing.T) {
		_, err := Select(fooAttrs, []string{FlagPublic, "  "})
		assert.ErrorIs(t, err, ErrEmptyMember)
	})

	t.Run("Unknown flag", func(t *testing.T) {
		_, err := Select(fooAttrs, []string{"protected$"})
		assert.ErrorIs(t, err, ErrInvalidFlag)
	})
}

func TestCategories(t *testing.T) {
	assert.True(t, IsDunder("__init__"))
	assert.False(t, IsDunder("__"))
	assert.False(t, IsDunder("__mangled"))
	// Name-mangled attributes count as private, like any leading underscore.
	assert.True(t, IsPrivate("__mangled"))
	assert.True(t, IsPrivate("_x"))
	assert.False(t, IsPrivate("__init__"))
	assert.True(t, IsPublic("x"))
	assert.False(t, IsPublic("_x"))
}

func TestSelect_MangledNamesArePrivate(t *testing.T) {
	attrs := []string{"__init__", "__mangled", "_single", "public"}

	got, err := Select(attrs, []string{FlagPrivate})
	require.NoError(t, err)
	assert.Equal(t, []string{"__mangled", "_single"}, got)

	got, err = Select(attrs, []string{FlagDunder})
	require.NoError(t, err)
	assert.Equal(t, []string{"__init__"}, got)
}
