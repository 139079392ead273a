package storage

import (
	"context"
	"path/filepath"
	"testing"

	"pydocmd/internal/extractor"
	"pydocmd/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_SaveModules_SnapshotSync(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	a := testModule("pkg.a", "pkg/a.py")
	b := testModule("pkg.b", "pkg/b.py")
	require.NoError(t, store.SaveModules(ctx, []*extractor.Module{a, b}))

	// New snapshot: remove a, add c.
	c := testModule("pkg.c", "pkg/c.py")
	require.NoError(t, store.SaveModules(ctx, []*extractor.Module{b, c}))

	paths, err := store.ListModules(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg.b", "pkg.c"}, paths)

	_, err = store.LoadModule(ctx, "pkg.a")
	assert.ErrorIs(t, err, resolver.ErrNotFound)
}

func TestSQLiteStore_LoadModule_RoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	mod := testModule("pkg.a", "pkg/a.py")
	require.NoError(t, store.SaveModule(ctx, mod))

	mod.Doc = "Updated."
	require.NoError(t, store.SaveModule(ctx, mod))

	loaded, err := store.LoadModule(ctx, "pkg.a")
	require.NoError(t, err)
	assert.Equal(t, mod, loaded)

	paths, err := store.ListModules(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg.a"}, paths)
}

func TestSQLiteStore_ResolverLoader(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SaveModules(ctx, []*extractor.Module{testModule("pkg.a", "pkg/a.py")}))

	r := resolver.NewSourceResolver(store)
	obj, err := r.Resolve(ctx, "pkg.a.run")
	require.NoError(t, err)
	sig, err := obj.Signature()
	require.NoError(t, err)
	assert.Equal(t, "(x: int = 1) -> str", sig)
	doc, ok := obj.Doc()
	assert.True(t, ok)
	assert.Equal(t, "Run it.", doc)
}

func testModule(path, file string) *extractor.Module {
	return &extractor.Module{
		Path:     path,
		Filepath: file,
		Doc:      "Module " + path + ".",
		HasDoc:   true,
		Units: []*extractor.Unit{{
			Name:      "run",
			Kind:      extractor.KindFunction,
			StartLine: 3,
			EndLine:   5,
			Doc:       "Run it.",
			HasDoc:    true,
			Params:    []extractor.Param{{Name: "x", Annotation: "int", Default: "1"}},
			Returns:   "str",
		}},
		Imports: []extractor.Import{{Module: "os"}},
	}
}
