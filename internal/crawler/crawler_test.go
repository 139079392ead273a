package crawler

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"pydocmd/internal/extractor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawler_ScanProject(t *testing.T) {
	ext, err := extractor.NewExtractor("python")
	require.NoError(t, err)

	c := NewCrawler(ext)
	root := filepath.Join("testdata", "proj")

	mods := make(map[string]*extractor.Module)
	err = c.ScanProject(context.Background(), root, func(mod *extractor.Module) {
		mods[mod.Path] = mod
	})
	require.NoError(t, err)

	t.Run("Module paths", func(t *testing.T) {
		var paths []string
		for p := range mods {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		assert.Equal(t, []string{"app", "app.cli", "setup"}, paths)
	})

	t.Run("Packages", func(t *testing.T) {
		require.Contains(t, mods, "app")
		assert.True(t, mods["app"].Package)
		assert.Equal(t, "App package.", mods["app"].Doc)
	})

	t.Run("Units", func(t *testing.T) {
		require.Contains(t, mods, "app.cli")
		unit, ok := mods["app.cli"].Lookup("main")
		require.True(t, ok)
		assert.Equal(t, "Entry point.", unit.Doc)
	})
}

func TestCrawler_Cancelled(t *testing.T) {
	ext, err := extractor.NewExtractor("python")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = NewCrawler(ext).ScanProject(ctx, filepath.Join("testdata", "proj"), func(*extractor.Module) {})
	assert.ErrorIs(t, err, context.Canceled)
}
