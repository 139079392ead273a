package crawler

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"pydocmd/internal/extractor"
	"pydocmd/internal/resolver"
)

// Crawler scans a directory for Python source files.
type Crawler struct {
	extractor *extractor.Extractor
	ignored   []string
	logger    *log.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger reports files that fail to parse.
func WithLogger(logger *log.Logger) Option {
	return func(c *Crawler) { c.logger = logger }
}

// NewCrawler creates a new crawler instance.
func NewCrawler(ext *extractor.Extractor, opts ...Option) *Crawler {
	c := &Crawler{
		extractor: ext,
		ignored: []string{
			".git", "__pycache__", ".venv", "venv", "node_modules",
			"build", "dist", ".tox", ".mypy_cache", ".pytest_cache",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScanProject walks the root directory and extracts every Python module in
// it. Modules are streamed to onModule to avoid keeping a large project in
// memory.
func (c *Crawler) ScanProject(ctx context.Context, root string, onModule func(*extractor.Module)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			if path == root {
				return nil
			}
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !strings.HasSuffix(d.Name(), ".py") {
			return nil
		}

		modPath, err := resolver.ModulePath(root, path)
		if err != nil {
			return nil
		}

		mod, err := c.extractor.ExtractFromFile(ctx, path, modPath)
		if err != nil {
			// Log and continue instead of failing the whole scan
			if c.logger != nil {
				c.logger.Warn("skipping file", "path", path, "err", err)
			}
			return nil
		}

		onModule(mod)
		return nil
	})
}
