package storage

import (
	"context"

	"pydocmd/internal/extractor"
)

// Store persists extracted Python modules.
type Store interface {
	ModuleStore
	Close() error
}

// ModuleStore defines operations on the module index.
type ModuleStore interface {
	// SaveModule upserts a single module.
	SaveModule(ctx context.Context, mod *extractor.Module) error

	// SaveModules replaces the whole index with mods.
	SaveModules(ctx context.Context, mods []*extractor.Module) error

	// LoadModule returns the module with the given dotted path. The error
	// wraps resolver.ErrNotFound when it is not indexed.
	LoadModule(ctx context.Context, path string) (*extractor.Module, error)

	// ListModules returns the indexed module paths in order.
	ListModules(ctx context.Context) ([]string, error)
}
