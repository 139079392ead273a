package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pydocmd/internal/extractor"
)

// ModuleLoader loads the extracted content of a Python module by dotted
// path. Implementations return an error wrapping ErrNotFound when the module
// does not exist.
type ModuleLoader interface {
	LoadModule(ctx context.Context, path string) (*extractor.Module, error)
}

// FSLoader finds modules as source files below a list of roots, the way
// Python searches sys.path.
type FSLoader struct {
	roots []string
	ext   *extractor.Extractor
}

func NewFSLoader(roots ...string) (*FSLoader, error) {
	ext, err := extractor.NewExtractor("python")
	if err != nil {
		return nil, err
	}
	return &FSLoader{roots: roots, ext: ext}, nil
}

// LoadModule parses a/b.py or a/b/__init__.py for the path "a.b".
func (l *FSLoader) LoadModule(ctx context.Context, path string) (*extractor.Module, error) {
	file, err := l.Find(path)
	if err != nil {
		return nil, err
	}
	return l.ext.ExtractFromFile(ctx, file, path)
}

// Find returns the source file of a module.
func (l *FSLoader) Find(path string) (string, error) {
	if !validPath(path) {
		return "", fmt.Errorf("module %q: %w", path, ErrNotFound)
	}
	rel := filepath.Join(strings.Split(path, ".")...)
	for _, root := range l.roots {
		for _, candidate := range []string{
			filepath.Join(root, rel+".py"),
			filepath.Join(root, rel, "__init__.py"),
		} {
			info, err := os.Stat(candidate)
			if err == nil && info.Mode().IsRegular() {
				return candidate, nil
			}
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("stat %s: %w", candidate, err)
			}
		}
	}
	return "", fmt.Errorf("module %q: %w", path, ErrNotFound)
}

// ModulePath converts a source file below root into a dotted module path.
// Package __init__ files name their directory.
func ModulePath(root, file string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", err
	}
	rel = strings.TrimSuffix(filepath.ToSlash(rel), ".py")
	rel = strings.TrimSuffix(rel, "/__init__")
	if rel == "__init__" || rel == "" || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is not a module below %s", file, root)
	}
	return strings.ReplaceAll(rel, "/", "."), nil
}

func validPath(path string) bool {
	if path == "" {
		return false
	}
	for _, part := range strings.Split(path, ".") {
		if part == "" || strings.ContainsAny(part, `/\ `) {
			return false
		}
	}
	return true
}
