package resolver

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// StaticObject is an Object described by plain values.
type StaticObject struct {
	Name       string
	Docstring  string
	HasDoc     bool
	IsCallable bool
	// Sig is returned by Signature. An empty Sig means no signature.
	Sig  string
	Init *StaticObject
	// Attrs are the member names.
	Attrs []string
}

func (o *StaticObject) Path() string { return o.Name }

func (o *StaticObject) Doc() (string, bool) { return o.Docstring, o.HasDoc }

func (o *StaticObject) Callable() bool { return o.IsCallable }

func (o *StaticObject) Signature() (string, error) {
	if o.Sig == "" {
		return "", ErrNoSignature
	}
	return o.Sig, nil
}

func (o *StaticObject) Constructor() (Object, bool) {
	if o.Init == nil {
		return nil, false
	}
	return o.Init, true
}

func (o *StaticObject) Members() []string {
	names := append([]string(nil), o.Attrs...)
	sort.Strings(names)
	return names
}

// Registry maps dotted paths to objects registered ahead of time.
type Registry struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewRegistry() *Registry {
	return &Registry{objects: make(map[string]Object)}
}

// Register adds obj under path, replacing any previous entry.
func (r *Registry) Register(path string, obj Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[path] = obj
}

// RegisterStatic adds obj under its own Name.
func (r *Registry) RegisterStatic(obj *StaticObject) {
	r.Register(obj.Name, obj)
}

func (r *Registry) Name() string {
	return "registry"
}

func (r *Registry) Resolve(_ context.Context, path string) (Object, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[path]
	if !ok {
		return nil, fmt.Errorf("%q: %w", path, ErrNotFound)
	}
	return obj, nil
}
