package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"pydocmd/internal/extractor"
)

const (
	defaultCacheSize = 256
	defaultMaxDepth  = 16
)

// SourceResolver resolves dotted paths against Python source code without
// running it. Modules come from a ModuleLoader and are kept in an LRU cache.
type SourceResolver struct {
	loader   ModuleLoader
	cache    *lru.LRU[string, *extractor.Module]
	maxDepth int
}

type sourceOptions struct {
	cacheSize int
	cacheTTL  time.Duration
	maxDepth  int
}

// Option configures a SourceResolver.
type Option func(*sourceOptions)

// WithCacheSize sets how many parsed modules are kept.
func WithCacheSize(n int) Option {
	return func(o *sourceOptions) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithCacheTTL expires parsed modules after ttl so edited sources are read
// again. Zero keeps them until evicted.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *sourceOptions) { o.cacheTTL = ttl }
}

// WithMaxDepth bounds how many imports and base classes are followed for a
// single lookup.
func WithMaxDepth(n int) Option {
	return func(o *sourceOptions) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

func NewSourceResolver(loader ModuleLoader, opts ...Option) *SourceResolver {
	o := sourceOptions{cacheSize: defaultCacheSize, maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return &SourceResolver{
		loader:   loader,
		cache:    lru.NewLRU[string, *extractor.Module](o.cacheSize, nil, o.cacheTTL),
		maxDepth: o.maxDepth,
	}
}

func (r *SourceResolver) Name() string {
	return "source"
}

// Resolve imports the longest prefix of path that is a module and walks the
// remaining parts as attributes.
func (r *SourceResolver) Resolve(ctx context.Context, path string) (Object, error) {
	if !validPath(path) {
		return nil, fmt.Errorf("%q: %w", path, ErrNotFound)
	}
	parts := strings.Split(path, ".")
	for i := len(parts); i >= 1; i-- {
		mod, err := r.module(ctx, strings.Join(parts[:i], "."))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		t := target{mod: mod}
		for _, name := range parts[i:] {
			t, err = r.attr(ctx, t, name, 0)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", path, err)
			}
		}
		return r.object(ctx, path, t)
	}
	return nil, fmt.Errorf("%q: %w", path, ErrNotFound)
}

var _ Invalidator = (*SourceResolver)(nil)

// Invalidate drops all parsed modules.
func (r *SourceResolver) Invalidate() {
	r.cache.Purge()
}

func (r *SourceResolver) module(ctx context.Context, path string) (*extractor.Module, error) {
	if mod, ok := r.cache.Get(path); ok {
		return mod, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mod, err := r.loader.LoadModule(ctx, path)
	if err != nil {
		return nil, err
	}
	r.cache.Add(path, mod)
	return mod, nil
}

// target is a definition found while walking a path: a module when unit is
// nil, otherwise a unit defined in mod.
type target struct {
	mod  *extractor.Module
	unit *extractor.Unit
}

func (t target) isModule() bool { return t.unit == nil }

func (t target) isClass() bool { return t.unit != nil && t.unit.Kind == extractor.KindClass }

func (r *SourceResolver) attr(ctx context.Context, t target, name string, depth int) (target, error) {
	if depth > r.maxDepth {
		return target{}, fmt.Errorf("%s: too many indirections: %w", name, ErrNotFound)
	}
	switch {
	case t.isModule():
		return r.moduleAttr(ctx, t.mod, name, depth)
	case t.isClass():
		return r.classAttr(ctx, t, name, depth)
	}
	return target{}, fmt.Errorf("%s has no attribute %s: %w", t.unit.Name, name, ErrNotFound)
}

func (r *SourceResolver) moduleAttr(ctx context.Context, mod *extractor.Module, name string, depth int) (target, error) {
	if unit, ok := mod.Lookup(name); ok {
		return target{mod: mod, unit: unit}, nil
	}
	if imp, ok := mod.Binding(name); ok {
		return r.follow(ctx, mod, imp, depth+1)
	}
	// Submodules of a package are attributes once imported.
	if mod.Package {
		sub, err := r.module(ctx, mod.Path+"."+name)
		if err == nil {
			return target{mod: sub}, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return target{}, err
		}
	}
	if !strings.HasPrefix(name, "_") {
		for _, imp := range mod.Imports {
			if imp.Name != "*" {
				continue
			}
			from, err := r.module(ctx, absoluteModule(mod, imp.Module))
			if err != nil {
				continue
			}
			if t, err := r.attr(ctx, target{mod: from}, name, depth+1); err == nil {
				return t, nil
			}
		}
	}
	return target{}, fmt.Errorf("module %s has no attribute %s: %w", mod.Path, name, ErrNotFound)
}

// follow resolves the object an import statement binds.
func (r *SourceResolver) follow(ctx context.Context, mod *extractor.Module, imp extractor.Import, depth int) (target, error) {
	if depth > r.maxDepth {
		return target{}, fmt.Errorf("import of %s: too many indirections: %w", imp.Module, ErrNotFound)
	}
	from := absoluteModule(mod, imp.Module)
	if imp.Name == "" {
		// "import a.b" binds a, "import a.b as c" binds a.b.
		if imp.Alias == "" {
			from, _, _ = strings.Cut(from, ".")
		}
		m, err := r.module(ctx, from)
		if err != nil {
			return target{}, err
		}
		return target{mod: m}, nil
	}

	m, err := r.module(ctx, from)
	if err != nil {
		return target{}, err
	}
	t, err := r.attr(ctx, target{mod: m}, imp.Name, depth)
	if err == nil {
		return t, nil
	}
	sub, subErr := r.module(ctx, from+"."+imp.Name)
	if subErr != nil {
		return target{}, err
	}
	return target{mod: sub}, nil
}

func (r *SourceResolver) classAttr(ctx context.Context, t target, name string, depth int) (target, error) {
	if m, ok := t.unit.Member(name); ok {
		return target{mod: t.mod, unit: m}, nil
	}
	for _, base := range r.bases(ctx, t, depth) {
		if found, err := r.classAttr(ctx, base, name, depth+1); err == nil {
			return found, nil
		}
	}
	return target{}, fmt.Errorf("class %s has no attribute %s: %w", t.unit.Name, name, ErrNotFound)
}

// bases resolves the base classes of a class. Bases that cannot be found,
// like builtins or classes of uninstalled packages, are skipped.
func (r *SourceResolver) bases(ctx context.Context, t target, depth int) []target {
	if depth > r.maxDepth {
		return nil
	}
	var out []target
	for _, expr := range t.unit.Bases {
		b, err := r.lookupName(ctx, t.mod, expr, depth+1)
		if err != nil || !b.isClass() {
			continue
		}
		out = append(out, b)
	}
	return out
}

// lookupName evaluates a dotted name such as "Base" or "abc.ABC" in the scope
// of a module. Subscripts of generic bases are ignored.
func (r *SourceResolver) lookupName(ctx context.Context, mod *extractor.Module, expr string, depth int) (target, error) {
	expr, _, _ = strings.Cut(expr, "[")
	parts := strings.Split(strings.TrimSpace(expr), ".")
	t := target{mod: mod}
	for _, name := range parts {
		var err error
		t, err = r.attr(ctx, t, name, depth)
		if err != nil {
			return target{}, err
		}
	}
	return t, nil
}

// unresolvedBases reports whether a class has bases other than object that
// could not be found.
func (r *SourceResolver) unresolvedBases(ctx context.Context, t target) bool {
	for _, expr := range t.unit.Bases {
		if expr == "object" {
			continue
		}
		b, err := r.lookupName(ctx, t.mod, expr, 1)
		if err != nil || !b.isClass() {
			return true
		}
	}
	return false
}

// absoluteModule turns a relative import module into an absolute path.
func absoluteModule(mod *extractor.Module, name string) string {
	dots := len(name) - len(strings.TrimLeft(name, "."))
	if dots == 0 {
		return name
	}
	parts := strings.Split(mod.Path, ".")
	if !mod.Package {
		parts = parts[:len(parts)-1]
	}
	if up := dots - 1; up <= len(parts) {
		parts = parts[:len(parts)-up]
	} else {
		parts = nil
	}
	if rest := name[dots:]; rest != "" {
		parts = append(parts, rest)
	}
	return strings.Join(parts, ".")
}

// object turns a walked target into an Object. Everything that needs
// further lookups is computed here, so the returned value never touches the
// loader again.
func (r *SourceResolver) object(ctx context.Context, path string, t target) (Object, error) {
	if t.isModule() {
		return &sourceObject{
			path:    path,
			doc:     t.mod.Doc,
			hasDoc:  t.mod.HasDoc,
			sigErr:  ErrNoSignature,
			members: r.moduleMembers(ctx, t.mod),
		}, nil
	}

	u := t.unit
	obj := &sourceObject{
		path:     path,
		doc:      u.Doc,
		hasDoc:   u.HasDoc,
		callable: u.Callable(),
		sigErr:   ErrNoSignature,
	}
	switch u.Kind {
	case extractor.KindFunction, extractor.KindMethod:
		obj.sig, obj.sigErr = u.Signature(), nil
	case extractor.KindClass:
		obj.members = r.classMembers(ctx, t, 0)
		if _, own := u.Member("__init__"); u.IsDataclass() && !own {
			obj.sig, obj.sigErr = r.dataclassSignature(ctx, t), nil
		}
		obj.ctor = r.constructor(ctx, path, t)
	}
	return obj, nil
}

// moduleMembers lists the names defined in mod and the imported names that
// resolve to something under the loader. Imports from outside, such as the
// standard library, are left out.
func (r *SourceResolver) moduleMembers(ctx context.Context, mod *extractor.Module) []string {
	var names []string
	for _, name := range mod.Names() {
		if _, ok := mod.Lookup(name); ok {
			names = append(names, name)
			continue
		}
		if _, err := r.attr(ctx, target{mod: mod}, name, 0); err == nil {
			names = append(names, name)
		}
	}
	return names
}

func (r *SourceResolver) classMembers(ctx context.Context, t target, depth int) []string {
	seen := make(map[string]bool)
	var walk func(t target, depth int)
	walk = func(t target, depth int) {
		for _, name := range t.unit.MemberNames() {
			seen[name] = true
		}
		for _, b := range r.bases(ctx, t, depth) {
			walk(b, depth+1)
		}
	}
	walk(t, depth)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// dataclassSignature builds the generated __init__ signature of a
// dataclass. Fields of dataclass bases come first.
func (r *SourceResolver) dataclassSignature(ctx context.Context, t target) string {
	var params []extractor.Param
	index := make(map[string]int)
	var walk func(t target, depth int)
	walk = func(t target, depth int) {
		bases := r.bases(ctx, t, depth)
		for i := len(bases) - 1; i >= 0; i-- {
			if bases[i].unit.IsDataclass() {
				walk(bases[i], depth+1)
			}
		}
		for _, f := range t.unit.Fields() {
			p := extractor.Param{Name: f.Name, Annotation: f.Annotation, Default: f.Value}
			if i, ok := index[f.Name]; ok {
				params[i] = p
				continue
			}
			index[f.Name] = len(params)
			params = append(params, p)
		}
	}
	walk(t, 0)
	return extractor.FormatSignature(params, "None")
}

// constructor finds __init__ on the class or its bases. Classes without one
// get the signature object.__init__ would give them.
func (r *SourceResolver) constructor(ctx context.Context, path string, t target) *sourceObject {
	ctorPath := path + ".__init__"
	if found, err := r.classAttr(ctx, t, "__init__", 0); err == nil && found.unit.Callable() {
		return &sourceObject{
			path:     ctorPath,
			doc:      found.unit.Doc,
			hasDoc:   found.unit.HasDoc,
			callable: true,
			sig:      found.unit.Signature(),
		}
	}
	sig := "(self)"
	if r.unresolvedBases(ctx, t) {
		sig = "(self, *args, **kwargs)"
	}
	return &sourceObject{
		path:     ctorPath,
		callable: true,
		sig:      sig,
	}
}

// sourceObject is an Object backed by extracted source.
type sourceObject struct {
	path     string
	doc      string
	hasDoc   bool
	callable bool
	sig      string
	sigErr   error
	ctor     *sourceObject
	members  []string
}

func (o *sourceObject) Path() string { return o.path }

func (o *sourceObject) Doc() (string, bool) { return o.doc, o.hasDoc }

func (o *sourceObject) Callable() bool { return o.callable }

func (o *sourceObject) Signature() (string, error) {
	if o.sigErr != nil {
		return "", o.sigErr
	}
	return o.sig, nil
}

func (o *sourceObject) Constructor() (Object, bool) {
	if o.ctor == nil {
		return nil, false
	}
	return o.ctor, true
}

func (o *sourceObject) Members() []string {
	return append([]string(nil), o.members...)
}
