package resolver

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a dotted path names nothing.
	ErrNotFound = errors.New("object not found")
	// ErrNoSignature is returned by Object.Signature when the object has no
	// signature of its own, such as a plain class whose constructor has to be
	// inspected instead.
	ErrNoSignature = errors.New("no signature")
)

// Object is a documented Python object: a module, class, function, method,
// property or attribute.
type Object interface {
	// Path is the dotted path the object was resolved from.
	Path() string
	// Doc returns the raw docstring. ok is false when the object has none.
	Doc() (doc string, ok bool)
	Callable() bool
	// Signature returns the parenthesized parameter list, for example
	// "(self, a: int = 1) -> str".
	Signature() (string, error)
	// Constructor returns the object's __init__ when it is a class.
	Constructor() (Object, bool)
	// Members returns the sorted attribute names, like dir().
	Members() []string
}

// Resolver looks objects up by dotted path.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, path string) (Object, error)
}

// Invalidator is implemented by resolvers that cache what they load.
type Invalidator interface {
	// Invalidate drops cached state so later lookups read sources again.
	Invalidate()
}

// Chain tries resolvers in order until one finds the path.
type Chain struct {
	resolvers []Resolver
}

// NewChain creates a chain of resolvers.
func NewChain(resolvers ...Resolver) *Chain {
	return &Chain{resolvers: resolvers}
}

func (c *Chain) Name() string {
	return "chain"
}

// Resolve returns the first match. Errors other than ErrNotFound stop the
// chain.
func (c *Chain) Resolve(ctx context.Context, path string) (Object, error) {
	for _, r := range c.resolvers {
		obj, err := r.Resolve(ctx, path)
		if err == nil {
			return obj, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%s resolver: %w", r.Name(), err)
		}
	}
	return nil, fmt.Errorf("resolve %q: %w", path, ErrNotFound)
}

// Invalidate invalidates every resolver of the chain that caches.
func (c *Chain) Invalidate() {
	for _, r := range c.resolvers {
		if inv, ok := r.(Invalidator); ok {
			inv.Invalidate()
		}
	}
}
