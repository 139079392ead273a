// Package render converts the docstring of a Python object into Markdown.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"pydocmd/internal/docstring"
	"pydocmd/internal/members"
	"pydocmd/internal/resolver"
)

// Renderer renders objects found through a resolver.
type Renderer struct {
	resolver resolver.Resolver
	logger   *log.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger receiving custom section notices.
func WithLogger(logger *log.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(res resolver.Resolver, opts ...Option) *Renderer {
	r := &Renderer{
		resolver: res,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Invalidate drops what the resolver cached, when it caches anything.
func (r *Renderer) Invalidate() {
	if inv, ok := r.resolver.(resolver.Invalidator); ok {
		inv.Invalidate()
	}
}

// Render resolves path and renders its docstring. When cfg selects members,
// each of them is rendered on its own and appended, separated by a blank
// line.
func (r *Renderer) Render(ctx context.Context, path string, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	obj, err := r.resolver.Resolve(ctx, path)
	if err != nil {
		return "", fmt.Errorf("could not load object %q: %w", path, err)
	}
	md, err := r.RenderObject(obj, path, cfg)
	if err != nil {
		return "", err
	}
	if len(cfg.Members) == 0 {
		return md, nil
	}

	names, err := members.Select(obj.Members(), cfg.Members)
	if err != nil {
		return "", fmt.Errorf("members of %s: %w", path, err)
	}
	results := []string{md}
	for _, name := range names {
		sub, err := r.Render(ctx, path+"."+name, cfg.ForMember(name))
		if err != nil {
			return "", err
		}
		results = append(results, sub)
	}
	return strings.Join(results, "\n\n"), nil
}

// RenderObject renders one already resolved object. path is shown in the
// signature heading unless cfg has an alias. Members are not expanded.
func (r *Renderer) RenderObject(obj resolver.Object, path string, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	doc, _ := obj.Doc()
	table, err := docstring.Parse(doc)
	if err != nil {
		return "", fmt.Errorf("docstring of %s: %w", path, err)
	}
	if custom := table.Custom(); len(custom) > 0 {
		if cfg.IgnoreCustomSectionWarning {
			r.logger.Debug("found custom sections", "object", path, "sections", custom)
		} else {
			r.logger.Warn("found custom sections, rendering them as text", "object", path, "sections", custom)
		}
	}

	name := path
	if cfg.Alias != "" {
		name = cfg.Alias
	}

	var b strings.Builder
	for _, sec := range table.Sections() {
		if sec.Kind != docstring.KindSignature && sec.Empty() {
			continue
		}
		if !sec.Headerless() && !sec.Visible {
			continue
		}

		lines, err := r.section(obj, name, sec, cfg)
		if err != nil {
			return "", err
		}
		if len(lines) == 0 {
			continue
		}

		if !sec.Headerless() {
			b.WriteString(strings.Repeat("#", cfg.MDSectionLevel) + " " + sec.Name + "\n\n")
		}
		b.WriteString(strings.Join(lines, "\n") + "\n\n")
	}
	return strings.TrimSpace(b.String()), nil
}

func (r *Renderer) section(obj resolver.Object, name string, sec docstring.Section, cfg Config) ([]string, error) {
	switch sec.Kind {
	case docstring.KindSignature:
		return renderSignature(obj, name, cfg)
	case docstring.KindParams:
		return renderParams(sec.Params), nil
	case docstring.KindSeeAlso:
		return renderSeeAlso(sec.Refs), nil
	case docstring.KindExamples:
		return renderExamples(sec.Lines, cfg), nil
	default:
		return renderText(sec.Lines), nil
	}
}
