// Package document renders Markdown templates: every placeholder line is
// replaced by the rendered docstring of the object it names.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"pydocmd/internal/docstring"
	"pydocmd/internal/members"
	"pydocmd/internal/placeholder"
	"pydocmd/internal/render"
)

// ObjectRenderer renders the docstring of the object at a dotted path.
type ObjectRenderer interface {
	Render(ctx context.Context, path string, cfg render.Config) (string, error)
}

// Processor renders strings, files and folders.
type Processor struct {
	renderer ObjectRenderer
	defaults render.Config
	logger   *log.Logger
	workers  int
}

// Option configures a Processor.
type Option func(*Processor)

func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithWorkers bounds how many files of a folder render at once.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithDefaults sets the configuration placeholders start from.
func WithDefaults(cfg render.Config) Option {
	return func(p *Processor) { p.defaults = cfg }
}

func NewProcessor(r ObjectRenderer, opts ...Option) *Processor {
	p := &Processor{
		renderer: r,
		defaults: render.DefaultConfig(),
		logger:   log.New(io.Discard),
		workers:  4,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fatal reports whether err must stop rendering even when errors are
// ignored: configuration, member selection and signature errors point at a
// mistake in the template rather than a missing object.
func Fatal(err error) bool {
	return errors.Is(err, render.ErrInvalidConfig) ||
		errors.Is(err, members.ErrSelection) ||
		errors.Is(err, render.ErrSignatureNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// RenderString replaces every placeholder line of text. With ignoreErrors a
// placeholder that fails for a non fatal reason is logged and left as is.
func (p *Processor) RenderString(ctx context.Context, text string, ignoreErrors bool) (string, error) {
	lines := docstring.SplitLines(text)
	for i, line := range lines {
		if !placeholder.Match(line) {
			continue
		}
		md, err := p.renderPlaceholder(ctx, line)
		if err == nil {
			lines[i] = md
			continue
		}
		if ignoreErrors && !Fatal(err) {
			p.logger.Error("an error occurred when rendering this placeholder", "placeholder", line, "err", err)
			continue
		}
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

func (p *Processor) renderPlaceholder(ctx context.Context, line string) (string, error) {
	ph, err := placeholder.Parse(line, p.defaults)
	if err != nil {
		return "", err
	}
	md, err := p.renderer.Render(ctx, ph.Object, ph.Config)
	if err != nil {
		return "", fmt.Errorf("placeholder %s: %w", strings.TrimSpace(line), err)
	}
	return md, nil
}
