package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// RenderedFile is the outcome of rendering one template file.
type RenderedFile struct {
	Source string
	// Destination is empty when the result was not written.
	Destination  string
	OriginalText string
	RenderedText string
}

// RenderFile renders the template at source and, when destination is not
// empty, writes the result there, creating parent directories.
func (p *Processor) RenderFile(ctx context.Context, source, destination string, ignoreErrors bool) (*RenderedFile, error) {
	p.logger.Debug("reading file", "path", source)
	content, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	p.logger.Debug("rendering file", "path", source)
	rendered, err := p.RenderString(ctx, string(content), ignoreErrors)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	out := &RenderedFile{
		Source:       source,
		Destination:  destination,
		OriginalText: string(content),
		RenderedText: rendered,
	}
	if destination == "" {
		return out, nil
	}

	p.logger.Info("saving rendered file", "path", destination)
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", destination, err)
	}
	if err := os.WriteFile(destination, []byte(rendered), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", destination, err)
	}
	return out, nil
}
