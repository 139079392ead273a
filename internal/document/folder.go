package document

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultPattern matches Markdown templates: ".md" and ".npmd" files.
const DefaultPattern = `\.(np)?md$`

// OutputExt is the extension of every rendered file.
const OutputExt = ".md"

// FolderOptions selects the templates of a folder and where they go.
type FolderOptions struct {
	Source string
	// Destination mirrors the layout of Source. Nothing is written when it
	// is empty.
	Destination string
	// Pattern is matched against file names. It defaults to DefaultPattern.
	Pattern       string
	CaseSensitive bool
	Recursive     bool
	IgnoreErrors  bool
}

func (o FolderOptions) regexp() (*regexp.Regexp, error) {
	pattern := o.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !o.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", o.Pattern, err)
	}
	return re, nil
}

// ListTemplates returns the sorted paths of the files below opts.Source
// whose name matches the pattern.
func ListTemplates(opts FolderOptions) ([]string, error) {
	re, err := opts.regexp()
	if err != nil {
		return nil, err
	}

	var files []string
	if !opts.Recursive {
		entries, err := os.ReadDir(opts.Source)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Type().IsRegular() && re.MatchString(e.Name()) {
				files = append(files, filepath.Join(opts.Source, e.Name()))
			}
		}
		sort.Strings(files)
		return files, nil
	}

	err = filepath.WalkDir(opts.Source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && re.MatchString(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Destination maps a template below opts.Source to its output path. The
// extension becomes ".md" unless the name already ends with it in any case.
func Destination(opts FolderOptions, source string) (string, error) {
	if opts.Destination == "" {
		return "", nil
	}
	rel, err := filepath.Rel(opts.Source, source)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(opts.Destination, rel)
	if !strings.HasSuffix(strings.ToLower(dst), OutputExt) {
		dst = strings.TrimSuffix(dst, filepath.Ext(dst)) + OutputExt
	}
	return dst, nil
}

// RenderFolder renders every template of a folder. Files render in
// parallel; the results follow the order of ListTemplates.
func (p *Processor) RenderFolder(ctx context.Context, opts FolderOptions) ([]*RenderedFile, error) {
	files, err := ListTemplates(opts)
	if err != nil {
		return nil, err
	}
	p.logger.Info("processing folder", "source", opts.Source, "files", len(files))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)

	results := make([]*RenderedFile, len(files))
	for i, file := range files {
		i, file := i, file
		eg.Go(func() error {
			dst, err := Destination(opts, file)
			if err != nil {
				return err
			}
			p.logger.Info("processing path", "n", fmt.Sprintf("%d/%d", i+1, len(files)), "path", file)
			rf, err := p.RenderFile(ctx, file, dst, opts.IgnoreErrors)
			if err != nil {
				return err
			}
			results[i] = rf
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
