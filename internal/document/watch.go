package document

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"pydocmd/internal/resolver"
)

// Watch re-renders templates of opts.Source whenever one is written or
// created, until ctx is done. onRender, when set, receives every result.
// Rendering errors are logged and do not stop the watch.
func (p *Processor) Watch(ctx context.Context, opts FolderOptions, onRender func(*RenderedFile)) error {
	re, err := opts.regexp()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := p.addWatches(watcher, opts); err != nil {
		return err
	}
	p.logger.Info("watching for template changes", "source", opts.Source)

	// Outputs written by the watch itself must not trigger a new render.
	var mu sync.Mutex
	written := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if opts.Recursive && event.Op&fsnotify.Create != 0 {
					if err := watcher.Add(event.Name); err != nil {
						p.logger.Warn("cannot watch new directory", "path", event.Name, "err", err)
					}
				}
				continue
			}

			abs, _ := filepath.Abs(event.Name)
			mu.Lock()
			own := written[abs]
			mu.Unlock()
			if own || !info.Mode().IsRegular() || !re.MatchString(filepath.Base(event.Name)) {
				continue
			}

			dst, err := Destination(opts, event.Name)
			if err != nil {
				p.logger.Error("cannot map destination", "path", event.Name, "err", err)
				continue
			}
			p.logger.Info("template changed", "path", event.Name)
			// Python sources may have changed since the last render.
			if inv, ok := p.renderer.(resolver.Invalidator); ok {
				inv.Invalidate()
			}
			rf, err := p.RenderFile(ctx, event.Name, dst, opts.IgnoreErrors)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				p.logger.Error("render failed", "path", event.Name, "err", err)
				continue
			}
			if dst != "" {
				if abs, err := filepath.Abs(dst); err == nil {
					mu.Lock()
					written[abs] = true
					mu.Unlock()
				}
			}
			if onRender != nil {
				onRender(rf)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("watcher error", "err", err)
		}
	}
}

func (p *Processor) addWatches(watcher *fsnotify.Watcher, opts FolderOptions) error {
	if !opts.Recursive {
		return watcher.Add(opts.Source)
	}
	return filepath.WalkDir(opts.Source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
