package document

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pydocmd/internal/members"
	"pydocmd/internal/placeholder"
	"pydocmd/internal/render"
	"pydocmd/internal/resolver"
)

const greetMarkdown = "## <span style=\"color:purple\">pkg.greet</span>_(name)_\n\nSay hello."

func newTestProcessor(t *testing.T, opts ...Option) *Processor {
	t.Helper()
	reg := resolver.NewRegistry()
	reg.RegisterStatic(&resolver.StaticObject{
		Name:       "pkg.greet",
		Docstring:  "Say hello.",
		HasDoc:     true,
		IsCallable: true,
		Sig:        "(name)",
	})
	reg.RegisterStatic(&resolver.StaticObject{
		Name:       "pkg.broken",
		Docstring:  "No signature.",
		HasDoc:     true,
		IsCallable: true,
	})
	return NewProcessor(render.New(reg), opts...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestProcessor_RenderString(t *testing.T) {
	ctx := context.Background()
	p := newTestProcessor(t)

	t.Run("Replaces Placeholders", func(t *testing.T) {
		got, err := p.RenderString(ctx, "# Title\n\n  {{\"obj\": \"pkg.greet\"}}  \ntext", false)
		require.NoError(t, err)
		assert.Equal(t, "# Title\n\n"+greetMarkdown+"\ntext", got)
	})

	t.Run("Leaves Other Lines", func(t *testing.T) {
		text := "a {{\"obj\": \"pkg.greet\"}}\r\n{{not json}} b"
		got, err := p.RenderString(ctx, text, false)
		require.NoError(t, err)
		assert.Equal(t, "a {{\"obj\": \"pkg.greet\"}}\n{{not json}} b", got)
	})

	t.Run("Missing Object", func(t *testing.T) {
		_, err := p.RenderString(ctx, `{{"obj": "pkg.missing"}}`, false)
		assert.ErrorIs(t, err, resolver.ErrNotFound)
	})

	t.Run("Ignored Errors", func(t *testing.T) {
		var buf bytes.Buffer
		p := newTestProcessor(t, WithLogger(log.New(&buf)))
		text := "{{\"obj\": \"pkg.missing\"}}\n{{\"obj\": \"pkg.greet\"}}"
		got, err := p.RenderString(ctx, text, true)
		require.NoError(t, err)
		assert.Equal(t, "{{\"obj\": \"pkg.missing\"}}\n"+greetMarkdown, got)
		assert.Contains(t, buf.String(), "pkg.missing")
	})

	t.Run("Ignored Malformed Placeholders", func(t *testing.T) {
		text := "before\n{{\"obj\": 123}}\n{{\"obj\": \"pkg.greet\", \"colour\": 1}}\nafter"
		got, err := p.RenderString(ctx, text, true)
		require.NoError(t, err)
		assert.Equal(t, text, got)

		_, err = p.RenderString(ctx, text, false)
		assert.ErrorIs(t, err, placeholder.ErrSyntax)
	})

	t.Run("Fatal Errors", func(t *testing.T) {
		for _, text := range []string{
			`{{"obj": "pkg.greet", "md_section_level": 0}}`,
			`{{"obj": "pkg.greet", "members": ["nope"]}}`,
			`{{"obj": "pkg.broken"}}`,
		} {
			_, err := p.RenderString(ctx, text, true)
			assert.Error(t, err, text)
			assert.True(t, Fatal(err), text)
		}
	})

	t.Run("Syntax Errors", func(t *testing.T) {
		_, err := p.RenderString(ctx, `{{"object": "pkg.greet"}}`, false)
		assert.Error(t, err)
		assert.False(t, Fatal(err))
	})
}

func TestFatal(t *testing.T) {
	assert.True(t, Fatal(render.ErrInvalidConfig))
	assert.True(t, Fatal(members.ErrMemberNotFound))
	assert.True(t, Fatal(render.ErrSignatureNotFound))
	assert.True(t, Fatal(context.Canceled))
	assert.False(t, Fatal(resolver.ErrNotFound))
}

func TestProcessor_RenderFile(t *testing.T) {
	ctx := context.Background()
	p := newTestProcessor(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "in.npmd")
	writeFile(t, src, "{{\"obj\": \"pkg.greet\", \"md_section_level\": 2}}\n")

	dst := filepath.Join(dir, "out", "nested", "in.md")
	rf, err := p.RenderFile(ctx, src, dst, false)
	require.NoError(t, err)
	assert.Equal(t, src, rf.Source)
	assert.Equal(t, dst, rf.Destination)

	want := "# <span style=\"color:purple\">pkg.greet</span>_(name)_\n\nSay hello."
	assert.Equal(t, want, rf.RenderedText)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))

	rf, err = p.RenderFile(ctx, src, "", false)
	require.NoError(t, err)
	assert.Empty(t, rf.Destination)

	_, err = p.RenderFile(ctx, filepath.Join(dir, "nope.md"), "", false)
	assert.Error(t, err)
}

func templateTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), `{{"obj": "pkg.greet"}}`)
	writeFile(t, filepath.Join(dir, "b.NPMD"), "plain")
	writeFile(t, filepath.Join(dir, "c.txt"), "skip")
	writeFile(t, filepath.Join(dir, "sub", "d.npmd"), `{{"obj": "pkg.greet"}}`)
	return dir
}

func TestListTemplates(t *testing.T) {
	dir := templateTree(t)

	files, err := ListTemplates(FolderOptions{Source: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.md"), filepath.Join(dir, "b.NPMD")}, files)

	files, err = ListTemplates(FolderOptions{Source: dir, CaseSensitive: true, Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.md"), filepath.Join(dir, "sub", "d.npmd")}, files)

	files, err = ListTemplates(FolderOptions{Source: dir, Pattern: `\.txt$`})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "c.txt")}, files)

	_, err = ListTemplates(FolderOptions{Source: dir, Pattern: "("})
	assert.Error(t, err)
}

func TestDestination(t *testing.T) {
	opts := FolderOptions{Source: "docs", Destination: "out"}
	for src, want := range map[string]string{
		filepath.Join("docs", "a.npmd"):       filepath.Join("out", "a.md"),
		filepath.Join("docs", "b.MD"):         filepath.Join("out", "b.MD"),
		filepath.Join("docs", "sub", "c.txt"): filepath.Join("out", "sub", "c.md"),
	} {
		got, err := Destination(opts, src)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := Destination(FolderOptions{Source: "docs"}, filepath.Join("docs", "a.npmd"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProcessor_RenderFolder(t *testing.T) {
	ctx := context.Background()
	p := newTestProcessor(t, WithWorkers(2))
	dir := templateTree(t)
	out := filepath.Join(t.TempDir(), "out")

	results, err := p.RenderFolder(ctx, FolderOptions{Source: dir, Destination: out, Recursive: true})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, filepath.Join(out, "a.md"), results[0].Destination)
	assert.Equal(t, filepath.Join(out, "b.md"), results[1].Destination)
	assert.Equal(t, filepath.Join(out, "sub", "d.md"), results[2].Destination)

	data, err := os.ReadFile(filepath.Join(out, "sub", "d.md"))
	require.NoError(t, err)
	assert.Equal(t, greetMarkdown, string(data))
	data, err = os.ReadFile(filepath.Join(out, "b.md"))
	require.NoError(t, err)
	assert.Equal(t, "plain", string(data))

	writeFile(t, filepath.Join(dir, "e.md"), `{{"obj": "pkg.missing"}}`)
	_, err = p.RenderFolder(ctx, FolderOptions{Source: dir, Destination: out})
	assert.ErrorIs(t, err, resolver.ErrNotFound)

	results, err = p.RenderFolder(ctx, FolderOptions{Source: dir, IgnoreErrors: true})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, `{{"obj": "pkg.missing"}}`, results[2].RenderedText)
}

func TestProcessor_Watch(t *testing.T) {
	p := newTestProcessor(t)
	dir := t.TempDir()
	out := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rendered := make(chan *RenderedFile, 8)
	done := make(chan error, 1)
	go func() {
		done <- p.Watch(ctx, FolderOptions{Source: dir, Destination: out, Recursive: true}, func(rf *RenderedFile) {
			select {
			case rendered <- rf:
			default:
			}
		})
	}()

	// The watcher registers asynchronously; keep writing until it reports.
	src := filepath.Join(dir, "page.npmd")
	var rf *RenderedFile
	require.Eventually(t, func() bool {
		if err := os.WriteFile(src, []byte(`{{"obj": "pkg.greet"}}`), 0o644); err != nil {
			return false
		}
		select {
		case rf = <-rendered:
			// A create event may be seen before the content is written.
			return rf.RenderedText == greetMarkdown
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, filepath.Join(out, "page.md"), rf.Destination)
	assert.Equal(t, greetMarkdown, rf.RenderedText)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestProcessor_Watch_ReloadsSources(t *testing.T) {
	roots := t.TempDir()
	modPath := filepath.Join(roots, "mod.py")
	writeFile(t, modPath, "def f():\n    \"\"\"Old doc.\"\"\"\n")

	loader, err := resolver.NewFSLoader(roots)
	require.NoError(t, err)
	p := NewProcessor(render.New(resolver.NewSourceResolver(loader)))

	dir := t.TempDir()
	src := filepath.Join(dir, "page.md")
	writeFile(t, src, `{{"obj": "mod.f"}}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Fill the module cache before the source changes.
	rf, err := p.RenderFile(ctx, src, "", false)
	require.NoError(t, err)
	assert.Contains(t, rf.RenderedText, "Old doc.")

	writeFile(t, modPath, "def f():\n    \"\"\"New doc.\"\"\"\n")

	rendered := make(chan *RenderedFile, 8)
	done := make(chan error, 1)
	go func() {
		done <- p.Watch(ctx, FolderOptions{Source: dir}, func(rf *RenderedFile) {
			select {
			case rendered <- rf:
			default:
			}
		})
	}()

	require.Eventually(t, func() bool {
		if err := os.WriteFile(src, []byte(`{{"obj": "mod.f"}}`), 0o644); err != nil {
			return false
		}
		select {
		case rf = <-rendered:
			return strings.Contains(rf.RenderedText, "New doc.")
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
