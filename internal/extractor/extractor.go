package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// importQuery captures module-level import statements.
const importQuery = `
	(module (import_statement) @import)
	(module (import_from_statement) @from)
`

// Extractor parses Python source files into modules.
type Extractor struct {
	lang *sitter.Language
}

// NewExtractor creates a new extractor for a given language. Only Python is
// supported.
func NewExtractor(lang string) (*Extractor, error) {
	switch lang {
	case "python", "py":
		return &Extractor{lang: python.GetLanguage()}, nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// ExtractFromFile parses a single source file. modulePath is the dotted
// import path of the file.
func (e *Extractor) ExtractFromFile(ctx context.Context, filepath, modulePath string) (*Module, error) {
	sourceCode, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	return e.Extract(ctx, sourceCode, filepath, modulePath)
}

// Extract parses Python source code.
func (e *Extractor) Extract(ctx context.Context, sourceCode []byte, filepath, modulePath string) (*Module, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(e.lang)
	tree, err := parser.ParseCtx(ctx, nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filepath, err)
	}
	root := tree.RootNode()

	mod := &Module{
		Path:     modulePath,
		Filepath: filepath,
		Package:  isPackageFile(filepath),
	}
	mod.Doc, mod.HasDoc = blockDocstring(root, sourceCode)

	w := &walker{src: sourceCode}
	mod.Units = w.body(root, false)

	imports, err := e.extractImports(root, sourceCode)
	if err != nil {
		return nil, err
	}
	mod.Imports = imports
	return mod, nil
}

func (e *Extractor) extractImports(root *sitter.Node, sourceCode []byte) ([]Import, error) {
	query, err := sitter.NewQuery([]byte(importQuery), e.lang)
	if err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}

	qc := sitter.NewQueryCursor()
	qc.Exec(query, root)

	var imports []Import
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			switch query.CaptureNameForId(c.Index) {
			case "import":
				imports = append(imports, plainImports(c.Node, sourceCode)...)
			case "from":
				imports = append(imports, fromImports(c.Node, sourceCode)...)
			}
		}
	}
	return imports, nil
}

// plainImports handles "import a.b" and "import a.b as c".
func plainImports(node *sitter.Node, src []byte) []Import {
	var out []Import
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			out = append(out, Import{Module: child.Content(src)})
		case "aliased_import":
			out = append(out, Import{
				Module: content(child.ChildByFieldName("name"), src),
				Alias:  content(child.ChildByFieldName("alias"), src),
			})
		}
	}
	return out
}

// fromImports handles "from m import a, b as c" including relative modules.
func fromImports(node *sitter.Node, src []byte) []Import {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return nil
	}
	module := strings.ReplaceAll(moduleNode.Content(src), " ", "")

	var out []Import
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.StartByte() == moduleNode.StartByte() {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			out = append(out, Import{Module: module, Name: child.Content(src)})
		case "aliased_import":
			out = append(out, Import{
				Module: module,
				Name:   content(child.ChildByFieldName("name"), src),
				Alias:  content(child.ChildByFieldName("alias"), src),
			})
		case "wildcard_import":
			out = append(out, Import{Module: module, Name: "*"})
		}
	}
	return out
}

func content(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(src)
}

func isPackageFile(path string) bool {
	return strings.HasSuffix(path, "__init__.py") || strings.HasSuffix(path, "__init__.pyi")
}
