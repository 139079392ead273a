package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// walker turns the statements of a module or class body into units.
type walker struct {
	src []byte
}

// blockDocstring returns the docstring of a module or block: its first
// statement when that statement is a string literal.
func blockDocstring(block *sitter.Node, src []byte) (string, bool) {
	for i := 0; i < int(block.NamedChildCount()); i++ {
		stmt := block.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		return stringStatement(stmt, src)
	}
	return "", false
}

// stringStatement returns the value of a statement made of a single string
// literal.
func stringStatement(stmt *sitter.Node, src []byte) (string, bool) {
	if stmt == nil || stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return "", false
	}
	expr := stmt.NamedChild(0)
	switch expr.Type() {
	case "string":
		return unquote(expr.Content(src))
	case "concatenated_string":
		var b strings.Builder
		for i := 0; i < int(expr.NamedChildCount()); i++ {
			part := expr.NamedChild(i)
			if part.Type() != "string" {
				continue
			}
			s, ok := unquote(part.Content(src))
			if !ok {
				return "", false
			}
			b.WriteString(s)
		}
		return b.String(), true
	}
	return "", false
}

// body extracts the definitions of a module or class body. inClass turns
// functions into methods and properties.
func (w *walker) body(block *sitter.Node, inClass bool) []*Unit {
	var units []*Unit
	var last *Unit
	for i := 0; i < int(block.NamedChildCount()); i++ {
		stmt := block.NamedChild(i)

		var unit *Unit
		switch stmt.Type() {
		case "function_definition":
			unit = w.function(stmt, nil, inClass)
		case "class_definition":
			unit = w.class(stmt, nil)
		case "decorated_definition":
			unit = w.decorated(stmt, inClass)
		case "expression_statement":
			if doc, ok := stringStatement(stmt, w.src); ok {
				// A string right after an attribute documents it.
				if last != nil && last.Kind == KindAttribute && !last.HasDoc {
					last.Doc, last.HasDoc = doc, true
				}
				last = nil
				continue
			}
			unit = w.assignment(stmt)
		}

		last = unit
		if unit == nil {
			continue
		}
		units = addUnit(units, unit)
	}
	return units
}

// addUnit appends unit, replacing an earlier definition with the same name
// the way rebinding works in Python. Property setters and deleters keep the
// getter.
func addUnit(units []*Unit, unit *Unit) []*Unit {
	for i, u := range units {
		if u.Name != unit.Name {
			continue
		}
		if u.Kind == KindProperty && isAccessorDecorated(unit) {
			return units
		}
		units[i] = unit
		return units
	}
	return append(units, unit)
}

func isAccessorDecorated(u *Unit) bool {
	for _, d := range u.Decorators {
		if strings.HasSuffix(d, ".setter") || strings.HasSuffix(d, ".deleter") || strings.HasSuffix(d, ".getter") {
			return true
		}
	}
	return false
}

func (w *walker) decorated(node *sitter.Node, inClass bool) *Unit {
	var decorators []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "decorator" {
			decorators = append(decorators, normalizeSpace(strings.TrimPrefix(child.Content(w.src), "@")))
		}
	}

	def := node.ChildByFieldName("definition")
	if def == nil {
		return nil
	}
	switch def.Type() {
	case "function_definition":
		return w.function(def, decorators, inClass)
	case "class_definition":
		return w.class(def, decorators)
	}
	return nil
}

func (w *walker) function(node *sitter.Node, decorators []string, inClass bool) *Unit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	unit := &Unit{
		Name:       nameNode.Content(w.src),
		Kind:       KindFunction,
		StartLine:  int(node.StartPoint().Row + 1),
		EndLine:    int(node.EndPoint().Row + 1),
		Decorators: decorators,
		Async:      strings.HasPrefix(node.Content(w.src), "async"),
	}
	if inClass {
		unit.Kind = KindMethod
		if isProperty(decorators) {
			unit.Kind = KindProperty
		}
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		unit.Params = w.params(params)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		unit.Returns = normalizeSpace(ret.Content(w.src))
	}
	if body := node.ChildByFieldName("body"); body != nil {
		unit.Doc, unit.HasDoc = blockDocstring(body, w.src)
	}
	return unit
}

func isProperty(decorators []string) bool {
	for _, d := range decorators {
		switch d {
		case "property", "cached_property", "functools.cached_property",
			"abstractproperty", "abc.abstractproperty":
			return true
		}
		if strings.HasSuffix(d, ".setter") || strings.HasSuffix(d, ".getter") || strings.HasSuffix(d, ".deleter") {
			return true
		}
	}
	return false
}

func (w *walker) params(node *sitter.Node) []Param {
	var params []Param
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			params = append(params, Param{Name: child.Content(w.src)})
		case "typed_parameter":
			p := w.splat(child.NamedChild(0))
			p.Annotation = normalizeSpace(content(child.ChildByFieldName("type"), w.src))
			params = append(params, p)
		case "default_parameter":
			params = append(params, Param{
				Name:    content(child.ChildByFieldName("name"), w.src),
				Default: normalizeSpace(content(child.ChildByFieldName("value"), w.src)),
			})
		case "typed_default_parameter":
			params = append(params, Param{
				Name:       content(child.ChildByFieldName("name"), w.src),
				Annotation: normalizeSpace(content(child.ChildByFieldName("type"), w.src)),
				Default:    normalizeSpace(content(child.ChildByFieldName("value"), w.src)),
			})
		case "list_splat_pattern", "dictionary_splat_pattern":
			params = append(params, w.splat(child))
		case "keyword_separator":
			params = append(params, Param{Name: "*"})
		case "positional_separator":
			params = append(params, Param{Name: "/"})
		}
	}
	return params
}

// splat reads a plain, "*args" or "**kwargs" parameter name.
func (w *walker) splat(node *sitter.Node) Param {
	if node == nil {
		return Param{}
	}
	text := node.Content(w.src)
	switch node.Type() {
	case "list_splat_pattern":
		return Param{Prefix: "*", Name: strings.TrimPrefix(text, "*")}
	case "dictionary_splat_pattern":
		return Param{Prefix: "**", Name: strings.TrimPrefix(text, "**")}
	}
	return Param{Name: text}
}

func (w *walker) class(node *sitter.Node, decorators []string) *Unit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	unit := &Unit{
		Name:       nameNode.Content(w.src),
		Kind:       KindClass,
		StartLine:  int(node.StartPoint().Row + 1),
		EndLine:    int(node.EndPoint().Row + 1),
		Decorators: decorators,
	}
	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			arg := supers.NamedChild(i)
			// metaclass=... and other keywords are not bases.
			if arg.Type() == "keyword_argument" || arg.Type() == "comment" {
				continue
			}
			unit.Bases = append(unit.Bases, normalizeSpace(arg.Content(w.src)))
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		unit.Doc, unit.HasDoc = blockDocstring(body, w.src)
		unit.Members = w.body(body, true)
	}
	return unit
}

// assignment extracts "name = value" and "name: T = value" statements.
// Tuple targets and attribute targets are skipped.
func (w *walker) assignment(stmt *sitter.Node) *Unit {
	if stmt.NamedChildCount() != 1 {
		return nil
	}
	assign := stmt.NamedChild(0)
	if assign.Type() != "assignment" {
		return nil
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return nil
	}

	unit := &Unit{
		Name:       left.Content(w.src),
		Kind:       KindAttribute,
		StartLine:  int(stmt.StartPoint().Row + 1),
		EndLine:    int(stmt.EndPoint().Row + 1),
		Annotation: normalizeSpace(content(assign.ChildByFieldName("type"), w.src)),
	}
	if right := assign.ChildByFieldName("right"); right != nil {
		unit.Value = w.defaultValue(right)
	}
	return unit
}

// defaultValue returns the source of an assigned value. For dataclass
// field(...) calls it returns the declared default, "<factory>" for a
// default_factory and nothing when the field has no default.
func (w *walker) defaultValue(right *sitter.Node) string {
	if right.Type() != "call" {
		return normalizeSpace(right.Content(w.src))
	}
	fn := content(right.ChildByFieldName("function"), w.src)
	if fn != "field" && fn != "dataclasses.field" {
		return normalizeSpace(right.Content(w.src))
	}

	args := right.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() != "keyword_argument" {
			continue
		}
		switch content(arg.ChildByFieldName("name"), w.src) {
		case "default":
			return normalizeSpace(content(arg.ChildByFieldName("value"), w.src))
		case "default_factory":
			return "<factory>"
		}
	}
	return ""
}
