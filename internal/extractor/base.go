package extractor

import (
	"sort"
	"strings"
)

// Kind classifies an extracted Python definition.
type Kind string

const (
	KindModule    Kind = "module"
	KindClass     Kind = "class"
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindProperty  Kind = "property"
	KindAttribute Kind = "attribute"
)

// Unit is one definition of a Python module: a class, a function, a method,
// a property or an attribute.
type Unit struct {
	Name       string   `json:"name"`
	Kind       Kind     `json:"kind"`
	StartLine  int      `json:"start_line"`
	EndLine    int      `json:"end_line"`
	Doc        string   `json:"doc,omitempty"`
	HasDoc     bool     `json:"has_doc"`
	Async      bool     `json:"async,omitempty"`
	Params     []Param  `json:"params,omitempty"`
	Returns    string   `json:"returns,omitempty"`
	Decorators []string `json:"decorators,omitempty"`
	Bases      []string `json:"bases,omitempty"`
	Annotation string   `json:"annotation,omitempty"`
	Value      string   `json:"value,omitempty"`
	Members    []*Unit  `json:"members,omitempty"`
}

// Member returns the class member called name.
func (u *Unit) Member(name string) (*Unit, bool) {
	for _, m := range u.Members {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// MemberNames returns the sorted names of the unit's members.
func (u *Unit) MemberNames() []string {
	names := make([]string, 0, len(u.Members))
	for _, m := range u.Members {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}

// Callable reports whether calling the unit makes sense.
func (u *Unit) Callable() bool {
	switch u.Kind {
	case KindClass, KindFunction, KindMethod:
		return true
	}
	return false
}

// Signature formats the parameters and return annotation of a function or
// method.
func (u *Unit) Signature() string {
	return FormatSignature(u.Params, u.Returns)
}

// IsDataclass reports whether the class is decorated with dataclass.
func (u *Unit) IsDataclass() bool {
	for _, d := range u.Decorators {
		name, _, _ := strings.Cut(d, "(")
		if name == "dataclass" || strings.HasSuffix(name, ".dataclass") {
			return true
		}
	}
	return false
}

// Fields returns the dataclass fields of a class: annotated class
// attributes that are not ClassVar.
func (u *Unit) Fields() []*Unit {
	var fields []*Unit
	for _, m := range u.Members {
		if m.Kind != KindAttribute || m.Annotation == "" {
			continue
		}
		if strings.HasPrefix(m.Annotation, "ClassVar") || strings.HasPrefix(m.Annotation, "typing.ClassVar") {
			continue
		}
		fields = append(fields, m)
	}
	return fields
}

// Import is one name bound by an import statement. Module keeps its leading
// dots for relative imports. Name is empty for plain "import x" statements.
type Import struct {
	Module string `json:"module"`
	Name   string `json:"name,omitempty"`
	Alias  string `json:"alias,omitempty"`
}

// Bound returns the name the import binds in the importing module.
func (i Import) Bound() string {
	if i.Alias != "" {
		return i.Alias
	}
	if i.Name != "" {
		return i.Name
	}
	first, _, _ := strings.Cut(i.Module, ".")
	return first
}

// Module is the extracted content of one Python source file.
type Module struct {
	Path     string   `json:"path"`
	Filepath string   `json:"filepath"`
	Package  bool     `json:"package"`
	Doc      string   `json:"doc,omitempty"`
	HasDoc   bool     `json:"has_doc"`
	Units    []*Unit  `json:"units,omitempty"`
	Imports  []Import `json:"imports,omitempty"`
}

// Lookup returns the top-level unit called name.
func (m *Module) Lookup(name string) (*Unit, bool) {
	for _, u := range m.Units {
		if u.Name == name {
			return u, true
		}
	}
	return nil, false
}

// Binding returns the import that binds name in the module, if any. Later
// imports shadow earlier ones.
func (m *Module) Binding(name string) (Import, bool) {
	for i := len(m.Imports) - 1; i >= 0; i-- {
		if m.Imports[i].Bound() == name {
			return m.Imports[i], true
		}
	}
	return Import{}, false
}

// Names returns the sorted names defined or imported at module level.
func (m *Module) Names() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(n string) {
		if n == "" || n == "*" || seen[n] {
			return
		}
		seen[n] = true
		names = append(names, n)
	}
	for _, u := range m.Units {
		add(u.Name)
	}
	for _, imp := range m.Imports {
		add(imp.Bound())
	}
	sort.Strings(names)
	return names
}
