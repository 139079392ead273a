package extractor

import "strings"

// Param is one entry of a Python parameter list. Prefix is "*" or "**" for
// variadic parameters. The bare "*" and "/" separators are kept as params
// with that Name and no prefix.
type Param struct {
	Name       string `json:"name"`
	Prefix     string `json:"prefix,omitempty"`
	Annotation string `json:"annotation,omitempty"`
	Default    string `json:"default,omitempty"`
}

// String formats the parameter the way Python prints signatures:
// "a", "a=1", "a: int", "a: int = 1", "*args", "**kwargs: Any".
func (p Param) String() string {
	name := p.Prefix + p.Name
	switch {
	case p.Annotation != "" && p.Default != "":
		return name + ": " + p.Annotation + " = " + p.Default
	case p.Annotation != "":
		return name + ": " + p.Annotation
	case p.Default != "":
		return name + "=" + p.Default
	}
	return name
}

// FormatSignature renders a parenthesized parameter list followed by the
// return annotation, if any.
func FormatSignature(params []Param, returns string) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	sig := "(" + strings.Join(parts, ", ") + ")"
	if returns != "" {
		sig += " -> " + returns
	}
	return sig
}

// normalizeSpace collapses whitespace runs, including line breaks, to a single
// space so that multi-line annotations print on one line.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
