package docstring

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Section names of the standard taxonomy.
const (
	Signature       = "Signature"
	Summary         = "Summary"
	ExtendedSummary = "Extended Summary"
	Parameters      = "Parameters"
	Returns         = "Returns"
	Yields          = "Yields"
	Receives        = "Receives"
	Raises          = "Raises"
	Warns           = "Warns"
	OtherParameters = "Other Parameters"
	Attributes      = "Attributes"
	Methods         = "Methods"
	SeeAlso         = "See Also"
	Notes           = "Notes"
	Warnings        = "Warnings"
	References      = "References"
	Examples        = "Examples"
)

// StandardSections lists the standard taxonomy in rendering order.
var StandardSections = []string{
	Signature, Summary, ExtendedSummary,
	Parameters, Returns, Yields, Receives, Raises, Warns, OtherParameters,
	Attributes, Methods, SeeAlso, Notes, Warnings, References, Examples,
}

// Kind tells how the content of a section is structured.
type Kind int

const (
	KindText Kind = iota
	KindParams
	KindSeeAlso
	KindExamples
	KindSignature
)

func (k Kind) String() string {
	switch k {
	case KindParams:
		return "params"
	case KindSeeAlso:
		return "see-also"
	case KindExamples:
		return "examples"
	case KindSignature:
		return "signature"
	default:
		return "text"
	}
}

// Param is one entry of a parameter-like section. Name and Type may be empty.
type Param struct {
	Name string
	Type string
	Desc []string
}

// Reference is one entry of a See Also section.
type Reference struct {
	Names []string
	Desc  []string
}

// Section is one named part of a docstring. Which content field is set
// depends on Kind: Lines for text and examples, Params for parameter-like
// sections and Refs for See Also. Signature sections carry no content.
type Section struct {
	Name    string
	Kind    Kind
	Custom  bool
	Visible bool

	Lines  []string
	Params []Param
	Refs   []Reference
}

// Empty reports whether the section has no content.
func (s Section) Empty() bool {
	return len(s.Lines) == 0 && len(s.Params) == 0 && len(s.Refs) == 0
}

// Headerless reports whether the section is rendered without a heading.
func (s Section) Headerless() bool {
	return IsHeaderless(s.Name) && !s.Custom
}

// IsHeaderless reports whether name is one of the sections that never carry
// a header in a docstring.
func IsHeaderless(name string) bool {
	return name == Signature || name == Summary || name == ExtendedSummary
}

// IsStandard reports whether name belongs to the standard taxonomy.
func IsStandard(name string) bool {
	for _, s := range StandardSections {
		if s == name {
			return true
		}
	}
	return false
}

// KindOf returns the content kind of a section name. Unknown names are text.
func KindOf(name string) Kind {
	switch name {
	case Signature:
		return KindSignature
	case Parameters, OtherParameters, Attributes, Methods,
		Returns, Yields, Receives, Raises, Warns:
		return KindParams
	case SeeAlso:
		return KindSeeAlso
	case Examples:
		return KindExamples
	default:
		return KindText
	}
}

// singleElementIsType reports whether a lone header in a parameter-like
// section names a type rather than a parameter.
func singleElementIsType(name string) bool {
	switch name {
	case Returns, Yields, Receives, Raises, Warns:
		return true
	}
	return false
}

// canonicalName capitalizes every word of a header so that "SEE ALSO" and
// "see also" both map onto "See Also".
func canonicalName(name string) string {
	words := strings.Split(name, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// Table is the ordered set of sections of one docstring. Every standard
// section is present, custom sections sit at their textual position.
type Table struct {
	sections []Section
}

// Sections returns the sections in rendering order.
func (t *Table) Sections() []Section {
	return t.sections
}

// Names returns the section names in rendering order.
func (t *Table) Names() []string {
	names := make([]string, len(t.sections))
	for i, s := range t.sections {
		names[i] = s.Name
	}
	return names
}

// Get returns the first section called name.
func (t *Table) Get(name string) (Section, bool) {
	for _, s := range t.sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Custom returns the names of the custom sections in textual order.
func (t *Table) Custom() []string {
	var names []string
	for _, s := range t.sections {
		if s.Custom {
			names = append(names, s.Name)
		}
	}
	return names
}

// merge orders standard and custom sections. visible holds the sections
// with a header, in textual order.
//
// Custom sections found before the first visible standard section go right
// after the extended summary; when no standard section is visible this puts
// every custom section there. After each visible standard section the run of
// custom sections that follows it in the text is spliced in.
func merge(standard map[string]Section, visible []Section) []Section {
	firstStandard := len(visible)
	for i, s := range visible {
		if !s.Custom {
			firstStandard = i
			break
		}
	}

	out := make([]Section, 0, len(StandardSections)+len(visible))
	for _, name := range StandardSections {
		sec := standard[name]
		out = append(out, sec)

		if name == ExtendedSummary {
			out = append(out, visible[:firstStandard]...)
			continue
		}
		if !sec.Visible {
			continue
		}
		for i, v := range visible {
			if v.Custom || v.Name != name {
				continue
			}
			// The whole run of custom sections follows, not only the next one.
			for j := i + 1; j < len(visible) && visible[j].Custom; j++ {
				out = append(out, visible[j])
			}
			break
		}
	}
	return out
}
