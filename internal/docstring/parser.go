package docstring

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrDuplicateSection is returned when a standard section appears twice.
var ErrDuplicateSection = errors.New("section appears twice")

// signatureLike matches a summary paragraph that only repeats the call
// signature, e.g. "foo(a, b)" or "x, y = foo(a)".
var signatureLike = regexp.MustCompile(`^([\w., ]+=)?\s*[\w.]+\(.*\)$`)

// Parse cleans doc and splits it into a section table.
func Parse(doc string) (*Table, error) {
	return ParseLines(SplitLines(Clean(doc)))
}

// ParseLines builds the section table of already cleaned docstring lines.
func ParseLines(lines []string) (*Table, error) {
	spans := Locate(lines)

	standard := make(map[string]Section, len(StandardSections))
	for _, name := range StandardSections {
		standard[name] = Section{Name: name, Kind: KindOf(name), Visible: IsHeaderless(name)}
	}

	preamble := lines
	if len(spans) > 0 {
		preamble = lines[:spans[0].Header]
	}
	summary, extended := parseSummary(preamble, len(spans) > 0)
	standard[Summary] = withLines(standard[Summary], summary)
	standard[ExtendedSummary] = withLines(standard[ExtendedSummary], extended)

	var visible []Section
	seen := make(map[string]bool, len(spans))
	for _, span := range spans {
		name := canonicalName(span.Name)
		if IsStandard(name) && !IsHeaderless(name) {
			if seen[name] {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateSection, name)
			}
			seen[name] = true
			sec := parseStandard(name, paragraphs(span.Body(lines)))
			standard[name] = sec
			visible = append(visible, sec)
			continue
		}

		if seen[span.Name] {
			continue
		}
		seen[span.Name] = true
		visible = append(visible, Section{
			Name:    span.Name,
			Kind:    KindText,
			Custom:  true,
			Visible: true,
			Lines:   StripBlank(span.Body(lines)),
		})
	}

	return &Table{sections: merge(standard, visible)}, nil
}

func withLines(s Section, lines []string) Section {
	s.Lines = lines
	return s
}

// parseSummary splits the text above the first section into the summary
// (first paragraph) and the extended summary (remaining paragraphs).
// Leading signature-like paragraphs are dropped, except a last one directly
// followed by a section, which stays the summary.
func parseSummary(lines []string, atSection bool) (summary, extended []string) {
	paras := splitParagraphs(lines)
	for len(paras) > 0 && signatureLike.MatchString(joinParagraph(paras[0])) {
		if len(paras) == 1 && atSection {
			break
		}
		paras = paras[1:]
	}
	if len(paras) == 0 {
		return nil, nil
	}
	summary = paras[0]
	for i, p := range paras[1:] {
		if i > 0 {
			extended = append(extended, "")
		}
		extended = append(extended, p...)
	}
	return summary, extended
}

func joinParagraph(lines []string) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func parseStandard(name string, content []string) Section {
	sec := Section{Name: name, Kind: KindOf(name), Visible: true}
	switch sec.Kind {
	case KindParams:
		sec.Params = parseParams(content, singleElementIsType(name))
	case KindSeeAlso:
		sec.Refs = parseSeeAlso(content)
	default:
		sec.Lines = content
	}
	return sec
}

// parseParams reads "name : type" headers, each followed by an indented
// description.
func parseParams(content []string, singleIsType bool) []Param {
	content = Dedent(content)
	var params []Param
	for i := 0; i < len(content); {
		header := strings.TrimSpace(content[i])
		i++

		var p Param
		if name, typ, ok := strings.Cut(header, " : "); ok {
			p.Name, p.Type = name, typ
		} else {
			header = strings.TrimSuffix(header, " :")
			if singleIsType {
				p.Type = header
			} else {
				p.Name = header
			}
		}

		start := i
		for i < len(content) && (isBlank(content[i]) || startsWithSpace(content[i])) {
			i++
		}
		p.Desc = StripBlank(Dedent(content[start:i]))
		params = append(params, p)
	}
	return params
}

func startsWithSpace(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

var (
	funcName = "(?::(?:py:)?\\w+:`(?:~\\w+\\.)?[a-zA-Z0-9_.-]+`|[a-zA-Z0-9_.-]+)"

	seeAlsoLine = regexp.MustCompile(
		`^\s*(?P<funcs>` + funcName + `(?:,\s+` + funcName + `)*)` +
			`(?P<trailing>[,.])?` +
			`(?:\s*:(?:\s+(?P<desc>.+)|\s*))?`)

	seeAlsoItem = regexp.MustCompile(
		"^\\s*(?::(?:py:)?\\w+:`(?P<role>(?:~\\w+\\.)?[a-zA-Z0-9_.-]+)`|(?P<plain>[a-zA-Z0-9_.-]+))\\s*")
)

// parseSeeAlso reads "name[, name...] [: description]" entries. Indented
// lines without a description continue the description of the last entry.
func parseSeeAlso(content []string) []Reference {
	content = Dedent(content)
	var refs []Reference
	appendDesc := func(line string) {
		if len(refs) == 0 {
			return
		}
		last := &refs[len(refs)-1]
		last.Desc = append(last.Desc, strings.TrimSpace(line))
	}

	for _, line := range content {
		if isBlank(line) {
			continue
		}
		m := seeAlsoLine.FindStringSubmatch(line)
		desc := ""
		if m != nil {
			desc = m[seeAlsoLine.SubexpIndex("desc")]
		}
		if m == nil || (desc == "" && startsWithSpace(line)) {
			appendDesc(line)
			continue
		}

		ref := Reference{Names: splitNames(m[seeAlsoLine.SubexpIndex("funcs")])}
		if desc != "" {
			ref.Desc = []string{desc}
		}
		refs = append(refs, ref)
	}
	return refs
}

func splitNames(text string) []string {
	var names []string
	for {
		text = strings.TrimSpace(text)
		if text == "" {
			return names
		}
		m := seeAlsoItem.FindStringSubmatchIndex(text)
		if m == nil {
			return names
		}
		role, plain := seeAlsoItem.SubexpIndex("role"), seeAlsoItem.SubexpIndex("plain")
		if m[2*role] >= 0 {
			names = append(names, text[m[2*role]:m[2*role+1]])
		} else {
			names = append(names, text[m[2*plain]:m[2*plain+1]])
		}
		text = strings.TrimSpace(text[m[1]:])
		text = strings.TrimPrefix(text, ",")
	}
}
