package docstring

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span locates one section of a docstring. Header is the line index of the
// section title; the body is lines[Start:End], which excludes the title and
// its underline.
type Span struct {
	Name   string
	Header int
	Start  int
	End    int
}

// Body returns the lines of the section body.
func (s Span) Body(lines []string) []string {
	return lines[s.Start:s.End]
}

// HeaderName reports whether line followed by next forms a section header
// and returns the section name.
//
// A header is a non-empty line whose first visible character is uppercase,
// followed by an underline of the same length made of '-' or '='. Leading
// spaces must line up on both lines until the title text begins.
func HeaderName(line, next string) (string, bool) {
	if isBlank(line) || isBlank(next) {
		return "", false
	}
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	next = strings.TrimRightFunc(next, unicode.IsSpace)

	first, _ := utf8.DecodeRuneInString(strings.TrimSpace(line))
	if !unicode.IsUpper(first) {
		return "", false
	}

	title := []rune(line)
	underline := []rune(next)
	if len(title) != len(underline) {
		return "", false
	}

	reached := false
	var name []rune
	for i, c := range title {
		if !reached {
			reached = c != ' '
		}
		if !reached {
			if underline[i] != ' ' {
				return "", false
			}
			continue
		}
		name = append(name, c)
		if underline[i] != '-' && underline[i] != '=' {
			return "", false
		}
	}
	return string(name), true
}

// Locate finds every section header in lines and returns the spans in
// textual order. Each body runs from two lines below its header up to the
// next header, the last one up to the end of the text.
func Locate(lines []string) []Span {
	var spans []Span
	for i := 0; i+1 < len(lines); i++ {
		name, ok := HeaderName(lines[i], lines[i+1])
		if !ok {
			continue
		}
		spans = append(spans, Span{Name: name, Header: i})
	}

	for i := range spans {
		end := len(lines)
		if i+1 < len(spans) {
			end = spans[i+1].Header
		}
		start := min(spans[i].Header+2, end)
		spans[i].Start, spans[i].End = start, end
	}
	return spans
}
