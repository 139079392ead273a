// Package examples labels the lines of an Examples section and groups them
// into example blocks.
package examples

import (
	"regexp"
	"strings"
)

// Label is the role of one line inside an Examples section.
type Label int

const (
	Input Label = iota + 1
	Output
	Text
	OutputLang
)

func (l Label) String() string {
	switch l {
	case Input:
		return "INPUT"
	case Output:
		return "OUTPUT"
	case Text:
		return "TEXT"
	case OutputLang:
		return "OUTPUT_LANG"
	default:
		return "UNKNOWN"
	}
}

var (
	consolePrompt = regexp.MustCompile(`^(>>> ?|\.\.\. ?)`)
	doctestSkip   = regexp.MustCompile(` *# *doctest: *\+SKIP *$`)
	blankLine     = regexp.MustCompile(`^ *<BLANKLINE> *$`)
)

// Line is a labelled line. Index is the position of the line in the section.
type Line struct {
	Index int
	Text  string
	Label Label
}

// IsInput reports whether line starts with a console prompt (">>>" or "...").
func IsInput(line string) bool {
	return consolePrompt.MatchString(line)
}

// StripPrompt removes the leading console prompt of an input line.
func StripPrompt(line string) string {
	return consolePrompt.ReplaceAllString(line, "")
}

// StripDoctestSkip removes a trailing "# doctest: +SKIP" directive.
func StripDoctestSkip(line string) string {
	return doctestSkip.ReplaceAllString(line, "")
}

// IsBlankLineMarker reports whether line only holds the doctest <BLANKLINE> marker.
func IsBlankLineMarker(line string) bool {
	return blankLine.MatchString(line)
}

// IsLangDirective reports whether line is a "{{lang}}" output language directive.
func IsLangDirective(line string) bool {
	s := strings.TrimSpace(line)
	return strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}")
}

// Classify labels every line using only the label of the previous line and
// the blank state of the lines before it.
//
// Prompt lines are inputs. A non-empty line is an output when it follows an
// input, or when it follows an output whose own predecessor was non-empty, so
// a single blank line ends an output run. Everything else is a language
// directive or text.
func Classify(lines []string) []Line {
	out := make([]Line, 0, len(lines))
	for i, text := range lines {
		label := Text
		switch {
		case IsInput(text):
			label = Input
		case isOutput(out, lines, i):
			label = Output
		case IsLangDirective(text):
			label = OutputLang
		}
		out = append(out, Line{Index: i, Text: text, Label: label})
	}
	return out
}

func isOutput(labelled []Line, lines []string, i int) bool {
	if i == 0 || isBlank(lines[i]) {
		return false
	}
	switch labelled[i-1].Label {
	case Input:
		return true
	case Output:
		return i < 2 || !isBlank(lines[i-2])
	}
	return false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
