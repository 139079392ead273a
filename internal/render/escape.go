package render

import "strings"

var mdEscaper = strings.NewReplacer(`_`, `\_`, `*`, `\*`)

// Escape backslash-escapes the characters that would start Markdown
// emphasis, so that names and signatures render as written.
func Escape(s string) string {
	return mdEscaper.Replace(s)
}

// indent prefixes non-blank description lines with two spaces, which keeps
// them inside the preceding bullet without turning them into a code block.
func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			out[i] = l
			continue
		}
		out[i] = "  " + l
	}
	return out
}
