package render

import (
	"strings"

	"pydocmd/internal/docstring"
	"pydocmd/internal/examples"
)

// renderText passes plain-text sections through unchanged.
func renderText(lines []string) []string {
	return lines
}

// renderParams renders parameter records as a bullet list:
//
//	* **name** : **_type_**
//
//	  description
func renderParams(params []docstring.Param) []string {
	var out []string
	for i, p := range params {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, paramHeader(p))
		if len(p.Desc) == 0 {
			continue
		}
		out = append(out, "")
		out = append(out, indent(p.Desc)...)
	}
	return out
}

func paramHeader(p docstring.Param) string {
	var name, typ string
	if n := strings.TrimSpace(Escape(p.Name)); n != "" {
		name = "**" + n + "**"
	}
	if t := strings.TrimSpace(Escape(p.Type)); t != "" {
		typ = "**_" + t + "_**"
	}

	var b strings.Builder
	if name != "" || typ != "" {
		b.WriteString("* ")
	}
	b.WriteString(name)
	if name != "" && typ != "" {
		b.WriteString(" : ")
	}
	b.WriteString(typ)
	return strings.TrimSpace(b.String())
}

// renderSeeAlso renders cross-references as bold, comma-joined names with
// their indented description.
func renderSeeAlso(refs []docstring.Reference) []string {
	var out []string
	for i, ref := range refs {
		if i > 0 {
			out = append(out, "")
		}
		names := make([]string, len(ref.Names))
		for j, n := range ref.Names {
			names[j] = strings.TrimSpace(Escape(n))
		}
		out = append(out, "* **"+strings.Join(names, ", ")+"**")
		if len(ref.Desc) > 0 {
			out = append(out, "")
			out = append(out, indent(ref.Desc)...)
		}
	}
	return out
}

// renderExamples turns an Examples section into text and fenced code blocks.
func renderExamples(lines []string, cfg Config) []string {
	var out []string
	for _, block := range examples.Blocks(lines) {
		out = append(out, renderBlock(block, cfg)...)
	}
	return out
}

func renderBlock(block examples.Block, cfg Config) []string {
	lang := cfg.outputLang(block.Lang, block.HasLang)
	fenced := !isMarkdownLang(lang)

	var out []string
	for _, l := range block.Lines {
		switch l.Label {
		case examples.Text:
			out = append(out, l.Text)
		case examples.Input:
			if l.Index == block.FirstInput {
				out = append(out, "```"+LangPython)
			}
			line := l.Text
			if cfg.RemoveDoctestSkip {
				line = examples.StripDoctestSkip(line)
			}
			out = append(out, examples.StripPrompt(line))
			if l.Index == block.LastInput {
				out = append(out, "```")
			}
		case examples.Output:
			if l.Index == block.FirstOutput && fenced {
				out = append(out, "```"+lang)
			}
			line := l.Text
			if cfg.RemoveDoctestBlanklines && examples.IsBlankLineMarker(line) {
				line = ""
			}
			out = append(out, line)
			if l.Index == block.LastOutput && fenced {
				out = append(out, "```")
			}
		}
	}
	return out
}
