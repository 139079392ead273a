package examples

import "strings"

// Block is one example unit: optional leading text and language directive,
// an input run and an optional output run. Index fields hold section-wide
// line indices, or -1 when the block has no such line.
type Block struct {
	Lines []Line

	FirstInput  int
	LastInput   int
	FirstOutput int
	LastOutput  int

	// Lang is the output language declared by the first "{{lang}}" line of
	// the block. HasLang is false when the block declares none.
	Lang    string
	HasLang bool
}

// NewBlock builds a block and computes its derived fields.
func NewBlock(lines []Line) Block {
	b := Block{Lines: lines, FirstInput: -1, LastInput: -1, FirstOutput: -1, LastOutput: -1}
	for _, l := range lines {
		switch l.Label {
		case Input:
			if b.FirstInput < 0 {
				b.FirstInput = l.Index
			}
			b.LastInput = l.Index
		case Output:
			if b.FirstOutput < 0 {
				b.FirstOutput = l.Index
			}
			b.LastOutput = l.Index
		case OutputLang:
			if !b.HasLang {
				b.Lang = strings.TrimSpace(strings.Trim(strings.TrimSpace(l.Text), "{}"))
				b.HasLang = true
			}
		}
	}
	return b
}

// Assemble groups labelled lines into blocks. A block starts at the first
// line, at a blank line following an input, and at an input or text line
// following an output. The blocks partition the lines.
func Assemble(lines []Line) []Block {
	var starts []int
	for i, l := range lines {
		if i == 0 {
			starts = append(starts, i)
			continue
		}
		prev := lines[i-1].Label
		if prev == Input && isBlank(l.Text) {
			starts = append(starts, i)
			continue
		}
		if prev == Output && (l.Label == Input || l.Label == Text) {
			starts = append(starts, i)
		}
	}

	blocks := make([]Block, 0, len(starts))
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		blocks = append(blocks, NewBlock(lines[start:end]))
	}
	return blocks
}

// Blocks classifies lines and groups them into blocks.
func Blocks(lines []string) []Block {
	return Assemble(Classify(lines))
}
