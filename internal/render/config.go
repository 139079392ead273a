package render

import (
	"errors"
	"fmt"
)

// Output languages with a special meaning in examples.
const (
	// LangPython is the default output language and the language of every
	// input code block.
	LangPython = "python"
	// LangRaw fences output without a language tag.
	LangRaw = "raw"
	// LangMarkdown and LangMarkdownRendered emit output as Markdown, unfenced.
	LangMarkdown         = "markdown"
	LangMarkdownRendered = "markdown_rendered"
)

var (
	// ErrInvalidConfig is returned for configuration values of the wrong type
	// or out of range.
	ErrInvalidConfig = errors.New("invalid render configuration")
	// ErrSignatureNotFound is returned when neither a callable nor its
	// constructor has a signature.
	ErrSignatureNotFound = errors.New("signature not found")
)

// Config controls how one object is rendered.
type Config struct {
	// Alias replaces the lookup path in the signature heading.
	Alias string `json:"alias" yaml:"alias"`
	// ExamplesMDLang is the language of example output blocks that do not
	// declare their own.
	ExamplesMDLang             string   `json:"examples_md_lang" yaml:"examples_md_lang"`
	RemoveDoctestBlanklines    bool     `json:"remove_doctest_blanklines" yaml:"remove_doctest_blanklines"`
	RemoveDoctestSkip          bool     `json:"remove_doctest_skip" yaml:"remove_doctest_skip"`
	MDSectionLevel             int      `json:"md_section_level" yaml:"md_section_level"`
	IgnoreCustomSectionWarning bool     `json:"ignore_custom_section_warning" yaml:"ignore_custom_section_warning"`
	Members                    []string `json:"members" yaml:"members"`
}

func DefaultConfig() Config {
	return Config{
		ExamplesMDLang: LangPython,
		MDSectionLevel: 3,
	}
}

// Validate checks the value constraints of the configuration.
func (c Config) Validate() error {
	if c.MDSectionLevel < 1 {
		return fmt.Errorf("%w: md_section_level must be >= 1, got %d", ErrInvalidConfig, c.MDSectionLevel)
	}
	return nil
}

// ForMember returns the configuration used to render member name of the
// object rendered with c. Members are never expanded twice.
func (c Config) ForMember(name string) Config {
	sub := c
	sub.Members = nil
	if c.Alias != "" {
		sub.Alias = c.Alias + "." + name
	}
	return sub
}

// outputLang resolves the fence tag of an example output block.
func (c Config) outputLang(blockLang string, hasLang bool) string {
	lang := c.ExamplesMDLang
	if hasLang {
		lang = blockLang
	}
	if lang == LangRaw {
		return ""
	}
	return lang
}

func isMarkdownLang(lang string) bool {
	return lang == LangMarkdown || lang == LangMarkdownRendered
}
