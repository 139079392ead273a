package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pydocmd/internal/render"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{`{{"obj": "a.b"}}`, true},
		{`   {{ "obj": "a.b" }}  `, true},
		{`text {{"obj": "a.b"}}`, false},
		{`{{markdown}}`, true},
		{`{}`, false},
		{``, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Match(tt.line), tt.line)
	}
}

func TestParse(t *testing.T) {
	defaults := render.DefaultConfig()

	t.Run("Object only", func(t *testing.T) {
		p, err := Parse(`{{"obj": "pkg.add"}}`, defaults)
		require.NoError(t, err)
		assert.Equal(t, "pkg.add", p.Object)
		assert.Equal(t, defaults, p.Config)
	})

	t.Run("All keys", func(t *testing.T) {
		line := `  {{"obj": "pkg.Foo", "alias": "Foo", "examples_md_lang": "raw", "remove_doctest_blanklines": true,` +
			` "remove_doctest_skip": true, "md_section_level": 2, "ignore_custom_section_warning": true, "members": ["public$"]}}`
		p, err := Parse(line, defaults)
		require.NoError(t, err)
		assert.Equal(t, line, p.Text)
		assert.Equal(t, render.Config{
			Alias:                      "Foo",
			ExamplesMDLang:             "raw",
			RemoveDoctestBlanklines:    true,
			RemoveDoctestSkip:          true,
			MDSectionLevel:             2,
			IgnoreCustomSectionWarning: true,
			Members:                    []string{"public$"},
		}, p.Config)
	})

	t.Run("Defaults are not shared", func(t *testing.T) {
		d := render.DefaultConfig()
		d.Members = []string{"a"}
		p, err := Parse(`{{"obj": "x"}}`, d)
		require.NoError(t, err)
		p.Config.Members[0] = "b"
		assert.Equal(t, []string{"a"}, d.Members)
	})

	t.Run("Syntax errors", func(t *testing.T) {
		for _, line := range []string{
			`{{"alias": "x"}}`,
			`{{"obj": "x", "colour": "red"}}`,
			`{{"obj": "x",}}`,
			`{{markdown}}`,
			`{{"obj": "x"} {"obj": "y"}}`,
			`{{"obj": 123}}`,
			`{{"obj": ["a.b"]}}`,
			`not a placeholder`,
		} {
			_, err := Parse(line, defaults)
			assert.ErrorIs(t, err, ErrSyntax, line)
			assert.NotErrorIs(t, err, render.ErrInvalidConfig, line)
		}
	})

	t.Run("Configuration errors", func(t *testing.T) {
		for _, line := range []string{
			`{{"obj": "x", "md_section_level": "2"}}`,
			`{{"obj": "x", "members": "public$"}}`,
			`{{"obj": "x", "md_section_level": 0}}`,
		} {
			_, err := Parse(line, defaults)
			assert.ErrorIs(t, err, render.ErrInvalidConfig, line)
			assert.NotErrorIs(t, err, ErrSyntax, line)
		}
	})
}
