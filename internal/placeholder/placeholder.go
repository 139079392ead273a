// Package placeholder parses the "{{ ... }}" lines that request the
// rendered docstring of an object inside a Markdown template.
package placeholder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pydocmd/internal/render"
)

// ErrSyntax is returned for malformed placeholders: invalid JSON, a missing
// "obj" key or unknown keys.
var ErrSyntax = errors.New("invalid placeholder")

// Placeholder is a parsed placeholder line.
type Placeholder struct {
	// Text is the line as written.
	Text   string
	Object string
	Config render.Config
}

// Match reports whether line is a placeholder: once trimmed it starts with
// "{{" and ends with "}}".
func Match(line string) bool {
	s := strings.TrimSpace(line)
	return len(s) >= 4 && strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}")
}

type fields struct {
	Obj *string `json:"obj"`
	render.Config
}

// Parse decodes a placeholder line. The inner braces hold a JSON object;
// keys that are not set keep their value from defaults.
func Parse(line string, defaults render.Config) (Placeholder, error) {
	if !Match(line) {
		return Placeholder{}, fmt.Errorf("%w: %q is not a placeholder", ErrSyntax, line)
	}
	s := strings.TrimSpace(line)
	body := s[1 : len(s)-1]

	f := fields{Config: defaults}
	f.Members = append([]string(nil), defaults.Members...)

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var typeErr *json.UnmarshalTypeError
		// A wrong "obj" is a malformed placeholder, not a render setting.
		if errors.As(err, &typeErr) && typeErr.Field != "obj" {
			return Placeholder{}, fmt.Errorf("%w: key %q of %s: expected %s, got %s",
				render.ErrInvalidConfig, typeErr.Field, s, typeErr.Type, typeErr.Value)
		}
		return Placeholder{}, fmt.Errorf("%w: %s: %v", ErrSyntax, s, err)
	}
	if dec.More() {
		return Placeholder{}, fmt.Errorf("%w: %s: trailing data", ErrSyntax, s)
	}
	if f.Obj == nil {
		return Placeholder{}, fmt.Errorf(`%w: %s: missing key "obj"`, ErrSyntax, s)
	}
	if err := f.Config.Validate(); err != nil {
		return Placeholder{}, fmt.Errorf("%s: %w", s, err)
	}

	return Placeholder{Text: line, Object: *f.Obj, Config: f.Config}, nil
}
