package render

import (
	"fmt"
	"regexp"
	"strings"

	"pydocmd/internal/resolver"
)

// selfOrCls matches the bound first parameter of methods and classmethods.
var selfOrCls = regexp.MustCompile(`\((?:self|cls)\b *,* *`)

// renderSignature renders the heading of an object: its colored display name
// followed, for callables, by the italic call signature.
func renderSignature(obj resolver.Object, name string, cfg Config) ([]string, error) {
	level := cfg.MDSectionLevel - 1
	if level < 1 {
		level = 1
	}
	heading := strings.Repeat("#", level) + ` <span style="color:purple">` + Escape(name) + `</span>`
	if !obj.Callable() {
		return []string{heading}, nil
	}

	sig, err := Signature(obj)
	if err != nil {
		return nil, err
	}
	sig = Escape(selfOrCls.ReplaceAllString(sig, "("))
	return []string{heading + "_" + sig + "_"}, nil
}

// Signature returns the signature of a callable, falling back to its
// constructor's when the object has none of its own.
func Signature(obj resolver.Object) (string, error) {
	sig, err := obj.Signature()
	if err == nil {
		return sig, nil
	}
	if ctor, ok := obj.Constructor(); ok {
		if sig, ctorErr := ctor.Signature(); ctorErr == nil {
			return sig, nil
		}
	}
	return "", fmt.Errorf("%w: %s: %w", ErrSignatureNotFound, obj.Path(), err)
}
