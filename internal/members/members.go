// Package members resolves member selection expressions against the
// attribute names of an object.
package members

import (
	"errors"
	"fmt"
	"strings"
)

// Category flags. The "all-" spellings are accepted as aliases.
const (
	FlagDunder  = "dunder$"
	FlagPrivate = "private$"
	FlagPublic  = "public$"
)

var flagAliases = map[string]string{
	"all-dunder":  FlagDunder,
	"all-private": FlagPrivate,
	"all-public":  FlagPublic,
}

var (
	// ErrSelection is wrapped by every member selection error.
	ErrSelection = errors.New("invalid members selection")

	ErrEmptyMember     = fmt.Errorf("%w: empty member name", ErrSelection)
	ErrInvalidFlag     = fmt.Errorf("%w: unknown flag", ErrSelection)
	ErrMemberNotFound  = fmt.Errorf("%w: member does not exist", ErrSelection)
	ErrMembersConflict = fmt.Errorf("%w: members are both included and excluded", ErrSelection)
)

// IsDunder reports whether name starts and ends with a double underscore.
func IsDunder(name string) bool {
	return len(name) >= 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// IsPrivate reports whether name starts with an underscore without being dunder.
func IsPrivate(name string) bool {
	return strings.HasPrefix(name, "_") && !IsDunder(name)
}

// IsPublic reports whether name does not start with an underscore.
func IsPublic(name string) bool {
	return !strings.HasPrefix(name, "_")
}

func flagMatcher(entry string) (func(string) bool, bool) {
	if alias, ok := flagAliases[entry]; ok {
		entry = alias
	}
	switch entry {
	case FlagDunder:
		return IsDunder, true
	case FlagPrivate:
		return IsPrivate, true
	case FlagPublic:
		return IsPublic, true
	}
	return nil, false
}

// Select resolves expr against attrs and returns the member names to render,
// unique and in first-seen order.
//
// An entry is a category flag, an inclusion ("name" or "+name") or an
// exclusion ("-name"). Flags expand to every matching attribute in attrs
// order. Inclusions must exist in attrs, and a name cannot be both
// explicitly included and excluded.
func Select(attrs, expr []string) ([]string, error) {
	exists := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		exists[a] = true
	}

	var candidates []string
	included := make(map[string]bool)
	excluded := make(map[string]bool)
	var inclusionOrder []string

	for _, raw := range expr {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			return nil, ErrEmptyMember
		}

		if match, ok := flagMatcher(entry); ok {
			for _, a := range attrs {
				if match(a) {
					candidates = append(candidates, a)
				}
			}
			continue
		}
		if strings.HasSuffix(entry, "$") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFlag, entry)
		}

		if name, ok := strings.CutPrefix(entry, "-"); ok {
			if name == "" {
				return nil, ErrEmptyMember
			}
			excluded[name] = true
			continue
		}

		name := strings.TrimPrefix(entry, "+")
		if name == "" {
			return nil, ErrEmptyMember
		}
		if !exists[name] {
			return nil, fmt.Errorf("%w: %q", ErrMemberNotFound, name)
		}
		candidates = append(candidates, name)
		if !included[name] {
			included[name] = true
			inclusionOrder = append(inclusionOrder, name)
		}
	}

	var conflicts []string
	for _, name := range inclusionOrder {
		if excluded[name] {
			conflicts = append(conflicts, name)
		}
	}
	if len(conflicts) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMembersConflict, strings.Join(conflicts, ", "))
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if seen[name] || excluded[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, nil
}
