package tenant

import (
	"fmt"
	"regexp"
)

const (
	// DefaultPattern accepts ASCII letters, digits, underscore and hyphen.
	DefaultPattern = `^[a-zA-Z0-9_-]+$`

	// ReservedAPI is the identifier routed to the built-in API service.
	ReservedAPI = "api"
)

// Validator accepts or rejects tenant identifiers against an allow-pattern.
// A Validator is immutable and safe for concurrent use.
type Validator struct {
	pattern string
	re      *regexp.Regexp
}

// NewValidator compiles pattern into a Validator. An empty pattern selects
// DefaultPattern. Patterns are anchored on both ends so that a segment is
// only accepted when the whole segment matches.
func NewValidator(pattern string) (*Validator, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	re, err := regexp.Compile(anchor(pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid tenant pattern %q: %w", pattern, err)
	}

	return &Validator{pattern: pattern, re: re}, nil
}

// MustValidator is like NewValidator but panics on an invalid pattern.
// It is meant for tests and package-level defaults.
func MustValidator(pattern string) *Validator {
	v, err := NewValidator(pattern)
	if err != nil {
		panic(err)
	}
	return v
}

// Valid reports whether segment is an acceptable tenant identifier.
func (v *Validator) Valid(segment string) bool {
	if segment == "" {
		return false
	}
	return v.re.MatchString(segment)
}

// Pattern returns the pattern the validator was built from.
func (v *Validator) Pattern() string {
	return v.pattern
}

// IsReserved reports whether id names the built-in API service.
func IsReserved(id string) bool {
	return id == ReservedAPI
}

// anchor wraps pattern so it must match the entire input. Patterns that
// already carry anchors are wrapped too; alternations like "a|b$" would
// otherwise match a prefix.
func anchor(pattern string) string {
	return "^(?:" + pattern + ")$"
}
