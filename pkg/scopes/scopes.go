// Package scopes provides helpers for OAuth-style scope strings: parsing
// white-space separated scope lists, joining them back, and validating a
// requested set against an allow-list. Wildcards ("*" and "prefix.*") are
// understood when matching.
package scopes

import (
	"errors"
	"strings"
)

const (
	// Separator separates multiple scopes in a scope list string.
	Separator = " "
	// Wildcard matches every scope, or every sub-scope when used as a
	// suffix (e.g. "admin.*").
	Wildcard = "*"
	// Delimiter separates hierarchy levels inside a scope (e.g. "admin.read").
	Delimiter = "."
)

// ErrScopeNotAllowed is returned when a requested scope is not covered by
// the allowed set.
var ErrScopeNotAllowed = errors.New("scopes: scope not in allowed list")

// Parse converts a space-separated scope string into a slice, trimming
// spaces and dropping empty entries. Returns nil for empty input.
func Parse(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Join converts a scope slice back to its canonical space-separated form.
func Join(scopes []string) string {
	return strings.Join(scopes, Separator)
}

// Matches reports whether a single scope is covered by a pattern.
// A pattern is a direct match, the global wildcard, or a namespace
// wildcard such as "admin.*".
func Matches(scope, pattern string) bool {
	if scope == pattern || pattern == Wildcard {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, Delimiter+Wildcard); ok {
		return strings.HasPrefix(scope, prefix+Delimiter)
	}
	return false
}

// Has reports whether any scope in the set covers the given scope.
func Has(set []string, scope string) bool {
	for _, s := range set {
		if Matches(scope, s) {
			return true
		}
	}
	return false
}

// Validate checks that every requested scope is covered by the allowed set.
// An empty requested set is always valid.
func Validate(requested, allowed []string) error {
	for _, scope := range requested {
		if !Has(allowed, scope) {
			return ErrScopeNotAllowed
		}
	}
	return nil
}
