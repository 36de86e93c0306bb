// Package identity canonicalizes person names and handles so that
// free-text spellings of the same identity compare equal when matched
// against alias tables.
package identity

import "strings"

// Normalize collapses internal whitespace runs to single spaces, trims
// the ends, and lowercases. Absent input normalizes to the empty string.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Keys returns the lookup keys for a name/handle pair, empty entries
// dropped. The alias tables are pre-normalized to the same convention.
func Keys(name, username string) []string {
	keys := make([]string, 0, 2)
	if n := Normalize(name); n != "" {
		keys = append(keys, n)
	}
	if u := Normalize(username); u != "" {
		keys = append(keys, u)
	}
	return keys
}
