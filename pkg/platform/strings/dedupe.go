// Package strings holds the list normalisation used for free-text form input.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each value and drops blanks and repeats, keeping the
// first occurrence of each value in order. Comparison is case sensitive.
// Nil and empty inputs are returned unchanged.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := values[:0:0]
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// SplitList turns one text field into a list. Items are separated by commas
// or line breaks, so both "a, b" and a pasted multi-line list work.
//
//	SplitList("Bridge spotted, Learning partner invited,,")
//	// []string{"Bridge spotted", "Learning partner invited"}
func SplitList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	if out := DedupeAndTrim(parts); len(out) > 0 {
		return out
	}
	return []string{}
}
