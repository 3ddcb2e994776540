// Package tags parses free-text tag input into a clean list of tag names.
package tags

import "strings"

// Parse splits a posted tag string on comma and whitespace delimiters,
// discards empty tokens, lower-cases each token, and deduplicates while
// preserving first-occurrence order. The result is the exact set of tag
// names to attach, in attachment order.
func Parse(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	seen := make(map[string]bool, len(fields))
	var names []string
	for _, f := range fields {
		name := strings.ToLower(f)
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
