// Package strings holds list helpers for configuration values.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each value and drops empties and repeats, keeping
// first-seen order.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// SplitList splits a comma separated value into a deduplicated list.
//
//	SplitList(" a, b,,a ") // []string{"a", "b"}
func SplitList(value string) []string {
	return DedupeAndTrim(strings.Split(value, ","))
}
