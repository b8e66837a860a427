// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "strings"

// denylist holds substrings that mark a source or publisher, not a company.
var denylist = []string{"wikipedia", "linkedin", "news", "article"}

// CleanNames keeps the string values that are non-empty after trimming and
// contain none of the denylisted substrings (case-insensitive). Order is
// preserved and CleanNames(CleanNames(x)) equals CleanNames(x).
func CleanNames[T any](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := any(v).(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || denied(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func denied(name string) bool {
	lower := strings.ToLower(name)
	for _, d := range denylist {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}
