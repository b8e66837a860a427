// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"strings"

	"github.com/pdiddy/visibility-engine/pkg/types"
)

// ParseNameList parses a model response that should hold a JSON array.
//
// Stage one strips markdown code fences and parses the remainder as JSON.
// Stage two, used when stage one fails, parses the first balanced [...]
// span found in the raw text. When neither yields an array the error is a
// *types.ExtractionParseError carrying the raw text. Elements are returned
// untyped; CleanNames drops the non-strings.
func ParseNameList(raw string) ([]any, error) {
	body := stripFences(raw)

	var values []any
	if err := json.Unmarshal([]byte(body), &values); err == nil {
		return values, nil
	}

	span, ok := firstBalancedArray(raw)
	if !ok {
		return nil, &types.ExtractionParseError{Raw: raw, Reason: "no JSON array in response"}
	}
	if err := json.Unmarshal([]byte(span), &values); err != nil {
		return nil, &types.ExtractionParseError{Raw: raw, Reason: "invalid JSON array: " + err.Error()}
	}
	return values, nil
}

// stripFences removes a surrounding ``` or ```json fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// firstBalancedArray returns the first [...] span whose brackets balance,
// ignoring brackets inside JSON string literals.
func firstBalancedArray(s string) (string, bool) {
	for start := strings.IndexByte(s, '['); start >= 0; {
		if end, ok := matchBracket(s, start); ok {
			return s[start : end+1], true
		}
		next := strings.IndexByte(s[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func matchBracket(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
