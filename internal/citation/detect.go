// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation measures how often, how early, and how favourably
// competitors are mentioned in model answers to industry questions.
package citation

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// shortNameLen is the length at or below which a name is ambiguous enough
// to need keyword confirmation.
const shortNameLen = 3

var corporateSuffix = regexp.MustCompile(`(?i)[,\s]+(inc|llc|ltd|limited|corp|corporation|co|company|gmbh|plc|ag|sa)\.?$`)

var domainSuffix = regexp.MustCompile(`(?i)\.(com|io|ai|co|net|org|app)$`)

// Variants returns the lower-case spellings a name is matched under: the
// name itself, the name without a corporate suffix, its spaceless and
// hyphenated forms, and its bare domain (or, for a domain, the name
// without the TLD). Variants shorter than two characters are dropped.
func Variants(name string) []string {
	base := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if base == "" {
		return nil
	}

	var out []string
	seen := map[string]bool{}
	add := func(v string) {
		v = strings.TrimSpace(v)
		if len(v) < 2 || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}

	add(base)
	core := strings.TrimSpace(corporateSuffix.ReplaceAllString(base, ""))
	add(core)

	if domainSuffix.MatchString(core) {
		add(domainSuffix.ReplaceAllString(core, ""))
	} else {
		add(strings.ReplaceAll(core, " ", "") + ".com")
	}
	if strings.Contains(core, " ") {
		add(strings.ReplaceAll(core, " ", ""))
		add(strings.ReplaceAll(core, " ", "-"))
	}
	return out
}

// Canonical reduces a company name to the key used to decide whether two
// spellings name the same company: lower case, without a corporate suffix
// or TLD, and without spaces or hyphens. "Semrush Inc", "semrush.com" and
// "Sem-Rush" all reduce to "semrush".
func Canonical(name string) string {
	core := strings.ToLower(strings.Join(strings.Fields(name), " "))
	core = strings.TrimSpace(corporateSuffix.ReplaceAllString(core, ""))
	core = domainSuffix.ReplaceAllString(core, "")
	return strings.NewReplacer(" ", "", "-", "").Replace(core)
}

// Detection is the result of scanning one text for one name.
type Detection struct {
	Detected bool

	// Count is the number of non-overlapping mentions across all variants.
	Count int

	// FirstIndex is the byte offset of the earliest mention in the
	// lower-cased text, or -1.
	FirstIndex int

	// KeywordHits is the number of distinct keywords present in the text.
	KeywordHits int
}

type span struct{ start, end int }

// Detect finds name in text, case-insensitively and on word boundaries.
// When variants is nil, Variants(name) is used. A name of three characters
// or fewer only counts as detected when keywords are given and at least
// one of them also appears in the text.
func Detect(text, name string, variants, keywords []string) Detection {
	det := Detection{FirstIndex: -1}
	lower := strings.ToLower(text)
	if variants == nil {
		variants = Variants(name)
	}

	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(lower, k) {
			det.KeywordHits++
		}
	}

	var spans []span
	for _, v := range variants {
		v = strings.ToLower(v)
		if v == "" {
			continue
		}
		for from := 0; from < len(lower); {
			i := strings.Index(lower[from:], v)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(v)
			if atBoundary(lower, start, end) {
				spans = append(spans, span{start, end})
			}
			from = start + 1
		}
	}
	spans = mergeSpans(spans)
	if len(spans) == 0 {
		return det
	}

	if len(strings.TrimSpace(name)) <= shortNameLen && len(keywords) > 0 && det.KeywordHits == 0 {
		return det
	}

	det.Detected = true
	det.Count = len(spans)
	det.FirstIndex = spans[0].start
	return det
}

func atBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// mergeSpans sorts spans and joins overlapping ones, so "semrush" inside
// "semrush.com" is one mention.
func mergeSpans(spans []span) []span {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})
	out := []span{spans[0]}
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.start < last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		out = append(out, s)
	}
	return out
}
