package citation

import (
	"strings"

	"github.com/pdiddy/visibility-engine/pkg/types"
)

const (
	minProminence = 0.3
	positionDecay = 0.7

	// openingWindow caps the opening sentence of a run-on answer.
	openingWindow = 200
)

// Prominence weights a mention at byte offset firstIndex of text. Mentions
// in the opening sentence, in a markdown heading, or inside **bold** text
// score 1; others decay linearly with relative position down to 0.3. A
// negative firstIndex (no mention) scores 0.
func Prominence(text string, firstIndex int) float64 {
	if firstIndex < 0 || firstIndex >= len(text) {
		return 0
	}

	if firstIndex < openingEnd(text) {
		return 1
	}

	lineStart := strings.LastIndexByte(text[:firstIndex], '\n') + 1
	lineEnd := len(text)
	if i := strings.IndexByte(text[firstIndex:], '\n'); i >= 0 {
		lineEnd = firstIndex + i
	}
	line := text[lineStart:lineEnd]
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return 1
	}
	if inBold(line, firstIndex-lineStart) {
		return 1
	}

	p := 1 - positionDecay*float64(firstIndex)/float64(len(text))
	if p < minProminence {
		return minProminence
	}
	return p
}

// openingEnd returns the byte offset just past the opening sentence of
// text: up to the first line break or sentence terminator, and at most
// openingWindow bytes past any leading whitespace. A period after a digit
// ("1. ") is a list marker, not a terminator.
func openingEnd(text string) int {
	lead := len(text) - len(strings.TrimLeft(text, " \t\r\n"))
	end := min(len(text), lead+openingWindow)
	for i := lead; i < end; i++ {
		switch text[i] {
		case '\n':
			return i
		case '.', '!', '?':
			if i+1 < len(text) && text[i+1] != ' ' {
				continue
			}
			if text[i] == '.' && i > lead && text[i-1] >= '0' && text[i-1] <= '9' {
				continue
			}
			return i + 1
		}
	}
	return end
}

// inBold reports whether offset i of line sits between a pair of **.
func inBold(line string, i int) bool {
	before := strings.Count(line[:i], "**")
	return before%2 == 1 && strings.Contains(line[i:], "**")
}

// Score evaluates one answer for one competitor.
func Score(answer, name string, keywords []string) types.CitationQueryResult {
	det := Detect(answer, name, nil, keywords)
	if !det.Detected {
		return types.CitationQueryResult{}
	}
	return types.CitationQueryResult{
		Detected:         true,
		MentionCount:     det.Count,
		SentimentScore:   Sentiment(answer),
		ProminenceFactor: Prominence(strings.ToLower(answer), det.FirstIndex),
	}
}

// Contribution is min(1, MentionCount) × SentimentWeight × ProminenceFactor,
// clamped to [0, 1].
func Contribution(r types.CitationQueryResult) float64 {
	if !r.Detected || r.MentionCount <= 0 {
		return 0
	}
	c := SentimentWeight(r.SentimentScore) * r.ProminenceFactor
	switch {
	case c != c, c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
