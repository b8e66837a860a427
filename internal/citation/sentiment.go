// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

var positiveWords = []string{
	"best", "leading", "leader", "excellent", "great", "good", "top", "popular",
	"powerful", "recommended", "recommend", "reliable", "trusted", "innovative",
	"comprehensive", "robust", "favorite", "preferred", "strong", "accurate",
	"intuitive", "easy", "affordable", "effective", "outstanding", "impressive",
	"valuable", "useful", "superior", "standout", "love", "praised",
}

var negativeWords = []string{
	"worst", "poor", "bad", "expensive", "overpriced", "limited", "outdated",
	"difficult", "complicated", "confusing", "unreliable", "slow", "buggy",
	"weak", "lacking", "lacks", "inaccurate", "clunky", "disappointing",
	"frustrating", "problem", "issue", "complaint", "criticized", "avoid",
	"inferior", "declining", "costly", "steep", "hate",
}

var negators = map[string]bool{"not": true, "no": true, "never": true, "isn't": true, "isnt": true, "don't": true, "dont": true, "without": true}

// negationWindow is how many preceding tokens a negator reaches.
const negationWindow = 2

var (
	positiveStems = stemSet(positiveWords)
	negativeStems = stemSet(negativeWords)
)

func stemSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[snowballeng.Stem(w, false)] = true
	}
	return m
}

// Sentiment scores text in [-1, 1] by counting positive and negative
// lexicon hits over stemmed tokens. A negator within the two preceding
// tokens flips a hit. Text without hits scores 0.
func Sentiment(text string) float64 {
	tokens := tokenize(text)
	var pos, neg int
	for i, tok := range tokens {
		stem := snowballeng.Stem(tok, false)
		polarity := 0
		switch {
		case positiveStems[stem]:
			polarity = 1
		case negativeStems[stem]:
			polarity = -1
		default:
			continue
		}
		if negated(tokens, i) {
			polarity = -polarity
		}
		if polarity > 0 {
			pos++
		} else {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

func negated(tokens []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
		if negators[tokens[j]] {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

// SentimentWeight maps a sentiment score to a multiplier: 1 at neutral,
// falling linearly to 0 at -1 and rising to 1.5 at +1.
func SentimentWeight(score float64) float64 {
	switch {
	case score != score:
		return 1
	case score < -1:
		score = -1
	case score > 1:
		score = 1
	}
	if score < 0 {
		return 1 + score
	}
	return 1 + 0.5*score
}
