package usecase

import (
	"strings"
	"unicode/utf8"
)

// Phrases the model produces when the transcript does not cover the
// asked topic. Matched case-insensitively against the whole answer.
var notFoundMarkers = []string{
	"not discussed in the video",
	"topic is not discussed",
	"does not mention",
	"transcript does not contain",
	"not mentioned in the video",
	"no information about",
	"video does not discuss",
}

// Answers shorter than this many characters are treated as a likely
// failure even without a marker phrase.
const minAnswerRunes = 50

// IsInsufficient reports whether a generated answer indicates the
// topic was not found. A heuristic proxy for answer quality, not a
// semantic judgment; false positives are an accepted cost tradeoff.
func IsInsufficient(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, marker := range notFoundMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return utf8.RuneCountInString(trimmed) < minAnswerRunes
}
