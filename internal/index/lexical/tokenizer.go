package lexical

import (
	"strings"
	"unicode"
)

// Tokenize lowercases, strips punctuation and symbols, and splits on
// whitespace. Chunk text and query text go through the same rule so
// term statistics line up.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	return strings.Fields(cleaned)
}
