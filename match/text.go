package match

import (
	"strings"
	"unicode"
)

// Stop words excluded from display keywords
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "this": true,
	"that": true, "with": true, "from": true, "will": true, "have": true,
	"has": true, "can": true, "our": true, "you": true, "your": true,
	"their": true, "they": true, "been": true, "also": true, "such": true,
	"other": true, "into": true, "more": true, "than": true, "some": true,
	"about": true,
}

// ExtractKeywords returns the distinct terms of text longer than three
// characters, lowercased, minus stop words. Order follows first
// occurrence. The result is cosmetic: callers use it to highlight
// matching terms when rendering results.
func ExtractKeywords(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	keywords := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, word := range words {
		if len(word) <= 3 || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	return keywords
}
