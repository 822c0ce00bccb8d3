package match

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// responsibilityVerbs is the vocabulary used to classify a sentence as
// a responsibility statement. Matching is case-insensitive substring
// containment, so inflected forms ("develops", "managing") count too.
var responsibilityVerbs = []string{
	"develop", "manage", "create", "implement", "design", "coordinate",
	"lead", "supervise", "analyze", "maintain", "ensure", "provide",
	"support", "review", "prepare", "conduct", "monitor", "plan",
	"organize", "direct", "control", "evaluate", "establish", "perform",
}

const (
	defaultMinSegmentLength = 10
	defaultMaxSegments      = 20
)

// Segmenter splits free text into sentence-like responsibility
// segments. The zero value is not usable; construct with NewSegmenter.
type Segmenter struct {
	// MinLength is the minimum trimmed segment length in characters.
	MinLength int

	// MaxSegments caps how many segments are returned.
	MaxSegments int

	// Verbs is the responsibility vocabulary.
	Verbs []string
}

// NewSegmenter creates a segmenter with the default vocabulary and
// limits.
func NewSegmenter() *Segmenter {
	return &Segmenter{
		MinLength:   defaultMinSegmentLength,
		MaxSegments: defaultMaxSegments,
		Verbs:       responsibilityVerbs,
	}
}

// Segment splits text on sentence boundaries and newlines and keeps
// the segments that look like responsibility statements: those
// containing a responsibility verb, or starting with an uppercase
// letter or a bullet marker. If nothing passes the filter, all
// non-trivial segments are returned instead, so a non-trivial input
// always yields at least one segment. The result preserves input
// order, is de-duplicated by exact text and is capped at MaxSegments.
func (s *Segmenter) Segment(text string) []string {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})

	segments := make([]string, 0, len(sentences))
	seen := make(map[string]bool, len(sentences))
	add := func(segment string) {
		if !seen[segment] {
			seen[segment] = true
			segments = append(segments, segment)
		}
	}

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < s.MinLength {
			continue
		}
		if s.containsVerb(sentence) {
			add(sentence)
			continue
		}
		first, _ := utf8.DecodeRuneInString(sentence)
		if unicode.IsUpper(first) || strings.HasPrefix(sentence, "-") {
			add(strings.TrimLeft(sentence, "- •"))
		}
	}

	// Fallback: nothing looked like a responsibility, take everything
	// non-trivial instead.
	if len(segments) == 0 {
		for _, sentence := range sentences {
			sentence = strings.TrimSpace(sentence)
			if len(sentence) > s.MinLength {
				add(sentence)
			}
		}
	}

	if len(segments) > s.MaxSegments {
		segments = segments[:s.MaxSegments]
	}
	return segments
}

func (s *Segmenter) containsVerb(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, verb := range s.Verbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}
