package index

import (
	"strings"

	"github.com/occlab/nocmatch/core"
)

// Weighting constants for the searchable text. Repetition is the
// weighting device: a repeated field moves the profile vector toward
// that field. Changing any of these changes every profile vector, so
// the index fingerprint alone is not enough to detect drift here.
const (
	descriptionRepeatLen = 200
	additionalInfoLen    = 100
	maxExclusions        = 3
)

// SearchableText builds the weighted text a profile vector is computed
// from. The layout mirrors the upstream embedding preparation: title
// twice, description plus a truncated repeat, duties under three label
// prefixes, then the lighter auxiliary fields.
func SearchableText(e *core.Entity) string {
	var parts []string

	// Title - repeated to upweight it relative to a single mention
	parts = append(parts, "Title: "+e.Title+" "+e.Title)

	// Description - full text plus a truncated repeat
	parts = append(parts, "Description: "+e.Description)
	parts = append(parts, truncateRunes(e.Description, descriptionRepeatLen))

	// Duties - highest priority, tripled under three label prefixes
	if duties := joinNonEmpty(e.Duties); duties != "" {
		parts = append(parts, "Main duties: "+duties)
		parts = append(parts, "Responsibilities: "+duties)
		parts = append(parts, "Key duties: "+duties)
	}

	if titles := joinNonEmpty(e.ExampleTitles); titles != "" {
		parts = append(parts, "Example titles: "+titles)
	}

	if e.Requirements != "" {
		parts = append(parts, "Requirements: "+e.Requirements)
	}

	// Additional information - truncated for lower weight
	if e.AdditionalInfo != "" {
		parts = append(parts, truncateRunes(e.AdditionalInfo, additionalInfoLen))
	}

	// Exclusions - first three only, lower priority
	if len(e.Exclusions) > 0 {
		exclusions := e.Exclusions
		if len(exclusions) > maxExclusions {
			exclusions = exclusions[:maxExclusions]
		}
		if joined := joinNonEmpty(exclusions); joined != "" {
			parts = append(parts, "Exclusions: "+joined)
		}
	}

	// Hierarchy labels
	if e.BroadCategory != "" {
		parts = append(parts, "Category: "+e.BroadCategory)
	}
	if e.MajorGroup != "" {
		parts = append(parts, "Group: "+e.MajorGroup)
	}

	return strings.Join(parts, " ")
}

func joinNonEmpty(items []string) string {
	var kept []string
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, " ")
}

// truncateRunes returns the first n runes of s. Truncation is rune-safe
// so multibyte text never splits mid-character.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
