package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	t.Run("lowercases and drops short words", func(t *testing.T) {
		got := ExtractKeywords("Design API and web dashboards")
		assert.Equal(t, []string{"design", "dashboards"}, got)
	})

	t.Run("drops stop words", func(t *testing.T) {
		got := ExtractKeywords("responsible for the maintenance of their equipment")
		assert.Equal(t, []string{"responsible", "maintenance", "equipment"}, got)
	})

	t.Run("splits on punctuation and digits", func(t *testing.T) {
		got := ExtractKeywords("budget-planning, 24x7 operations")
		assert.Equal(t, []string{"budget", "planning", "operations"}, got)
	})

	t.Run("deduplicates preserving first occurrence", func(t *testing.T) {
		got := ExtractKeywords("audit records, then audit reports")
		assert.Equal(t, []string{"audit", "records", "then", "reports"}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ExtractKeywords(""))
	})
}
