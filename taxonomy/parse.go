package taxonomy

import (
	"fmt"
	"strings"

	"github.com/occlab/nocmatch/core"
)

// parseListField parses a list-valued CSV cell into a string slice.
//
// Accepted encodings:
//   - empty string: empty list
//   - bracket-encoded: ['item one', "item two"] (quoted items, comma
//     separated); malformed encodings return ErrMalformedListField
//   - pipe-joined: item one | item two
//   - anything else: a single-element list
func parseListField(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "nan" {
		return nil, nil
	}

	if strings.HasPrefix(raw, "[") {
		return parseBracketList(raw)
	}

	if strings.Contains(raw, "|") {
		var items []string
		for _, part := range strings.Split(raw, "|") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items, nil
	}

	return []string{raw}, nil
}

// parseBracketList parses a Python-repr style list literal of quoted
// strings. Backslash escapes inside items are honored.
func parseBracketList(raw string) ([]string, error) {
	if !strings.HasSuffix(raw, "]") {
		return nil, fmt.Errorf("%w: unterminated bracket list", core.ErrMalformedListField)
	}

	inner := raw[1 : len(raw)-1]
	if strings.TrimSpace(inner) == "" {
		return nil, nil
	}

	var items []string
	i := 0
	for {
		// Skip whitespace up to the opening quote.
		for i < len(inner) && (inner[i] == ' ' || inner[i] == '\t') {
			i++
		}
		if i >= len(inner) {
			return nil, fmt.Errorf("%w: trailing separator", core.ErrMalformedListField)
		}
		quote := inner[i]
		if quote != '\'' && quote != '"' {
			return nil, fmt.Errorf("%w: item does not start with a quote", core.ErrMalformedListField)
		}
		i++

		var sb strings.Builder
		closed := false
		for i < len(inner) {
			c := inner[i]
			if c == '\\' && i+1 < len(inner) {
				sb.WriteByte(inner[i+1])
				i += 2
				continue
			}
			if c == quote {
				closed = true
				i++
				break
			}
			sb.WriteByte(c)
			i++
		}
		if !closed {
			return nil, fmt.Errorf("%w: unterminated quoted item", core.ErrMalformedListField)
		}
		if item := strings.TrimSpace(sb.String()); item != "" {
			items = append(items, item)
		}

		// Skip whitespace after the item; expect a comma or the end.
		for i < len(inner) && (inner[i] == ' ' || inner[i] == '\t') {
			i++
		}
		if i >= len(inner) {
			return items, nil
		}
		if inner[i] != ',' {
			return nil, fmt.Errorf("%w: expected comma between items", core.ErrMalformedListField)
		}
		i++
	}
}
