package verification

import "strings"

// Prose is the AI-authored output for a document: named sections mapping to
// either a string or a list of strings. Anything else is ignored as malformed
// rather than crashing the checker.
type Prose map[string]any

// SectionEmpty reports whether a prose value carries no usable text.
func SectionEmpty(v any) bool {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s) == ""
	case []string:
		for _, item := range s {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	case []any:
		for _, item := range s {
			if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Flatten joins every prose section into one searchable blob.
func (p Prose) Flatten() string {
	var b strings.Builder
	for _, v := range p {
		switch s := v.(type) {
		case string:
			b.WriteString(s)
			b.WriteString("\n")
		case []string:
			for _, item := range s {
				b.WriteString(item)
				b.WriteString("\n")
			}
		case []any:
			for _, item := range s {
				if str, ok := item.(string); ok {
					b.WriteString(str)
					b.WriteString("\n")
				}
			}
		}
	}
	return b.String()
}
