package types

const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Finding is an immutable compliance or verification record attached to a
// generated document version. Regeneration writes a new document version with
// its own finding set; findings are never edited in place.
type Finding struct {
	Severity       string `json:"severity"`
	Field          string `json:"field"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation,omitempty"`
}

func HasCritical(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
