package docgen

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/draftdeck/draftdeck-backend/internal/types"
)

// Section is one AI-authored prose section placed into the rendered document.
type Section struct {
	Key     string
	Heading string
	Body    []string
}

// RenderInput carries everything the deterministic template layer needs. The
// numeric terms come straight from the project record; prose sections come
// from the AI call and are injected verbatim (verification has already run
// against them by the time a reviewer sees the artifact).
type RenderInput struct {
	Title            string
	ProjectName      string
	Module           string
	CounterpartyName string
	ApprovedAmount   float64
	InterestRate     float64
	TermMonths       int
	MonthlyPayment   float64
	Fees             []types.FeeItem
	Covenants        []types.Covenant
	ReferenceRates   map[string]float64
	GeneratedAt      time.Time
	Sections         []Section
	ChecklistItems   []string
}

var templateFuncs = template.FuncMap{
	"currency": func(v float64) string {
		s := fmt.Sprintf("%.2f", v)
		parts := strings.SplitN(s, ".", 2)
		intPart := parts[0]
		var b strings.Builder
		for i, d := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				b.WriteByte(',')
			}
			b.WriteRune(d)
		}
		return "$" + b.String() + "." + parts[1]
	},
	"percent": func(v float64) string {
		return fmt.Sprintf("%.3f%%", v*100)
	},
	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
}

const baseDocumentTemplate = `# {{.Title}}

**Project:** {{.ProjectName}}
**Counterparty:** {{.CounterpartyName}}
**Prepared:** {{date .GeneratedAt}}

{{if gt .ApprovedAmount 0.0 -}}
## Terms

| Term | Value |
| --- | --- |
| Principal Amount | {{currency .ApprovedAmount}} |
| Interest Rate (per annum) | {{percent .InterestRate}} |
| Term | {{.TermMonths}} months |
{{- if gt .MonthlyPayment 0.0}}
| Monthly Payment | {{currency .MonthlyPayment}} |
{{- end}}
{{range .Fees}}| Fee: {{.Name}} | {{currency .Amount}} |
{{end}}
{{- end}}
{{if .Covenants}}
## Covenants
{{range .Covenants}}
- {{.Name}}{{if .Threshold}}: {{if .IsPercent}}{{percent (deref .Threshold)}}{{else}}{{deref .Threshold}}x{{end}}{{end}}
{{- end}}
{{end}}
{{range .Sections}}
## {{.Heading}}
{{range .Body}}
{{.}}
{{end}}
{{- end}}
{{if .ReferenceRates}}
## Reference Rates
{{range $name, $rate := .ReferenceRates}}
- {{$name}}: {{percent $rate}}
{{- end}}
{{end}}

---
*This document was generated by DraftDeck and is subject to review by a qualified professional before execution.*
`

const checklistTemplate = `# {{.Title}}

**Project:** {{.ProjectName}}
**Counterparty:** {{.CounterpartyName}}
**Prepared:** {{date .GeneratedAt}}

## Items
{{range .ChecklistItems}}
- [ ] {{.}}
{{- end}}

---
*This document was generated by DraftDeck and is subject to review by a qualified professional before execution.*
`

var (
	baseTmpl      *template.Template
	checklistTmpl *template.Template
)

func init() {
	funcs := template.FuncMap{}
	for k, v := range templateFuncs {
		funcs[k] = v
	}
	funcs["deref"] = func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	baseTmpl = template.Must(template.New("document").Funcs(funcs).Parse(baseDocumentTemplate))
	checklistTmpl = template.Must(template.New("checklist").Funcs(funcs).Parse(checklistTemplate))
}

// Render assembles the final artifact for a document type. Deterministic
// types render from project data alone; AI-authored types interleave the
// prose sections.
func Render(docType string, in RenderInput) ([]byte, error) {
	if in.Title == "" {
		in.Title = Title(docType)
	}
	var buf bytes.Buffer
	var err error
	if deterministicDocTypes[docType] && len(in.ChecklistItems) > 0 {
		err = checklistTmpl.Execute(&buf, in)
	} else {
		err = baseTmpl.Execute(&buf, in)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", docType, err)
	}
	return buf.Bytes(), nil
}

// SectionsFromProse orders the AI output by the document type's required key
// list so the rendered artifact is stable across regenerations.
func SectionsFromProse(requiredKeys []string, prose map[string]any) []Section {
	out := make([]Section, 0, len(prose))
	seen := map[string]bool{}
	appendSection := func(key string) {
		v, ok := prose[key]
		if !ok || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, Section{Key: key, Heading: headingFor(key), Body: bodyLines(v)})
	}
	for _, key := range requiredKeys {
		appendSection(key)
	}
	extras := make([]string, 0, len(prose))
	for key := range prose {
		if !seen[key] {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	for _, key := range extras {
		appendSection(key)
	}
	return out
}

func bodyLines(v any) []string {
	switch s := v.(type) {
	case string:
		return []string{s}
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// headingFor turns a camelCase prose key into a display heading:
// "representationsWarranties" becomes "Representations Warranties".
func headingFor(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" {
		return out
	}
	return strings.ToUpper(out[:1]) + out[1:]
}
