package verification

import (
	"fmt"
	"strings"

	"github.com/draftdeck/draftdeck-backend/internal/types"
)

// DocumentInput is the structured data the generator fed into the template,
// restated here so every check is against the same source of truth.
type DocumentInput struct {
	CounterpartyName string
	ApprovedAmount   float64
	InterestRate     float64 // annual, as a fraction
	TermMonths       int
	Fees             []types.FeeItem
	Covenants        []types.Covenant
}

type Result struct {
	Passed       bool            `json:"passed"`
	Issues       []types.Finding `json:"issues"`
	ChecksRun    int             `json:"checks_run"`
	ChecksPassed int             `json:"checks_passed"`
}

// VerifyDocument runs the deterministic verification pass over AI-authored
// prose. It is pure text matching: no AI call, no I/O, reproducible for a
// given input. A failed check is data, never an error.
func VerifyDocument(docType string, input DocumentInput, prose Prose) Result {
	res := Result{Issues: []types.Finding{}}
	flat := prose.Flatten()
	flatLower := strings.ToLower(flat)
	templateHandled := IsTemplateHandled(docType)

	check := func(passed bool, finding types.Finding) {
		res.ChecksRun++
		if passed {
			res.ChecksPassed++
			return
		}
		res.Issues = append(res.Issues, finding)
	}

	// Amount, rate, term and fee figures are the template's responsibility
	// for template-handled types; those checks count as run and passed.
	if input.ApprovedAmount > 0 {
		check(templateHandled || containsAny(flat, amountFormats(input.ApprovedAmount)), types.Finding{
			Severity:       types.SeverityCritical,
			Field:          "approvedAmount",
			Description:    fmt.Sprintf("approved amount %s does not appear in the generated prose", amountFormats(input.ApprovedAmount)[1]),
			Recommendation: "regenerate the document or correct the amount before review",
		})
	}
	if input.InterestRate > 0 {
		check(templateHandled || containsAny(flat, rateFormats(input.InterestRate)), types.Finding{
			Severity:       types.SeverityCritical,
			Field:          "interestRate",
			Description:    fmt.Sprintf("interest rate %s does not appear in the generated prose", rateFormats(input.InterestRate)[0]),
			Recommendation: "regenerate the document or correct the rate before review",
		})
	}
	if input.TermMonths > 0 {
		check(templateHandled || containsAny(flat, termFormats(input.TermMonths)), types.Finding{
			Severity:    types.SeverityWarning,
			Field:       "termMonths",
			Description: fmt.Sprintf("loan term of %d months is not stated in the generated prose", input.TermMonths),
		})
	}

	if strings.TrimSpace(input.CounterpartyName) != "" {
		check(strings.Contains(flatLower, strings.ToLower(input.CounterpartyName)), types.Finding{
			Severity:       types.SeverityWarning,
			Field:          "counterpartyName",
			Description:    fmt.Sprintf("counterparty %q is never named in the generated prose", input.CounterpartyName),
			Recommendation: "confirm the document references the correct party",
		})
	}

	for _, fee := range input.Fees {
		if fee.Amount <= 0 {
			continue
		}
		check(templateHandled || containsAny(flat, amountFormats(fee.Amount)), types.Finding{
			Severity:    types.SeverityWarning,
			Field:       "fee:" + fee.Name,
			Description: fmt.Sprintf("fee %q (%s) does not appear in the generated prose", fee.Name, amountFormats(fee.Amount)[1]),
		})
	}

	for _, cov := range input.Covenants {
		if cov.Threshold == nil {
			continue
		}
		check(containsAny(flat, thresholdFormats(*cov.Threshold, cov.IsPercent)), types.Finding{
			Severity:       types.SeverityWarning,
			Field:          "covenant:" + cov.Name,
			Description:    fmt.Sprintf("covenant %q threshold is not stated in the generated prose", cov.Name),
			Recommendation: "covenant thresholds should be restated in the narrative for enforceability",
		})
	}

	// Structural check: every required prose section must be present and
	// non-empty regardless of document type. A gap here means malformed AI
	// output that would otherwise reach the legal template silently.
	for _, key := range RequiredProseKeys(docType) {
		v, ok := prose[key]
		check(ok && !SectionEmpty(v), types.Finding{
			Severity:       types.SeverityCritical,
			Field:          "prose:" + key,
			Description:    fmt.Sprintf("required prose section %q is missing or empty", key),
			Recommendation: "regenerate the document; the AI response did not include this section",
		})
	}

	res.Passed = !types.HasCritical(res.Issues)
	return res
}
