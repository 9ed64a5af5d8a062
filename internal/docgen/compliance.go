package docgen

import (
	"fmt"
	"strings"

	"github.com/draftdeck/draftdeck-backend/internal/types"
)

// usuryReviewRate is the annual rate above which a lending document is
// flagged for counsel review. State ceilings vary; this is the conservative
// screen, not legal advice.
const usuryReviewRate = 0.18

// EvaluateCompliance runs the module's deterministic compliance rules against
// the assembled document content. Findings are data for the reviewer, never
// errors: a flagged document still gets stored and versioned.
func EvaluateCompliance(module, docType string, content string, project *types.Project) []types.Finding {
	findings := []types.Finding{}
	lower := strings.ToLower(content)

	if strings.TrimSpace(content) == "" {
		findings = append(findings, types.Finding{
			Severity:    types.SeverityCritical,
			Field:       "document",
			Description: "assembled document is empty",
		})
		return findings
	}

	switch module {
	case types.ModuleLending:
		if project != nil && project.InterestRate > usuryReviewRate {
			findings = append(findings, types.Finding{
				Severity:       types.SeverityCritical,
				Field:          "interestRate",
				Description:    fmt.Sprintf("interest rate %.2f%% exceeds the usury review threshold", project.InterestRate*100),
				Recommendation: "confirm the rate is permissible in the governing jurisdiction before release",
			})
		}
		if docType == "loan_agreement" && !strings.Contains(lower, "default") {
			findings = append(findings, types.Finding{
				Severity:       types.SeverityWarning,
				Field:          "eventsOfDefault",
				Description:    "loan agreement does not discuss default",
				Recommendation: "default remedies are required in every loan agreement",
			})
		}
	case types.ModuleSyndication:
		if docType == "private_placement_memorandum" || docType == "subscription_agreement" {
			if !strings.Contains(lower, "regulation d") && !strings.Contains(lower, "rule 506") {
				findings = append(findings, types.Finding{
					Severity:       types.SeverityCritical,
					Field:          "securitiesExemption",
					Description:    "securities exemption language (Regulation D / Rule 506) is absent",
					Recommendation: "offering documents must state the exemption relied upon",
				})
			}
		}
		if docType == "private_placement_memorandum" && !strings.Contains(lower, "risk") {
			findings = append(findings, types.Finding{
				Severity:       types.SeverityCritical,
				Field:          "riskFactors",
				Description:    "anti-fraud risk disclosure is absent from the offering memorandum",
				Recommendation: "add a risk factors section before distribution",
			})
		}
	case types.ModuleMA:
		if docType == "purchase_agreement" && !strings.Contains(lower, "material adverse") {
			findings = append(findings, types.Finding{
				Severity:    types.SeverityWarning,
				Field:       "materialAdverseEffect",
				Description: "purchase agreement has no material adverse effect qualifier",
			})
		}
	case types.ModuleCapital:
		if docType == "capital_call_notice" && !strings.Contains(lower, "business days") {
			findings = append(findings, types.Finding{
				Severity:       types.SeverityCritical,
				Field:          "noticePeriod",
				Description:    "capital call notice does not state a notice period",
				Recommendation: "the fund agreement requires a stated funding deadline",
			})
		}
	case types.ModuleCompliance:
		if docType == "compliance_report" && !strings.Contains(lower, "remediation") {
			findings = append(findings, types.Finding{
				Severity:    types.SeverityWarning,
				Field:       "remediationPlan",
				Description: "compliance report does not reference remediation",
			})
		}
	}

	if project != nil && strings.TrimSpace(project.CounterpartyName) != "" {
		if !strings.Contains(lower, strings.ToLower(project.CounterpartyName)) {
			findings = append(findings, types.Finding{
				Severity:    types.SeverityWarning,
				Field:       "counterpartyName",
				Description: fmt.Sprintf("document never names the counterparty %q", project.CounterpartyName),
			})
		}
	}

	return findings
}
