package verification

// templateHandledDocTypes are document types whose numeric terms (amount,
// rate, term, fees) are rendered by the deterministic template, not by AI
// prose. Checking prose for those figures would produce false failures, so
// the numeric checks are treated as automatically passed.
var templateHandledDocTypes = map[string]bool{
	"promissory_note":        true,
	"security_agreement":     true,
	"subscription_agreement": true,
	"term_sheet":             true,
	"capital_call_notice":    true,
	"closing_checklist":      true,
	"investor_questionnaire": true,
}

// requiredProseKeys lists, per document type, the prose sections the legal
// template injects verbatim. A missing or empty required section is always a
// critical finding: it would otherwise reach the template silently.
var requiredProseKeys = map[string][]string{
	"loan_agreement":               {"recitals", "representationsWarranties", "affirmativeCovenants", "eventsOfDefault"},
	"promissory_note":              {"defaultProvisions", "prepaymentTerms"},
	"security_agreement":           {"collateralDescription", "perfectionLanguage"},
	"personal_guaranty":            {"guarantyScope", "waivers"},
	"letter_of_intent":             {"transactionSummary", "exclusivity"},
	"purchase_agreement":           {"recitals", "representationsWarranties", "indemnification", "closingConditions"},
	"due_diligence_report":         {"executiveSummary", "findings", "riskAssessment"},
	"disclosure_schedule":          {"exceptions"},
	"private_placement_memorandum": {"executiveSummary", "riskFactors", "useOfProceeds", "managementTeam"},
	"operating_agreement":          {"managementStructure", "distributions", "transferRestrictions"},
	"subscription_agreement":       {"investorRepresentations", "suitability"},
	"term_sheet":                   {"summaryOfTerms"},
	"investor_update":              {"performanceSummary", "marketOutlook"},
	"compliance_report":            {"executiveSummary", "findings", "remediationPlan"},
	"exemption_filing_summary":     {"filingSummary"},
}

func IsTemplateHandled(docType string) bool {
	return templateHandledDocTypes[docType]
}

// RequiredProseKeys returns the prose sections a document type needs. The
// document generator uses the same list to shape the AI request, so the
// checker and the prompt can never drift apart.
func RequiredProseKeys(docType string) []string {
	keys := requiredProseKeys[docType]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}
