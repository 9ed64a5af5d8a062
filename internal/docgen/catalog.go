package docgen

// FailurePolicy decides what a single document's generation error does to the
// rest of the run. This is configuration, not orchestration logic: one
// orchestrator is parameterized by it.
type FailurePolicy string

const (
	// FailFast aborts the remaining documents and moves the project to ERROR.
	FailFast FailurePolicy = "fail_fast"
	// FailIsolated stores a flagged placeholder and continues with the next
	// document type.
	FailIsolated FailurePolicy = "fail_isolated"
)

// ModuleConfig is one module's pipeline configuration. Document types are
// generated strictly in catalog order.
type ModuleConfig struct {
	DocTypes []string
	Policy   FailurePolicy
}

// moduleCatalog is data, not code: adding a document type to a module is a
// change here plus a template, nothing else.
var moduleCatalog = map[string]ModuleConfig{
	"lending": {
		// A loan package missing its core agreement is unusable, so lending
		// stops at the first failed document.
		DocTypes: []string{"loan_agreement", "promissory_note", "security_agreement", "personal_guaranty", "closing_checklist"},
		Policy:   FailFast,
	},
	"ma": {
		DocTypes: []string{"letter_of_intent", "purchase_agreement", "due_diligence_report", "disclosure_schedule"},
		Policy:   FailIsolated,
	},
	"syndication": {
		DocTypes: []string{"private_placement_memorandum", "operating_agreement", "subscription_agreement", "investor_questionnaire"},
		Policy:   FailIsolated,
	},
	"capital": {
		DocTypes: []string{"term_sheet", "investor_update", "capital_call_notice"},
		Policy:   FailIsolated,
	},
	"compliance": {
		// A partial compliance report is worse than none.
		DocTypes: []string{"compliance_report", "exemption_filing_summary"},
		Policy:   FailFast,
	},
}

// deterministicDocTypes are assembled without any AI call; they get the short
// generation timeout.
var deterministicDocTypes = map[string]bool{
	"closing_checklist":      true,
	"investor_questionnaire": true,
	"capital_call_notice":    true,
}

var docTitles = map[string]string{
	"loan_agreement":               "Loan Agreement",
	"promissory_note":              "Promissory Note",
	"security_agreement":           "Security Agreement",
	"personal_guaranty":            "Personal Guaranty",
	"closing_checklist":            "Closing Checklist",
	"letter_of_intent":             "Letter of Intent",
	"purchase_agreement":           "Purchase Agreement",
	"due_diligence_report":         "Due Diligence Report",
	"disclosure_schedule":          "Disclosure Schedule",
	"private_placement_memorandum": "Private Placement Memorandum",
	"operating_agreement":          "Operating Agreement",
	"subscription_agreement":       "Subscription Agreement",
	"investor_questionnaire":       "Investor Questionnaire",
	"term_sheet":                   "Term Sheet",
	"investor_update":              "Investor Update",
	"capital_call_notice":          "Capital Call Notice",
	"compliance_report":            "Compliance Report",
	"exemption_filing_summary":     "Exemption Filing Summary",
}

// ModuleFor returns the pipeline configuration for a module, and false for an
// unknown module.
func ModuleFor(module string) (ModuleConfig, bool) {
	cfg, ok := moduleCatalog[module]
	if !ok {
		return ModuleConfig{}, false
	}
	out := ModuleConfig{Policy: cfg.Policy, DocTypes: make([]string, len(cfg.DocTypes))}
	copy(out.DocTypes, cfg.DocTypes)
	return out, true
}

func Modules() []string {
	out := make([]string, 0, len(moduleCatalog))
	for m := range moduleCatalog {
		out = append(out, m)
	}
	return out
}

// IsAIAuthored reports whether a document type needs the prose generation
// call (and therefore the long per-document timeout).
func IsAIAuthored(docType string) bool {
	return !deterministicDocTypes[docType]
}

func Title(docType string) string {
	if t, ok := docTitles[docType]; ok {
		return t
	}
	return docType
}
