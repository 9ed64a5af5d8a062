package verification

import (
	"strings"
	"testing"

	"github.com/draftdeck/draftdeck-backend/internal/pkg/pointers"
	"github.com/draftdeck/draftdeck-backend/internal/types"
)

func loanInput() DocumentInput {
	return DocumentInput{
		CounterpartyName: "Acme Holdings LLC",
		ApprovedAmount:   500000,
		InterestRate:     0.0725,
		TermMonths:       360,
	}
}

func fullLoanProse() Prose {
	return Prose{
		"recitals":                  "This Loan Agreement is made between the Lender and Acme Holdings LLC for a principal amount of $500,000.00 at a rate of 7.25% over 360 months.",
		"representationsWarranties": "The Borrower represents and warrants...",
		"affirmativeCovenants":      []string{"Maintain a minimum DSCR of 1.25x.", "Deliver annual statements."},
		"eventsOfDefault":           "Failure to pay when due...",
	}
}

func findIssue(issues []types.Finding, field string) *types.Finding {
	for i := range issues {
		if issues[i].Field == field {
			return &issues[i]
		}
	}
	return nil
}

func TestVerifyDocumentAllPresent(t *testing.T) {
	res := VerifyDocument("loan_agreement", loanInput(), fullLoanProse())
	if !res.Passed {
		t.Fatalf("expected pass, got issues: %+v", res.Issues)
	}
	if res.ChecksRun == 0 || res.ChecksPassed != res.ChecksRun {
		t.Fatalf("expected all checks passed, got %d/%d", res.ChecksPassed, res.ChecksRun)
	}
}

func TestVerifyDocumentMissingAmountIsCritical(t *testing.T) {
	prose := fullLoanProse()
	prose["recitals"] = "This Loan Agreement is made with Acme Holdings LLC at a rate of 7.25% over 360 months."
	res := VerifyDocument("loan_agreement", loanInput(), prose)
	if res.Passed {
		t.Fatal("expected failure when approved amount is absent")
	}
	issue := findIssue(res.Issues, "approvedAmount")
	if issue == nil || issue.Severity != types.SeverityCritical {
		t.Fatalf("expected critical approvedAmount issue, got %+v", res.Issues)
	}
	// Rate and term checks are independent of the amount check.
	if findIssue(res.Issues, "interestRate") != nil || findIssue(res.Issues, "termMonths") != nil {
		t.Fatalf("rate/term should still pass: %+v", res.Issues)
	}
}

func TestVerifyDocumentAmountPassesWithoutRateAndTerm(t *testing.T) {
	prose := Prose{
		"recitals":                  "Principal amount: $500,000.00. Borrower: Acme Holdings LLC.",
		"representationsWarranties": "x",
		"affirmativeCovenants":      "x",
		"eventsOfDefault":           "x",
	}
	res := VerifyDocument("loan_agreement", loanInput(), prose)
	if findIssue(res.Issues, "approvedAmount") != nil {
		t.Fatalf("amount check should pass: %+v", res.Issues)
	}
	if findIssue(res.Issues, "interestRate") == nil {
		t.Fatal("expected missing-rate issue")
	}
	termIssue := findIssue(res.Issues, "termMonths")
	if termIssue == nil || termIssue.Severity != types.SeverityWarning {
		t.Fatalf("term mismatch should be a warning, got %+v", termIssue)
	}
}

func TestVerifyDocumentAmountFormats(t *testing.T) {
	for _, rendering := range []string{"$500,000", "$500,000.00", "500000"} {
		prose := Prose{
			"recitals":                  "Amount: " + rendering + " for Acme Holdings LLC, 7.25% over 360 months.",
			"representationsWarranties": "x",
			"affirmativeCovenants":      "x",
			"eventsOfDefault":           "x",
		}
		res := VerifyDocument("loan_agreement", loanInput(), prose)
		if findIssue(res.Issues, "approvedAmount") != nil {
			t.Fatalf("rendering %q should satisfy the amount check", rendering)
		}
	}
}

func TestVerifyDocumentTermYearsRendering(t *testing.T) {
	input := loanInput()
	input.TermMonths = 36
	prose := Prose{
		"recitals":                  "A $500,000.00 facility at 7.25% repayable over 3 years, for Acme Holdings LLC.",
		"representationsWarranties": "x",
		"affirmativeCovenants":      "x",
		"eventsOfDefault":           "x",
	}
	res := VerifyDocument("loan_agreement", input, prose)
	if findIssue(res.Issues, "termMonths") != nil {
		t.Fatalf("'3 years' should satisfy a 36-month term: %+v", res.Issues)
	}
}

func TestVerifyDocumentCounterpartyCaseInsensitive(t *testing.T) {
	prose := fullLoanProse()
	prose["recitals"] = "This Loan Agreement is made between the Lender and ACME HOLDINGS LLC for $500,000.00 at 7.25% over 360 months."
	res := VerifyDocument("loan_agreement", loanInput(), prose)
	if findIssue(res.Issues, "counterpartyName") != nil {
		t.Fatalf("counterparty match should be case-insensitive: %+v", res.Issues)
	}
}

func TestVerifyDocumentFeeAndCovenantChecks(t *testing.T) {
	input := loanInput()
	input.Fees = []types.FeeItem{{Name: "origination", Amount: 5000}, {Name: "appraisal", Amount: 750}}
	input.Covenants = []types.Covenant{{Name: "minimum DSCR", Threshold: pointers.Float64(1.25)}}
	prose := fullLoanProse()
	prose["recitals"] = "A $500,000.00 loan at 7.25% over 360 months to Acme Holdings LLC with a $5,000 origination fee."
	res := VerifyDocument("loan_agreement", input, prose)
	if findIssue(res.Issues, "fee:origination") != nil {
		t.Fatalf("origination fee should pass: %+v", res.Issues)
	}
	appraisal := findIssue(res.Issues, "fee:appraisal")
	if appraisal == nil || appraisal.Severity != types.SeverityWarning {
		t.Fatalf("missing appraisal fee should warn, got %+v", appraisal)
	}
	if findIssue(res.Issues, "covenant:minimum DSCR") != nil {
		t.Fatalf("covenant threshold 1.25x appears in covenants prose: %+v", res.Issues)
	}
	// Warnings alone never fail the document.
	if !res.Passed {
		t.Fatalf("warnings must not fail verification: %+v", res.Issues)
	}
}

func TestVerifyDocumentTemplateHandledSkipsNumericChecks(t *testing.T) {
	// promissory_note is template-handled: numeric checks are skipped but
	// still counted, while a missing required section stays critical.
	input := DocumentInput{
		CounterpartyName: "Acme Holdings LLC",
		ApprovedAmount:   500000,
		InterestRate:     0.0725,
		TermMonths:       360,
	}
	prose := Prose{
		"prepaymentTerms": "The Borrower may prepay at any time. Acme Holdings LLC.",
	}
	res := VerifyDocument("promissory_note", input, prose)
	if res.Passed {
		t.Fatal("expected failure for missing required section")
	}
	issue := findIssue(res.Issues, "prose:defaultProvisions")
	if issue == nil || issue.Severity != types.SeverityCritical {
		t.Fatalf("expected critical prose:defaultProvisions issue, got %+v", res.Issues)
	}
	// amount + rate + term checks are counted as run and passed even though
	// the prose never states them.
	// run: amount, rate, term, counterparty, 2 required keys = 6
	if res.ChecksRun != 6 {
		t.Fatalf("checksRun = %d, want 6", res.ChecksRun)
	}
	if res.ChecksPassed != 5 {
		t.Fatalf("checksPassed = %d, want 5", res.ChecksPassed)
	}
}

func TestVerifyDocumentEmptyRequiredSection(t *testing.T) {
	prose := fullLoanProse()
	prose["eventsOfDefault"] = "   "
	res := VerifyDocument("loan_agreement", loanInput(), prose)
	if res.Passed {
		t.Fatal("whitespace-only required section must fail")
	}
	if findIssue(res.Issues, "prose:eventsOfDefault") == nil {
		t.Fatalf("expected prose:eventsOfDefault issue, got %+v", res.Issues)
	}
}

func TestVerifyDocumentUnknownDocTypeHasNoRequiredKeys(t *testing.T) {
	res := VerifyDocument("unknown_doc", DocumentInput{CounterpartyName: "Acme"}, Prose{"body": "Acme"})
	if !res.Passed {
		t.Fatalf("unknown type with matching counterparty should pass: %+v", res.Issues)
	}
}

func TestFlattenHandlesStringArrays(t *testing.T) {
	p := Prose{"a": []string{"one", "two"}, "b": "three", "c": []any{"four", 5}}
	flat := p.Flatten()
	for _, want := range []string{"one", "two", "three", "four"} {
		if !strings.Contains(flat, want) {
			t.Fatalf("flattened prose missing %q: %q", want, flat)
		}
	}
}
