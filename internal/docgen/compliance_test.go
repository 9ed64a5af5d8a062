package docgen

import (
	"testing"

	"github.com/draftdeck/draftdeck-backend/internal/types"
)

func severityOf(findings []types.Finding, field string) string {
	for _, f := range findings {
		if f.Field == field {
			return f.Severity
		}
	}
	return ""
}

func TestEvaluateComplianceEmptyDocument(t *testing.T) {
	findings := EvaluateCompliance(types.ModuleLending, "loan_agreement", "   ", nil)
	if severityOf(findings, "document") != types.SeverityCritical {
		t.Fatalf("empty document must be critical: %+v", findings)
	}
}

func TestEvaluateComplianceUsury(t *testing.T) {
	project := &types.Project{InterestRate: 0.24, CounterpartyName: "Acme"}
	findings := EvaluateCompliance(types.ModuleLending, "loan_agreement", "Acme shall cure any default...", project)
	if severityOf(findings, "interestRate") != types.SeverityCritical {
		t.Fatalf("24%% rate must be flagged: %+v", findings)
	}

	project.InterestRate = 0.0725
	findings = EvaluateCompliance(types.ModuleLending, "loan_agreement", "Acme shall cure any default...", project)
	if severityOf(findings, "interestRate") != "" {
		t.Fatalf("7.25%% rate must not be flagged: %+v", findings)
	}
}

func TestEvaluateComplianceSecuritiesExemption(t *testing.T) {
	findings := EvaluateCompliance(types.ModuleSyndication, "private_placement_memorandum",
		"An offering of membership interests. Risk factors are described herein.", nil)
	if severityOf(findings, "securitiesExemption") != types.SeverityCritical {
		t.Fatalf("missing exemption language must be critical: %+v", findings)
	}

	findings = EvaluateCompliance(types.ModuleSyndication, "private_placement_memorandum",
		"Offered in reliance on Regulation D, Rule 506(b). Risk factors are described herein.", nil)
	if severityOf(findings, "securitiesExemption") != "" {
		t.Fatalf("exemption language present, should not flag: %+v", findings)
	}
}

func TestEvaluateComplianceRiskDisclosure(t *testing.T) {
	findings := EvaluateCompliance(types.ModuleSyndication, "private_placement_memorandum",
		"Offered under Regulation D.", nil)
	if severityOf(findings, "riskFactors") != types.SeverityCritical {
		t.Fatalf("missing risk disclosure must be critical: %+v", findings)
	}
}

func TestEvaluateComplianceCapitalCallNoticePeriod(t *testing.T) {
	findings := EvaluateCompliance(types.ModuleCapital, "capital_call_notice", "Please remit payment.", nil)
	if severityOf(findings, "noticePeriod") != types.SeverityCritical {
		t.Fatalf("missing notice period must be critical: %+v", findings)
	}
	findings = EvaluateCompliance(types.ModuleCapital, "capital_call_notice",
		"Payment due within 10 business days of this notice.", nil)
	if severityOf(findings, "noticePeriod") != "" {
		t.Fatalf("notice period present, should not flag: %+v", findings)
	}
}

func TestEvaluateComplianceCounterpartyWarning(t *testing.T) {
	project := &types.Project{CounterpartyName: "Acme Holdings LLC"}
	findings := EvaluateCompliance(types.ModuleMA, "letter_of_intent", "A letter about an unnamed target.", project)
	if severityOf(findings, "counterpartyName") != types.SeverityWarning {
		t.Fatalf("unnamed counterparty should warn: %+v", findings)
	}
}
