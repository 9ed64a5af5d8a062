package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/draftdeck/draftdeck-backend/internal/docgen"
	"github.com/draftdeck/draftdeck-backend/internal/finance"
	"github.com/draftdeck/draftdeck-backend/internal/logger"
	"github.com/draftdeck/draftdeck-backend/internal/repos"
	"github.com/draftdeck/draftdeck-backend/internal/types"
	"github.com/draftdeck/draftdeck-backend/internal/verification"
)

// GeneratedArtifact is the dispatcher's result for one document: the
// assembled bytes plus every deterministic finding attached to them.
type GeneratedArtifact struct {
	Buffer             []byte
	ResolvedDocType    string
	ComplianceChecks   []types.Finding
	VerificationStatus string
	VerificationIssues []types.Finding
}

// DocumentGenerationService is the per-document-type dispatcher: template
// selection, AI prose, assembly, compliance rules and the verification pass.
// AI and rendering errors propagate to the orchestrator, which applies the
// module's failure policy.
type DocumentGenerationService interface {
	Generate(ctx context.Context, project *types.Project, docType string) (*GeneratedArtifact, error)
}

type documentGenerationService struct {
	log        *logger.Logger
	prose      ProseGenerator
	rateCache  RateCacheService
	analysis   FinancialAnalysisService
	sourceRepo repos.SourceDocumentRepo
}

func NewDocumentGenerationService(
	baseLog *logger.Logger,
	prose ProseGenerator,
	rateCache RateCacheService,
	analysis FinancialAnalysisService,
	sourceRepo repos.SourceDocumentRepo,
) DocumentGenerationService {
	return &documentGenerationService{
		log:        baseLog.With("service", "DocumentGenerationService"),
		prose:      prose,
		rateCache:  rateCache,
		analysis:   analysis,
		sourceRepo: sourceRepo,
	}
}

func (s *documentGenerationService) Generate(ctx context.Context, project *types.Project, docType string) (*GeneratedArtifact, error) {
	if project == nil {
		return nil, fmt.Errorf("project is required")
	}

	fees := decodeFees(project.Fees)
	covenants := decodeCovenants(project.Covenants)

	input := docgen.RenderInput{
		ProjectName:      project.Name,
		Module:           project.Module,
		CounterpartyName: project.CounterpartyName,
		ApprovedAmount:   project.ApprovedAmount,
		InterestRate:     project.InterestRate,
		TermMonths:       project.TermMonths,
		MonthlyPayment:   finance.CalculateMonthlyPayment(project.ApprovedAmount, project.InterestRate, project.TermMonths),
		Fees:             fees,
		Covenants:        covenants,
		GeneratedAt:      time.Now(),
	}

	// Reference rates give reviewers market context on the pricing pages.
	if docType == "term_sheet" || docType == "loan_agreement" || docType == "investor_update" {
		if rates, err := s.rateCache.GetRates(ctx); err == nil {
			input.ReferenceRates = rates
		} else {
			s.log.Warn("reference rates unavailable, omitting from document", "doc_type", docType, "error", err)
		}
	}

	artifact := &GeneratedArtifact{ResolvedDocType: docType}

	if docgen.IsAIAuthored(docType) {
		prose, err := s.prose.GenerateProse(ctx, docType, project, "")
		if err != nil {
			return nil, fmt.Errorf("prose generation for %s: %w", docType, err)
		}

		verifyInput := verification.DocumentInput{
			CounterpartyName: project.CounterpartyName,
			ApprovedAmount:   project.ApprovedAmount,
			InterestRate:     project.InterestRate,
			TermMonths:       project.TermMonths,
			Fees:             fees,
			Covenants:        covenants,
		}
		result := verification.VerifyDocument(docType, verifyInput, prose)
		artifact.VerificationIssues = result.Issues
		if result.Passed {
			artifact.VerificationStatus = types.VerificationPassed
		} else {
			artifact.VerificationStatus = types.VerificationFailed
		}

		input.Sections = docgen.SectionsFromProse(verification.RequiredProseKeys(docType), prose)
	} else {
		input.ChecklistItems = docgen.ChecklistItems(docType, project.Module, project.CounterpartyName)
		artifact.VerificationStatus = types.VerificationPassed
		artifact.VerificationIssues = []types.Finding{}
	}

	buffer, err := docgen.Render(docType, input)
	if err != nil {
		return nil, err
	}
	artifact.Buffer = buffer

	artifact.ComplianceChecks = docgen.EvaluateCompliance(project.Module, docType, string(buffer), project)

	// Affordability feeds decisioning on lending agreements: an insufficient
	// coverage ratio is surfaced as a compliance finding on the package.
	if project.Module == types.ModuleLending && docType == "loan_agreement" && s.analysis != nil {
		sources, srcErr := s.sourceRepo.GetByProjectID(ctx, nil, project.ID)
		if srcErr != nil {
			s.log.Warn("could not load source documents for affordability check", "error", srcErr)
		} else {
			dscr := s.analysis.AnalyzeLoadedProject(ctx, project, sources)
			if dscr.Rating == finance.RatingInsufficient {
				artifact.ComplianceChecks = append(artifact.ComplianceChecks, types.Finding{
					Severity:       types.SeverityCritical,
					Field:          "debtServiceCoverage",
					Description:    "computed debt service coverage is below 1.0x",
					Recommendation: "re-underwrite the loan or obtain additional qualifying income documentation",
				})
			}
		}
	}

	return artifact, nil
}

func decodeFees(raw []byte) []types.FeeItem {
	if len(raw) == 0 {
		return nil
	}
	var fees []types.FeeItem
	if err := json.Unmarshal(raw, &fees); err != nil {
		return nil
	}
	return fees
}

func decodeCovenants(raw []byte) []types.Covenant {
	if len(raw) == 0 {
		return nil
	}
	var covenants []types.Covenant
	if err := json.Unmarshal(raw, &covenants); err != nil {
		return nil
	}
	return covenants
}
