package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/draftdeck/draftdeck-backend/internal/finance"
	"github.com/draftdeck/draftdeck-backend/internal/logger"
	"github.com/draftdeck/draftdeck-backend/internal/repos"
	"github.com/draftdeck/draftdeck-backend/internal/types"
)

// FinancialAnalysisService bridges the extraction feed into the pure analysis
// engine. Results are computed fresh on every request; extraction data can
// change underneath, so nothing here is cached.
type FinancialAnalysisService interface {
	AnalyzeProject(ctx context.Context, projectID uuid.UUID) (*finance.DscrAnalysis, error)
	AnalyzeLoadedProject(ctx context.Context, project *types.Project, sources []*types.SourceDocument) finance.DscrAnalysis
}

type financialAnalysisService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	sourceRepo  repos.SourceDocumentRepo
}

func NewFinancialAnalysisService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	sourceRepo repos.SourceDocumentRepo,
) FinancialAnalysisService {
	return &financialAnalysisService{
		db:          db,
		log:         baseLog.With("service", "FinancialAnalysisService"),
		projectRepo: projectRepo,
		sourceRepo:  sourceRepo,
	}
}

// extractedFinancials is the shape the extraction feed writes into
// SourceDocument.ExtractedData. Every field is optional; absent data degrades
// inside the analysis engine, never here.
type extractedFinancials struct {
	QualifyingIncome  *finance.QualifyingIncome   `json:"qualifying_income,omitempty"`
	RecurringPayments []finance.RecurringPayment  `json:"recurring_payments,omitempty"`
	Property          *finance.PropertyFinancials `json:"property_financials,omitempty"`
}

func (s *financialAnalysisService) AnalyzeProject(ctx context.Context, projectID uuid.UUID) (*finance.DscrAnalysis, error) {
	project, err := s.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s not found", projectID)
	}
	sources, err := s.sourceRepo.GetByProjectID(ctx, nil, projectID)
	if err != nil {
		return nil, fmt.Errorf("load source documents: %w", err)
	}
	out := s.AnalyzeLoadedProject(ctx, project, sources)
	return &out, nil
}

func (s *financialAnalysisService) AnalyzeLoadedProject(ctx context.Context, project *types.Project, sources []*types.SourceDocument) finance.DscrAnalysis {
	in := finance.DscrInput{
		Loan: finance.ProposedLoan{
			Principal:  project.ApprovedAmount,
			AnnualRate: project.InterestRate,
			TermMonths: project.TermMonths,
		},
	}

	for _, src := range sources {
		if src == nil || len(src.ExtractedData) == 0 {
			continue
		}
		var data extractedFinancials
		if err := json.Unmarshal(src.ExtractedData, &data); err != nil {
			s.log.Warn("skipping unparseable extracted data", "source_document_id", src.ID, "error", err)
			continue
		}
		if data.QualifyingIncome != nil {
			in.Income.AnnualTotal += data.QualifyingIncome.AnnualTotal
			in.Income.Sources = append(in.Income.Sources, data.QualifyingIncome.Sources...)
		}
		in.BankPayments = append(in.BankPayments, data.RecurringPayments...)
		if data.Property != nil && in.Property == nil {
			in.Property = data.Property
		}
	}

	return finance.AnalyzeDSCR(in)
}
