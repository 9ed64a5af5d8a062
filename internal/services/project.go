package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/draftdeck/draftdeck-backend/internal/docgen"
	"github.com/draftdeck/draftdeck-backend/internal/logger"
	apperrors "github.com/draftdeck/draftdeck-backend/internal/pkg/errors"
	"github.com/draftdeck/draftdeck-backend/internal/repos"
	"github.com/draftdeck/draftdeck-backend/internal/types"
)

// CreateProjectInput carries everything a new project needs before its first
// pipeline trigger. InterestRate is an annual fraction (0.0725 for 7.25%).
type CreateProjectInput struct {
	OrgID            uuid.UUID        `json:"org_id"`
	Name             string           `json:"name"`
	Module           string           `json:"module"`
	CounterpartyName string           `json:"counterparty_name"`
	ApprovedAmount   float64          `json:"approved_amount"`
	InterestRate     float64          `json:"interest_rate"`
	TermMonths       int              `json:"term_months"`
	Fees             []types.FeeItem  `json:"fees,omitempty"`
	Covenants        []types.Covenant `json:"covenants,omitempty"`
	SourceDocuments  []SourceDocInput `json:"source_documents,omitempty"`
}

// SourceDocInput registers an already-uploaded input file with the project.
type SourceDocInput struct {
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	StorageKey   string `json:"storage_key"`
}

type ProjectService interface {
	Create(ctx context.Context, input CreateProjectInput) (*types.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Project, error)
	GetSourceDocuments(ctx context.Context, projectID uuid.UUID) ([]*types.SourceDocument, error)
}

type projectService struct {
	log      *logger.Logger
	projects repos.ProjectRepo
	sources  repos.SourceDocumentRepo
}

func NewProjectService(baseLog *logger.Logger, projects repos.ProjectRepo, sources repos.SourceDocumentRepo) ProjectService {
	return &projectService{
		log:      baseLog.With("service", "ProjectService"),
		projects: projects,
		sources:  sources,
	}
}

func (s *projectService) Create(ctx context.Context, input CreateProjectInput) (*types.Project, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	project := &types.Project{
		ID:               uuid.New(),
		OrgID:            input.OrgID,
		Name:             strings.TrimSpace(input.Name),
		Module:           input.Module,
		Status:           types.ProjectStatusCreated,
		CounterpartyName: strings.TrimSpace(input.CounterpartyName),
		ApprovedAmount:   input.ApprovedAmount,
		InterestRate:     input.InterestRate,
		TermMonths:       input.TermMonths,
	}
	if len(input.Fees) > 0 {
		raw, err := json.Marshal(input.Fees)
		if err != nil {
			return nil, fmt.Errorf("encode fees: %w", err)
		}
		project.Fees = datatypes.JSON(raw)
	}
	if len(input.Covenants) > 0 {
		raw, err := json.Marshal(input.Covenants)
		if err != nil {
			return nil, fmt.Errorf("encode covenants: %w", err)
		}
		project.Covenants = datatypes.JSON(raw)
	}

	created, err := s.projects.Create(ctx, nil, []*types.Project{project})
	if err != nil {
		return nil, err
	}

	if len(input.SourceDocuments) > 0 {
		docs := make([]*types.SourceDocument, 0, len(input.SourceDocuments))
		for _, sd := range input.SourceDocuments {
			docs = append(docs, &types.SourceDocument{
				ID:               uuid.New(),
				ProjectID:        project.ID,
				OriginalName:     sd.OriginalName,
				MimeType:         sd.MimeType,
				StorageKey:       sd.StorageKey,
				ExtractionStatus: types.ExtractionPending,
			})
		}
		if _, err := s.sources.Create(ctx, nil, docs); err != nil {
			return nil, err
		}
	}

	s.log.Info("project created", "project_id", project.ID, "module", project.Module)
	return created[0], nil
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*types.Project, error) {
	project, err := s.projects.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", id, apperrors.ErrNotFound)
	}
	return project, nil
}

func (s *projectService) GetSourceDocuments(ctx context.Context, projectID uuid.UUID) ([]*types.SourceDocument, error) {
	return s.sources.GetByProjectID(ctx, nil, projectID)
}

func validateCreateInput(input CreateProjectInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("name is required: %w", apperrors.ErrInvalidArgument)
	}
	if _, ok := docgen.ModuleFor(input.Module); !ok {
		return fmt.Errorf("unknown module %q: %w", input.Module, apperrors.ErrInvalidArgument)
	}
	if strings.TrimSpace(input.CounterpartyName) == "" {
		return fmt.Errorf("counterparty name is required: %w", apperrors.ErrInvalidArgument)
	}
	if input.ApprovedAmount < 0 || input.InterestRate < 0 || input.TermMonths < 0 {
		return fmt.Errorf("financial terms must not be negative: %w", apperrors.ErrInvalidArgument)
	}
	if input.Module == types.ModuleLending {
		if input.ApprovedAmount == 0 || input.TermMonths == 0 {
			return fmt.Errorf("lending projects require an approved amount and term: %w", apperrors.ErrInvalidArgument)
		}
	}
	return nil
}
