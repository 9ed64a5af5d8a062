package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/draftdeck/draftdeck-backend/internal/docgen"
	"github.com/draftdeck/draftdeck-backend/internal/logger"
	apperrors "github.com/draftdeck/draftdeck-backend/internal/pkg/errors"
	"github.com/draftdeck/draftdeck-backend/internal/repos"
	"github.com/draftdeck/draftdeck-backend/internal/types"
	"github.com/draftdeck/draftdeck-backend/internal/utils"
)

const (
	aiDocTimeout            = 180 * time.Second
	deterministicDocTimeout = 30 * time.Second
	maxErrorMessageLen      = 500
)

// TriggerResult reports what a trigger call did. Duplicate triggers and
// status-guard losses are no-ops, not errors: Accepted is false and Reason
// says why.
type TriggerResult struct {
	Accepted bool      `json:"accepted"`
	Reason   string    `json:"reason,omitempty"`
	RunID    uuid.UUID `json:"run_id,omitempty"`
}

// PipelineStatus is the read model for status polling.
type PipelineStatus struct {
	ProjectID    uuid.UUID            `json:"project_id"`
	Status       string               `json:"status"`
	ErrorMessage string               `json:"error_message,omitempty"`
	ErrorStep    string               `json:"error_step,omitempty"`
	Runs         []*types.PipelineRun `json:"runs,omitempty"`
}

// PipelineService owns the generation run lifecycle: accepting triggers
// exactly once per (project, triggeredAt), walking the module's document list
// under per-document timeouts, applying the module failure policy, and
// finalizing the project status from the compliance results.
type PipelineService interface {
	// Trigger records the trigger and queues a run. A duplicate
	// (projectID, triggeredAt) pair is acknowledged without queueing.
	Trigger(ctx context.Context, projectID uuid.UUID, triggeredAt time.Time) (*TriggerResult, error)
	// Retry moves an errored project back into generation, discarding every
	// generated artifact and resetting source extraction first. Returns
	// ErrConflict when the project is not in the error status.
	Retry(ctx context.Context, projectID uuid.UUID) (*TriggerResult, error)
	GetStatus(ctx context.Context, projectID uuid.UUID) (*PipelineStatus, error)
	// GetDocuments returns the current (highest) version of each document
	// type plus the retained version history.
	GetDocuments(ctx context.Context, projectID uuid.UUID) (current, history []*types.GeneratedDocument, err error)
	// ProcessNext claims and executes at most one queued run. Returns false
	// when nothing was claimable. Worker loops and tests drive this.
	ProcessNext(ctx context.Context) (bool, error)
	StartWorker(ctx context.Context)
}

type pipelineService struct {
	db        *gorm.DB
	log       *logger.Logger
	projects  repos.ProjectRepo
	sources   repos.SourceDocumentRepo
	generated repos.GeneratedDocumentRepo
	runs      repos.PipelineRunRepo
	generator DocumentGenerationService
	bucket    BucketService
	notifier  PipelineNotifier

	workerCount  int
	pollInterval time.Duration
}

func NewPipelineService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projects repos.ProjectRepo,
	sources repos.SourceDocumentRepo,
	generated repos.GeneratedDocumentRepo,
	runs repos.PipelineRunRepo,
	generator DocumentGenerationService,
	bucket BucketService,
	notifier PipelineNotifier,
) PipelineService {
	log := baseLog.With("service", "PipelineService")
	return &pipelineService{
		db:           db,
		log:          log,
		projects:     projects,
		sources:      sources,
		generated:    generated,
		runs:         runs,
		generator:    generator,
		bucket:       bucket,
		notifier:     notifier,
		workerCount:  utils.GetEnvAsInt("PIPELINE_WORKER_COUNT", 4, log),
		pollInterval: time.Duration(utils.GetEnvAsInt("PIPELINE_POLL_INTERVAL_MS", 1000, log)) * time.Millisecond,
	}
}

func (s *pipelineService) Trigger(ctx context.Context, projectID uuid.UUID, triggeredAt time.Time) (*TriggerResult, error) {
	project, err := s.projects.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, apperrors.ErrNotFound)
	}
	if err := validateProjectInputs(project); err != nil {
		return nil, err
	}

	run := &types.PipelineRun{
		ID:          uuid.New(),
		ProjectID:   projectID,
		TriggeredAt: triggeredAt.UTC().Truncate(time.Millisecond),
		Status:      types.RunStatusQueued,
	}
	inserted, err := s.runs.InsertIfAbsent(ctx, nil, run)
	if err != nil {
		return nil, err
	}
	if !inserted {
		s.log.Info("duplicate trigger ignored", "project_id", projectID, "triggered_at", run.TriggeredAt)
		return &TriggerResult{Accepted: false, Reason: "duplicate trigger"}, nil
	}
	return &TriggerResult{Accepted: true, RunID: run.ID}, nil
}

func (s *pipelineService) Retry(ctx context.Context, projectID uuid.UUID) (*TriggerResult, error) {
	project, err := s.projects.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, apperrors.ErrNotFound)
	}

	// The transition out of ERROR is the retry's mutual exclusion: of two
	// concurrent retries only one update matches the row.
	rows, err := s.projects.UpdateStatusIf(ctx, nil, projectID, types.ProjectStatusError, types.ProjectStatusCreated, map[string]interface{}{
		"error_message": "",
		"error_step":    "",
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("project %s is not in an error state: %w", projectID, apperrors.ErrConflict)
	}

	if err := s.cleanupForRetry(ctx, projectID); err != nil {
		return nil, err
	}
	return s.Trigger(ctx, projectID, time.Now())
}

// cleanupForRetry discards everything a previous run produced so the fresh
// run starts from the sources: generated document rows, their stored
// artifacts and the extraction results.
func (s *pipelineService) cleanupForRetry(ctx context.Context, projectID uuid.UUID) error {
	docs, err := s.generated.GetByProjectID(ctx, nil, projectID)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if doc.StorageKey == "" {
			continue
		}
		if err := s.bucket.DeleteArtifact(ctx, doc.StorageKey); err != nil {
			s.log.Warn("artifact delete failed during retry cleanup", "storage_key", doc.StorageKey, "error", err)
		}
	}
	if err := s.generated.DeleteByProjectID(ctx, nil, projectID); err != nil {
		return err
	}
	return s.sources.ResetExtraction(ctx, nil, projectID)
}

func (s *pipelineService) GetStatus(ctx context.Context, projectID uuid.UUID) (*PipelineStatus, error) {
	project, err := s.projects.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, apperrors.ErrNotFound)
	}
	runs, err := s.runs.GetByProjectID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	return &PipelineStatus{
		ProjectID:    project.ID,
		Status:       project.Status,
		ErrorMessage: project.ErrorMessage,
		ErrorStep:    project.ErrorStep,
		Runs:         runs,
	}, nil
}

func (s *pipelineService) GetDocuments(ctx context.Context, projectID uuid.UUID) ([]*types.GeneratedDocument, []*types.GeneratedDocument, error) {
	current, err := s.generated.GetCurrentByProjectID(ctx, nil, projectID)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.generated.GetByProjectID(ctx, nil, projectID)
	if err != nil {
		return nil, nil, err
	}
	return current, history, nil
}

func (s *pipelineService) StartWorker(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workerCount; i++ {
		g.Go(func() error {
			ticker := time.NewTicker(s.pollInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if _, err := s.ProcessNext(gctx); err != nil {
						s.log.Warn("pipeline run processing failed", "error", err)
					}
				}
			}
		})
	}
	go func() {
		_ = g.Wait()
	}()
}

func (s *pipelineService) ProcessNext(ctx context.Context) (bool, error) {
	run, err := s.runs.ClaimNextQueued(ctx, nil)
	if err != nil {
		return false, err
	}
	if run == nil {
		return false, nil
	}
	s.execute(ctx, run)
	return true, nil
}

// execute drives one claimed run end to end. Errors are absorbed into the
// project and run records; nothing propagates to the worker loop.
func (s *pipelineService) execute(ctx context.Context, run *types.PipelineRun) {
	ctx, span := otel.Tracer("pipeline").Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("project.id", run.ProjectID.String()),
		attribute.String("run.id", run.ID.String()),
	))
	defer span.End()

	log := s.log.With("project_id", run.ProjectID, "run_id", run.ID)

	project, err := s.projects.GetByID(ctx, nil, run.ProjectID)
	if err != nil || project == nil {
		if err == nil {
			err = apperrors.ErrNotFound
		}
		log.Error("run aborted, project unavailable", "error", err)
		s.markRun(ctx, run.ID, types.RunStatusFailed, err.Error())
		return
	}

	// Entering generation is conditional on the pre-generation status so a
	// stale or concurrent trigger cannot restart a project mid-flight.
	rows, err := s.projects.UpdateStatusIf(ctx, nil, project.ID, types.ProjectStatusCreated, types.ProjectStatusGeneratingDocs, nil)
	if err != nil {
		log.Error("status transition failed", "error", err)
		s.markRun(ctx, run.ID, types.RunStatusFailed, err.Error())
		return
	}
	if rows == 0 {
		log.Info("trigger skipped, project not awaiting generation", "status", project.Status)
		s.markRun(ctx, run.ID, types.RunStatusSkipped, "project not in "+types.ProjectStatusCreated)
		return
	}
	project.Status = types.ProjectStatusGeneratingDocs
	span.SetAttributes(attribute.String("project.module", project.Module))

	config, ok := docgen.ModuleFor(project.Module)
	if !ok {
		s.failProject(ctx, project.ID, run.ID, "module_dispatch", fmt.Errorf("unknown module %q", project.Module))
		return
	}

	for _, docType := range config.DocTypes {
		if err := s.generateOne(ctx, project, docType); err != nil {
			log.Warn("document generation failed", "doc_type", docType, "policy", string(config.Policy), "error", err)
			s.notifier.Publish(project.ID, PipelineEventDocFailed, map[string]any{
				"doc_type": docType,
				"error":    truncateError(err.Error()),
			})
			if config.Policy == docgen.FailFast {
				s.failProject(ctx, project.ID, run.ID, docType, err)
				return
			}
			if phErr := s.storePlaceholder(ctx, project, docType, err); phErr != nil {
				// Losing the placeholder write means the run can no longer
				// represent the failure, so isolation gives way.
				s.failProject(ctx, project.ID, run.ID, docType, phErr)
				return
			}
			continue
		}
		s.notifier.Publish(project.ID, PipelineEventDocGenerated, map[string]any{"doc_type": docType})
	}

	rows, err = s.projects.UpdateStatusIf(ctx, nil, project.ID, types.ProjectStatusGeneratingDocs, types.ProjectStatusComplianceReview, nil)
	if err != nil {
		s.failProject(ctx, project.ID, run.ID, "compliance_review", err)
		return
	}
	if rows == 0 {
		// An external writer moved the project out of generation mid-run.
		// Finalizing now would silently strand it, so the run steps aside.
		log.Info("run abandoned, project left generation externally")
		s.markRun(ctx, run.ID, types.RunStatusSkipped, "project not in "+types.ProjectStatusGeneratingDocs)
		return
	}

	final, err := s.finalize(ctx, project.ID)
	if err != nil {
		s.failProject(ctx, project.ID, run.ID, "finalize", err)
		return
	}

	s.markRun(ctx, run.ID, types.RunStatusCompleted, "")
	s.notifier.Publish(project.ID, PipelineEventCompleted, map[string]any{"status": final})
	log.Info("pipeline run completed", "final_status", final)
}

// generateOne produces, versions and persists a single document under its
// class timeout. The stored version is always max+1 for the (project,
// doc_type) pair; a concurrent writer racing the same slot loses the unique
// index and the insert is retried once at the next version.
func (s *pipelineService) generateOne(ctx context.Context, project *types.Project, docType string) (err error) {
	ctx, span := otel.Tracer("pipeline").Start(ctx, "pipeline.generate_document", trace.WithAttributes(
		attribute.String("doc.type", docType),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "generation failed")
		}
		span.End()
	}()

	timeout := deterministicDocTimeout
	if docgen.IsAIAuthored(docType) {
		timeout = aiDocTimeout
	}
	docCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	artifact, err := s.generator.Generate(docCtx, project, docType)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < 2; attempt++ {
		maxVersion, err := s.generated.MaxVersion(docCtx, nil, project.ID, docType)
		if err != nil {
			return err
		}
		version := maxVersion + 1
		key := ArtifactKey(project.ID, docType, version)
		if err := s.bucket.UploadArtifact(docCtx, key, artifact.Buffer, "text/markdown"); err != nil {
			return fmt.Errorf("artifact upload for %s v%d: %w", docType, version, err)
		}

		doc := buildDocumentRow(project.ID, docType, version, key, artifact)
		if _, err := s.generated.Create(docCtx, nil, []*types.GeneratedDocument{doc}); err != nil {
			if isUniqueViolation(err) && attempt == 0 {
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("version slot for %s contended twice", docType)
}

// storePlaceholder records a fail-isolated document failure as a flagged
// placeholder version so the package stays complete and reviewable.
func (s *pipelineService) storePlaceholder(ctx context.Context, project *types.Project, docType string, cause error) error {
	maxVersion, err := s.generated.MaxVersion(ctx, nil, project.ID, docType)
	if err != nil {
		return err
	}
	version := maxVersion + 1
	key := ArtifactKey(project.ID, docType, version)
	buffer := docgen.RenderPlaceholder(docType, project.Name, truncateError(cause.Error()), time.Now())
	if err := s.bucket.UploadArtifact(ctx, key, buffer, "text/markdown"); err != nil {
		return err
	}

	finding := types.Finding{
		Severity:       types.SeverityCritical,
		Field:          "generation",
		Description:    truncateError(cause.Error()),
		Recommendation: "regenerate the document or draft it manually",
	}
	doc := &types.GeneratedDocument{
		ID:                 uuid.New(),
		ProjectID:          project.ID,
		DocType:            docType,
		Version:            version,
		StorageKey:         key,
		Status:             types.DocStatusFailed,
		ComplianceStatus:   types.ComplianceFlagged,
		ComplianceIssues:   marshalFindings([]types.Finding{finding}),
		VerificationStatus: types.VerificationFailed,
		VerificationIssues: marshalFindings([]types.Finding{finding}),
	}
	_, err = s.generated.Create(ctx, nil, []*types.GeneratedDocument{doc})
	return err
}

// finalize reads back the current documents and lands the terminal status:
// any flagged document sends the project to review, otherwise it completes.
func (s *pipelineService) finalize(ctx context.Context, projectID uuid.UUID) (string, error) {
	docs, err := s.generated.GetCurrentByProjectID(ctx, nil, projectID)
	if err != nil {
		return "", err
	}
	final := types.ProjectStatusComplete
	for _, doc := range docs {
		if doc.ComplianceStatus == types.ComplianceFlagged || doc.VerificationStatus == types.VerificationFailed {
			final = types.ProjectStatusNeedsReview
			break
		}
	}
	_, err = s.projects.UpdateStatusIf(ctx, nil, projectID, types.ProjectStatusComplianceReview, final, map[string]interface{}{
		"error_message": "",
		"error_step":    "",
	})
	if err != nil {
		return "", err
	}
	return final, nil
}

func (s *pipelineService) failProject(ctx context.Context, projectID, runID uuid.UUID, step string, cause error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(cause)
	span.SetStatus(codes.Error, step)

	msg := truncateError(cause.Error())
	if err := s.projects.UpdateFields(ctx, nil, projectID, map[string]interface{}{
		"status":        types.ProjectStatusError,
		"error_message": msg,
		"error_step":    step,
	}); err != nil {
		s.log.Error("could not record project failure", "project_id", projectID, "error", err)
	}
	s.markRun(ctx, runID, types.RunStatusFailed, msg)
	s.notifier.Publish(projectID, PipelineEventFailed, map[string]any{
		"step":  step,
		"error": msg,
	})
}

func (s *pipelineService) markRun(ctx context.Context, runID uuid.UUID, status, errMsg string) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":       status,
		"completed_at": &now,
	}
	if errMsg != "" {
		updates["error"] = truncateError(errMsg)
	}
	if err := s.runs.UpdateFields(ctx, nil, runID, updates); err != nil {
		s.log.Warn("could not update pipeline run", "run_id", runID, "error", err)
	}
}

func buildDocumentRow(projectID uuid.UUID, docType string, version int, key string, artifact *GeneratedArtifact) *types.GeneratedDocument {
	complianceStatus := types.CompliancePassed
	status := types.DocStatusDraft
	if types.HasCritical(artifact.ComplianceChecks) {
		complianceStatus = types.ComplianceFlagged
		status = types.DocStatusFlagged
	}
	if artifact.VerificationStatus == types.VerificationFailed {
		status = types.DocStatusFlagged
	}
	return &types.GeneratedDocument{
		ID:                 uuid.New(),
		ProjectID:          projectID,
		DocType:            docType,
		Version:            version,
		StorageKey:         key,
		Status:             status,
		ComplianceStatus:   complianceStatus,
		ComplianceIssues:   marshalFindings(artifact.ComplianceChecks),
		VerificationStatus: artifact.VerificationStatus,
		VerificationIssues: marshalFindings(artifact.VerificationIssues),
	}
}

func validateProjectInputs(project *types.Project) error {
	if _, ok := docgen.ModuleFor(project.Module); !ok {
		return fmt.Errorf("unknown module %q: %w", project.Module, apperrors.ErrInvalidArgument)
	}
	if strings.TrimSpace(project.CounterpartyName) == "" {
		return fmt.Errorf("counterparty name is required: %w", apperrors.ErrInvalidArgument)
	}
	if project.Module == types.ModuleLending {
		if project.ApprovedAmount <= 0 {
			return fmt.Errorf("approved amount must be positive: %w", apperrors.ErrInvalidArgument)
		}
		if project.TermMonths <= 0 {
			return fmt.Errorf("term months must be positive: %w", apperrors.ErrInvalidArgument)
		}
	}
	return nil
}

func truncateError(msg string) string {
	if len(msg) <= maxErrorMessageLen {
		return msg
	}
	return msg[:maxErrorMessageLen]
}

func marshalFindings(findings []types.Finding) datatypes.JSON {
	if findings == nil {
		findings = []types.Finding{}
	}
	raw, err := json.Marshal(findings)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
