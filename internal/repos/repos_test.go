package repos

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/draftdeck/draftdeck-backend/internal/logger"
	"github.com/draftdeck/draftdeck-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.Project{}, &types.SourceDocument{}, &types.GeneratedDocument{}, &types.PipelineRun{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func seedProject(t *testing.T, repo ProjectRepo, status string) *types.Project {
	t.Helper()
	project := &types.Project{
		ID:               uuid.New(),
		OrgID:            uuid.New(),
		Name:             "Test Facility",
		Module:           types.ModuleLending,
		Status:           status,
		CounterpartyName: "Test Counterparty LLC",
		ApprovedAmount:   250000,
		InterestRate:     0.065,
		TermMonths:       120,
	}
	if _, err := repo.Create(context.Background(), nil, []*types.Project{project}); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}

func TestUpdateStatusIfOnlyMatchesFromStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepo(db, testLogger(t))
	project := seedProject(t, repo, types.ProjectStatusCreated)

	rows, err := repo.UpdateStatusIf(context.Background(), nil, project.ID, types.ProjectStatusCreated, types.ProjectStatusGeneratingDocs, nil)
	if err != nil {
		t.Fatalf("first transition: %v", err)
	}
	if rows != 1 {
		t.Fatalf("first transition rows = %d, want 1", rows)
	}

	// The same transition again finds no matching row.
	rows, err = repo.UpdateStatusIf(context.Background(), nil, project.ID, types.ProjectStatusCreated, types.ProjectStatusGeneratingDocs, nil)
	if err != nil {
		t.Fatalf("second transition: %v", err)
	}
	if rows != 0 {
		t.Fatalf("second transition rows = %d, want 0", rows)
	}

	got, err := repo.GetByID(context.Background(), nil, project.ID)
	if err != nil || got == nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != types.ProjectStatusGeneratingDocs {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestUpdateStatusIfAppliesExtraFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepo(db, testLogger(t))
	project := seedProject(t, repo, types.ProjectStatusError)

	rows, err := repo.UpdateStatusIf(context.Background(), nil, project.ID, types.ProjectStatusError, types.ProjectStatusCreated, map[string]interface{}{
		"error_message": "",
		"error_step":    "",
	})
	if err != nil || rows != 1 {
		t.Fatalf("transition: rows=%d err=%v", rows, err)
	}
	got, _ := repo.GetByID(context.Background(), nil, project.ID)
	if got.ErrorMessage != "" || got.ErrorStep != "" {
		t.Fatalf("extra fields not applied: %+v", got)
	}
}

func TestInsertIfAbsentDetectsDuplicateTrigger(t *testing.T) {
	db := newTestDB(t)
	log := testLogger(t)
	projects := NewProjectRepo(db, log)
	runs := NewPipelineRunRepo(db, log)
	project := seedProject(t, projects, types.ProjectStatusCreated)

	at := time.Now().UTC().Truncate(time.Millisecond)
	first := &types.PipelineRun{ID: uuid.New(), ProjectID: project.ID, TriggeredAt: at, Status: types.RunStatusQueued}
	inserted, err := runs.InsertIfAbsent(context.Background(), nil, first)
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}

	dup := &types.PipelineRun{ID: uuid.New(), ProjectID: project.ID, TriggeredAt: at, Status: types.RunStatusQueued}
	inserted, err = runs.InsertIfAbsent(context.Background(), nil, dup)
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if inserted {
		t.Fatalf("duplicate (project_id, triggered_at) was inserted")
	}

	// A different timestamp for the same project is a distinct trigger.
	next := &types.PipelineRun{ID: uuid.New(), ProjectID: project.ID, TriggeredAt: at.Add(time.Second), Status: types.RunStatusQueued}
	inserted, err = runs.InsertIfAbsent(context.Background(), nil, next)
	if err != nil || !inserted {
		t.Fatalf("distinct trigger: inserted=%v err=%v", inserted, err)
	}
}

func TestClaimNextQueuedTakesOldestOnce(t *testing.T) {
	db := newTestDB(t)
	log := testLogger(t)
	projects := NewProjectRepo(db, log)
	runs := NewPipelineRunRepo(db, log)
	project := seedProject(t, projects, types.ProjectStatusCreated)

	older := &types.PipelineRun{ID: uuid.New(), ProjectID: project.ID, TriggeredAt: time.Now().Add(-time.Minute), Status: types.RunStatusQueued}
	newer := &types.PipelineRun{ID: uuid.New(), ProjectID: project.ID, TriggeredAt: time.Now(), Status: types.RunStatusQueued}
	for _, run := range []*types.PipelineRun{newer, older} {
		if _, err := runs.InsertIfAbsent(context.Background(), nil, run); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	claimed, err := runs.ClaimNextQueued(context.Background(), nil)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed == nil || claimed.ID != older.ID {
		t.Fatalf("claimed %+v, want oldest run %s", claimed, older.ID)
	}
	if claimed.Status != types.RunStatusStarted {
		t.Fatalf("claimed status = %s", claimed.Status)
	}

	second, err := runs.ClaimNextQueued(context.Background(), nil)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if second == nil || second.ID != newer.ID {
		t.Fatalf("second claim = %+v, want %s", second, newer.ID)
	}

	third, err := runs.ClaimNextQueued(context.Background(), nil)
	if err != nil {
		t.Fatalf("third claim: %v", err)
	}
	if third != nil {
		t.Fatalf("third claim should be empty, got %+v", third)
	}
}

func TestMaxVersionAndCurrentDocuments(t *testing.T) {
	db := newTestDB(t)
	log := testLogger(t)
	projects := NewProjectRepo(db, log)
	docs := NewGeneratedDocumentRepo(db, log)
	project := seedProject(t, projects, types.ProjectStatusCreated)

	maxVersion, err := docs.MaxVersion(context.Background(), nil, project.ID, "loan_agreement")
	if err != nil {
		t.Fatalf("max on empty: %v", err)
	}
	if maxVersion != 0 {
		t.Fatalf("max on empty = %d, want 0", maxVersion)
	}

	for version := 1; version <= 3; version++ {
		doc := &types.GeneratedDocument{
			ID:               uuid.New(),
			ProjectID:        project.ID,
			DocType:          "loan_agreement",
			Version:          version,
			StorageKey:       fmt.Sprintf("projects/%s/generated/loan_agreement/v%d.md", project.ID, version),
			Status:           types.DocStatusDraft,
			ComplianceStatus: types.CompliancePassed,
		}
		if _, err := docs.Create(context.Background(), nil, []*types.GeneratedDocument{doc}); err != nil {
			t.Fatalf("create v%d: %v", version, err)
		}
	}

	maxVersion, err = docs.MaxVersion(context.Background(), nil, project.ID, "loan_agreement")
	if err != nil || maxVersion != 3 {
		t.Fatalf("max = %d err=%v, want 3", maxVersion, err)
	}

	current, err := docs.GetCurrentByProjectID(context.Background(), nil, project.ID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(current) != 1 || current[0].Version != 3 {
		t.Fatalf("current = %+v, want single v3", current)
	}
}

func TestCreateRejectsDuplicateVersion(t *testing.T) {
	db := newTestDB(t)
	log := testLogger(t)
	projects := NewProjectRepo(db, log)
	docs := NewGeneratedDocumentRepo(db, log)
	project := seedProject(t, projects, types.ProjectStatusCreated)

	doc := func() *types.GeneratedDocument {
		return &types.GeneratedDocument{
			ID:               uuid.New(),
			ProjectID:        project.ID,
			DocType:          "term_sheet",
			Version:          1,
			StorageKey:       "projects/x/generated/term_sheet/v1.md",
			Status:           types.DocStatusDraft,
			ComplianceStatus: types.CompliancePassed,
		}
	}
	if _, err := docs.Create(context.Background(), nil, []*types.GeneratedDocument{doc()}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := docs.Create(context.Background(), nil, []*types.GeneratedDocument{doc()}); err == nil {
		t.Fatalf("duplicate (project, doc_type, version) insert succeeded")
	}
}

func TestResetExtractionClearsData(t *testing.T) {
	db := newTestDB(t)
	log := testLogger(t)
	projects := NewProjectRepo(db, log)
	sources := NewSourceDocumentRepo(db, log)
	project := seedProject(t, projects, types.ProjectStatusCreated)

	src := &types.SourceDocument{
		ID:               uuid.New(),
		ProjectID:        project.ID,
		OriginalName:     "tax_return_2025.pdf",
		StorageKey:       "sources/tax_return_2025.pdf",
		ExtractionStatus: types.ExtractionExtracted,
		ExtractedData:    []byte(`{"qualifying_income":{"annual_total":90000}}`),
	}
	if _, err := sources.Create(context.Background(), nil, []*types.SourceDocument{src}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := sources.ResetExtraction(context.Background(), nil, project.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, err := sources.GetByProjectID(context.Background(), nil, project.ID)
	if err != nil || len(got) != 1 {
		t.Fatalf("reload: %v (%d)", err, len(got))
	}
	if got[0].ExtractionStatus != types.ExtractionPending {
		t.Fatalf("status = %s, want pending", got[0].ExtractionStatus)
	}
	if len(got[0].ExtractedData) != 0 {
		t.Fatalf("extracted data survived reset: %s", got[0].ExtractedData)
	}
}
