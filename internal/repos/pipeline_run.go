package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/draftdeck/draftdeck-backend/internal/logger"
	"github.com/draftdeck/draftdeck-backend/internal/types"
)

type PipelineRunRepo interface {
	// InsertIfAbsent inserts the run unless one already exists for the same
	// (project_id, triggered_at). Returns false when the insert was a no-op,
	// which is how duplicate triggers are detected.
	InsertIfAbsent(ctx context.Context, tx *gorm.DB, run *types.PipelineRun) (bool, error)
	// ClaimNextQueued moves the oldest queued run to started and returns it.
	// Returns nil when no run is claimable or another worker won the claim.
	ClaimNextQueued(ctx context.Context, tx *gorm.DB) (*types.PipelineRun, error)
	GetByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.PipelineRun, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	DeleteByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error
}

type pipelineRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPipelineRunRepo(db *gorm.DB, baseLog *logger.Logger) PipelineRunRepo {
	return &pipelineRunRepo{
		db:  db,
		log: baseLog.With("repo", "PipelineRunRepo"),
	}
}

func (r *pipelineRunRepo) InsertIfAbsent(ctx context.Context, tx *gorm.DB, run *types.PipelineRun) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if run == nil {
		return false, nil
	}
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "triggered_at"}},
			DoNothing: true,
		}).
		Create(run)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *pipelineRunRepo) ClaimNextQueued(ctx context.Context, tx *gorm.DB) (*types.PipelineRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var run types.PipelineRun
	err := transaction.WithContext(ctx).
		Where("status = ?", types.RunStatusQueued).
		Order("triggered_at ASC").
		First(&run).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	res := transaction.WithContext(ctx).
		Model(&types.PipelineRun{}).
		Where("id = ? AND status = ?", run.ID, types.RunStatusQueued).
		Updates(map[string]interface{}{
			"status":     types.RunStatusStarted,
			"started_at": time.Now(),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	run.Status = types.RunStatusStarted
	return &run, nil
}

func (r *pipelineRunRepo) GetByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.PipelineRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.PipelineRun
	if projectID == uuid.Nil {
		return out, nil
	}
	err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("triggered_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pipelineRunRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.PipelineRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *pipelineRunRepo) DeleteByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if projectID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&types.PipelineRun{}).Error
}
