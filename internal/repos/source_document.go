package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/draftdeck/draftdeck-backend/internal/logger"
	"github.com/draftdeck/draftdeck-backend/internal/types"
)

type SourceDocumentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, docs []*types.SourceDocument) ([]*types.SourceDocument, error)
	GetByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.SourceDocument, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	// ResetExtraction returns every source document for the project to its
	// pre-processing state. Used by the full-retry path.
	ResetExtraction(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error
}

type sourceDocumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceDocumentRepo(db *gorm.DB, baseLog *logger.Logger) SourceDocumentRepo {
	return &sourceDocumentRepo{
		db:  db,
		log: baseLog.With("repo", "SourceDocumentRepo"),
	}
}

func (r *sourceDocumentRepo) Create(ctx context.Context, tx *gorm.DB, docs []*types.SourceDocument) ([]*types.SourceDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(docs) == 0 {
		return []*types.SourceDocument{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *sourceDocumentRepo) GetByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.SourceDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SourceDocument
	if projectID == uuid.Nil {
		return out, nil
	}
	err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sourceDocumentRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.SourceDocument{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *sourceDocumentRepo) ResetExtraction(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if projectID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.SourceDocument{}).
		Where("project_id = ?", projectID).
		Updates(map[string]interface{}{
			"extraction_status": types.ExtractionPending,
			"extracted_data":    nil,
			"updated_at":        time.Now(),
		}).Error
}
