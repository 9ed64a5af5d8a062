package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/draftdeck/draftdeck-backend/internal/logger"
	"github.com/draftdeck/draftdeck-backend/internal/types"
)

type GeneratedDocumentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, docs []*types.GeneratedDocument) ([]*types.GeneratedDocument, error)
	GetByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.GeneratedDocument, error)
	// GetCurrentByProjectID returns only the highest version per doc type,
	// ordered by doc type.
	GetCurrentByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.GeneratedDocument, error)
	MaxVersion(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, docType string) (int, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	// DeleteByProjectID hard-deletes every version for the project. Only the
	// full-retry cleanup path is allowed to call this; normal regeneration
	// always appends a new version.
	DeleteByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error
}

type generatedDocumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGeneratedDocumentRepo(db *gorm.DB, baseLog *logger.Logger) GeneratedDocumentRepo {
	return &generatedDocumentRepo{
		db:  db,
		log: baseLog.With("repo", "GeneratedDocumentRepo"),
	}
}

func (r *generatedDocumentRepo) Create(ctx context.Context, tx *gorm.DB, docs []*types.GeneratedDocument) ([]*types.GeneratedDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(docs) == 0 {
		return []*types.GeneratedDocument{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *generatedDocumentRepo) GetByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.GeneratedDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.GeneratedDocument
	if projectID == uuid.Nil {
		return out, nil
	}
	err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("doc_type ASC, version ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *generatedDocumentRepo) GetCurrentByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.GeneratedDocument, error) {
	all, err := r.GetByProjectID(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	current := map[string]*types.GeneratedDocument{}
	order := []string{}
	for _, doc := range all {
		if doc == nil {
			continue
		}
		prev, seen := current[doc.DocType]
		if !seen {
			order = append(order, doc.DocType)
			current[doc.DocType] = doc
			continue
		}
		if doc.Version > prev.Version {
			current[doc.DocType] = doc
		}
	}
	out := make([]*types.GeneratedDocument, 0, len(order))
	for _, dt := range order {
		out = append(out, current[dt])
	}
	return out, nil
}

func (r *generatedDocumentRepo) MaxVersion(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, docType string) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if projectID == uuid.Nil || docType == "" {
		return 0, nil
	}
	var maxVersion int
	err := transaction.WithContext(ctx).
		Model(&types.GeneratedDocument{}).
		Where("project_id = ? AND doc_type = ?", projectID, docType).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, err
	}
	return maxVersion, nil
}

func (r *generatedDocumentRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.GeneratedDocument{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *generatedDocumentRepo) DeleteByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if projectID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("project_id = ?", projectID).
		Delete(&types.GeneratedDocument{}).Error
}
