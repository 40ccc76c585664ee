package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ArinjayBhola/DocuSend-sub001/pkg/log"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
)

// GormAnnotationRepository implements AnnotationRepository using GORM.
type GormAnnotationRepository struct {
	db *gorm.DB
}

// NewGormAnnotationRepository creates a new GORM-based annotation repository.
func NewGormAnnotationRepository(db *gorm.DB) *GormAnnotationRepository {
	return &GormAnnotationRepository{db: db}
}

// Create persists a new annotation and fills in its id and timestamps.
func (r *GormAnnotationRepository) Create(ctx context.Context, a *domain.Annotation) error {
	l := log.Ctx(ctx)

	a.ID = uuid.New().String()
	model := domain.AnnotationToModel(a)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to create annotation in db")
		return result.Error
	}

	a.CreatedAt = model.CreatedAt
	a.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves an annotation by ID.
func (r *GormAnnotationRepository) GetByID(ctx context.Context, id string) (*domain.Annotation, error) {
	var model domain.AnnotationModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAnnotationNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// Update saves an annotation's mutable fields.
func (r *GormAnnotationRepository) Update(ctx context.Context, a *domain.Annotation) error {
	result := r.db.WithContext(ctx).
		Model(&domain.AnnotationModel{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"x":       a.X,
			"y":       a.Y,
			"content": a.Content,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAnnotationNotFound
	}
	return nil
}

// Delete removes an annotation.
func (r *GormAnnotationRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.AnnotationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAnnotationNotFound
	}
	return nil
}

// ListBySession returns all annotations in a session, oldest first.
func (r *GormAnnotationRepository) ListBySession(ctx context.Context, sessionID int) ([]domain.Annotation, error) {
	var models []domain.AnnotationModel
	result := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	annotations := make([]domain.Annotation, 0, len(models))
	for i := range models {
		annotations = append(annotations, *models[i].ToDomain())
	}
	return annotations, nil
}
