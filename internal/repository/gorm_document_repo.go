package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ArinjayBhola/DocuSend-sub001/pkg/log"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
)

// GormDocumentRepository implements DocumentRepository using GORM.
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GORM-based document repository.
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// GetByID retrieves a document's metadata by ID.
func (r *GormDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	l := log.Ctx(ctx)

	var model domain.DocumentModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldDocumentID, id).Msg("failed to get document by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}
