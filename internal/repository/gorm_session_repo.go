package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ArinjayBhola/DocuSend-sub001/pkg/log"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
)

// GormSessionRepository implements SessionRepository using GORM.
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GORM-based session repository.
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// Create persists a new collaborative session and fills in its id.
func (r *GormSessionRepository) Create(ctx context.Context, session *domain.CollabSession) error {
	l := log.Ctx(ctx)

	model := &domain.CollabSessionModel{
		DocumentID: session.DocumentID,
		HostID:     session.HostID,
	}
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to create session in db")
		return result.Error
	}

	session.ID = model.ID
	session.CreatedAt = model.CreatedAt
	l.Debug().Int(log.FieldSessionID, session.ID).Msg("session created in db")
	return nil
}

// GetByID retrieves a collaborative session by ID.
func (r *GormSessionRepository) GetByID(ctx context.Context, id int) (*domain.CollabSession, error) {
	l := log.Ctx(ctx)

	var model domain.CollabSessionModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		l.Error().Err(result.Error).Int(log.FieldSessionID, id).Msg("failed to get session by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// MarkEnded records the session's end time.
func (r *GormSessionRepository) MarkEnded(ctx context.Context, id int) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&domain.CollabSessionModel{}).
		Where("id = ? AND ended_at IS NULL", id).
		Update("ended_at", &now)
	if result.Error != nil {
		return result.Error
	}
	return nil
}
