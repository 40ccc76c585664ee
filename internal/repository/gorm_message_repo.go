package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ArinjayBhola/DocuSend-sub001/pkg/log"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create persists a new chat message and fills in its id and timestamp.
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	l := log.Ctx(ctx)

	msg.ID = uuid.New().String()
	model := domain.ChatMessageToModel(msg)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to create chat message in db")
		return result.Error
	}

	msg.CreatedAt = model.CreatedAt
	return nil
}

// ListBySession returns all chat messages in a session, oldest first.
func (r *GormMessageRepository) ListBySession(ctx context.Context, sessionID int) ([]domain.ChatMessage, error) {
	var models []domain.ChatMessageModel
	result := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	messages := make([]domain.ChatMessage, 0, len(models))
	for i := range models {
		messages = append(messages, *models[i].ToDomain())
	}
	return messages, nil
}
