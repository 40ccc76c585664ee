package repository

import (
	"context"
	"errors"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
)

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrAnnotationNotFound = errors.New("annotation not found")
)

// DocumentRepository resolves document metadata: title, owner, pages.
type DocumentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// SessionRepository persists collaborative session bookkeeping.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.CollabSession) error
	GetByID(ctx context.Context, id int) (*domain.CollabSession, error)
	MarkEnded(ctx context.Context, id int) error
}

// AnnotationRepository persists session annotations.
type AnnotationRepository interface {
	Create(ctx context.Context, a *domain.Annotation) error
	GetByID(ctx context.Context, id string) (*domain.Annotation, error)
	Update(ctx context.Context, a *domain.Annotation) error
	Delete(ctx context.Context, id string) error
	ListBySession(ctx context.Context, sessionID int) ([]domain.Annotation, error)
}

// MessageRepository persists session chat messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	ListBySession(ctx context.Context, sessionID int) ([]domain.ChatMessage, error)
}
