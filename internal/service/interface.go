package service

import (
	"context"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
)

// DocumentService resolves document metadata for the presence engine.
type DocumentService interface {
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
}

// SessionService manages collaborative session bookkeeping. Room state
// itself lives in the collab registry; this service owns the durable
// session rows and the ownership checks around them.
type SessionService interface {
	CreateSession(ctx context.Context, hostID, documentID string) (*domain.CollabSession, error)
	GetSession(ctx context.Context, id int) (*domain.CollabSession, error)
	EndSession(ctx context.Context, id int, requesterID string) error
}
