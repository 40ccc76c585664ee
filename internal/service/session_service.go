package service

import (
	"context"
	"errors"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/repository"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotSessionHost  = errors.New("you are not the host of this session")
	ErrSessionEnded    = errors.New("session has already ended")
)

// sessionServiceImpl implements SessionService.
type sessionServiceImpl struct {
	sessions  repository.SessionRepository
	documents DocumentService
}

// NewSessionService creates a new session service.
func NewSessionService(sessions repository.SessionRepository, documents DocumentService) SessionService {
	return &sessionServiceImpl{
		sessions:  sessions,
		documents: documents,
	}
}

// CreateSession opens a collaborative session over a document. Only the
// document owner may host a session.
func (s *sessionServiceImpl) CreateSession(ctx context.Context, hostID, documentID string) (*domain.CollabSession, error) {
	doc, err := s.documents.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != hostID {
		return nil, ErrNotSessionHost
	}

	session := &domain.CollabSession{
		DocumentID: documentID,
		HostID:     hostID,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession retrieves a collaborative session by id.
func (s *sessionServiceImpl) GetSession(ctx context.Context, id int) (*domain.CollabSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// EndSession marks a session ended. Only the host may end it.
func (s *sessionServiceImpl) EndSession(ctx context.Context, id int, requesterID string) error {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if session.HostID != requesterID {
		return ErrNotSessionHost
	}
	if session.EndedAt != nil {
		return ErrSessionEnded
	}
	return s.sessions.MarkEnded(ctx, id)
}
