package domain

import "time"

// Document is the metadata the presence engine needs about a shared
// document: its title, owner (the broadcast key for view events), and
// page count. The document content itself lives elsewhere.
type Document struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	PageCount int       `json:"page_count"`
	CreatedAt time.Time `json:"created_at"`
}

// CollabSession is one multi-user collaborative session over a document.
// The session row is durable bookkeeping; the room state it keys is
// ephemeral and lives in the room registry.
type CollabSession struct {
	ID         int        `json:"id"`
	DocumentID string     `json:"document_id"`
	HostID     string     `json:"host_id"`
	CreatedAt  time.Time  `json:"created_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// Annotation is a positioned note left on a document page during a
// collaborative session.
type Annotation struct {
	ID         string    `json:"id"`
	SessionID  int       `json:"sessionId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	Page       int       `json:"page"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ChatMessage is one chat message within a collaborative session.
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID int       `json:"sessionId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// StartViewRequest starts tracking an anonymous view of a document.
type StartViewRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
	Email      string `json:"email"`
}

// UpdatePageRequest reports a page turn within a tracked view.
type UpdatePageRequest struct {
	Page int `json:"page" binding:"required,min=1"`
}

// CreateSessionRequest opens a collaborative session over a document.
type CreateSessionRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
}

// CreateAnnotationRequest adds an annotation to a session.
type CreateAnnotationRequest struct {
	Page    int     `json:"page" binding:"required,min=1"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Content string  `json:"content" binding:"required"`
}

// UpdateAnnotationRequest edits an annotation's content or position.
type UpdateAnnotationRequest struct {
	X       *float64 `json:"x"`
	Y       *float64 `json:"y"`
	Content *string  `json:"content"`
}

// CreateMessageRequest posts a chat message to a session.
type CreateMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}
