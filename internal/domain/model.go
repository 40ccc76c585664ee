package domain

import (
	"time"

	"gorm.io/gorm"
)

// DocumentModel is the GORM model for the documents table.
type DocumentModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	OwnerID   string `gorm:"type:varchar(36);index;not null"`
	Title     string `gorm:"type:varchar(200);not null"`
	PageCount int    `gorm:"default:0"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for DocumentModel.
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts DocumentModel to domain Document.
func (m *DocumentModel) ToDomain() *Document {
	return &Document{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Title:     m.Title,
		PageCount: m.PageCount,
		CreatedAt: m.CreatedAt,
	}
}

// CollabSessionModel is the GORM model for the collab_sessions table.
type CollabSessionModel struct {
	ID         int    `gorm:"primaryKey;autoIncrement"`
	DocumentID string `gorm:"type:varchar(36);index;not null"`
	HostID     string `gorm:"type:varchar(36);index;not null"`
	CreatedAt  time.Time
	EndedAt    *time.Time
}

// TableName specifies the table name for CollabSessionModel.
func (CollabSessionModel) TableName() string {
	return "collab_sessions"
}

// ToDomain converts CollabSessionModel to domain CollabSession.
func (m *CollabSessionModel) ToDomain() *CollabSession {
	return &CollabSession{
		ID:         m.ID,
		DocumentID: m.DocumentID,
		HostID:     m.HostID,
		CreatedAt:  m.CreatedAt,
		EndedAt:    m.EndedAt,
	}
}

// AnnotationModel is the GORM model for the annotations table.
type AnnotationModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	SessionID int    `gorm:"index;not null"`
	UserID    string `gorm:"type:varchar(36);index;not null"`
	UserName  string `gorm:"type:varchar(50);not null"`
	Page      int    `gorm:"not null"`
	X         float64
	Y         float64
	Content   string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for AnnotationModel.
func (AnnotationModel) TableName() string {
	return "annotations"
}

// ToDomain converts AnnotationModel to domain Annotation.
func (m *AnnotationModel) ToDomain() *Annotation {
	return &Annotation{
		ID:        m.ID,
		SessionID: m.SessionID,
		UserID:    m.UserID,
		UserName:  m.UserName,
		Page:      m.Page,
		X:         m.X,
		Y:         m.Y,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// AnnotationToModel converts domain Annotation to AnnotationModel.
func AnnotationToModel(a *Annotation) *AnnotationModel {
	return &AnnotationModel{
		ID:        a.ID,
		SessionID: a.SessionID,
		UserID:    a.UserID,
		UserName:  a.UserName,
		Page:      a.Page,
		X:         a.X,
		Y:         a.Y,
		Content:   a.Content,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// ChatMessageModel is the GORM model for the chat_messages table.
type ChatMessageModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	SessionID int    `gorm:"index;not null"`
	UserID    string `gorm:"type:varchar(36);index;not null"`
	UserName  string `gorm:"type:varchar(50);not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// TableName specifies the table name for ChatMessageModel.
func (ChatMessageModel) TableName() string {
	return "chat_messages"
}

// ToDomain converts ChatMessageModel to domain ChatMessage.
func (m *ChatMessageModel) ToDomain() *ChatMessage {
	return &ChatMessage{
		ID:        m.ID,
		SessionID: m.SessionID,
		UserID:    m.UserID,
		UserName:  m.UserName,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// ChatMessageToModel converts domain ChatMessage to ChatMessageModel.
func ChatMessageToModel(msg *ChatMessage) *ChatMessageModel {
	return &ChatMessageModel{
		ID:        msg.ID,
		SessionID: msg.SessionID,
		UserID:    msg.UserID,
		UserName:  msg.UserName,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}
