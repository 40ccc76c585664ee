package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ArinjayBhola/DocuSend-sub001/pkg/log"
	"github.com/ArinjayBhola/DocuSend-sub001/pkg/middleware"
	"github.com/ArinjayBhola/DocuSend-sub001/pkg/response"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/hub"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/repository"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/service"
)

func sessionID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.BadRequest(c, "invalid session id")
		return 0, false
	}
	return id, true
}

// CreateSession opens a collaborative session over a document.
func (h *Handler) CreateSession(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	var req domain.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, err := h.sessions.CreateSession(ctx, userID, req.DocumentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDocumentNotFound):
			response.NotFound(c, "document not found")
		case errors.Is(err, service.ErrNotSessionHost):
			response.Forbidden(c, "only the document owner can host a session")
		default:
			l.Error().Err(err).Msg("failed to create session")
			response.InternalError(c, "failed to create session")
		}
		return
	}

	h.hub.Broadcast(hub.SessionKey(session.ID), domain.RoomSessionEvent{
		Type:      domain.EventSessionStarted,
		SessionID: session.ID,
	}, "")

	response.Created(c, session)
}

// GetSession retrieves a session row plus its live room snapshot.
func (h *Handler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := sessionID(c)
	if !ok {
		return
	}

	session, err := h.sessions.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.NotFound(c, "session not found")
			return
		}
		response.InternalError(c, "failed to get session")
		return
	}

	response.Success(c, gin.H{
		"session": session,
		"room":    h.collabReg.Snapshot(id),
	})
}

// EndSession terminates a session: every participant stream is closed
// and the room deleted, overriding normal reference counting.
func (h *Handler) EndSession(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	id, ok := sessionID(c)
	if !ok {
		return
	}
	userID := middleware.GetUserID(c)

	if err := h.sessions.EndSession(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.NotFound(c, "session not found")
		case errors.Is(err, service.ErrNotSessionHost):
			response.Forbidden(c, "only the host can end the session")
		case errors.Is(err, service.ErrSessionEnded):
			response.BadRequest(c, "session has already ended")
		default:
			l.Error().Err(err).Int(log.FieldSessionID, id).Msg("failed to end session")
			response.InternalError(c, "failed to end session")
		}
		return
	}

	// Tell subscribers before their streams are closed.
	h.hub.Broadcast(hub.SessionKey(id), domain.RoomSessionEvent{
		Type:      domain.EventSessionEnded,
		SessionID: id,
	}, "")
	h.collabReg.EndRoom(id)

	response.Success(c, gin.H{"session_id": id, "ended": true})
}

// ListAnnotations returns a session's persisted annotations for
// late-join catch-up.
func (h *Handler) ListAnnotations(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := sessionID(c)
	if !ok {
		return
	}

	annotations, err := h.annotations.ListBySession(ctx, id)
	if err != nil {
		response.InternalError(c, "failed to list annotations")
		return
	}
	response.Success(c, gin.H{"annotations": annotations})
}

// CreateAnnotation persists an annotation and broadcasts it to the
// room, excluding the author.
func (h *Handler) CreateAnnotation(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	id, ok := sessionID(c)
	if !ok {
		return
	}
	userID := middleware.GetUserID(c)

	if _, err := h.sessions.GetSession(ctx, id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.NotFound(c, "session not found")
			return
		}
		response.InternalError(c, "failed to get session")
		return
	}

	var req domain.CreateAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	annotation := &domain.Annotation{
		SessionID: id,
		UserID:    userID,
		UserName:  middleware.GetUsername(c),
		Page:      req.Page,
		X:         req.X,
		Y:         req.Y,
		Content:   req.Content,
	}
	if err := h.annotations.Create(ctx, annotation); err != nil {
		l.Error().Err(err).Int(log.FieldSessionID, id).Msg("failed to create annotation")
		response.InternalError(c, "failed to create annotation")
		return
	}

	h.hub.Broadcast(hub.SessionKey(id), domain.AnnotationEvent{
		Type:       domain.EventAnnotationCreated,
		Annotation: annotation,
	}, userID)

	response.Created(c, annotation)
}

// UpdateAnnotation edits the caller's annotation and broadcasts the
// update, excluding the author.
func (h *Handler) UpdateAnnotation(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := sessionID(c)
	if !ok {
		return
	}
	userID := middleware.GetUserID(c)

	annotation, err := h.annotations.GetByID(ctx, c.Param("annotationId"))
	if err != nil {
		if errors.Is(err, repository.ErrAnnotationNotFound) {
			response.NotFound(c, "annotation not found")
			return
		}
		response.InternalError(c, "failed to get annotation")
		return
	}
	if annotation.UserID != userID {
		response.Forbidden(c, "not the annotation author")
		return
	}

	var req domain.UpdateAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.X != nil {
		annotation.X = *req.X
	}
	if req.Y != nil {
		annotation.Y = *req.Y
	}
	if req.Content != nil {
		annotation.Content = *req.Content
	}

	if err := h.annotations.Update(ctx, annotation); err != nil {
		response.InternalError(c, "failed to update annotation")
		return
	}

	h.hub.Broadcast(hub.SessionKey(id), domain.AnnotationEvent{
		Type:       domain.EventAnnotationUpdated,
		Annotation: annotation,
	}, userID)

	response.Success(c, annotation)
}

// DeleteAnnotation removes the caller's annotation and broadcasts the
// deletion, excluding the author.
func (h *Handler) DeleteAnnotation(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := sessionID(c)
	if !ok {
		return
	}
	userID := middleware.GetUserID(c)
	annotationID := c.Param("annotationId")

	annotation, err := h.annotations.GetByID(ctx, annotationID)
	if err != nil {
		if errors.Is(err, repository.ErrAnnotationNotFound) {
			response.NotFound(c, "annotation not found")
			return
		}
		response.InternalError(c, "failed to get annotation")
		return
	}
	if annotation.UserID != userID {
		response.Forbidden(c, "not the annotation author")
		return
	}

	if err := h.annotations.Delete(ctx, annotationID); err != nil {
		response.InternalError(c, "failed to delete annotation")
		return
	}

	h.hub.Broadcast(hub.SessionKey(id), domain.AnnotationEvent{
		Type:         domain.EventAnnotationDeleted,
		AnnotationID: annotationID,
	}, userID)

	response.NoContent(c)
}

// ListMessages returns a session's chat history.
func (h *Handler) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := sessionID(c)
	if !ok {
		return
	}

	messages, err := h.messages.ListBySession(ctx, id)
	if err != nil {
		response.InternalError(c, "failed to list messages")
		return
	}
	response.Success(c, gin.H{"messages": messages})
}

// CreateMessage persists a chat message and broadcasts it to the whole
// room; the sender receives their own message back as confirmation.
func (h *Handler) CreateMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	id, ok := sessionID(c)
	if !ok {
		return
	}
	userID := middleware.GetUserID(c)

	if _, err := h.sessions.GetSession(ctx, id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.NotFound(c, "session not found")
			return
		}
		response.InternalError(c, "failed to get session")
		return
	}

	var req domain.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg := &domain.ChatMessage{
		SessionID: id,
		UserID:    userID,
		UserName:  middleware.GetUsername(c),
		Content:   req.Content,
	}
	if err := h.messages.Create(ctx, msg); err != nil {
		l.Error().Err(err).Int(log.FieldSessionID, id).Msg("failed to create message")
		response.InternalError(c, "failed to create message")
		return
	}

	h.hub.Broadcast(hub.SessionKey(id), domain.MessageCreatedEvent{
		Type:    domain.EventMessageCreated,
		Message: *msg,
	}, "")

	response.Created(c, msg)
}
