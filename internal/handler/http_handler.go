package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ArinjayBhola/DocuSend-sub001/pkg/log"
	"github.com/ArinjayBhola/DocuSend-sub001/pkg/middleware"
	"github.com/ArinjayBhola/DocuSend-sub001/pkg/response"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/collab"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/hub"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/presence"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/repository"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/service"
)

// Handler handles HTTP requests for the presence engine.
type Handler struct {
	presenceReg    *presence.Registry
	collabReg      *collab.Registry
	hub            *hub.Hub
	documents      service.DocumentService
	sessions       service.SessionService
	annotations    repository.AnnotationRepository
	messages       repository.MessageRepository
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	presenceReg *presence.Registry,
	collabReg *collab.Registry,
	h *hub.Hub,
	documents service.DocumentService,
	sessions service.SessionService,
	annotations repository.AnnotationRepository,
	messages repository.MessageRepository,
	authMiddleware *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		presenceReg:    presenceReg,
		collabReg:      collabReg,
		hub:            h,
		documents:      documents,
		sessions:       sessions,
		annotations:    annotations,
		messages:       messages,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all REST routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		views := api.Group("/views")
		{
			// Public routes: viewers are anonymous
			views.POST("", h.StartView)
			views.POST("/:id/page", h.UpdateViewPage)
			views.DELETE("/:id", h.EndView)
		}

		documents := api.Group("/documents")
		{
			documents.GET("/:id/viewers", h.authMiddleware.RequireAuth(), h.ListViewers)
		}

		sessions := api.Group("/sessions", h.authMiddleware.RequireAuth())
		{
			sessions.POST("", h.CreateSession)
			sessions.GET("/:id", h.GetSession)
			sessions.POST("/:id/end", h.EndSession)

			sessions.GET("/:id/annotations", h.ListAnnotations)
			sessions.POST("/:id/annotations", h.CreateAnnotation)
			sessions.PUT("/:id/annotations/:annotationId", h.UpdateAnnotation)
			sessions.DELETE("/:id/annotations/:annotationId", h.DeleteAnnotation)

			sessions.GET("/:id/messages", h.ListMessages)
			sessions.POST("/:id/messages", h.CreateMessage)
		}
	}
}

// StartView begins tracking an anonymous view of a shared document.
func (h *Handler) StartView(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.StartViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documents.GetDocument(ctx, req.DocumentID)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			response.NotFound(c, "document not found")
			return
		}
		l.Error().Err(err).Str(log.FieldDocumentID, req.DocumentID).Msg("failed to resolve document")
		response.InternalError(c, "failed to resolve document")
		return
	}

	viewID := uuid.New().String()
	h.presenceReg.StartView(presence.StartParams{
		ViewID:        viewID,
		DocumentID:    doc.ID,
		DocumentTitle: doc.Title,
		OwnerID:       doc.OwnerID,
		ViewerEmail:   req.Email,
		ViewerIP:      c.ClientIP(),
		TotalPages:    doc.PageCount,
	})

	response.Created(c, gin.H{"view_id": viewID})
}

// UpdateViewPage reports a page turn. Unknown view ids are a silent
// no-op: the view may have expired between page turns.
func (h *Handler) UpdateViewPage(c *gin.Context) {
	var req domain.UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.presenceReg.UpdatePage(c.Param("id"), req.Page)
	response.Success(c, gin.H{"view_id": c.Param("id"), "page": req.Page})
}

// EndView stops tracking a view.
func (h *Handler) EndView(c *gin.Context) {
	h.presenceReg.EndView(c.Param("id"))
	response.NoContent(c)
}

// ListViewers returns everyone currently viewing the caller's document.
func (h *Handler) ListViewers(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	doc, err := h.documents.GetDocument(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			response.NotFound(c, "document not found")
			return
		}
		l.Error().Err(err).Str(log.FieldDocumentID, c.Param("id")).Msg("failed to resolve document")
		response.InternalError(c, "failed to resolve document")
		return
	}
	if doc.OwnerID != userID {
		response.Forbidden(c, "not the document owner")
		return
	}

	// The registry tracks views per owner; filter down to the one
	// document requested.
	all := h.presenceReg.ListActive(doc.OwnerID)
	viewers := make([]domain.ActiveView, 0, len(all))
	for _, v := range all {
		if v.DocumentID == doc.ID {
			viewers = append(viewers, v)
		}
	}

	response.Success(c, gin.H{
		"viewers": viewers,
		"count":   len(viewers),
	})
}
