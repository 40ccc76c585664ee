package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ArinjayBhola/DocuSend-sub001/pkg/log"
	"github.com/ArinjayBhola/DocuSend-sub001/pkg/middleware"
	"github.com/ArinjayBhola/DocuSend-sub001/pkg/response"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/collab"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/config"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/hub"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/service"
)

// WSHandler upgrades long-lived subscriber connections and bridges them
// into the hub and the room registry.
type WSHandler struct {
	hub            *hub.Hub
	collabReg      *collab.Registry
	sessions       service.SessionService
	authMiddleware *middleware.AuthMiddleware
	wsConfig       config.WebSocketConfig
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(
	h *hub.Hub,
	collabReg *collab.Registry,
	sessions service.SessionService,
	authMiddleware *middleware.AuthMiddleware,
	wsConfig config.WebSocketConfig,
) *WSHandler {
	return &WSHandler{
		hub:            h,
		collabReg:      collabReg,
		sessions:       sessions,
		authMiddleware: authMiddleware,
		wsConfig:       wsConfig,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}
}

// RegisterRoutes registers the WebSocket routes.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	ws := r.Group("/ws", h.authMiddleware.RequireAuth())
	{
		ws.GET("/presence", h.HandleOwnerStream)
		ws.GET("/sessions/:id", h.HandleSessionStream)
	}
}

// HandleOwnerStream subscribes the caller to live view events for
// documents they own.
func (h *WSHandler) HandleOwnerStream(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(userID, middleware.GetUsername(c), "", conn, h.wsConfig)
	key := hub.OwnerKey(userID)
	h.hub.Subscribe(key, client)

	go client.WritePump()
	go client.ReadPump(h.handleHeartbeat, func(cl *hub.Client) {
		h.hub.Unsubscribe(key, cl)
	})
}

// HandleSessionStream joins the caller to a collaborative session as a
// participant and serves their inbound room messages.
func (h *WSHandler) HandleSessionStream(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.BadRequest(c, "invalid session id")
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
	if session.EndedAt != nil {
		response.BadRequest(c, "session has ended")
		return
	}

	userID := middleware.GetUserID(c)
	role := "participant"
	if session.HostID == userID {
		role = "host"
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(userID, middleware.GetUsername(c), role, conn, h.wsConfig)
	key := hub.SessionKey(id)
	h.hub.Subscribe(key, client)

	state := h.collabReg.AddParticipant(id, userID, client.Name(), role, client)

	// The joiner catches up from a snapshot; everyone else hears the join.
	if err := h.hub.SendTo(client, domain.RoomStateEvent{
		Type: domain.EventRoomState,
		Room: h.collabReg.Snapshot(id),
	}); err != nil {
		l.Debug().Err(err).Msg("failed to send room snapshot")
	}
	h.hub.Broadcast(key, domain.ParticipantJoinedEvent{
		Type:   domain.EventParticipantJoined,
		UserID: state.UserID,
		Name:   state.Name,
		Color:  state.Color,
		Role:   state.Role,
	}, userID)

	go client.WritePump()
	go client.ReadPump(
		func(cl *hub.Client, message []byte) {
			h.handleRoomMessage(id, cl, message)
		},
		func(cl *hub.Client) {
			h.onSessionDisconnect(id, key, cl)
		},
	)
}

func (h *WSHandler) onSessionDisconnect(id int, key string, cl *hub.Client) {
	h.hub.Unsubscribe(key, cl)

	state, left := h.collabReg.RemoveSubscription(id, cl.UserID(), cl)
	if left {
		h.hub.Broadcast(key, domain.ParticipantLeftEvent{
			Type:   domain.EventParticipantLeft,
			UserID: state.UserID,
			Name:   state.Name,
		}, cl.UserID())
	}
}

func (h *WSHandler) handleRoomMessage(id int, cl *hub.Client, message []byte) {
	key := hub.SessionKey(id)
	userID := cl.UserID()

	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		cl.SendMessage(domain.NewErrorMessage("invalid message format"))
		return
	}

	switch base.Type {
	case domain.MsgTypePresence:
		var msg domain.PresenceClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			cl.SendMessage(domain.NewErrorMessage("invalid presence message"))
			return
		}
		state := h.collabReg.UpdatePresence(id, userID, domain.PresenceUpdate{
			CurrentPage: msg.Page,
			CursorX:     msg.CursorX,
			CursorY:     msg.CursorY,
		})
		if state == nil {
			return
		}
		h.hub.Broadcast(key, domain.PresenceUpdatedEvent{
			Type:        domain.EventPresenceUpdated,
			Participant: *state,
		}, userID)

	case domain.MsgTypeTyping:
		var msg domain.TypingClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			cl.SendMessage(domain.NewErrorMessage("invalid typing message"))
			return
		}
		h.collabReg.SetTyping(id, userID, msg.IsTyping)
		h.hub.Broadcast(key, domain.TypingChangedEvent{
			Type:     domain.EventTypingChanged,
			UserID:   userID,
			IsTyping: msg.IsTyping,
		}, userID)

	case domain.MsgTypeHandRaise:
		active := h.collabReg.ToggleHandRaise(id, userID)
		h.hub.Broadcast(key, domain.FlagToggledEvent{
			Type:   domain.EventHandRaiseToggled,
			UserID: userID,
			Active: active,
		}, "")

	case domain.MsgTypeScreenShare:
		active := h.collabReg.ToggleScreenShare(id, userID)
		h.hub.Broadcast(key, domain.FlagToggledEvent{
			Type:   domain.EventScreenShareToggled,
			UserID: userID,
			Active: active,
		}, "")

	case domain.MsgTypePing:
		cl.SendMessage(domain.BaseMessage{Type: domain.MsgTypePong})

	default:
		cl.SendMessage(domain.NewErrorMessage("unknown message type: " + base.Type))
	}
}

// handleHeartbeat answers pings on dashboard streams; everything else
// inbound is ignored since dashboards are receive-only.
func (h *WSHandler) handleHeartbeat(cl *hub.Client, message []byte) {
	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		return
	}
	if base.Type == domain.MsgTypePing {
		cl.SendMessage(domain.BaseMessage{Type: domain.MsgTypePong})
	}
}
