package domain

import "time"

// Event types pushed to subscribed streams.
const (
	EventSessionStarted     = "session_started"
	EventPageChanged        = "page_changed"
	EventSessionEnded       = "session_ended"
	EventParticipantJoined  = "participant_joined"
	EventParticipantLeft    = "participant_left"
	EventPresenceUpdated    = "presence_updated"
	EventTypingChanged      = "typing_changed"
	EventHandRaiseToggled   = "hand_raise_toggled"
	EventScreenShareToggled = "screen_share_toggled"
	EventAnnotationCreated  = "annotation_created"
	EventAnnotationUpdated  = "annotation_updated"
	EventAnnotationDeleted  = "annotation_deleted"
	EventMessageCreated     = "message_created"
	EventRoomState          = "room_state"
)

// SessionStartedEvent notifies a document owner that a new view began.
type SessionStartedEvent struct {
	Type          string    `json:"type"`
	ViewID        string    `json:"viewId"`
	DocumentID    string    `json:"documentId"`
	DocumentTitle string    `json:"documentTitle"`
	ViewerEmail   string    `json:"viewerEmail,omitempty"`
	ViewerIP      string    `json:"viewerIp,omitempty"`
	CurrentPage   int       `json:"currentPage"`
	TotalPages    int       `json:"totalPages"`
	StartedAt     time.Time `json:"startedAt"`
}

// PageChangedEvent notifies a document owner that a viewer turned a page.
type PageChangedEvent struct {
	Type           string `json:"type"`
	ViewID         string `json:"viewId"`
	DocumentID     string `json:"documentId"`
	DocumentTitle  string `json:"documentTitle"`
	ViewerEmail    string `json:"viewerEmail,omitempty"`
	CurrentPage    int    `json:"currentPage"`
	TotalPages     int    `json:"totalPages"`
	PagesVisited   int    `json:"pagesVisited"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
}

// SessionEndedEvent notifies a document owner that a view ended, either
// explicitly or by inactivity expiry.
type SessionEndedEvent struct {
	Type          string `json:"type"`
	ViewID        string `json:"viewId"`
	DocumentID    string `json:"documentId"`
	DocumentTitle string `json:"documentTitle"`
	ViewerEmail   string `json:"viewerEmail,omitempty"`
	Duration      int    `json:"duration"`
	PagesVisited  int    `json:"pagesVisited"`
}

// ParticipantJoinedEvent announces a new participant to a room.
type ParticipantJoinedEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Role   string `json:"role"`
}

// ParticipantLeftEvent announces that a participant's last stream closed.
type ParticipantLeftEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// PresenceUpdatedEvent carries a participant's updated page/cursor state.
type PresenceUpdatedEvent struct {
	Type        string           `json:"type"`
	Participant ParticipantState `json:"participant"`
}

// TypingChangedEvent carries a participant's typing flag.
type TypingChangedEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// FlagToggledEvent carries the new state of a hand-raise or screen-share
// toggle.
type FlagToggledEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Active bool   `json:"active"`
}

// AnnotationEvent carries an annotation mutation. Deleted events only
// carry the annotation id.
type AnnotationEvent struct {
	Type         string      `json:"type"`
	Annotation   *Annotation `json:"annotation,omitempty"`
	AnnotationID string      `json:"annotationId,omitempty"`
}

// MessageCreatedEvent carries a new chat message.
type MessageCreatedEvent struct {
	Type    string      `json:"type"`
	Message ChatMessage `json:"message"`
}

// RoomSessionEvent is the room variant of session_started/session_ended,
// emitted when a host starts or terminates a collaborative session.
type RoomSessionEvent struct {
	Type      string `json:"type"`
	SessionID int    `json:"sessionId"`
}

// RoomStateEvent is sent to a joining participant only, carrying the
// room snapshot they need to catch up.
type RoomStateEvent struct {
	Type string    `json:"type"`
	Room RoomState `json:"room"`
}
