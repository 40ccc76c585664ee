package domain

// WebSocket message types from room clients.
const (
	MsgTypePresence    = "presence"
	MsgTypeTyping      = "typing"
	MsgTypeHandRaise   = "hand_raise"
	MsgTypeScreenShare = "screen_share"
	MsgTypePing        = "ping"
)

// WebSocket message types to clients.
const (
	MsgTypePong  = "pong"
	MsgTypeError = "error"
)

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// PresenceClientMessage is sent by a room client to update its page or
// cursor position. Omitted fields keep their prior value.
type PresenceClientMessage struct {
	Type    string   `json:"type"`
	Page    *int     `json:"page,omitempty"`
	CursorX *float64 `json:"cursorX,omitempty"`
	CursorY *float64 `json:"cursorY,omitempty"`
}

// TypingClientMessage is sent by a room client when it starts or stops
// typing.
type TypingClientMessage struct {
	Type     string `json:"type"`
	IsTyping bool   `json:"isTyping"`
}

// ErrorMessage is sent when an inbound message cannot be handled.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewErrorMessage creates a new error message.
func NewErrorMessage(message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Message: message,
	}
}
