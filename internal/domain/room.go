package domain

// Stream is one open output connection belonging to a participant or a
// dashboard subscriber. Writes are fire-and-forget: Enqueue must never
// block, and a failed write is the stream consumer's problem.
type Stream interface {
	// UserID identifies the stream's owner, used to exclude an actor
	// from receiving an echo of their own action.
	UserID() string
	// Enqueue hands a serialized event to the stream without blocking.
	Enqueue(data []byte) error
	// Close signals end-of-stream. Safe to call more than once.
	Close()
}

// ParticipantState is the broadcastable snapshot of one authenticated
// user's presence within a collaborative session.
type ParticipantState struct {
	UserID      string  `json:"userId"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	Color       string  `json:"color"`
	CurrentPage int     `json:"currentPage"`
	CursorX     float64 `json:"cursorX"`
	CursorY     float64 `json:"cursorY"`
}

// RoomState is the full snapshot of a collaborative session's ephemeral
// state, sent to late joiners so they catch up in one message.
type RoomState struct {
	SessionID     int                `json:"sessionId"`
	Participants  []ParticipantState `json:"participants"`
	Typing        []string           `json:"typing"`
	HandRaised    []string           `json:"handRaised"`
	ScreenSharing []string           `json:"screenSharing"`
}

// PresenceUpdate is a partial update to a participant's presence. Only
// non-nil fields are applied; page and cursor updates are throttled
// independently by clients.
type PresenceUpdate struct {
	CurrentPage *int     `json:"page"`
	CursorX     *float64 `json:"cursorX"`
	CursorY     *float64 `json:"cursorY"`
}
