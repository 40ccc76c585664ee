package collab

import (
	"sync"
	"time"

	pkglog "github.com/ArinjayBhola/DocuSend-sub001/pkg/log"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
)

// Registry tracks the ephemeral state of every live collaborative
// session: participants, their open streams, and the typing,
// hand-raised, and screen-sharing flag sets. Rooms exist only while
// they have participants; the last stream closing deletes the room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[int]*room
}

type room struct {
	participants  map[string]*participant
	typing        map[string]struct{}
	handRaised    map[string]struct{}
	screenSharing map[string]struct{}
}

type participant struct {
	userID         string
	name           string
	role           string
	color          string
	currentPage    int
	cursorX        float64
	cursorY        float64
	lastActivityAt time.Time
	streams        map[domain.Stream]struct{}
}

func (p *participant) state() domain.ParticipantState {
	return domain.ParticipantState{
		UserID:      p.userID,
		Name:        p.name,
		Role:        p.role,
		Color:       p.color,
		CurrentPage: p.currentPage,
		CursorX:     p.cursorX,
		CursorY:     p.cursorY,
	}
}

// NewRegistry creates a collaboration room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[int]*room),
	}
}

// getOrCreate returns the room for a session, creating an empty one if
// absent. Callers must hold r.mu.
func (r *Registry) getOrCreate(sessionID int) *room {
	rm, ok := r.rooms[sessionID]
	if !ok {
		rm = &room{
			participants:  make(map[string]*participant),
			typing:        make(map[string]struct{}),
			handRaised:    make(map[string]struct{}),
			screenSharing: make(map[string]struct{}),
		}
		r.rooms[sessionID] = rm
	}
	return rm
}

// AddParticipant registers a stream for a user in a session, creating
// the room and the participant as needed. A reconnecting participant
// keeps their color; a new one gets the first free palette color. The
// same user may hold several streams at once (multiple tabs).
func (r *Registry) AddParticipant(sessionID int, userID, name, role string, stream domain.Stream) domain.ParticipantState {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm := r.getOrCreate(sessionID)
	p, ok := rm.participants[userID]
	if !ok {
		p = &participant{
			userID:         userID,
			name:           name,
			role:           role,
			color:          rm.assignColor(userID),
			currentPage:    1,
			lastActivityAt: time.Now(),
			streams:        make(map[domain.Stream]struct{}),
		}
		rm.participants[userID] = p
	}
	p.streams[stream] = struct{}{}

	pkglog.L().Debug().
		Int(pkglog.FieldSessionID, sessionID).
		Str(pkglog.FieldUserID, userID).
		Int("streams", len(p.streams)).
		Msg("participant stream added")

	return p.state()
}

// RemoveSubscription removes a stream from a participant. When the
// participant's last stream closes they are removed from the room along
// with their flag-set memberships, and the returned left flag is true.
// When the room loses its last participant it is deleted. Unknown
// session, user, or stream is a no-op.
func (r *Registry) RemoveSubscription(sessionID int, userID string, stream domain.Stream) (domain.ParticipantState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[sessionID]
	if !ok {
		return domain.ParticipantState{}, false
	}
	p, ok := rm.participants[userID]
	if !ok {
		return domain.ParticipantState{}, false
	}

	delete(p.streams, stream)
	if len(p.streams) > 0 {
		return p.state(), false
	}

	delete(rm.participants, userID)
	delete(rm.typing, userID)
	delete(rm.handRaised, userID)
	delete(rm.screenSharing, userID)

	if len(rm.participants) == 0 {
		delete(r.rooms, sessionID)
	}

	pkglog.L().Debug().
		Int(pkglog.FieldSessionID, sessionID).
		Str(pkglog.FieldUserID, userID).
		Msg("participant left")

	return p.state(), true
}

// UpdatePresence applies a partial page/cursor update and returns the
// updated snapshot. Returns nil when the room or participant is absent;
// the caller treats that as a silent no-op.
func (r *Registry) UpdatePresence(sessionID int, userID string, update domain.PresenceUpdate) *domain.ParticipantState {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[sessionID]
	if !ok {
		return nil
	}
	p, ok := rm.participants[userID]
	if !ok {
		return nil
	}

	if update.CurrentPage != nil {
		p.currentPage = *update.CurrentPage
	}
	if update.CursorX != nil {
		p.cursorX = *update.CursorX
	}
	if update.CursorY != nil {
		p.cursorY = *update.CursorY
	}
	p.lastActivityAt = time.Now()

	state := p.state()
	return &state
}

// ToggleHandRaise flips the user's hand-raised flag and returns the new
// state. Creates the room if absent.
func (r *Registry) ToggleHandRaise(sessionID int, userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm := r.getOrCreate(sessionID)
	return toggle(rm.handRaised, userID)
}

// ToggleScreenShare flips the user's screen-sharing flag and returns
// the new state. Creates the room if absent.
func (r *Registry) ToggleScreenShare(sessionID int, userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm := r.getOrCreate(sessionID)
	return toggle(rm.screenSharing, userID)
}

// SetTyping adds or removes the user's typing flag.
func (r *Registry) SetTyping(sessionID int, userID string, isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm := r.getOrCreate(sessionID)
	if isTyping {
		rm.typing[userID] = struct{}{}
	} else {
		delete(rm.typing, userID)
	}
}

func toggle(set map[string]struct{}, userID string) bool {
	if _, ok := set[userID]; ok {
		delete(set, userID)
		return false
	}
	set[userID] = struct{}{}
	return true
}

// EndRoom force-closes every participant stream and deletes the room,
// overriding normal reference counting. Ending an absent room is a
// no-op, so EndRoom is idempotent.
func (r *Registry) EndRoom(sessionID int) {
	r.mu.Lock()
	rm, ok := r.rooms[sessionID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.rooms, sessionID)

	var streams []domain.Stream
	for _, p := range rm.participants {
		for s := range p.streams {
			streams = append(streams, s)
		}
	}
	r.mu.Unlock()

	// Close outside the lock; a stream's close path may re-enter the
	// registry through RemoveSubscription, which is now a no-op.
	for _, s := range streams {
		s.Close()
	}

	pkglog.L().Info().
		Int(pkglog.FieldSessionID, sessionID).
		Int("streams_closed", len(streams)).
		Msg("room ended")
}

// Snapshot returns the room's current state, or an empty state when the
// room does not exist. Read-only.
func (r *Registry) Snapshot(sessionID int) domain.RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state := domain.RoomState{
		SessionID:     sessionID,
		Participants:  []domain.ParticipantState{},
		Typing:        []string{},
		HandRaised:    []string{},
		ScreenSharing: []string{},
	}

	rm, ok := r.rooms[sessionID]
	if !ok {
		return state
	}

	for _, p := range rm.participants {
		state.Participants = append(state.Participants, p.state())
	}
	for id := range rm.typing {
		state.Typing = append(state.Typing, id)
	}
	for id := range rm.handRaised {
		state.HandRaised = append(state.HandRaised, id)
	}
	for id := range rm.screenSharing {
		state.ScreenSharing = append(state.ScreenSharing, id)
	}
	return state
}

// ParticipantCount returns the number of participants in a session's
// room, zero when the room does not exist.
func (r *Registry) ParticipantCount(sessionID int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[sessionID]
	if !ok {
		return 0
	}
	return len(rm.participants)
}
