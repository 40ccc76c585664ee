package hub

import (
	"encoding/json"
	"fmt"
	"sync"

	pkglog "github.com/ArinjayBhola/DocuSend-sub001/pkg/log"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
)

// OwnerKey is the broadcast key under which a document owner's
// dashboard streams receive view-presence events.
func OwnerKey(ownerID string) string {
	return "owner:" + ownerID
}

// SessionKey is the broadcast key under which a collaborative session's
// streams receive room events.
func SessionKey(sessionID int) string {
	return fmt.Sprintf("session:%d", sessionID)
}

// Hub fans out serialized events to every stream subscribed under a
// key. Delivery is best effort: a failed enqueue on one stream never
// stops delivery to the rest, and failing streams are not pruned here —
// removal only happens through the explicit unsubscribe path.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[domain.Stream]struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[domain.Stream]struct{}),
	}
}

// Subscribe registers a stream under a key.
func (h *Hub) Subscribe(key string, s domain.Stream) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[key]; !ok {
		h.subscribers[key] = make(map[domain.Stream]struct{})
	}
	h.subscribers[key][s] = struct{}{}
}

// Unsubscribe removes a stream from a key. Removing an unknown stream
// or key is a no-op.
func (h *Hub) Unsubscribe(key string, s domain.Stream) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subscribers[key]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.subscribers, key)
		}
	}
}

// Broadcast serializes the event once and writes it to every stream
// currently subscribed under the key, skipping streams owned by
// excludeUserID if non-empty. Zero subscribers means zero writes and no
// error.
func (h *Hub) Broadcast(key string, event interface{}, excludeUserID string) {
	data, err := json.Marshal(event)
	if err != nil {
		pkglog.L().Error().Err(err).Str("key", key).Msg("failed to marshal broadcast event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subscribers[key] {
		if excludeUserID != "" && s.UserID() == excludeUserID {
			continue
		}
		if err := s.Enqueue(data); err != nil {
			// Slow or dead stream; drop the event for it and move on.
			pkglog.L().Debug().Err(err).Str("key", key).Str("user_id", s.UserID()).Msg("dropped broadcast write")
		}
	}
}

// SubscriberCount returns the number of streams under a key.
func (h *Hub) SubscriberCount(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[key])
}

// SendTo serializes the event and enqueues it on a single stream,
// bypassing key lookup. Used for direct replies like the initial room
// snapshot.
func (h *Hub) SendTo(s domain.Stream, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.Enqueue(data)
}
