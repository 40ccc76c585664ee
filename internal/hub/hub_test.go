package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureStream struct {
	userID  string
	failing bool

	mu       sync.Mutex
	received [][]byte
}

func (s *captureStream) UserID() string { return s.userID }

func (s *captureStream) Enqueue(data []byte) error {
	if s.failing {
		return errors.New("send buffer full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, data)
	return nil
}

func (s *captureStream) Close() {}

func (s *captureStream) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func (s *captureStream) last(t *testing.T) []byte {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.received)
	return s.received[len(s.received)-1]
}

type testEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

func TestBroadcast(t *testing.T) {
	t.Parallel()

	t.Run("delivers to every subscriber under the key", func(t *testing.T) {
		t.Parallel()
		h := NewHub()
		a := &captureStream{userID: "user-a"}
		b := &captureStream{userID: "user-b"}
		h.Subscribe(OwnerKey("owner-1"), a)
		h.Subscribe(OwnerKey("owner-1"), b)

		h.Broadcast(OwnerKey("owner-1"), testEvent{Type: "page_changed", UserID: "viewer"}, "")

		require.Equal(t, 1, a.count())
		assert.Equal(t, 1, b.count())

		var got testEvent
		require.NoError(t, json.Unmarshal(a.last(t), &got))
		assert.Equal(t, "page_changed", got.Type)
	})

	t.Run("zero subscribers is not an error", func(t *testing.T) {
		t.Parallel()
		h := NewHub()

		h.Broadcast("session:99", testEvent{Type: "typing_changed"}, "")
	})

	t.Run("keys are isolated", func(t *testing.T) {
		t.Parallel()
		h := NewHub()
		a := &captureStream{userID: "user-a"}
		b := &captureStream{userID: "user-b"}
		h.Subscribe(SessionKey(1), a)
		h.Subscribe(SessionKey(2), b)

		h.Broadcast(SessionKey(1), testEvent{Type: "participant_joined"}, "")

		assert.Equal(t, 1, a.count())
		assert.Zero(t, b.count())
	})

	t.Run("excluded user is skipped", func(t *testing.T) {
		t.Parallel()
		h := NewHub()
		author := &captureStream{userID: "user-a"}
		other := &captureStream{userID: "user-b"}
		h.Subscribe(SessionKey(1), author)
		h.Subscribe(SessionKey(1), other)

		h.Broadcast(SessionKey(1), testEvent{Type: "annotation_created"}, "user-a")

		assert.Zero(t, author.count())
		assert.Equal(t, 1, other.count())
	})

	t.Run("a failing stream does not stop the rest", func(t *testing.T) {
		t.Parallel()
		h := NewHub()
		dead := &captureStream{userID: "user-a", failing: true}
		alive := &captureStream{userID: "user-b"}
		h.Subscribe(SessionKey(1), dead)
		h.Subscribe(SessionKey(1), alive)

		h.Broadcast(SessionKey(1), testEvent{Type: "message_created"}, "")

		assert.Equal(t, 1, alive.count())
		// The failing stream stays subscribed; pruning is the caller's job.
		assert.Equal(t, 2, h.SubscriberCount(SessionKey(1)))
	})
}

func TestSubscribeUnsubscribe(t *testing.T) {
	t.Parallel()

	h := NewHub()
	s := &captureStream{userID: "user-a"}

	h.Subscribe(OwnerKey("owner-1"), s)
	assert.Equal(t, 1, h.SubscriberCount(OwnerKey("owner-1")))

	h.Unsubscribe(OwnerKey("owner-1"), s)
	assert.Zero(t, h.SubscriberCount(OwnerKey("owner-1")))

	h.Broadcast(OwnerKey("owner-1"), testEvent{Type: "session_started"}, "")
	assert.Zero(t, s.count())

	// Unsubscribing again, or from an unknown key, is a no-op.
	h.Unsubscribe(OwnerKey("owner-1"), s)
	h.Unsubscribe("owner:ghost", s)
}

func TestSendTo(t *testing.T) {
	t.Parallel()

	t.Run("writes to the single stream", func(t *testing.T) {
		t.Parallel()
		h := NewHub()
		s := &captureStream{userID: "user-a"}

		require.NoError(t, h.SendTo(s, testEvent{Type: "room_state"}))
		assert.Equal(t, 1, s.count())
	})

	t.Run("propagates enqueue failure", func(t *testing.T) {
		t.Parallel()
		h := NewHub()
		s := &captureStream{userID: "user-a", failing: true}

		assert.Error(t, h.SendTo(s, testEvent{Type: "room_state"}))
	})
}

func TestKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "owner:owner-1", OwnerKey("owner-1"))
	assert.Equal(t, "session:42", SessionKey(42))
}
