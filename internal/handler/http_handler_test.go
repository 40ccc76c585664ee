package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgjwt "github.com/ArinjayBhola/DocuSend-sub001/pkg/jwt"
	"github.com/ArinjayBhola/DocuSend-sub001/pkg/middleware"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/analytics"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/cache"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/collab"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/hub"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/presence"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/repository"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testStream records broadcasts so tests can assert on hub fan-out.
type testStream struct {
	userID string

	mu     sync.Mutex
	events []map[string]interface{}
}

func (s *testStream) UserID() string { return s.userID }

func (s *testStream) Enqueue(data []byte) error {
	var ev map[string]interface{}
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *testStream) Close() {}

func (s *testStream) eventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		if t, ok := ev["type"].(string); ok {
			out = append(out, t)
		}
	}
	return out
}

type testEnv struct {
	router     *gin.Engine
	hub        *hub.Hub
	collabReg  *collab.Registry
	jwtManager *pkgjwt.Manager
	db         *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.DocumentModel{},
		&domain.CollabSessionModel{},
		&domain.AnnotationModel{},
		&domain.ChatMessageModel{},
	))

	documents := service.NewDocumentService(repository.NewGormDocumentRepository(db), cache.Noop{}, time.Minute)
	sessions := service.NewSessionService(repository.NewGormSessionRepository(db), documents)

	broadcastHub := hub.NewHub()
	presenceReg := presence.NewRegistry(broadcastHub, analytics.Noop{}, presence.Config{
		SweepInterval: 30 * time.Second,
		ViewTTL:       5 * time.Minute,
	})
	collabReg := collab.NewRegistry()

	jwtManager := pkgjwt.NewManager("test-secret", time.Hour, "presence-engine")

	h := NewHandler(
		presenceReg, collabReg, broadcastHub,
		documents, sessions,
		repository.NewGormAnnotationRepository(db),
		repository.NewGormMessageRepository(db),
		middleware.NewAuthMiddleware(jwtManager),
	)

	r := gin.New()
	h.RegisterRoutes(r)

	return &testEnv{
		router:     r,
		hub:        broadcastHub,
		collabReg:  collabReg,
		jwtManager: jwtManager,
		db:         db,
	}
}

func (e *testEnv) seedDocument(t *testing.T, ownerID, title string, pages int) string {
	t.Helper()
	id := uuid.New().String()
	require.NoError(t, e.db.Create(&domain.DocumentModel{
		ID:        id,
		OwnerID:   ownerID,
		Title:     title,
		PageCount: pages,
	}).Error)
	return id
}

func (e *testEnv) token(t *testing.T, userID, username string) string {
	t.Helper()
	token, err := e.jwtManager.Generate(userID, username+"@example.com", username, []string{"user"})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func TestStartViewEndpoint(t *testing.T) {
	t.Run("starts a view and notifies the owner", func(t *testing.T) {
		e := newTestEnv(t)
		docID := e.seedDocument(t, "owner-1", "Q3 Pitch Deck", 12)

		dashboard := &testStream{userID: "owner-1"}
		e.hub.Subscribe(hub.OwnerKey("owner-1"), dashboard)

		w := e.do(t, http.MethodPost, "/api/v1/views", "", domain.StartViewRequest{
			DocumentID: docID,
			Email:      "viewer@example.com",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		data := decodeData(t, w)
		assert.NotEmpty(t, data["view_id"])
		assert.Equal(t, []string{domain.EventSessionStarted}, dashboard.eventTypes())
	})

	t.Run("unknown document is 404", func(t *testing.T) {
		e := newTestEnv(t)

		w := e.do(t, http.MethodPost, "/api/v1/views", "", domain.StartViewRequest{
			DocumentID: uuid.New().String(),
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing document id is 400", func(t *testing.T) {
		e := newTestEnv(t)

		w := e.do(t, http.MethodPost, "/api/v1/views", "", map[string]string{"email": "x@example.com"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateViewPageEndpoint(t *testing.T) {
	t.Run("page turn reaches the owner dashboard", func(t *testing.T) {
		e := newTestEnv(t)
		docID := e.seedDocument(t, "owner-1", "Q3 Pitch Deck", 12)

		w := e.do(t, http.MethodPost, "/api/v1/views", "", domain.StartViewRequest{DocumentID: docID})
		require.Equal(t, http.StatusCreated, w.Code)
		viewID := decodeData(t, w)["view_id"].(string)

		dashboard := &testStream{userID: "owner-1"}
		e.hub.Subscribe(hub.OwnerKey("owner-1"), dashboard)

		w = e.do(t, http.MethodPost, "/api/v1/views/"+viewID+"/page", "", domain.UpdatePageRequest{Page: 3})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{domain.EventPageChanged}, dashboard.eventTypes())
	})

	t.Run("unknown view id still returns 200", func(t *testing.T) {
		e := newTestEnv(t)

		w := e.do(t, http.MethodPost, "/api/v1/views/"+uuid.New().String()+"/page", "", domain.UpdatePageRequest{Page: 2})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestEndViewEndpoint(t *testing.T) {
	e := newTestEnv(t)
	docID := e.seedDocument(t, "owner-1", "Q3 Pitch Deck", 12)

	w := e.do(t, http.MethodPost, "/api/v1/views", "", domain.StartViewRequest{DocumentID: docID})
	require.Equal(t, http.StatusCreated, w.Code)
	viewID := decodeData(t, w)["view_id"].(string)

	w = e.do(t, http.MethodDelete, "/api/v1/views/"+viewID, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Ending again is still a 204 no-op.
	w = e.do(t, http.MethodDelete, "/api/v1/views/"+viewID, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestListViewersEndpoint(t *testing.T) {
	t.Run("owner sees only the requested document's viewers", func(t *testing.T) {
		e := newTestEnv(t)
		docA := e.seedDocument(t, "owner-1", "Deck A", 10)
		docB := e.seedDocument(t, "owner-1", "Deck B", 5)

		for _, doc := range []string{docA, docA, docB} {
			w := e.do(t, http.MethodPost, "/api/v1/views", "", domain.StartViewRequest{DocumentID: doc})
			require.Equal(t, http.StatusCreated, w.Code)
		}

		w := e.do(t, http.MethodGet, "/api/v1/documents/"+docA+"/viewers", e.token(t, "owner-1", "ada"), nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := decodeData(t, w)
		assert.Equal(t, float64(2), data["count"])
	})

	t.Run("requires authentication", func(t *testing.T) {
		e := newTestEnv(t)
		docID := e.seedDocument(t, "owner-1", "Deck", 10)

		w := e.do(t, http.MethodGet, "/api/v1/documents/"+docID+"/viewers", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		e := newTestEnv(t)
		docID := e.seedDocument(t, "owner-1", "Deck", 10)

		w := e.do(t, http.MethodGet, "/api/v1/documents/"+docID+"/viewers", e.token(t, "intruder", "eve"), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestSessionEndpoints(t *testing.T) {
	t.Run("owner creates and ends a session", func(t *testing.T) {
		e := newTestEnv(t)
		docID := e.seedDocument(t, "owner-1", "Deck", 10)
		token := e.token(t, "owner-1", "ada")

		w := e.do(t, http.MethodPost, "/api/v1/sessions", token, domain.CreateSessionRequest{DocumentID: docID})
		require.Equal(t, http.StatusCreated, w.Code)

		var created struct {
			Data domain.CollabSession `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		require.NotZero(t, created.Data.ID)
		assert.Equal(t, "owner-1", created.Data.HostID)
		assert.Nil(t, created.Data.EndedAt)

		path := fmt.Sprintf("/api/v1/sessions/%d", created.Data.ID)
		w = e.do(t, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := decodeData(t, w)
		assert.Contains(t, data, "session")
		assert.Contains(t, data, "room")

		w = e.do(t, http.MethodPost, path+"/end", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		// Ending twice is rejected.
		w = e.do(t, http.MethodPost, path+"/end", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("only the document owner can host", func(t *testing.T) {
		e := newTestEnv(t)
		docID := e.seedDocument(t, "owner-1", "Deck", 10)

		w := e.do(t, http.MethodPost, "/api/v1/sessions", e.token(t, "intruder", "eve"), domain.CreateSessionRequest{DocumentID: docID})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("only the host can end a session", func(t *testing.T) {
		e := newTestEnv(t)
		docID := e.seedDocument(t, "owner-1", "Deck", 10)

		w := e.do(t, http.MethodPost, "/api/v1/sessions", e.token(t, "owner-1", "ada"), domain.CreateSessionRequest{DocumentID: docID})
		require.Equal(t, http.StatusCreated, w.Code)
		var created struct {
			Data domain.CollabSession `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		path := fmt.Sprintf("/api/v1/sessions/%d/end", created.Data.ID)
		w = e.do(t, http.MethodPost, path, e.token(t, "guest-1", "ben"), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("ending a session closes the room", func(t *testing.T) {
		e := newTestEnv(t)
		docID := e.seedDocument(t, "owner-1", "Deck", 10)
		token := e.token(t, "owner-1", "ada")

		w := e.do(t, http.MethodPost, "/api/v1/sessions", token, domain.CreateSessionRequest{DocumentID: docID})
		require.Equal(t, http.StatusCreated, w.Code)
		var created struct {
			Data domain.CollabSession `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		id := created.Data.ID

		member := &testStream{userID: "guest-1"}
		e.hub.Subscribe(hub.SessionKey(id), member)
		e.collabReg.AddParticipant(id, "guest-1", "Ben", "participant", member)

		w = e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%d/end", id), token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Contains(t, member.eventTypes(), domain.EventSessionEnded)
		assert.Zero(t, e.collabReg.ParticipantCount(id))
	})

	t.Run("unknown session is 404", func(t *testing.T) {
		e := newTestEnv(t)

		w := e.do(t, http.MethodGet, "/api/v1/sessions/999", e.token(t, "owner-1", "ada"), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric session id is 400", func(t *testing.T) {
		e := newTestEnv(t)

		w := e.do(t, http.MethodGet, "/api/v1/sessions/abc", e.token(t, "owner-1", "ada"), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAnnotationEndpoints(t *testing.T) {
	newSession := func(t *testing.T, e *testEnv) (int, string) {
		t.Helper()
		docID := e.seedDocument(t, "owner-1", "Deck", 10)
		token := e.token(t, "owner-1", "ada")
		w := e.do(t, http.MethodPost, "/api/v1/sessions", token, domain.CreateSessionRequest{DocumentID: docID})
		require.Equal(t, http.StatusCreated, w.Code)
		var created struct {
			Data domain.CollabSession `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		return created.Data.ID, token
	}

	t.Run("create broadcasts to everyone but the author", func(t *testing.T) {
		e := newTestEnv(t)
		id, token := newSession(t, e)

		author := &testStream{userID: "owner-1"}
		other := &testStream{userID: "guest-1"}
		e.hub.Subscribe(hub.SessionKey(id), author)
		e.hub.Subscribe(hub.SessionKey(id), other)

		w := e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%d/annotations", id), token, domain.CreateAnnotationRequest{
			Page:    3,
			X:       0.4,
			Y:       0.6,
			Content: "tighten this slide",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		assert.Empty(t, author.eventTypes())
		assert.Equal(t, []string{domain.EventAnnotationCreated}, other.eventTypes())
	})

	t.Run("list returns persisted annotations", func(t *testing.T) {
		e := newTestEnv(t)
		id, token := newSession(t, e)

		for i := 1; i <= 2; i++ {
			w := e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%d/annotations", id), token, domain.CreateAnnotationRequest{
				Page:    i,
				Content: fmt.Sprintf("note %d", i),
			})
			require.Equal(t, http.StatusCreated, w.Code)
		}

		w := e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/sessions/%d/annotations", id), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := decodeData(t, w)
		assert.Len(t, data["annotations"], 2)
	})

	t.Run("only the author can update or delete", func(t *testing.T) {
		e := newTestEnv(t)
		id, token := newSession(t, e)

		w := e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%d/annotations", id), token, domain.CreateAnnotationRequest{
			Page:    1,
			Content: "mine",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var created struct {
			Data domain.Annotation `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		path := fmt.Sprintf("/api/v1/sessions/%d/annotations/%s", id, created.Data.ID)
		intruder := e.token(t, "guest-1", "ben")

		newContent := "stolen"
		w = e.do(t, http.MethodPut, path, intruder, domain.UpdateAnnotationRequest{Content: &newContent})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = e.do(t, http.MethodDelete, path, intruder, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = e.do(t, http.MethodPut, path, token, domain.UpdateAnnotationRequest{Content: &newContent})
		require.Equal(t, http.StatusOK, w.Code)
		var updated struct {
			Data domain.Annotation `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "stolen", updated.Data.Content)

		w = e.do(t, http.MethodDelete, path, token, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = e.do(t, http.MethodDelete, path, token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMessageEndpoints(t *testing.T) {
	e := newTestEnv(t)
	docID := e.seedDocument(t, "owner-1", "Deck", 10)
	hostToken := e.token(t, "owner-1", "ada")

	w := e.do(t, http.MethodPost, "/api/v1/sessions", hostToken, domain.CreateSessionRequest{DocumentID: docID})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data domain.CollabSession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.ID

	// Chat echoes to all streams, sender included.
	sender := &testStream{userID: "owner-1"}
	e.hub.Subscribe(hub.SessionKey(id), sender)

	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%d/messages", id), hostToken, domain.CreateMessageRequest{
		Content: "hello room",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{domain.EventMessageCreated}, sender.eventTypes())

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/sessions/%d/messages", id), hostToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	require.Len(t, data["messages"], 1)

	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%d/messages", id), hostToken, domain.CreateMessageRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
