package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbookai/medbook/internal/booking"
	"github.com/medbookai/medbook/internal/chat"
	"github.com/medbookai/medbook/internal/session"
)

func newChatTestServer(t *testing.T, limiterCfg session.LimiterConfig) (*chi.Mux, *session.Manager) {
	t.Helper()

	store := &booking.StubStore{}
	notifier := &booking.StubNotifier{}
	manager := session.NewManager(func() *chat.Conversation {
		return chat.NewConversation(store, notifier, nil)
	}, nil)

	svc := chat.NewService(&chat.StubLLMClient{Reply: "stubbed answer"}, nil, nil, nil, chat.Options{
		ClinicName: "HealthFirst Medical Center",
	})
	handler := NewChatHandler(manager, svc, session.NewLimiter(limiterCfg), nil, nil, nil)

	r := chi.NewRouter()
	r.Post("/chat", handler.HandleChat)
	r.Get("/sessions/{sessionID}/status", handler.SessionStatus)
	r.Post("/sessions/{sessionID}/reset", handler.ResetSession)
	return r, manager
}

func postChat(t *testing.T, r http.Handler, sessionID, message string) (*httptest.ResponseRecorder, chatResponse) {
	t.Helper()
	body := `{"session_id":"` + sessionID + `","message":"` + message + `"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp chatResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestHandleChatGreeting(t *testing.T) {
	r, _ := newChatTestServer(t, session.LimiterConfig{MessageCooldown: time.Nanosecond})

	rec, resp := postChat(t, r, "", "hello")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "greeting", resp.Intent)
	assert.Equal(t, "idle", resp.State)
	assert.Contains(t, resp.Reply, "HealthFirst Medical Center")
}

func TestHandleChatKeepsSession(t *testing.T) {
	r, _ := newChatTestServer(t, session.LimiterConfig{MessageCooldown: time.Nanosecond})

	_, first := postChat(t, r, "", "book an appointment")
	require.Equal(t, "collecting", first.State)

	_, second := postChat(t, r, first.SessionID, "John Smith")
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, "collecting", second.State)
	assert.Contains(t, second.Reply, "email")
}

func TestHandleChatRejectsEmptyMessage(t *testing.T) {
	r, _ := newChatTestServer(t, session.LimiterConfig{})

	rec, _ := postChat(t, r, "", "   ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChatCooldownReturns429(t *testing.T) {
	r, _ := newChatTestServer(t, session.LimiterConfig{MessageCooldown: time.Hour})

	rec, resp := postChat(t, r, "", "hello")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = postChat(t, r, resp.SessionID, "hello again")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSessionStatusAndReset(t *testing.T) {
	r, _ := newChatTestServer(t, session.LimiterConfig{MessageCooldown: time.Nanosecond})

	_, resp := postChat(t, r, "", "book an appointment")

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+resp.SessionID+"/status", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "collecting", status["state"])
	assert.Contains(t, status["summary"], "of 6")

	req = httptest.NewRequest(http.MethodPost, "/sessions/"+resp.SessionID+"/reset", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/sessions/"+resp.SessionID+"/status", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "idle", status["state"])
}

func TestSessionStatusUnknown(t *testing.T) {
	r, _ := newChatTestServer(t, session.LimiterConfig{})

	req := httptest.NewRequest(http.MethodGet, "/sessions/nope/status", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
