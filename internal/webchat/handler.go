package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/medbookai/medbook/internal/chat"
	"github.com/medbookai/medbook/internal/session"
	"github.com/medbookai/medbook/pkg/logging"
)

// Responder processes one conversation turn. *chat.Service satisfies it.
type Responder interface {
	Respond(ctx context.Context, conv *chat.Conversation, input string) chat.Reply
}

// Handler manages web chat WebSocket connections.
type Handler struct {
	manager     *session.Manager
	responder   Responder
	limiter     *session.Limiter
	transcripts *session.TranscriptStore
	logger      *logging.Logger

	mu    sync.RWMutex
	conns map[string]*wsConn // sessionID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "typing", "history", "session", "error", "pong"
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"` // "assistant" or "user"
	Intent    string           `json:"intent,omitempty"`
	State     string           `json:"state,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a web chat handler. transcripts may be nil.
func NewHandler(manager *session.Manager, responder Responder, limiter *session.Limiter, transcripts *session.TranscriptStore, logger *logging.Logger) *Handler {
	if manager == nil {
		panic("webchat: session manager required")
	}
	if responder == nil {
		panic("webchat: responder required")
	}
	if limiter == nil {
		limiter = session.NewLimiter(session.LimiterConfig{})
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		manager:     manager,
		responder:   responder,
		limiter:     limiter,
		transcripts: transcripts,
		logger:      logger,
		conns:       make(map[string]*wsConn),
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}
	sess := h.manager.GetOrCreate(sessionID)
	sessionID = sess.ID

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	if h.transcripts != nil {
		if msgs, err := h.transcripts.List(r.Context(), sessionID, 50); err == nil && len(msgs) > 0 {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: toHistory(msgs)})
		}
	}

	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.conns[sessionID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.conns[sessionID] == wsc {
			delete(h.conns, sessionID)
		}
		h.mu.Unlock()
		close(wsc.done)
	}()

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}

		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		h.processMessage(r.Context(), sessionID, strings.TrimSpace(msg.Text))
	}
}

func (h *Handler) processMessage(ctx context.Context, sessionID, text string) {
	if ok, reason := h.limiter.AllowMessage(sessionID); !ok {
		h.sendToSession(sessionID, OutboundMessage{Type: "error", Text: reason})
		return
	}

	h.sendToSession(sessionID, OutboundMessage{Type: "typing"})

	sess := h.manager.GetOrCreate(sessionID)
	var reply chat.Reply
	sess.Do(func(conv *chat.Conversation) {
		before := conv.Flow.Completions()
		reply = h.responder.Respond(ctx, conv, text)
		if conv.Flow.Completions() > before {
			h.limiter.RecordBooking(sessionID)
		}
	})

	h.archive(ctx, sessionID, text, reply)

	h.sendToSession(sessionID, OutboundMessage{
		Type:      "message",
		Role:      "assistant",
		Text:      reply.Text,
		Intent:    reply.Intent.String(),
		State:     reply.FlowState.String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// sendToSession sends a message to an active WebSocket session.
func (h *Handler) sendToSession(sessionID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.conns[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, msg)
}

// HandleHistory returns chat history for a session.
// GET /webchat/history?session=
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if h.transcripts == nil {
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": []HistoryMessage{}})
		return
	}

	msgs, err := h.transcripts.List(r.Context(), sessionID, 100)
	if err != nil {
		h.logger.Error("webchat: failed to load history", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": toHistory(msgs)})
}

func (h *Handler) archive(ctx context.Context, sessionID, input string, reply chat.Reply) {
	if h.transcripts == nil {
		return
	}
	_ = h.transcripts.Append(ctx, sessionID, session.TranscriptMessage{Role: "user", Body: input})
	_ = h.transcripts.Append(ctx, sessionID, session.TranscriptMessage{
		Role:   "assistant",
		Body:   reply.Text,
		Intent: reply.Intent.String(),
		State:  reply.FlowState.String(),
	})
}

func toHistory(msgs []session.TranscriptMessage) []HistoryMessage {
	history := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, HistoryMessage{
			Role:      m.Role,
			Text:      m.Body,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	return history
}
