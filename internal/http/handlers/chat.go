package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medbookai/medbook/internal/booking"
	"github.com/medbookai/medbook/internal/chat"
	"github.com/medbookai/medbook/internal/observability/metrics"
	"github.com/medbookai/medbook/internal/session"
	"github.com/medbookai/medbook/pkg/logging"
)

const maxMessageBytes = 4096

// ChatHandler serves the conversational endpoints.
type ChatHandler struct {
	manager     *session.Manager
	svc         *chat.Service
	limiter     *session.Limiter
	transcripts *session.TranscriptStore
	metrics     *metrics.ChatMetrics
	logger      *logging.Logger
}

// NewChatHandler creates the chat handler. transcripts and metrics may be nil.
func NewChatHandler(manager *session.Manager, svc *chat.Service, limiter *session.Limiter, transcripts *session.TranscriptStore, m *metrics.ChatMetrics, logger *logging.Logger) *ChatHandler {
	if manager == nil {
		panic("handlers: session manager required")
	}
	if svc == nil {
		panic("handlers: chat service required")
	}
	if limiter == nil {
		limiter = session.NewLimiter(session.LimiterConfig{})
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{
		manager:     manager,
		svc:         svc,
		limiter:     limiter,
		transcripts: transcripts,
		metrics:     m,
		logger:      logger,
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string   `json:"session_id"`
	Reply     string   `json:"reply"`
	Intent    string   `json:"intent"`
	State     string   `json:"state"`
	Sources   []string `json:"sources,omitempty"`
}

// HandleChat processes one conversation turn.
// POST /chat
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes)).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		jsonError(w, "message is required", http.StatusBadRequest)
		return
	}

	sess := h.manager.GetOrCreate(strings.TrimSpace(req.SessionID))

	if ok, reason := h.limiter.AllowMessage(sess.ID); !ok {
		jsonError(w, reason, http.StatusTooManyRequests)
		return
	}

	var reply chat.Reply
	sess.Do(func(conv *chat.Conversation) {
		// Hold a confirming flow at the booking cap instead of saving.
		if conv.Flow.State() == booking.StateConfirming && !h.limiter.AllowBooking(sess.ID) {
			reply = chat.Reply{
				Text:      "You've reached the booking limit for now. Please try again later.",
				Intent:    chat.IntentBooking,
				FlowState: conv.Flow.State(),
			}
			return
		}

		before := conv.Flow.Completions()
		reply = h.svc.Respond(r.Context(), conv, req.Message)
		if conv.Flow.Completions() > before {
			h.limiter.RecordBooking(sess.ID)
			h.metrics.ObserveBooking("saved")
		}
	})

	h.metrics.ObserveTurn(reply.Intent.String(), reply.FlowState.String())
	h.archive(r, sess.ID, req.Message, reply)

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: sess.ID,
		Reply:     reply.Text,
		Intent:    reply.Intent.String(),
		State:     reply.FlowState.String(),
		Sources:   reply.Sources,
	})
}

// SessionStatus reports the booking progress of a session.
// GET /sessions/{sessionID}/status
func (h *ChatHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, ok := h.manager.Get(id)
	if !ok {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	var state, summary string
	sess.Do(func(conv *chat.Conversation) {
		state = conv.Flow.State().String()
		summary = conv.Flow.StatusSummary()
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sess.ID,
		"state":      state,
		"summary":    summary,
	})
}

// ResetSession discards a session's conversation state.
// POST /sessions/{sessionID}/reset
func (h *ChatHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !h.manager.Reset(id) {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	h.limiter.Forget(id)
	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": id,
		"status":     "reset",
	})
}

func (h *ChatHandler) archive(r *http.Request, sessionID, input string, reply chat.Reply) {
	if h.transcripts == nil {
		return
	}
	ctx := r.Context()
	if err := h.transcripts.Append(ctx, sessionID, session.TranscriptMessage{Role: "user", Body: input}); err != nil {
		h.logger.Warn("transcript append failed", "session_id", sessionID, "error", err)
		return
	}
	err := h.transcripts.Append(ctx, sessionID, session.TranscriptMessage{
		Role:   "assistant",
		Body:   reply.Text,
		Intent: reply.Intent.String(),
		State:  reply.FlowState.String(),
	})
	if err != nil {
		h.logger.Warn("transcript append failed", "session_id", sessionID, "error", err)
	}
}
