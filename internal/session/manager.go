package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medbookai/medbook/internal/chat"
	"github.com/medbookai/medbook/pkg/logging"
)

const defaultIdleTTL = 2 * time.Hour

// Session owns one conversation. Callers go through Do so turns within a
// session are processed sequentially even under concurrent requests.
type Session struct {
	ID string

	mu       sync.Mutex
	conv     *chat.Conversation
	lastSeen time.Time
}

// Do runs fn with exclusive access to the session's conversation.
func (s *Session) Do(fn func(conv *chat.Conversation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	fn(s.conv)
}

// Manager tracks active sessions and evicts idle ones.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	newConversation func() *chat.Conversation
	idleTTL         time.Duration
	logger          *logging.Logger
}

// ManagerOption tunes the manager.
type ManagerOption func(*Manager)

// WithIdleTTL overrides how long an untouched session survives.
func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) { m.idleTTL = ttl }
}

// NewManager creates a session manager. factory builds the conversation for
// each new session.
func NewManager(factory func() *chat.Conversation, logger *logging.Logger, opts ...ManagerOption) *Manager {
	if factory == nil {
		panic("session: conversation factory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	m := &Manager{
		sessions:        make(map[string]*Session),
		newConversation: factory,
		idleTTL:         defaultIdleTTL,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.cleanup()
	return m
}

// GetOrCreate returns the session for id, creating one when id is empty or
// unknown. The returned session always has a non-empty ID.
func (m *Manager) GetOrCreate(id string) *Session {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Re-check under the write lock.
	if id != "" {
		if s, ok := m.sessions[id]; ok {
			return s
		}
	} else {
		id = uuid.NewString()
	}

	s := &Session{
		ID:       id,
		conv:     m.newConversation(),
		lastSeen: time.Now(),
	}
	m.sessions[id] = s
	m.logger.Debug("session created", "session_id", id)
	return s
}

// Get returns an existing session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Reset replaces the session's conversation with a fresh one, discarding any
// in-progress booking and memory. Returns false for unknown sessions.
func (m *Manager) Reset(id string) bool {
	s, ok := m.Get(id)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv = m.newConversation()
	s.lastSeen = time.Now()
	m.logger.Info("session reset", "session_id", id)
	return true
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// evictIdle removes sessions idle past the TTL and reports how many went.
func (m *Manager) evictIdle(now time.Time) int {
	cutoff := now.Add(-m.idleTTL)
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (m *Manager) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		if n := m.evictIdle(time.Now()); n > 0 {
			m.logger.Debug("idle sessions evicted", "count", n)
		}
	}
}
