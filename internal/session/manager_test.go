package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbookai/medbook/internal/booking"
	"github.com/medbookai/medbook/internal/chat"
)

func newTestManager(opts ...ManagerOption) *Manager {
	factory := func() *chat.Conversation {
		return chat.NewConversation(&booking.StubStore{}, &booking.StubNotifier{}, nil)
	}
	return NewManager(factory, nil, opts...)
}

func TestManagerCreatesSessionWithID(t *testing.T) {
	m := newTestManager()

	s := m.GetOrCreate("")
	require.NotNil(t, s)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, m.Len())
}

func TestManagerReturnsSameSession(t *testing.T) {
	m := newTestManager()

	first := m.GetOrCreate("")
	second := m.GetOrCreate(first.ID)
	assert.Same(t, first, second)
	assert.Equal(t, 1, m.Len())
}

func TestManagerAdoptsClientID(t *testing.T) {
	m := newTestManager()

	s := m.GetOrCreate("client-chosen")
	assert.Equal(t, "client-chosen", s.ID)

	_, ok := m.Get("client-chosen")
	assert.True(t, ok)
}

func TestManagerResetDiscardsFlowState(t *testing.T) {
	m := newTestManager()
	s := m.GetOrCreate("")

	s.Do(func(conv *chat.Conversation) {
		conv.Flow.Start()
		assert.True(t, conv.Flow.IsActive())
	})

	require.True(t, m.Reset(s.ID))
	s.Do(func(conv *chat.Conversation) {
		assert.False(t, conv.Flow.IsActive())
	})

	assert.False(t, m.Reset("unknown"))
}

func TestManagerEvictsIdleSessions(t *testing.T) {
	m := newTestManager(WithIdleTTL(time.Minute))

	stale := m.GetOrCreate("")
	fresh := m.GetOrCreate("")

	// Age only the stale session past the TTL.
	stale.mu.Lock()
	stale.lastSeen = time.Now().Add(-2 * time.Minute)
	stale.mu.Unlock()

	evicted := m.evictIdle(time.Now())
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, m.Len())

	_, ok := m.Get(fresh.ID)
	assert.True(t, ok)
	_, ok = m.Get(stale.ID)
	assert.False(t, ok)
}
