package chat

// MaxMemoryMessages caps how much conversation history a session retains.
// Only the most recent llmWindowMessages are sent to the LLM.
const (
	MaxMemoryMessages = 25
	llmWindowMessages = 10
)

// Memory is a session's rolling conversation history. Not safe for
// concurrent use; the owning session serializes access.
type Memory struct {
	messages []ChatMessage
}

// Add appends a message, evicting the oldest once the cap is reached.
func (m *Memory) Add(role, content string) {
	m.messages = append(m.messages, ChatMessage{Role: role, Content: content})
	if len(m.messages) > MaxMemoryMessages {
		m.messages = m.messages[len(m.messages)-MaxMemoryMessages:]
	}
}

// Window returns the slice of history sent to the LLM.
func (m *Memory) Window() []ChatMessage {
	if len(m.messages) <= llmWindowMessages {
		return m.All()
	}
	return m.All()[len(m.messages)-llmWindowMessages:]
}

// All returns a copy of the retained history.
func (m *Memory) All() []ChatMessage {
	out := make([]ChatMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len reports how many messages are retained.
func (m *Memory) Len() int { return len(m.messages) }

// Clear drops all history.
func (m *Memory) Clear() { m.messages = nil }
