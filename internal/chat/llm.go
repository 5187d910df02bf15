package chat

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is an internal message representation that can include system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient is the text-completion collaborator. The chat service treats it
// as a black box and survives its failures with a fallback reply.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// StubLLMClient returns canned responses for tests and offline deployments.
type StubLLMClient struct {
	Reply    string
	FailWith error
	Requests []LLMRequest
}

var _ LLMClient = (*StubLLMClient)(nil)

func (c *StubLLMClient) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	c.Requests = append(c.Requests, req)
	if c.FailWith != nil {
		return LLMResponse{}, c.FailWith
	}
	reply := c.Reply
	if reply == "" {
		reply = "I'm happy to help with that."
	}
	return LLMResponse{Text: reply, StopReason: "stop"}, nil
}
