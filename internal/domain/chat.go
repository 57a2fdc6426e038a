package domain

import (
	"context"
	"encoding/json"
	"strings"
)

// Role tags a chat message with its author.
type Role string

// Chat roles understood by every provider.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged chat turn.
type Message struct {
	Role    Role
	Content string
}

// System builds a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant builds an assistant message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// ResponseFormat constrains the model output to a JSON schema.
type ResponseFormat struct {
	Name   string
	Schema json.RawMessage
}

// ChatRequest is a provider-neutral chat completion request.
type ChatRequest struct {
	// Capability names the pipeline step issuing the call; used for metrics and logs.
	Capability string
	Messages   []Message
	Format     *ResponseFormat // nil = free text
}

// ChatResult carries the completion text and token usage.
type ChatResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// ChatModel is the text generation contract shared between layers.
// Implementations return an error for transport failures and empty completions.
type ChatModel interface {
	Chat(ctx context.Context, req *ChatRequest) (ChatResult, error)
}

// Text trims the completion.
func (r ChatResult) Text() string {
	return strings.TrimSpace(r.Content)
}
