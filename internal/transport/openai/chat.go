package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/stylist/internal/domain"
)

var (
	_ domain.ChatModel     = (*ChatModel)(nil)
	_ domain.HealthChecker = (*ChatModel)(nil)
)

// ChatModel calls /chat/completions. Structured requests use the json_schema response format in strict mode.
type ChatModel struct {
	client      *openai.Client
	model       string
	temperature float32
	user        string
}

// NewChatModel creates a chat model client.
func NewChatModel(cfg *Config, model string, temperature float32) (*ChatModel, error) {
	if err := checkModel(model); err != nil {
		return nil, err
	}
	return &ChatModel{
		client:      newClient(cfg),
		model:       model,
		temperature: temperature,
		user:        cfg.User,
	}, nil
}

// Chat sends the messages and returns the first choice.
func (m *ChatModel) Chat(ctx context.Context, req *domain.ChatRequest) (domain.ChatResult, error) {
	creq := openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    toMessages(req.Messages),
		Temperature: m.temperature,
		User:        m.user,
	}
	if req.Format != nil {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Format.Name,
				Schema: req.Format.Schema,
				Strict: true,
			},
		}
	}

	resp, err := m.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return domain.ChatResult{}, wrapAPIError("chat completion", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return domain.ChatResult{}, fmt.Errorf("%w: empty completion", domain.ErrMalformedResponse)
	}

	return domain.ChatResult{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// HealthCheck verifies API availability.
func (m *ChatModel) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, m.client)
}

func toMessages(msgs []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = openai.ChatCompletionMessage{Role: string(msg.Role), Content: msg.Content}
	}
	return out
}
