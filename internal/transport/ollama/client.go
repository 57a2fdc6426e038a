// Package ollama adapts a local Ollama server to the domain chat and embedding contracts.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/kailas-cloud/stylist/internal/domain"
)

// Provider is the label used in metrics and logs.
const Provider = "ollama"

var (
	_ domain.ChatModel     = (*ChatModel)(nil)
	_ domain.Embedder      = (*Embedder)(nil)
	_ domain.BatchEmbedder = (*Embedder)(nil)
	_ domain.HealthChecker = (*ChatModel)(nil)
	_ domain.HealthChecker = (*Embedder)(nil)
)

// Config holds connection settings.
type Config struct {
	Host      string        // e.g. http://localhost:11434
	Timeout   time.Duration // per-request HTTP timeout; 0 = none
	KeepAlive time.Duration // how long the server keeps the model loaded; 0 = server default
	NumCtx    int           // chat context window in tokens; 0 = model default
}

func newClient(cfg *Config) (*api.Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("ollama host is required")
	}
	u, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}
	return api.NewClient(u, &http.Client{Timeout: cfg.Timeout}), nil
}

func keepAlive(d time.Duration) *api.Duration {
	if d <= 0 {
		return nil
	}
	return &api.Duration{Duration: d}
}

func wrapError(op string, err error) error {
	var se api.StatusError
	if errors.As(err, &se) {
		return fmt.Errorf("%s: status %d: %s: %w", op, se.StatusCode, se.ErrorMessage, domain.ErrProviderError)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrProviderError, err)
}

// ChatModel calls /api/chat without streaming. Structured requests pass the JSON schema as format.
type ChatModel struct {
	client      *api.Client
	model       string
	temperature float32
	keepAlive   time.Duration
	numCtx      int
}

// NewChatModel creates a chat client for model (e.g. llama3.2).
func NewChatModel(cfg *Config, model string, temperature float32) (*ChatModel, error) {
	if model == "" {
		return nil, errors.New("model is required")
	}
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ChatModel{
		client: c, model: model, temperature: temperature,
		keepAlive: cfg.KeepAlive, numCtx: cfg.NumCtx,
	}, nil
}

// Chat sends the messages and collects the reply.
func (m *ChatModel) Chat(ctx context.Context, req *domain.ChatRequest) (domain.ChatResult, error) {
	stream := false
	creq := &api.ChatRequest{
		Model:     m.model,
		Messages:  toMessages(req.Messages),
		Stream:    &stream,
		KeepAlive: keepAlive(m.keepAlive),
		Options:   map[string]any{"temperature": m.temperature},
	}
	if m.numCtx > 0 {
		creq.Options["num_ctx"] = m.numCtx
	}
	if req.Format != nil {
		creq.Format = req.Format.Schema
	}

	var (
		content strings.Builder
		res     domain.ChatResult
	)
	err := m.client.Chat(ctx, creq, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		if resp.Done {
			res.PromptTokens = resp.PromptEvalCount
			res.CompletionTokens = resp.EvalCount
		}
		return nil
	})
	if err != nil {
		return domain.ChatResult{}, wrapError("chat", err)
	}

	res.Content = content.String()
	if strings.TrimSpace(res.Content) == "" {
		return domain.ChatResult{}, fmt.Errorf("%w: empty completion", domain.ErrMalformedResponse)
	}
	return res, nil
}

// HealthCheck pings the server.
func (m *ChatModel) HealthCheck(ctx context.Context) error {
	if err := m.client.Heartbeat(ctx); err != nil {
		return wrapError("heartbeat", err)
	}
	return nil
}

func toMessages(msgs []domain.Message) []api.Message {
	out := make([]api.Message, len(msgs))
	for i, msg := range msgs {
		out[i] = api.Message{Role: string(msg.Role), Content: msg.Content}
	}
	return out
}

// Embedder calls /api/embed (e.g. mxbai-embed-large).
type Embedder struct {
	client    *api.Client
	model     string
	keepAlive time.Duration
}

// NewEmbedder creates an embedding client for model.
func NewEmbedder(cfg *Config, model string) (*Embedder, error) {
	if model == "" {
		return nil, errors.New("model is required")
	}
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Embedder{client: c, model: model, keepAlive: cfg.KeepAlive}, nil
}

// Embed vectorizes a single text.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0], TotalTokens: res.TotalTokens}, nil
}

// BatchEmbed vectorizes texts in one request; /api/embed keeps input order.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model:     e.model,
		Input:     texts,
		KeepAlive: keepAlive(e.keepAlive),
	})
	if err != nil {
		return domain.BatchEmbeddingResult{}, wrapError("embed", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: %d embeddings for %d inputs",
			domain.ErrMalformedResponse, len(resp.Embeddings), len(texts))
	}
	return domain.BatchEmbeddingResult{Embeddings: resp.Embeddings, TotalTokens: resp.PromptEvalCount}, nil
}

// HealthCheck pings the server.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if err := e.client.Heartbeat(ctx); err != nil {
		return wrapError("heartbeat", err)
	}
	return nil
}
