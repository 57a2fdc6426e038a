// Package openai adapts OpenAI-compatible HTTP APIs to the domain chat and embedding contracts.
package openai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds provider settings shared by chat and embeddings.
type Config struct {
	APIKey  string
	BaseURL string // empty = api.openai.com
	User    string
}

func newClient(cfg *Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// healthCheck lists models, which costs no tokens.
func healthCheck(ctx context.Context, c *openai.Client) error {
	if _, err := c.ListModels(ctx); err != nil {
		return wrapAPIError("list models", err)
	}
	return nil
}

// Provider is the label used in metrics and logs.
const Provider = "openai"

func checkModel(model string) error {
	if model == "" {
		return errors.New("model is required")
	}
	return nil
}
