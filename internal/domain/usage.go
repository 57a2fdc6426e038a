package domain

import (
	"context"
	"sync"
)

type usageKey struct{}

// Usage collects token usage for a single request.
// Pipeline stages run concurrently, so all access goes through the mutex.
type Usage struct {
	mu               sync.Mutex
	embeddingTokens  int
	promptTokens     int
	completionTokens int
	modelCalls       int
}

// NewContextWithUsage returns a context with an attached usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *Usage) {
	u := &Usage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext returns the collector from ctx, or nil.
func UsageFromContext(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}

// AddEmbedding records embedding tokens. Safe on a nil receiver.
func (u *Usage) AddEmbedding(tokens int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.embeddingTokens += tokens
	u.mu.Unlock()
}

// AddChat records one chat call. Safe on a nil receiver.
func (u *Usage) AddChat(prompt, completion int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.promptTokens += prompt
	u.completionTokens += completion
	u.modelCalls++
	u.mu.Unlock()
}

// UsageSnapshot is an immutable copy of the counters.
type UsageSnapshot struct {
	EmbeddingTokens  int
	PromptTokens     int
	CompletionTokens int
	ModelCalls       int
}

// Snapshot copies the current counters. Safe on a nil receiver.
func (u *Usage) Snapshot() UsageSnapshot {
	if u == nil {
		return UsageSnapshot{}
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return UsageSnapshot{
		EmbeddingTokens:  u.embeddingTokens,
		PromptTokens:     u.promptTokens,
		CompletionTokens: u.completionTokens,
		ModelCalls:       u.modelCalls,
	}
}
