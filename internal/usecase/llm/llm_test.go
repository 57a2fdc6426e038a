package llm

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterModelMetrics()
	os.Exit(m.Run())
}

type fakeChat struct {
	res domain.ChatResult
	err error
}

func (f *fakeChat) Chat(context.Context, *domain.ChatRequest) (domain.ChatResult, error) {
	return f.res, f.err
}

type fakeEmbedder struct {
	batchSizes []int
	err        error
}

func (f *fakeEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 2}, nil
}

func (f *fakeEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	f.batchSizes = append(f.batchSizes, len(texts))
	if f.err != nil {
		return domain.BatchEmbeddingResult{}, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{float32(i)}
	}
	return domain.BatchEmbeddingResult{Embeddings: out, TotalTokens: len(texts)}, nil
}

func TestInstrumentedChat_RecordsUsageAndMetrics(t *testing.T) {
	inner := &fakeChat{res: domain.ChatResult{Content: "ok", PromptTokens: 10, CompletionTokens: 4}}
	c := NewInstrumentedChat(inner, "test-chat", "m1")
	ctx, usage := domain.NewContextWithUsage(context.Background())

	res, err := c.Chat(ctx, &domain.ChatRequest{Capability: "rewrite"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "ok" {
		t.Errorf("Content = %q", res.Content)
	}
	snap := usage.Snapshot()
	if snap.PromptTokens != 10 || snap.CompletionTokens != 4 || snap.ModelCalls != 1 {
		t.Errorf("usage = %+v", snap)
	}
	if v := testutil.ToFloat64(metrics.ChatRequestsTotal.WithLabelValues("test-chat", "m1", "rewrite", "success")); v != 1 {
		t.Errorf("success counter = %v", v)
	}
}

func TestInstrumentedChat_Error(t *testing.T) {
	boom := errors.New("boom")
	c := NewInstrumentedChat(&fakeChat{err: boom}, "test-chat-err", "m1")
	ctx, usage := domain.NewContextWithUsage(context.Background())

	_, err := c.Chat(ctx, &domain.ChatRequest{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if usage.Snapshot().ModelCalls != 0 {
		t.Error("failed calls must not be recorded as usage")
	}
	if v := testutil.ToFloat64(metrics.ChatRequestsTotal.WithLabelValues("test-chat-err", "m1", "unknown", "error")); v != 1 {
		t.Errorf("error counter = %v", v)
	}
}

func TestInstrumentedEmbedder_Chunks(t *testing.T) {
	inner := &fakeEmbedder{}
	e := NewInstrumentedEmbedder(inner, "test-emb", "m", 2)
	ctx, usage := domain.NewContextWithUsage(context.Background())

	res, err := e.BatchEmbed(ctx, []string{"a", "b", "c", "d", "e"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.batchSizes) != 3 || inner.batchSizes[2] != 1 {
		t.Errorf("batch sizes = %v", inner.batchSizes)
	}
	if len(res.Embeddings) != 5 || res.TotalTokens != 5 {
		t.Errorf("result = %+v", res)
	}
	if usage.Snapshot().EmbeddingTokens != 5 {
		t.Errorf("usage = %+v", usage.Snapshot())
	}
}

func TestInstrumentedEmbedder_EmbedError(t *testing.T) {
	boom := errors.New("down")
	e := NewInstrumentedEmbedder(&fakeEmbedder{err: boom}, "test-emb-err", "m", 0)
	if _, err := e.Embed(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if _, err := e.BatchEmbed(context.Background(), []string{"x"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestInstrumentedEmbedder_EmptyBatch(t *testing.T) {
	inner := &fakeEmbedder{}
	e := NewInstrumentedEmbedder(inner, "test-emb", "m", 0)
	res, err := e.BatchEmbed(context.Background(), nil)
	if err != nil || len(res.Embeddings) != 0 || len(inner.batchSizes) != 0 {
		t.Errorf("res=%+v err=%v calls=%v", res, err, inner.batchSizes)
	}
}
