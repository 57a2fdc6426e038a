// Package bootstrap builds the components shared by the API server and the indexer from config.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/config"
	"github.com/kailas-cloud/stylist/internal/db"
	dbRedis "github.com/kailas-cloud/stylist/internal/db/redis"
	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/product"
	"github.com/kailas-cloud/stylist/internal/metrics"
	"github.com/kailas-cloud/stylist/internal/repository/embcache"
	productrepo "github.com/kailas-cloud/stylist/internal/repository/product"
	ollamaTransport "github.com/kailas-cloud/stylist/internal/transport/ollama"
	openaiTransport "github.com/kailas-cloud/stylist/internal/transport/openai"
	"github.com/kailas-cloud/stylist/internal/usecase/llm"
)

const clientName = "stylist"

// OpenStore connects to Redis and waits until it answers.
func OpenStore(ctx context.Context, cfg *config.Config) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Username:   cfg.Database.Username,
		Password:   cfg.Database.Password,
		DB:         cfg.Database.DB,
		ClientName: clientName,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

// ProductSchema maps the index section of cfg onto the product hash layout.
func ProductSchema(cfg *config.Config) (productrepo.Schema, error) {
	algo, ok := db.ParseVectorAlgorithm(cfg.Index.Algorithm)
	if !ok {
		return productrepo.Schema{}, fmt.Errorf("unknown vector algorithm %q", cfg.Index.Algorithm)
	}
	return productrepo.Schema{
		IndexName: cfg.Index.Name,
		KeyPrefix: cfg.Index.KeyPrefix,
		Tags:      []string{product.AttrGender, product.AttrCategory, product.AttrColor, product.AttrName},
		Numerics:  []string{cfg.Retrieval.PriceAttribute},
		Dim:       cfg.Embedding.Dimensions,
		Algorithm: algo,
		HNSWM:     cfg.Index.HNSWM,
		HNSWEF:    cfg.Index.HNSWEFConstruct,
	}, nil
}

func ollamaConfig(cfg *config.Config) *ollamaTransport.Config {
	o := cfg.Providers.Ollama
	return &ollamaTransport.Config{
		Host:      o.Host,
		Timeout:   time.Duration(o.TimeoutSec) * time.Second,
		KeepAlive: time.Duration(o.KeepAliveSec) * time.Second,
		NumCtx:    o.NumCtx,
	}
}

func openaiConfig(cfg *config.Config) *openaiTransport.Config {
	return &openaiTransport.Config{
		APIKey:  cfg.Providers.OpenAI.APIKey,
		BaseURL: cfg.Providers.OpenAI.BaseURL,
	}
}

// ChatModel returns the configured chat provider wrapped with metrics.
func ChatModel(cfg *config.Config) (*llm.InstrumentedChat, error) {
	var (
		base domain.ChatModel
		err  error
	)
	switch cfg.Chat.Provider {
	case config.ProviderOllama:
		base, err = ollamaTransport.NewChatModel(ollamaConfig(cfg), cfg.Chat.Model, cfg.Chat.Temperature)
	case config.ProviderOpenAI:
		base, err = openaiTransport.NewChatModel(openaiConfig(cfg), cfg.Chat.Model, cfg.Chat.Temperature)
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Chat.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return llm.NewInstrumentedChat(base, cfg.Chat.Provider, cfg.Chat.Model), nil
}

// Embedder assembles the decorator chain: provider -> Instrumented -> Cached -> Instruction.
// store may be nil, which disables the cache. An empty instruction embeds texts as they are.
func Embedder(cfg *config.Config, store *dbRedis.Store, instruction string, logger *zap.Logger) (domain.Embedder, error) {
	e := cfg.Embedding
	var (
		base domain.Embedder
		err  error
	)
	switch e.Provider {
	case config.ProviderOllama:
		base, err = ollamaTransport.NewEmbedder(ollamaConfig(cfg), e.Model)
	case config.ProviderOpenAI:
		base, err = openaiTransport.NewEmbedder(openaiConfig(cfg), e.Model, e.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", e.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	var embedder domain.Embedder = llm.NewInstrumentedEmbedder(base, e.Provider, e.Model, e.MaxBatchSize)

	// Cache sits above metrics so hits cost no provider call and no token count.
	if store != nil && e.Cache.Enabled {
		ttl := time.Duration(e.Cache.TTLSec) * time.Second
		embedder = embcache.New(embedder, store, e.Model, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	// Instruction prefix is outermost so the cache key includes it.
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction), nil
	}
	return embedder, nil
}
