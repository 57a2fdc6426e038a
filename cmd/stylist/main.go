package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/bootstrap"
	"github.com/kailas-cloud/stylist/internal/config"
	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/product"
	logpkg "github.com/kailas-cloud/stylist/internal/logger"
	"github.com/kailas-cloud/stylist/internal/metrics"
	"github.com/kailas-cloud/stylist/internal/repository/orders"
	productrepo "github.com/kailas-cloud/stylist/internal/repository/product"
	chiTransport "github.com/kailas-cloud/stylist/internal/transport/chi"
	"github.com/kailas-cloud/stylist/internal/usecase/extract"
	healthuc "github.com/kailas-cloud/stylist/internal/usecase/health"
	"github.com/kailas-cloud/stylist/internal/usecase/predicate"
	"github.com/kailas-cloud/stylist/internal/usecase/preference"
	"github.com/kailas-cloud/stylist/internal/usecase/recommend"
	"github.com/kailas-cloud/stylist/internal/usecase/respond"
	"github.com/kailas-cloud/stylist/internal/usecase/retrieval"
	"github.com/kailas-cloud/stylist/internal/usecase/rewrite"
	"github.com/kailas-cloud/stylist/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting stylist API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("chat_provider", cfg.Chat.Provider),
		zap.String("chat_model", cfg.Chat.Model),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Bool("personalization", cfg.Personalization.EnablePurchaseHistory),
	)

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, &cfg)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to database")

	metrics.RegisterModelMetrics()

	chat, err := bootstrap.ChatModel(&cfg)
	if err != nil {
		logger.Fatal("Failed to create chat model", zap.Error(err))
	}
	queryEmbedder, err := bootstrap.Embedder(&cfg, store, cfg.Embedding.QueryInstruction, logger)
	if err != nil {
		logger.Fatal("Failed to create embedder", zap.Error(err))
	}

	schema, err := bootstrap.ProductSchema(&cfg)
	if err != nil {
		logger.Fatal("Invalid index config", zap.Error(err))
	}
	products := productrepo.New(store, schema)

	history := orders.New(nil)
	if cfg.Personalization.EnablePurchaseHistory {
		history, err = orders.Load(cfg.Personalization.OrdersFile)
		if err != nil {
			logger.Fatal("Failed to load order history", zap.Error(err))
		}
		logger.Info("Order history loaded", zap.Int("customers", history.Len()))
	}

	predicates, err := predicate.New(predicate.Config{
		BaseAttribute:     cfg.Retrieval.BaseAttribute,
		BaseValue:         cfg.Retrieval.BaseValue,
		PriceAttribute:    cfg.Retrieval.PriceAttribute,
		CategoryAttribute: product.AttrCategory,
	})
	if err != nil {
		logger.Fatal("Invalid retrieval config", zap.Error(err))
	}

	retriever := retrieval.New(products, queryEmbedder)
	pipeline := recommend.New(
		extract.New(chat),
		rewrite.New(chat),
		predicates,
		retriever,
		preference.New(history, retriever, chat),
		respond.New(chat, cfg.Personalization.EnablePurchaseHistory),
		cfg.Personalization.EnablePurchaseHistory,
	)

	healthSvc := healthuc.New(store, products, newEmbeddingHealthChecker(queryEmbedder), chat)

	server := chiTransport.NewServer(pipeline, healthSvc, cfg.Retrieval.TopK, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement health.ModelChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
