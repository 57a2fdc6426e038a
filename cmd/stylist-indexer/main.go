// Catalog indexer for stylist.
// Reads a JSON array of products, embeds them and upserts them into the Redis product index.
//
// Usage:
//
//	stylist-indexer -products config/products.json -workers 4 -batch-size 64
//
// Connection and model settings come from config/<ENV>.yaml, as for the API server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/bootstrap"
	"github.com/kailas-cloud/stylist/internal/config"
	logpkg "github.com/kailas-cloud/stylist/internal/logger"
	"github.com/kailas-cloud/stylist/internal/metrics"
	productrepo "github.com/kailas-cloud/stylist/internal/repository/product"
	"github.com/kailas-cloud/stylist/internal/usecase/catalog"
	"github.com/kailas-cloud/stylist/internal/version"
)

type flags struct {
	productsFile string
	recreate     bool
	batchSize    int
	workers      int
	metricsAddr  string
}

func parseFlags() flags {
	f := flags{}
	flag.StringVar(&f.productsFile, "products", "config/products.json", "JSON file with the product catalog")
	flag.BoolVar(&f.recreate, "recreate", false, "drop and recreate the index before loading")
	flag.IntVar(&f.batchSize, "batch-size", catalog.DefaultBatchSize, "products per embed+upsert batch")
	flag.IntVar(&f.workers, "workers", catalog.DefaultWorkers, "batches processed in parallel")
	flag.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while loading (empty = off)")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(logpkg.ContextWithLogger(ctx, logger), &cfg, f); err != nil {
		logger.Error("Indexing failed", zap.Error(err))
		cancel()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, f flags) error {
	logger := logpkg.FromContext(ctx)
	logger.Info("Starting stylist indexer",
		zap.String("version", version.String()),
		zap.String("products", f.productsFile),
		zap.Bool("recreate", f.recreate),
		zap.String("embedding_model", cfg.Embedding.Model),
	)

	products, err := readProducts(f.productsFile)
	if err != nil {
		return err
	}

	metrics.RegisterModelMetrics()
	if f.metricsAddr != "" {
		srv := serveMetrics(f.metricsAddr, logger)
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			_ = srv.Shutdown(shutCtx)
		}()
	}

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return err //nolint:wrapcheck // already describes the step
	}
	defer store.Close()

	// Documents are embedded without the query instruction.
	embedder, err := bootstrap.Embedder(cfg, store, "", logger)
	if err != nil {
		return err //nolint:wrapcheck // already describes the step
	}
	schema, err := bootstrap.ProductSchema(cfg)
	if err != nil {
		return err //nolint:wrapcheck // already describes the step
	}

	svc := catalog.New(productrepo.New(store, schema), embedder).
		WithBatchSize(f.batchSize).
		WithWorkers(f.workers)

	if err := svc.EnsureIndex(ctx, f.recreate); err != nil {
		return err //nolint:wrapcheck // already describes the step
	}
	report, err := svc.Load(ctx, products)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	logger.Info("Catalog indexed",
		zap.Int("products", report.Indexed),
		zap.Duration("duration", report.Duration),
	)
	return nil
}

func readProducts(path string) ([]catalog.Product, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse products %s: %w", path, err)
	}
	if len(products) == 0 {
		return nil, errors.New("products file is empty")
	}
	return products, nil
}

func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()
	return srv
}
