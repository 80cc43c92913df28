// Command searcher starts the retrieval service.
//
// It loads the document collection (from Postgres or a JSON file), builds
// the in-memory retrieval session (vocabulary, inverted index, language
// models), and serves ranked search over HTTP:
//
//	GET /api/v1/search?q=...&model=bm25|qlm&limit=N
//	GET /api/v1/cache/stats
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/searchcore-labs/retrieval-ranking-platform/internal/analytics"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/corpus"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/searcher/cache"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/searcher/handler"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/session"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/store"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/config"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/health"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/kafka"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/logger"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/metrics"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/middleware"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/postgres"
	pkgredis "github.com/searchcore-labs/retrieval-ranking-platform/pkg/redis"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	// Corpus load: Postgres by default, JSON file for local development.
	rawDocs, pgClient, err := loadCorpus(ctx, cfg)
	if err != nil {
		slog.Error("failed to load corpus", "error", err)
		os.Exit(1)
	}
	if pgClient != nil {
		defer pgClient.Close()
	}
	if len(rawDocs) == 0 {
		slog.Error("corpus is empty, refusing to start")
		os.Exit(1)
	}

	sess, err := session.New(ctx, corpus.TokenizeAll(rawDocs), session.Params{
		K1:        cfg.Retrieval.K1,
		B:         cfg.Retrieval.B,
		Alpha:     cfg.Retrieval.Alpha,
		Normalize: cfg.Retrieval.Normalize,
	})
	if err != nil {
		slog.Error("failed to build retrieval session", "error", err)
		os.Exit(1)
	}
	m.CorpusDocuments.Set(float64(sess.DocCount()))
	m.VocabularySize.Set(float64(sess.VocabSize()))
	m.IndexTerms.Set(float64(sess.IndexTerms()))
	slog.Info("retrieval session ready",
		"documents", sess.DocCount(),
		"vocabulary", sess.VocabSize(),
	)

	// Result cache is optional: the service degrades to uncached scoring
	// when Redis is unreachable at startup.
	var resultCache *cache.ResultCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, running without result cache", "error", err)
	} else {
		defer redisClient.Close()
		resultCache = cache.New(redisClient, cfg.Redis)
	}

	// Analytics events go to Kafka off the query path.
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
	defer producer.Close()
	collector := analytics.NewCollector(producer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	h := handler.New(sess, resultCache, collector, m, cfg.Retrieval.DefaultLimit, cfg.Retrieval.MaxResults)

	checker := health.NewChecker()
	checker.Register("session", func(ctx context.Context) health.ComponentHealth {
		if sess.DocCount() == 0 {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no documents indexed"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents indexed", sess.DocCount()),
		}
	})
	if redisClient != nil {
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := redisClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.RequestTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID()(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

// loadCorpus reads the raw documents from the configured source. The
// Postgres client is returned so the caller controls its lifetime; it is
// nil when the corpus comes from a file.
func loadCorpus(ctx context.Context, cfg *config.Config) ([]corpus.RawDocument, *postgres.Client, error) {
	if cfg.Corpus.Source == "file" {
		docs, err := store.LoadCorpusFile(cfg.Corpus.File)
		return docs, nil, err
	}

	client, err := postgres.New(cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}

	corpusStore := store.New(client)
	err = resilience.WithTimeout(ctx, 30*time.Second, "ensure-schema", func(ctx context.Context) error {
		return corpusStore.EnsureSchema(ctx)
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	var docs []corpus.RawDocument
	err = resilience.Retry(ctx, "load-documents", resilience.RetryConfig{}, func() error {
		var loadErr error
		docs, loadErr = corpusStore.LoadDocuments(ctx)
		return loadErr
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return docs, client, nil
}
