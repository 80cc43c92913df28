// Package handler exposes the retrieval session over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/searchcore-labs/retrieval-ranking-platform/internal/analytics"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/ranker"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/searcher/cache"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/session"
	apperrors "github.com/searchcore-labs/retrieval-ranking-platform/pkg/errors"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/logger"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/metrics"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/middleware"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/tracing"
)

const defaultModel = "bm25"

// SearchResponse is the JSON body returned by /search.
type SearchResponse struct {
	Query   string             `json:"query"`
	Model   string             `json:"model"`
	Tokens  []string           `json:"tokens"`
	Results []ranker.ScoredDoc `json:"results"`
}

// Handler serves search requests against one retrieval session.
type Handler struct {
	session      *session.Session
	cache        *cache.ResultCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a Handler. cache, collector, and m may be nil.
func New(s *session.Session, resultCache *cache.ResultCache, collector *analytics.Collector, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		session:      s,
		cache:        resultCache,
		collector:    collector,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /search?q=...&model=bm25|qlm&limit=N.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	model := r.URL.Query().Get("model")
	if model == "" {
		model = defaultModel
	}
	strategy, err := h.session.Strategy(model)
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	ctx, span := tracing.StartSpan(ctx, "search", middleware.GetRequestID(ctx))
	span.SetAttr("model", model)

	var results []ranker.ScoredDoc
	cacheHit := false
	if h.cache != nil {
		results, cacheHit, err = h.cache.GetOrCompute(ctx, model, query, limit, func() ([]ranker.ScoredDoc, error) {
			return strategy.Rank(ctx, query, limit)
		})
	} else {
		results, err = strategy.Rank(ctx, query, limit)
	}
	span.End()

	latency := time.Since(start)
	if err != nil {
		log.Error("search failed", "query", query, "model", model, "error", err)
		h.observe(model, "error", cacheHit, latency, 0)
		h.track(ctx, analytics.EventError, query, model, nil, nil, cacheHit, latency)
		h.writeError(w, apperrors.HTTPStatusCode(err), "search failed")
		return
	}

	tokens := h.session.PrepareQuery(query)
	resultType := "hit"
	eventType := analytics.EventCacheMiss
	if cacheHit {
		eventType = analytics.EventCacheHit
	}
	if len(results) == 0 {
		resultType = "zero_result"
		eventType = analytics.EventZeroResult
	}
	h.observe(model, resultType, cacheHit, latency, len(results))
	h.track(ctx, eventType, query, model, tokens, results, cacheHit, latency)

	log.Info("search completed",
		"query", query,
		"model", model,
		"returned", len(results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, &SearchResponse{
		Query:   query,
		Model:   model,
		Tokens:  tokens,
		Results: results,
	})
}

// CacheStats handles GET /cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	h.writeJSON(w, http.StatusOK, map[string]int64{
		"hits":   hits,
		"misses": misses,
	})
}

// CacheInvalidate handles POST /cache/invalidate, flushing every cached
// ranking.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) observe(model, resultType string, cacheHit bool, latency time.Duration, returned int) {
	if h.metrics == nil {
		return
	}
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(model, resultType).Inc()
	h.metrics.SearchLatency.WithLabelValues(model, cacheStatus).Observe(latency.Seconds())
	h.metrics.SearchResultsCount.WithLabelValues(model).Observe(float64(returned))
	if cacheHit {
		h.metrics.CacheHitsTotal.Inc()
	} else {
		h.metrics.CacheMissesTotal.Inc()
	}
}

func (h *Handler) track(ctx context.Context, eventType analytics.EventType, query, model string, tokens []string, results []ranker.ScoredDoc, cacheHit bool, latency time.Duration) {
	if h.collector == nil {
		return
	}
	topScore := 0.0
	if len(results) > 0 {
		topScore = results[0].Score
	}
	h.collector.Track(analytics.SearchEvent{
		Type:      eventType,
		Query:     query,
		Model:     model,
		Tokens:    tokens,
		Returned:  len(results),
		TopScore:  topScore,
		LatencyMs: latency.Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(ctx),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
