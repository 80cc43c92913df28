package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ModelStats accumulates query statistics for one retrieval model.
type ModelStats struct {
	Queries        int64 `json:"queries"`
	ZeroResults    int64 `json:"zero_results"`
	CacheHits      int64 `json:"cache_hits"`
	Errors         int64 `json:"errors"`
	TotalLatencyMs int64 `json:"total_latency_ms"`
}

// Report is a point-in-time snapshot of aggregated statistics.
type Report struct {
	TotalQueries int64                  `json:"total_queries"`
	ByModel      map[string]*ModelStats `json:"by_model"`
	Since        time.Time              `json:"since"`
}

// Aggregator consumes search events and folds them into per-model
// counters. HandleMessage satisfies kafka.MessageHandler.
type Aggregator struct {
	mu      sync.RWMutex
	byModel map[string]*ModelStats
	total   int64
	since   time.Time
	logger  *slog.Logger
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		byModel: make(map[string]*ModelStats),
		since:   time.Now().UTC(),
		logger:  slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleMessage decodes one search event and updates the counters.
func (a *Aggregator) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event SearchEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("decoding search event: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	stats, ok := a.byModel[event.Model]
	if !ok {
		stats = &ModelStats{}
		a.byModel[event.Model] = stats
	}
	a.total++
	stats.Queries++
	stats.TotalLatencyMs += event.LatencyMs
	switch event.Type {
	case EventZeroResult:
		stats.ZeroResults++
	case EventError:
		stats.Errors++
	}
	if event.CacheHit {
		stats.CacheHits++
	}
	return nil
}

// Snapshot returns a copy of the current statistics.
func (a *Aggregator) Snapshot() Report {
	a.mu.RLock()
	defer a.mu.RUnlock()

	byModel := make(map[string]*ModelStats, len(a.byModel))
	for model, stats := range a.byModel {
		copied := *stats
		byModel[model] = &copied
	}
	return Report{
		TotalQueries: a.total,
		ByModel:      byModel,
		Since:        a.since,
	}
}
