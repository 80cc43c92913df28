// Package analytics tracks search-query events: the searcher publishes
// them to Kafka through a buffered collector, and the aggregator service
// consumes them into per-model statistics.
package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventZeroResult EventType = "zero_result"
	EventError      EventType = "error"
)

// SearchEvent records one query against one retrieval model.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Model     string    `json:"model"`
	Tokens    []string  `json:"tokens"`
	Returned  int       `json:"returned"`
	TopScore  float64   `json:"top_score"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}
