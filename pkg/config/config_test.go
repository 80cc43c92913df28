package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Retrieval.K1 != 1.2 || cfg.Retrieval.B != 0.75 || cfg.Retrieval.Alpha != 0.75 {
		t.Errorf("retrieval defaults = %+v", cfg.Retrieval)
	}
	if cfg.Corpus.Source != "postgres" {
		t.Errorf("Corpus.Source = %q, want postgres", cfg.Corpus.Source)
	}
	if cfg.Redis.CacheTTL != 60*time.Second {
		t.Errorf("Redis.CacheTTL = %v, want 60s", cfg.Redis.CacheTTL)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: 9999
retrieval:
  k1: 1.6
  b: 0.5
corpus:
  source: file
  file: testdata/corpus.json
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Retrieval.K1 != 1.6 || cfg.Retrieval.B != 0.5 {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	// Unset fields keep defaults.
	if cfg.Retrieval.Alpha != 0.75 {
		t.Errorf("Retrieval.Alpha = %v, want default 0.75", cfg.Retrieval.Alpha)
	}
	if cfg.Corpus.Source != "file" || cfg.Corpus.File != "testdata/corpus.json" {
		t.Errorf("corpus = %+v", cfg.Corpus)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative k1", "retrieval:\n  k1: -0.5\n"},
		{"b out of range", "retrieval:\n  b: 1.5\n"},
		{"alpha out of range", "retrieval:\n  alpha: 2\n"},
		{"zero default limit", "retrieval:\n  defaultLimit: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("writing config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RP_SERVER_PORT", "7070")
	t.Setenv("RP_RETRIEVAL_K1", "2.0")
	t.Setenv("RP_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RP_CORPUS_SOURCE", "file")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Retrieval.K1 != 2.0 {
		t.Errorf("Retrieval.K1 = %v, want 2.0", cfg.Retrieval.K1)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Corpus.Source != "file" {
		t.Errorf("Corpus.Source = %q, want file", cfg.Corpus.Source)
	}
}
