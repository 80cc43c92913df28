package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func up(ctx context.Context) ComponentHealth {
	return ComponentHealth{Status: StatusUp}
}

func down(ctx context.Context) ComponentHealth {
	return ComponentHealth{Status: StatusDown, Message: "unreachable"}
}

func degraded(ctx context.Context) ComponentHealth {
	return ComponentHealth{Status: StatusDegraded}
}

func TestRunAggregatesWorstStatus(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		want   Status
	}{
		{"all up", map[string]Check{"a": up, "b": up}, StatusUp},
		{"one degraded", map[string]Check{"a": up, "b": degraded}, StatusDegraded},
		{"one down wins", map[string]Check{"a": up, "b": degraded, "c": down}, StatusDown},
		{"no checks", nil, StatusUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for name, check := range tt.checks {
				c.Register(name, check)
			}
			report := c.Run(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %v, want %v", report.Status, tt.want)
			}
			if len(report.Components) != len(tt.checks) {
				t.Errorf("got %d components, want %d", len(report.Components), len(tt.checks))
			}
		})
	}
}

func TestRunReportsComponentDetail(t *testing.T) {
	c := NewChecker()
	c.Register("store", down)

	report := c.Run(context.Background())
	comp, ok := report.Components["store"]
	if !ok {
		t.Fatal("missing store component")
	}
	if comp.Status != StatusDown || comp.Message != "unreachable" {
		t.Errorf("component = %+v", comp)
	}
}

func TestLiveHandlerAlwaysOK(t *testing.T) {
	c := NewChecker()
	c.Register("store", down)

	rec := httptest.NewRecorder()
	c.LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestReadyHandler(t *testing.T) {
	tests := []struct {
		name   string
		check  Check
		status int
	}{
		{"ready", up, http.StatusOK},
		{"degraded still ready", degraded, http.StatusOK},
		{"down", down, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			c.Register("dep", tt.check)

			rec := httptest.NewRecorder()
			c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var report Report
			if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
				t.Fatalf("decoding report: %v", err)
			}
			if _, ok := report.Components["dep"]; !ok {
				t.Error("report missing dep component")
			}
		})
	}
}
