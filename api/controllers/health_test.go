package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/closingdesk/commission-backend/pkg/config"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	tests := []struct {
		name  string
		db    Pinger
		cache Pinger
		want  int
	}{
		{"all healthy", stubPinger{}, stubPinger{}, http.StatusOK},
		{"redis optional", stubPinger{}, nil, http.StatusOK},
		{"db down", stubPinger{err: errors.New("refused")}, stubPinger{}, http.StatusServiceUnavailable},
		{"redis down", stubPinger{}, stubPinger{err: errors.New("refused")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			HealthReady(cfg, tt.db, tt.cache, nil)(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if resp.Code != tt.want {
				t.Fatalf("expected %d got %d", tt.want, resp.Code)
			}
		})
	}
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	resp := httptest.NewRecorder()
	HealthLive(cfg)(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Commission-Env") != "test" {
		t.Fatal("expected env header")
	}
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "probe_total", Help: "probe"})
	reg.MustRegister(counter)
	counter.Inc()

	resp := httptest.NewRecorder()
	Metrics(reg).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(resp.Body.String(), "probe_total 1") {
		t.Fatalf("expected exported counter, got %s", resp.Body.String())
	}
}
