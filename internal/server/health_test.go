package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakePinger is a Pinger whose result is fixed by the test.
type fakePinger struct {
	name string
	err  error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }
func (f *fakePinger) Name() string               { return f.name }

func newHealthTestServer(pingers ...Pinger) *Server {
	return &Server{
		cfg:     &Config{},
		log:     slog.Default(),
		pingers: pingers,
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	s := newHealthTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestHandleReadyAllHealthy(t *testing.T) {
	t.Parallel()

	s := newHealthTestServer(
		&fakePinger{name: "model"},
		&fakePinger{name: "embedder"},
	)
	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	w := httptest.NewRecorder()

	s.handleReady(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	var resp readyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !resp.Ready {
		t.Error("ready = false with all probes healthy")
	}
	if len(resp.Checks) != 2 {
		t.Errorf("checks = %d, want 2", len(resp.Checks))
	}
}

func TestHandleReadyDependencyDown(t *testing.T) {
	t.Parallel()

	s := newHealthTestServer(
		&fakePinger{name: "model"},
		&fakePinger{name: "embedder", err: errors.New("connection refused")},
	)
	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	w := httptest.NewRecorder()

	s.handleReady(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	var resp readyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Ready {
		t.Error("ready = true with a failing probe")
	}
	for _, c := range resp.Checks {
		if c.Name == "embedder" {
			if c.OK {
				t.Error("embedder check reported OK")
			}
			if c.Error == "" {
				t.Error("embedder check missing error text")
			}
		}
	}
}

func TestMultiPingerFirstFailureWins(t *testing.T) {
	t.Parallel()

	mp := NewMultiPinger(
		&fakePinger{name: "a"},
		&fakePinger{name: "b", err: errors.New("down")},
		&fakePinger{name: "c", err: errors.New("also down")},
	)
	err := mp.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "b: down" {
		t.Errorf("err = %q, want %q", got, "b: down")
	}
}

func TestHTTPPinger(t *testing.T) {
	t.Parallel()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	if err := NewHTTPPinger("model", healthy.URL).Ping(context.Background()); err != nil {
		t.Errorf("healthy endpoint: %v", err)
	}
	if err := NewHTTPPinger("model", broken.URL).Ping(context.Background()); err == nil {
		t.Error("expected error for HTTP 500")
	}
	// 401 still proves the service is up.
	authed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer authed.Close()
	if err := NewHTTPPinger("model", authed.URL).Ping(context.Background()); err != nil {
		t.Errorf("401 endpoint should count as reachable: %v", err)
	}
}
