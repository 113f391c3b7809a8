package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mercator-hq/dashgate/pkg/config"
	"mercator-hq/dashgate/pkg/server/middleware"
)

func testConfig() *config.ServerConfig {
	return &config.ServerConfig{
		ListenAddress:   "127.0.0.1:0",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		RequestTimeout:  5 * time.Second,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitRunning(t *testing.T, s *Server) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !s.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("server did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServerLifecycle(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello "+r.URL.Path)
	})

	s := NewServer(testConfig(), handler, WithLogger(quietLogger()))

	if err := s.Health(context.Background()); err == nil {
		t.Error("Health() before Start should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	waitRunning(t, s)

	if err := s.Health(context.Background()); err != nil {
		t.Errorf("Health() = %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}

	resp, err := http.Get("http://" + s.Addr() + "/demo1/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if string(body) != "hello /demo1/" {
		t.Errorf("body = %q", body)
	}
	if resp.Header.Get(middleware.RequestIDHeader) == "" {
		t.Error("missing X-Request-ID header")
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	if s.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func TestServerStop(t *testing.T) {
	s := NewServer(testConfig(), http.NotFoundHandler(), WithLogger(quietLogger()))

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	waitRunning(t, s)
	s.Stop()
	s.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerListenError(t *testing.T) {
	cfg := testConfig()
	cfg.ListenAddress = "not-an-address"

	s := NewServer(cfg, http.NotFoundHandler(), WithLogger(quietLogger()))
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start() with bad address should fail")
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after failed Start")
	}
}

func TestHandlerRecoversPanics(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	s := NewServer(testConfig(), handler, WithLogger(quietLogger()))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/demo1/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing X-Request-ID header on recovered response")
	}
}
