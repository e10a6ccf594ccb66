package logging

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return &buf
}

func TestSetupVerbose(t *testing.T) {
	old := slog.Default()
	defer slog.SetDefault(old)

	var buf bytes.Buffer
	SetupWriter(&buf, true)

	slog.Debug("test debug")
	slog.Info("test info")

	if !bytes.Contains(buf.Bytes(), []byte("test debug")) {
		t.Error("expected debug message visible in verbose mode")
	}
	if !bytes.Contains(buf.Bytes(), []byte("test info")) {
		t.Error("expected info message visible in verbose mode")
	}
}

func TestSetupQuiet(t *testing.T) {
	old := slog.Default()
	defer slog.SetDefault(old)

	var buf bytes.Buffer
	SetupWriter(&buf, false)

	slog.Info("hidden")
	slog.Warn("shown")

	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Error("expected info suppressed in quiet mode")
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"msg":"shown"`)) {
		t.Errorf("expected JSON warn line, got %q", buf.String())
	}
}

func TestTransportLogsRequest(t *testing.T) {
	buf := captureDefault(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hc := &http.Client{Transport: NewTransport(nil)}
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/buildings", nil)
	req.Header.Set(requestIDHeader, "req-1")
	resp, err := hc.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	_ = resp.Body.Close()

	for _, want := range []string{"GET", "/api/buildings", "req-1", "level=DEBUG"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("expected %q in log, got %q", want, buf.String())
		}
	}
}

func TestTransportLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusNotFound, "level=WARN"},
		{http.StatusBadGateway, "level=ERROR"},
	}

	for _, tt := range tests {
		buf := captureDefault(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		hc := &http.Client{Transport: NewTransport(http.DefaultTransport)}
		resp, err := hc.Get(srv.URL + "/missing")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		_ = resp.Body.Close()
		srv.Close()

		if !bytes.Contains(buf.Bytes(), []byte(tt.level)) {
			t.Errorf("status %d: expected %s in %q", tt.status, tt.level, buf.String())
		}
	}
}

func TestTransportLogsFailure(t *testing.T) {
	buf := captureDefault(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	hc := &http.Client{Transport: NewTransport(nil)}
	if _, err := hc.Get(srv.URL); err == nil {
		t.Fatal("expected error from closed server")
	}
	if !bytes.Contains(buf.Bytes(), []byte("request failed")) {
		t.Errorf("expected failure log, got %q", buf.String())
	}
}
