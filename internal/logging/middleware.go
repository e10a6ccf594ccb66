package logging

import (
	"log/slog"
	"net/http"
	"time"
)

// requestIDHeader matches the header the API client stamps on each request.
const requestIDHeader = "X-Request-ID"

// Transport is an http.RoundTripper that logs every request it sends.
type Transport struct {
	Next http.RoundTripper
}

// NewTransport wraps next, or http.DefaultTransport when next is nil.
func NewTransport(next http.RoundTripper) *Transport {
	return &Transport{Next: next}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.Next
	if next == nil {
		next = http.DefaultTransport
	}

	start := time.Now()
	resp, err := next.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		slog.Log(req.Context(), slog.LevelWarn, "request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration", duration.String(),
			"request_id", req.Header.Get(requestIDHeader),
			"error", err,
		)
		return nil, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 500 {
		level = slog.LevelError
	} else if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}

	slog.Log(req.Context(), level, "request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", duration.String(),
		"request_id", req.Header.Get(requestIDHeader),
	)
	return resp, nil
}
