package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vigilhq/mongoose/internal/engine"
	"github.com/vigilhq/mongoose/internal/generate"
	"github.com/vigilhq/mongoose/internal/qlearn"
	"github.com/vigilhq/mongoose/internal/session"
	"github.com/vigilhq/mongoose/internal/session/drivers"
)

type fixedGenerator struct{}

func (fixedGenerator) Generate(context.Context, generate.Request) (string, error) {
	return "which branch are you calling from?", nil
}

func newTestServer(apiToken string) *Server {
	table := qlearn.NewTable(qlearn.DefaultAlpha, qlearn.DefaultGamma, 0, rand.New(rand.NewSource(3)))
	eng := engine.New(slog.Default(), drivers.NewMemoryStore(), table, fixedGenerator{}, nil, nil, session.DefaultLimits)
	return NewServer(8760, apiToken, eng, table, slog.Default())
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer("")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestMessageEndpoint(t *testing.T) {
	srv := newTestServer("")

	payload := `{
		"sessionId": "sess-1",
		"message": {"sender": "scammer", "text": "Your account is blocked, pay to rahul@upi now", "timestamp": 1756400000},
		"metadata": {"channel": "sms", "scamCategory": "upi_scam"}
	}`
	req := httptest.NewRequest("POST", "/api/v1/message", strings.NewReader(payload))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body MessageResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.TurnIndex != 1 || body.Reply == "" || body.Persona == "" {
		t.Errorf("unexpected response: %+v", body)
	}
	if len(body.Entities.PaymentIDs) != 1 {
		t.Errorf("entities = %+v, want one payment id", body.Entities)
	}
}

func TestMessageEndpoint_Validation(t *testing.T) {
	srv := newTestServer("")

	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{"invalid json", `{nope`, http.StatusBadRequest},
		{"missing session id", `{"message":{"text":"hi"}}`, http.StatusBadRequest},
		{"missing text", `{"sessionId":"s1","message":{"sender":"x"}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/message", strings.NewReader(tt.payload))
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestBearerAuth(t *testing.T) {
	srv := newTestServer("secret-token")

	req := httptest.NewRequest("GET", "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/status", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", w.Code)
	}

	// Health stays open.
	req = httptest.NewRequest("GET", "/health", nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected open health endpoint, got %d", w.Code)
	}
}

func TestSessionEndpoint(t *testing.T) {
	srv := newTestServer("")

	req := httptest.NewRequest("GET", "/api/v1/sessions/no-such", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing session, got %d", w.Code)
	}

	payload := `{"sessionId":"sess-9","message":{"text":"hello ji"},"metadata":{"scamCategory":"bank_kyc"}}`
	post := httptest.NewRequest("POST", "/api/v1/message", strings.NewReader(payload))
	srv.router.ServeHTTP(httptest.NewRecorder(), post)

	req = httptest.NewRequest("GET", "/api/v1/sessions/sess-9", nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["sessionId"] != "sess-9" || body["turnCount"] != float64(1) {
		t.Errorf("unexpected session body: %v", body)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"unix seconds", `1756400000`, time.Unix(1756400000, 0).UTC()},
		{"unix millis", `1756400000000`, time.UnixMilli(1756400000000).UTC()},
		{"iso8601", `"2026-08-28T17:33:20Z"`, time.Date(2026, 8, 28, 17, 33, 20, 0, time.UTC)},
		{"numeric string", `"1756400000"`, time.Unix(1756400000, 0).UTC()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(json.RawMessage(tt.raw))
			if !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}

	// Garbage falls back to roughly now.
	got := parseTimestamp(json.RawMessage(`"next tuesday"`))
	if time.Since(got) > time.Minute {
		t.Errorf("fallback timestamp too old: %v", got)
	}
}
