package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/valpere/cliptran/internal/detector"
	"github.com/valpere/cliptran/internal/orchestrator"
	"github.com/valpere/cliptran/internal/pricing"
	"github.com/valpere/cliptran/internal/translator"
)

type stubProvider struct {
	credErr error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) CheckCredentials() error { return p.credErr }

func (p *stubProvider) Complete(context.Context, translator.ChatRequest) (*translator.Completion, error) {
	return &translator.Completion{
		Text:     "你好",
		Usage:    pricing.Usage{InputTokens: 100, OutputTokens: 10},
		HasUsage: true,
	}, nil
}

func newTestServer(t *testing.T, p translator.Provider) (*Server, *orchestrator.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine, err := orchestrator.New(orchestrator.Options{
		Providers: translator.Registry{
			pricing.ProviderOpenAI:   p,
			pricing.ProviderDeepSeek: p,
		},
		Settings: orchestrator.Settings{
			Source: detector.Auto,
			Target: detector.Chinese,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	srv, err := New(Config{Engine: engine, GinMode: gin.TestMode})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		srv.baseCancel()
		engine.Close()
	})
	return srv, engine
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	w := doJSON(t, srv.Handler(), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestTranslate(t *testing.T) {
	srv, engine := newTestServer(t, &stubProvider{})

	w := doJSON(t, srv.Handler(), http.MethodPost, "/api/translate", `{"text":"こんにちは"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res orchestrator.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Status != orchestrator.StatusTranslated || res.Translation != "你好" {
		t.Errorf("result = %+v", res)
	}
	if engine.Ledger().TotalInputTokens != 100 {
		t.Errorf("ledger = %+v", engine.Ledger())
	}
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		provider translator.Provider
		body     string
		want     int
	}{
		{"missing text", &stubProvider{}, `{}`, http.StatusBadRequest},
		{"blank text", &stubProvider{}, `{"text":"   "}`, http.StatusBadRequest},
		{
			"no credentials",
			&stubProvider{credErr: &translator.ConfigurationError{Provider: "deepseek", Reason: "API key is not set"}},
			`{"text":"こんにちは"}`,
			http.StatusServiceUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.provider)
			w := doJSON(t, srv.Handler(), http.MethodPost, "/api/translate", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestTranslateBatch(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})

	w := doJSON(t, srv.Handler(), http.MethodPost, "/api/translate/batch", `{"lines":["おはよう","","こんばんは"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var batch orchestrator.BatchResult
	if err := json.Unmarshal(w.Body.Bytes(), &batch); err != nil {
		t.Fatal(err)
	}
	if len(batch.Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(batch.Entries))
	}
}

func TestTranslateClipboard_NoClipboard(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	w := doJSON(t, srv.Handler(), http.MethodPost, "/api/translate/clipboard", "")
	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d", w.Code)
	}
}

func TestLedgerReset(t *testing.T) {
	srv, engine := newTestServer(t, &stubProvider{})
	if _, err := engine.TranslateOne(context.Background(), "こんにちは"); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, srv.Handler(), http.MethodPost, "/api/ledger/reset", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var snap pricing.LedgerSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap != (pricing.LedgerSnapshot{}) {
		t.Errorf("ledger = %+v", snap)
	}
}

func TestTerminology(t *testing.T) {
	srv, engine := newTestServer(t, &stubProvider{})

	w := doJSON(t, srv.Handler(), http.MethodPut, "/api/terminology",
		`{"terms":[{"source":"アーバンも","target":"Avamo"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got, ok := engine.Terminology().Get("アーバンも"); !ok || got != "Avamo" {
		t.Errorf("term = %q, %v", got, ok)
	}

	w = doJSON(t, srv.Handler(), http.MethodPut, "/api/terminology", `{"terms":[{"source":"","target":"x"}]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty source status = %d", w.Code)
	}

	w = doJSON(t, srv.Handler(), http.MethodGet, "/api/terminology", "")
	if !strings.Contains(w.Body.String(), "Avamo") {
		t.Errorf("GET body = %s", w.Body.String())
	}
}

func TestSettingsRoutes(t *testing.T) {
	srv, engine := newTestServer(t, &stubProvider{})
	h := srv.Handler()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown model", http.MethodPut, "/api/model", `{"id":"nope"}`, http.StatusNotFound},
		{"select model", http.MethodPut, "/api/model", `{"id":"gpt-4o-mini"}`, http.StatusOK},
		{"bad mode", http.MethodPut, "/api/mode", `{"mode":"korean_only"}`, http.StatusBadRequest},
		{"mode", http.MethodPut, "/api/mode", `{"mode":"japanese_only"}`, http.StatusOK},
		{"swap with auto source", http.MethodPost, "/api/languages/swap", "", http.StatusBadRequest},
		{"bad target", http.MethodPut, "/api/languages", `{"source":"ja","target":"fr"}`, http.StatusBadRequest},
		{"languages", http.MethodPut, "/api/languages", `{"source":"ja","target":"en"}`, http.StatusOK},
		{"swap", http.MethodPost, "/api/languages/swap", "", http.StatusOK},
		{"toggles", http.MethodPut, "/api/settings", `{"quality":true,"display":"clear"}`, http.StatusOK},
		{"bad display", http.MethodPut, "/api/settings", `{"display":"sideways"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}

	s := engine.Settings()
	if s.ModelID != "gpt-4o-mini" || s.Source != "en" || s.Target != detector.Japanese {
		t.Errorf("settings = %+v", s)
	}
	if !s.Quality || s.Display != orchestrator.DisplayClear {
		t.Errorf("toggles not applied: %+v", s)
	}
}

func TestListModels(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	w := doJSON(t, srv.Handler(), http.MethodGet, "/api/models", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"active":true`) {
		t.Errorf("no active model in %s", w.Body.String())
	}
}

func TestHistoryDisabled(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	w := doJSON(t, srv.Handler(), http.MethodGet, "/api/history", "")
	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d", w.Code)
	}
}

func TestStreamEvents(t *testing.T) {
	srv, engine := newTestServer(t, &stubProvider{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, ": connected") {
		t.Fatalf("first line = %q, %v", line, err)
	}

	engine.ResetLedger()

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("stream ended: %v", err)
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev orchestrator.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Kind != orchestrator.KindTimestamp || !strings.Contains(ev.Text, "reset") {
			t.Errorf("event = %+v", ev)
		}
		return
	}
}
