package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mesabjorn/MoneyPrinter/internal/models"
	"github.com/mesabjorn/MoneyPrinter/internal/pipeline"
)

type fakeGenerator struct {
	result *pipeline.Result
	err    error
	gotCfg models.ProjectConfig
}

func (f *fakeGenerator) Run(ctx context.Context, cfg models.ProjectConfig) (*pipeline.Result, error) {
	f.gotCfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestGenerateSuccess(t *testing.T) {
	gen := &fakeGenerator{result: &pipeline.Result{ProjectID: "abc", OutputPath: "/creations/abc/output/final.mp4"}}
	h := NewHandler(gen)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"videoSubject":"cats"}`))
	w := httptest.NewRecorder()
	h.Generate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.GenerateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("expected status success, got %s", resp.Status)
	}
	if resp.Data != "/creations/abc/output/final.mp4" {
		t.Errorf("expected final path in data, got %s", resp.Data)
	}

	// Defaults applied before the pipeline sees the config
	if gen.gotCfg.Voice != models.DefaultVoice {
		t.Errorf("expected default voice, got %s", gen.gotCfg.Voice)
	}
}

func TestGenerateBadBody(t *testing.T) {
	h := NewHandler(&fakeGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.Generate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGenerateMissingSubject(t *testing.T) {
	h := NewHandler(&fakeGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"voice":"en_us_001"}`))
	w := httptest.NewRecorder()
	h.Generate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"no footage", &pipeline.Error{Kind: pipeline.KindNoFootage, Stage: "footage", Err: pipeline.ErrNoFootage}, http.StatusUnprocessableEntity},
		{"storage", &pipeline.Error{Kind: pipeline.KindStorage, Stage: "workspace", Err: context.DeadlineExceeded}, http.StatusInternalServerError},
		{"collaborator", &pipeline.Error{Kind: pipeline.KindCollaborator, Stage: "script", Err: context.DeadlineExceeded}, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(&fakeGenerator{err: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"videoSubject":"cats"}`))
			w := httptest.NewRecorder()
			h.Generate(w, req)

			if w.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, w.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Status != "error" {
				t.Errorf("expected status error, got %s", resp.Status)
			}
		})
	}
}

func TestCancelAlwaysSucceeds(t *testing.T) {
	h := NewHandler(&fakeGenerator{})

	// No generation in flight
	req := httptest.NewRequest(http.MethodPost, "/api/cancel", nil)
	w := httptest.NewRecorder()
	h.Cancel(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp models.GenerateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("expected status success, got %s", resp.Status)
	}
}

func TestCancelStopsInFlightGeneration(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	gen := generatorFunc(func(ctx context.Context, cfg models.ProjectConfig) (*pipeline.Result, error) {
		close(started)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-release:
			return &pipeline.Result{OutputPath: "done"}, nil
		}
	})
	h := NewHandler(gen)

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"videoSubject":"cats"}`))
		w := httptest.NewRecorder()
		h.Generate(w, req)
		done <- w
	}()

	<-started
	cancelReq := httptest.NewRequest(http.MethodPost, "/api/cancel", nil)
	h.Cancel(httptest.NewRecorder(), cancelReq)

	w := <-done
	close(release)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected cancelled generation to report an error, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "cancelled") {
		t.Errorf("expected cancellation message, got %s", w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	h := NewHandler(&fakeGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := APIKeyAuth("secret")(next)

	// Missing key
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", w.Code)
	}

	// Wrong key
	req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	req.Header.Set("X-API-Key", "wrong")
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 with wrong key, got %d", w.Code)
	}

	// X-API-Key header
	req = httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with valid key, got %d", w.Code)
	}

	// Bearer token fallback
	req = httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with bearer token, got %d", w.Code)
	}
}

// generatorFunc adapts a function to the Generator interface.
type generatorFunc func(ctx context.Context, cfg models.ProjectConfig) (*pipeline.Result, error)

func (f generatorFunc) Run(ctx context.Context, cfg models.ProjectConfig) (*pipeline.Result, error) {
	return f(ctx, cfg)
}
