package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/matzehuels/crystal/pkg/layout"
	"github.com/matzehuels/crystal/pkg/observability"
	"github.com/matzehuels/crystal/pkg/pipeline"
	"github.com/matzehuels/crystal/pkg/sink"
)

const rowDocument = `{
  "root": {
    "id": "row", "kind": "horizontal", "width": "flex", "height": 100, "spacing": 10,
    "children": [
      {"id": "a", "width": 100, "height": "flex"},
      {"id": "b", "width": "flex", "height": "flex"}
    ]
  }
}`

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	logger := log.New(io.Discard)
	return New(pipeline.NewRunner(nil, nil, logger), logger, opts)
}

func do(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeBody[healthResponse](t, rec)
	if resp.Status != "ok" || resp.Build.GoVersion == "" {
		t.Errorf("health = %+v", resp)
	}
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("X-Request-ID %q is not a UUID", rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestID_KeepsValidIncoming(t *testing.T) {
	s := newTestServer(t, Options{})
	want := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, want)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != want {
		t.Errorf("X-Request-ID = %q, want %q", got, want)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got == "not a uuid" {
		t.Error("malformed incoming request id should be replaced")
	}
}

func TestFormats(t *testing.T) {
	rec := do(t, newTestServer(t, Options{}), http.MethodGet, "/v1/formats", "")
	resp := decodeBody[map[string][]string](t, rec)
	if diff := cmp.Diff(pipeline.Formats, resp["formats"]); diff != "" {
		t.Errorf("formats mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve(t *testing.T) {
	s := newTestServer(t, Options{})
	body := `{"document": ` + rowDocument + `, "width": 400, "height": 300, "formats": ["json", "svg"]}`
	rec := do(t, s, http.MethodPost, "/v1/solve", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[SolveResponse](t, rec)

	if resp.RequestID != rec.Header().Get(RequestIDHeader) {
		t.Errorf("request_id = %q, header %q", resp.RequestID, rec.Header().Get(RequestIDHeader))
	}
	if resp.Viewport != (layout.Size{Width: 400, Height: 300}) {
		t.Errorf("viewport = %v, want 400x300", resp.Viewport)
	}

	want := []sink.Node{
		{ID: "row", Kind: "horizontal", Depth: 0, Size: layout.Size{Width: 400, Height: 100}},
		{ID: "a", Kind: "empty", Parent: "row", Depth: 1, Size: layout.Size{Width: 100, Height: 100}},
		{ID: "b", Kind: "empty", Parent: "row", Depth: 1, Size: layout.Size{Width: 290, Height: 100}, Position: layout.Position{X: 110}},
	}
	if diff := cmp.Diff(want, resp.Nodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	if len(resp.Errors) != 0 {
		t.Errorf("errors = %+v, want none", resp.Errors)
	}

	svg, ok := resp.Artifacts["svg"]
	if !ok || svg.Encoding != "utf-8" || !strings.HasPrefix(svg.Data, "<svg") {
		t.Errorf("svg artifact = %+v", svg)
	}
	if _, ok := resp.Artifacts["json"]; !ok {
		t.Error("json artifact missing")
	}
}

func TestSolve_FallbackViewport(t *testing.T) {
	s := newTestServer(t, Options{Viewport: layout.Size{Width: 320, Height: 200}})
	rec := do(t, s, http.MethodPost, "/v1/solve", `{"document": `+rowDocument+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[SolveResponse](t, rec)
	if resp.Viewport != (layout.Size{Width: 320, Height: 200}) {
		t.Errorf("viewport = %v, want server fallback 320x200", resp.Viewport)
	}
}

func TestSolve_LayoutErrorsAreNotFailures(t *testing.T) {
	doc := `{"root": {"id": "r", "kind": "vertical", "width": 50, "height": 50,
	  "children": [{"id": "tall", "width": 10, "height": 80}]}}`
	rec := do(t, newTestServer(t, Options{}), http.MethodPost, "/v1/solve", `{"document": `+doc+`}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[SolveResponse](t, rec)
	want := []sink.JSONError{
		{Kind: "overflow", ID: "r", Message: (&layout.OverflowError{ID: "r"}).Error()},
		{Kind: "out_of_bounds", Parent: "r", Child: "tall", Message: (&layout.OutOfBoundsError{ParentID: "r", ChildID: "tall"}).Error()},
	}
	if diff := cmp.Diff(want, resp.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_ClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"document":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"document": ` + rowDocument + `, "colour": "red"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing document", `{"width": 10}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown kind", `{"document": {"root": {"id": "x", "kind": "grid"}}}`, http.StatusBadRequest, "INVALID_NODE_KIND"},
		{"bad sizing", `{"document": {"root": {"id": "x", "width": "huge"}}}`, http.StatusBadRequest, "INVALID_SIZING"},
		{"bad format", `{"document": ` + rowDocument + `, "formats": ["gif"]}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad viewport", `{"document": ` + rowDocument + `, "width": -5}`, http.StatusBadRequest, "INVALID_VIEWPORT"},
	}
	s := newTestServer(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/solve", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			resp := decodeBody[errorResponse](t, rec)
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if resp.RequestID == "" {
				t.Error("error response missing request_id")
			}
		})
	}
}

func TestSolve_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, Options{MaxBodyBytes: 64})
	rec := do(t, s, http.MethodPost, "/v1/solve", `{"document": `+rowDocument+`}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestRouting(t *testing.T) {
	s := newTestServer(t, Options{})
	if rec := do(t, s, http.MethodGet, "/v1/solve", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/solve status = %d, want 405", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope status = %d, want 404", rec.Code)
	}
}

type recordingHTTPHooks struct {
	mu        sync.Mutex
	requests  int
	responses []int
	errors    int
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests++
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, status)
}

func (h *recordingHTTPHooks) OnError(context.Context, string, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors++
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newTestServer(t, Options{})
	do(t, s, http.MethodGet, "/healthz", "")
	do(t, s, http.MethodPost, "/v1/solve", `{}`)

	if hooks.requests != 2 {
		t.Errorf("requests = %d, want 2", hooks.requests)
	}
	if diff := cmp.Diff([]int{200, 400}, hooks.responses); diff != "" {
		t.Errorf("responses mismatch (-want +got):\n%s", diff)
	}
	if hooks.errors != 1 {
		t.Errorf("errors = %d, want 1", hooks.errors)
	}
}
