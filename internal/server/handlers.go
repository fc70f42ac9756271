package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"unicode/utf8"

	"github.com/matzehuels/crystal/pkg/buildinfo"
	"github.com/matzehuels/crystal/pkg/errors"
	"github.com/matzehuels/crystal/pkg/layout"
	"github.com/matzehuels/crystal/pkg/observability"
	"github.com/matzehuels/crystal/pkg/pipeline"
	"github.com/matzehuels/crystal/pkg/sink"
	"github.com/matzehuels/crystal/pkg/surface"
	"github.com/matzehuels/crystal/pkg/tree"
)

// SolveRequest is the body of POST /v1/solve.
type SolveRequest struct {
	// Document is a tree document in its JSON form.
	Document json.RawMessage `json:"document"`

	Width    float32  `json:"width,omitempty"`
	Height   float32  `json:"height,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Dedupe   bool     `json:"dedupe,omitempty"`
	Labels   bool     `json:"labels,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"`
}

// SolveResponse is the body of a successful solve. Layout diagnostics are
// part of a successful response.
type SolveResponse struct {
	RequestID string              `json:"request_id"`
	Viewport  layout.Size         `json:"viewport"`
	Nodes     []sink.Node         `json:"nodes"`
	Surfaces  []surface.Surface   `json:"surfaces,omitempty"`
	Missing   []string            `json:"missing_surfaces,omitempty"`
	Errors    []sink.JSONError    `json:"errors"`
	Artifacts map[string]Artifact `json:"artifacts,omitempty"`
	Cached    []string            `json:"cached,omitempty"`
}

// Artifact is one rendered output. Text formats are inlined, binary
// formats are base64 encoded.
type Artifact struct {
	Encoding string `json:"encoding"` // "utf-8" or "base64"
	Data     string `json:"data"`
}

type errorResponse struct {
	Code      string `json:"code"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"formats": pipeline.Formats})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := RequestIDFromContext(ctx)

	req, err := s.decodeSolveRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := tree.Decode(bytes.NewReader(req.Document), tree.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := pipeline.Options{
		Width:    req.Width,
		Height:   req.Height,
		Fallback: s.opts.Viewport,
		Dedupe:   req.Dedupe,
		Formats:  req.Formats,
		Labels:   req.Labels,
		Detailed: req.Detailed,
		Refresh:  req.Refresh,
		Logger:   s.logger.With("request_id", id),
	}
	res, err := s.runner.Execute(ctx, doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := SolveResponse{
		RequestID: id,
		Viewport:  res.Viewport,
		Nodes:     res.Frame.Nodes,
		Surfaces:  res.Surfaces,
		Missing:   res.Missing,
		Errors:    sink.NewJSONErrors(res.Errors),
		Artifacts: make(map[string]Artifact, len(res.Artifacts)),
		Cached:    res.CacheInfo.Hits,
	}
	for format, data := range res.Artifacts {
		resp.Artifacts[format] = newArtifact(data)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) decodeSolveRequest(w http.ResponseWriter, r *http.Request) (*SolveRequest, error) {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var req SolveRequest
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	if len(req.Document) == 0 || string(req.Document) == "null" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is required")
	}
	return &req, nil
}

func newArtifact(data []byte) Artifact {
	if utf8.Valid(data) {
		return Artifact{Encoding: "utf-8", Data: string(data)}
	}
	return Artifact{Encoding: "base64", Data: base64.StdEncoding.EncodeToString(data)}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	id := RequestIDFromContext(ctx)
	observability.HTTP().OnError(ctx, id, r.Method, r.URL.Path, err)

	status := errors.HTTPStatus(err)
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}

	code := string(errors.GetCode(err))
	msg := errors.UserMessage(err)
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("solve failed", "request_id", id, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Code: code, Error: msg, RequestID: id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
