// Package server exposes the query pipeline over HTTP.
//
// The API is a thin facade: marker rows arrive as JSON, the same pipeline
// that backs the CLI runs them, and the merged annotation table comes back
// as JSON. Endpoints:
//
//	GET  /healthz         liveness probe
//	GET  /api/categories  the annotation category vocabulary
//	POST /api/query       run filter, lookup, enrichment, and merge
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/toppgo/toppgo/pkg/errors"
	"github.com/toppgo/toppgo/pkg/markers"
	"github.com/toppgo/toppgo/pkg/pipeline"
	"github.com/toppgo/toppgo/pkg/topp"
)

// maxBodyBytes bounds request bodies; marker tables are small.
const maxBodyBytes = 8 << 20

// Server handles HTTP requests against the query pipeline.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New builds a Server backed by the given enrichment client.
func New(client pipeline.EnrichClient, logger *log.Logger) *Server {
	s := &Server{
		runner: pipeline.NewRunner(client),
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/categories", s.handleCategories)
	r.Post("/api/query", s.handleQuery)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": topp.Categories()})
}

// queryRequest is the body of POST /api/query.
type queryRequest struct {
	Markers []markerRow  `json:"markers"`
	Options queryOptions `json:"options"`
}

type markerRow struct {
	Cluster string  `json:"cluster"`
	Gene    string  `json:"gene"`
	Effect  float64 `json:"effect"`
	PValue  float64 `json:"pValue"`
}

// queryOptions mirrors the pipeline options clients may set. EffectCutoff
// is a pointer so a client can send an explicit 0 to disable the effect
// threshold; omitting the field takes the default.
type queryOptions struct {
	PValueCutoff float64         `json:"pValueCutoff,omitempty"`
	EffectCutoff *float64        `json:"effectCutoff,omitempty"`
	Direction    string          `json:"direction,omitempty"`
	MaxGenes     int             `json:"maxGenes,omitempty"`
	MinGenes     int             `json:"minGenes,omitempty"`
	Categories   []topp.Category `json:"categories,omitempty"`
	Correction   string          `json:"correction,omitempty"`
	MaxResults   int             `json:"maxResults,omitempty"`
}

// queryResponse is the body of a successful query.
type queryResponse struct {
	RunID       string              `json:"runId"`
	Annotations []topp.Annotation   `json:"annotations"`
	Clusters    []string            `json:"clusters"`
	Missing     []string            `json:"missing,omitempty"`
	Unresolved  map[string][]string `json:"unresolved,omitempty"`
	ElapsedMS   int64               `json:"elapsedMs"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeParse, err, "decode request body"))
		return
	}
	if len(req.Markers) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "no marker rows in request"))
		return
	}

	rows := make([]markers.Record, len(req.Markers))
	for i, m := range req.Markers {
		rows[i] = markers.Record{Cluster: m.Cluster, Gene: m.Gene, Effect: m.Effect, PValue: m.PValue}
	}

	result, err := s.runner.Run(r.Context(), markers.NewTable(rows), pipeline.Options{
		PValueCutoff: req.Options.PValueCutoff,
		EffectCutoff: req.Options.EffectCutoff,
		Direction:    markers.Direction(req.Options.Direction),
		MaxGenes:     req.Options.MaxGenes,
		MinGenes:     req.Options.MinGenes,
		Categories:   req.Options.Categories,
		Correction:   topp.Correction(req.Options.Correction),
		MaxResults:   req.Options.MaxResults,
		Logger:       s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		RunID:       result.RunID,
		Annotations: result.Annotations,
		Clusters:    result.Clusters,
		Missing:     result.Missing,
		Unresolved:  result.Unresolved,
		ElapsedMS:   result.Stats.Elapsed.Milliseconds(),
	})
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// writeError maps error codes onto HTTP statuses: configuration errors are
// the client's fault, transport errors mean the upstream service failed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsConfiguration(err) || errors.Is(err, errors.ErrCodeParse):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNetwork) || errors.Is(err, errors.ErrCodeTimeout):
		status = http.StatusBadGateway
	}

	s.logger.Errorf("request %s failed: %v", reqIDFrom(r.Context()), err)
	writeJSON(w, status, errorResponse{
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"id", reqIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start),
		)
	})
}
