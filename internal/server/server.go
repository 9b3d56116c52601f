// Package server exposes the analysis engine over HTTP for editor clients.
// All payloads are JSON; invalid repository roots map to 400, everything else
// unexpected to 500.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jward/vigil"
	"github.com/jward/vigil/internal/index"
	"github.com/jward/vigil/rules"
)

// Server wires the Engine to HTTP handlers.
type Server struct {
	engine *vigil.Engine
	log    *slog.Logger
}

// NewServer creates a Server around an Engine.
func NewServer(engine *vigil.Engine, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{engine: engine, log: log}
}

// Handler returns the full route table wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /refresh", s.handleRefresh)
	mux.HandleFunc("GET /symbols", s.handleSymbols)
	mux.HandleFunc("GET /graph", s.handleGraph)
	mux.HandleFunc("GET /rules", s.handleRules)
	mux.HandleFunc("GET /health", s.handleHealth)
	return s.logRequests(mux)
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, index.ErrInvalidRoot) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req vigil.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	result, err := s.engine.Analyze(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// refreshRequest asks for an unconditional reindex of one repository.
type refreshRequest struct {
	RepoPath string `json:"repo_path"`
}

// refreshResponse reports the rebuilt table size.
type refreshResponse struct {
	SymbolCount int    `json:"symbol_count"`
	RepoPath    string `json:"repo_path"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	snap, err := s.engine.Refresh(r.Context(), req.RepoPath)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		SymbolCount: len(snap.Symbols),
		RepoPath:    snap.Root,
	})
}

// symbolsResponse wraps the full symbol table.
type symbolsResponse struct {
	Symbols []vigil.Symbol `json:"symbols"`
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("repo_path")
	if root == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "repo_path required"})
		return
	}
	snap, err := s.engine.Snapshot(r.Context(), root)
	if err != nil {
		s.writeError(w, err)
		return
	}
	symbols := snap.Symbols
	if symbols == nil {
		symbols = []vigil.Symbol{}
	}
	writeJSON(w, http.StatusOK, symbolsResponse{Symbols: symbols})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("repo_path")
	if root == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "repo_path required"})
		return
	}
	graph, err := s.engine.Graph(r.Context(), root)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rules.Catalog)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
