// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	"github.com/pdiddy/litfed/internal/adapter"
	"github.com/pdiddy/litfed/internal/orchestrator"
	"github.com/pdiddy/litfed/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run litfed as an HTTP search service",
	Long: `Serve exposes the orchestrator over HTTP: POST /search for a single ranked
result, POST /search/stream for the same search as a server-sent-event
progress stream, GET /paper/{id} for a direct lookup, and GET /health.

The handlers delegate entirely to internal/orchestrator and
internal/adapter.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if !cmd.Flags().Changed("addr") {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		}
	}

	cfg := types.DefaultSearchConfig()
	cfg.UserAgent = defaultUserAgent
	applyCredentials(&cfg)

	h := &serveHandler{baseConfig: cfg}

	r := chi.NewRouter()
	if os.Getenv("DEBUG") != "" {
		r.Use(chimiddleware.Logger)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/search", h.search)
	r.Post("/search/stream", h.searchStream)
	r.Get("/paper/{id}", h.paper)

	fmt.Printf("litfed serving on %s\n", addr)
	return http.ListenAndServe(addr, r)
}

type serveHandler struct {
	baseConfig types.SearchConfig
}

type searchRequest struct {
	Query            string  `json:"query"`
	MaxPerSource     int     `json:"max_per_source,omitempty"`
	ExpandCitations  *bool   `json:"expand_citations,omitempty"`
	IncludePreprints *bool   `json:"include_preprints,omitempty"`
	MinReliability   float64 `json:"min_reliability,omitempty"`
	YearStart        *int    `json:"year_start,omitempty"`
	YearEnd          *int    `json:"year_end,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func (h *serveHandler) configFromRequest(req searchRequest) types.SearchConfig {
	cfg := h.baseConfig
	if req.MaxPerSource > 0 {
		cfg.MaxPerSource = req.MaxPerSource
	}
	if req.ExpandCitations != nil {
		cfg.ExpandCitations = *req.ExpandCitations
	}
	if req.IncludePreprints != nil {
		cfg.IncludePreprints = *req.IncludePreprints
	}
	if req.MinReliability > 0 {
		cfg.MinReliability = req.MinReliability
	}
	cfg.YearStart = req.YearStart
	cfg.YearEnd = req.YearEnd
	return cfg
}

func (h *serveHandler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	cfg := h.configFromRequest(req)
	o := orchestrator.New(buildAdapters(cfg)...)

	result, err := o.Search(r.Context(), req.Query, cfg, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Search failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *serveHandler) searchStream(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	cfg := h.configFromRequest(req)
	o := orchestrator.New(buildAdapters(cfg)...)

	progress := make(chan types.ProgressEvent, 32)
	resultCh := make(chan *types.SearchResult, 1)
	errCh := make(chan error, 1)

	go func() {
		result, err := o.Search(r.Context(), req.Query, cfg, progress)
		close(progress)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- result
	}()

	for ev := range progress {
		data, _ := json.Marshal(ev)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	select {
	case err := <-errCh:
		data, _ := json.Marshal(map[string]string{"type": "error", "error": err.Error()})
		fmt.Fprintf(w, "data: %s\n\n", data)
	case result := <-resultCh:
		data, _ := json.Marshal(map[string]interface{}{"type": "result", "data": result})
		fmt.Fprintf(w, "data: %s\n\n", data)
	}
	flusher.Flush()
}

func (h *serveHandler) paper(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	backends := buildAdapters(h.baseConfig)
	byName := make(map[string]adapter.Backend, len(backends))
	for _, b := range backends {
		byName[b.Name()] = b
	}

	var target adapter.Backend
	switch {
	case strings.HasPrefix(id, "10."):
		target = byName["openalex"]
	default:
		for prefix, name := range paperPrefixes {
			if strings.HasPrefix(id, prefix) {
				target = byName[name]
				break
			}
		}
	}
	if target == nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unrecognized id prefix for %q", id))
		return
	}

	paper, err := target.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Search failed: %v", err))
		return
	}
	if paper == nil {
		writeError(w, http.StatusNotFound, "paper not found")
		return
	}

	writeJSON(w, http.StatusOK, paper)
}
