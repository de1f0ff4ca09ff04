// Package server provides the HTTP service shell: upsert/query
// handlers, health endpoints, and graceful shutdown.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/embercloud/ragstore/internal/vector"
)

const defaultTopK = 5

// UpsertRequest is the wire form of an upsert call.
type UpsertRequest struct {
	Namespace string        `json:"namespace"`
	Items     []vector.Item `json:"items"`
}

// UpsertResponse reports how many items were actually written.
type UpsertResponse struct {
	Upserted int `json:"upserted"`
}

// QueryRequest is the wire form of a query call.
type QueryRequest struct {
	Namespace string `json:"namespace"`
	Query     string `json:"query"`
	TopK      int    `json:"top_k"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// API exposes a Searcher over HTTP.
type API struct {
	searcher vector.Searcher
	logger   *slog.Logger
}

// NewAPI creates the API around a searcher. logger may be nil.
func NewAPI(searcher vector.Searcher, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{searcher: searcher, logger: logger}
}

// Routes registers the API endpoints on a router.
func (a *API) Routes(r *mux.Router) {
	r.HandleFunc("/upsert", a.handleUpsert).Methods(http.MethodPost)
	r.HandleFunc("/query", a.handleQuery).Methods(http.MethodPost)
}

func (a *API) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Namespace == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "namespace is required"})
		return
	}

	n, err := a.searcher.Upsert(r.Context(), req.Namespace, req.Items)
	if err != nil {
		if errors.Is(err, vector.ErrEmptyBatch) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no items provided"})
			return
		}
		a.logger.Error("upsert failed", "namespace", req.Namespace, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, UpsertResponse{Upserted: n})
}

func (a *API) handleQuery(w http.ResponseWriter, r *http.Request) {
	req := QueryRequest{TopK: defaultTopK}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Namespace == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "namespace is required"})
		return
	}

	results, err := a.searcher.Query(r.Context(), req.Namespace, req.Query, req.TopK)
	if err != nil {
		var embedErr *vector.EmbedError
		if errors.As(err, &embedErr) {
			a.logger.Error("query embedding failed", "namespace", req.Namespace, "error", err)
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "embedding provider unavailable"})
			return
		}
		a.logger.Error("query failed", "namespace", req.Namespace, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
		return
	}

	if results == nil {
		results = []vector.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
