package api

import (
	"encoding/json"
	"net/http"

	"github.com/symexlab/statoor/pkg/query"
)

// errorResponse is a standard error payload.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
	}
}

// handleHealth returns server health status.
func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearch returns the queryable metric names.
func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Metrics(r.Context()))
}

// handleQuery executes a bucketed range query against the run's
// counter store and returns one series per requested target.
func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req query.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"parsing query request: " + err.Error()})

		return
	}

	series, err := s.engine.Query(r.Context(), &req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"executing query: " + err.Error()})

		return
	}

	writeJSON(w, http.StatusOK, series)
}
