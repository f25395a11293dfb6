package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func errBacktestNotFound(id string) error { return fmt.Errorf("api: backtest %q not found", id) }
func errSearchNotFound(id string) error   { return fmt.Errorf("api: search %q not found", id) }

// Router builds the HTTP mux for this Server, scoped to backtest/search job
// submission plus the websocket progress feed (spec §6: "thin" surface —
// no blockchain/autonomous-agent/data-ingestion routes).
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/v1/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/api/v1/backtest/run", s.handleRunBacktest).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/backtest/{id}", s.handleGetBacktest).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/backtest/{id}/cancel", s.handleCancelBacktest).Methods(http.MethodPost)

	r.HandleFunc("/api/v1/search/run", s.handleRunSearch).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/search/{id}", s.handleGetSearch).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/search/{id}/cancel", s.handleCancelSearch).Methods(http.MethodPost)

	r.HandleFunc("/ws", s.handleWebSocket)

	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(r)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "healthy", "time": time.Now().Unix()})
}

func (s *Server) handleRunBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	job, err := s.SubmitBacktest(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": job.ID, "status": string(job.Status)})
}

func (s *Server) handleGetBacktest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, ok := s.GetBacktest(id)
	if !ok {
		writeError(w, http.StatusNotFound, errBacktestNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleCancelBacktest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, ok := s.CancelBacktest(id)
	if !ok {
		writeError(w, http.StatusNotFound, errBacktestNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": job.ID, "status": "cancel requested"})
}

func (s *Server) handleRunSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	job, err := s.SubmitSearch(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": job.ID, "status": string(job.Status)})
}

func (s *Server) handleGetSearch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, ok := s.GetSearch(id)
	if !ok {
		writeError(w, http.StatusNotFound, errSearchNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleCancelSearch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, ok := s.CancelSearch(id)
	if !ok {
		writeError(w, http.StatusNotFound, errSearchNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": job.ID, "status": "cancel requested"})
}
