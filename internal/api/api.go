// Package api provides the thin HTTP+WebSocket job-submission surface for
// the backtest and search engines (spec §6 "External Interfaces"): submit a
// strategy + data range, stream progress, fetch the result. It owns no
// simulation logic — every handler is a wrapper around internal/engine,
// internal/search and internal/datastore.
package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlas-desktop/quantback/internal/datastore"
	"github.com/atlas-desktop/quantback/internal/engine"
	"github.com/atlas-desktop/quantback/internal/metrics"
	"github.com/atlas-desktop/quantback/internal/position"
	"github.com/atlas-desktop/quantback/internal/search"
	"github.com/atlas-desktop/quantback/internal/strategy"
)

// BacktestRequest is the JSON body accepted by POST /api/v1/backtest/run.
type BacktestRequest struct {
	Symbol         string              `json:"symbol"`
	Timeframe      string              `json:"timeframe"`
	StartMicros    int64               `json:"start_micros"`
	EndMicros      int64               `json:"end_micros"`
	InitialCapital float64             `json:"initial_capital"`
	Instrument     position.Instrument `json:"instrument"`
	Strategy       *strategy.Strategy  `json:"strategy"`
}

// BacktestJob tracks one submitted single-run simulation, from running
// through completed/failed/cancelled.
type BacktestJob struct {
	ID        string
	Status    JobStatus
	Submitted time.Time
	Request   BacktestRequest

	engineRef *engine.Engine

	mu      sync.RWMutex
	result  *engine.Result
	metrics *metrics.Metrics
	err     error
}

// JobStatus is the lifecycle state of a submitted job.
type JobStatus string

const (
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// SearchRequest is the JSON body accepted by POST /api/v1/search/run.
type SearchRequest struct {
	Kind           string                     `json:"kind"` // "grid" | "genetic"
	Symbol         string                     `json:"symbol"`
	Timeframe      string                     `json:"timeframe"`
	StartMicros    int64                      `json:"start_micros"`
	EndMicros      int64                      `json:"end_micros"`
	InitialCapital float64                    `json:"initial_capital"`
	Instrument     position.Instrument        `json:"instrument"`
	Strategy       *strategy.Strategy         `json:"strategy"`
	Ranges         []search.ParameterRange    `json:"ranges"`
	Objectives     []search.ObjectiveKey      `json:"objectives"`
	MaxResults     int                        `json:"max_results"`
	GA             *GASettings                `json:"ga,omitempty"`
}

// GASettings carries the genetic-algorithm-only knobs of a SearchRequest.
type GASettings struct {
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	CrossoverRate  float64 `json:"crossover_rate"`
	MutationRate   float64 `json:"mutation_rate"`
	Seed           int64   `json:"seed"`
}

// SearchJob tracks one submitted grid/GA search.
type SearchJob struct {
	ID        string
	Status    JobStatus
	Submitted time.Time
	Request   SearchRequest

	engineRef *search.Engine

	mu     sync.RWMutex
	result *search.SearchResult
	err    error
}

// Server wires datastore-backed job submission onto an HTTP router and a
// websocket progress feed. NewServer builds it; router.go and ws.go attach
// the HTTP handlers and the websocket feed as methods on *Server.
type Server struct {
	logger *zap.Logger
	store  datastore.DataStore

	mu        sync.RWMutex
	backtests map[string]*BacktestJob
	searches  map[string]*SearchJob
	clients   map[string]*wsClient
}

// ProgressEvent is streamed over the websocket for a running job.
type ProgressEvent struct {
	JobID     string    `json:"job_id"`
	Kind      string    `json:"kind"` // "backtest" | "search"
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	Status    JobStatus `json:"status,omitempty"`
}

// NewServer constructs a Server backed by store. logger is required;
// passing nil falls back to zap.NewNop(), matching the teacher's
// constructor-injection convention.
func NewServer(logger *zap.Logger, store datastore.DataStore) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:    logger,
		store:     store,
		backtests: make(map[string]*BacktestJob),
		searches:  make(map[string]*SearchJob),
		clients:   make(map[string]*wsClient),
	}
}

func newJobID() string { return uuid.New().String() }
