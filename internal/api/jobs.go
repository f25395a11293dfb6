package api

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/atlas-desktop/quantback/internal/engine"
	"github.com/atlas-desktop/quantback/internal/metrics"
	"github.com/atlas-desktop/quantback/internal/search"
	"github.com/atlas-desktop/quantback/pkg/bterrors"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// SubmitBacktest validates req, loads its candle series, and runs the
// single-run engine in a background goroutine, returning immediately with
// the job's ID. Progress is pushed to any websocket subscribers of jobID.
func (s *Server) SubmitBacktest(ctx context.Context, req BacktestRequest) (*BacktestJob, error) {
	tf, err := candle.ParseTimeframe(req.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	if req.Strategy == nil {
		return nil, fmt.Errorf("api: strategy is required")
	}

	series, err := s.store.LoadOHLCV(ctx, req.Symbol, tf, req.StartMicros, req.EndMicros)
	if err != nil {
		return nil, fmt.Errorf("api: loading ohlcv: %w", err)
	}

	job := &BacktestJob{
		ID:        newJobID(),
		Status:    StatusRunning,
		Request:   req,
		engineRef: engine.New(s.logger),
	}

	s.mu.Lock()
	s.backtests[job.ID] = job
	s.mu.Unlock()

	go func() {
		onProgress := func(processed, total int) {
			s.publish(job.ID, ProgressEvent{JobID: job.ID, Kind: "backtest", Processed: processed, Total: total})
		}

		result, err := job.engineRef.Run(req.Strategy, series, candle.SubBarData{}, req.Instrument, req.InitialCapital, onProgress)

		job.mu.Lock()
		defer job.mu.Unlock()
		if errors.Is(err, bterrors.ErrCancelled) {
			job.Status = StatusCancelled
			job.err = err
		} else if err != nil {
			job.Status = StatusFailed
			job.err = err
			s.logger.Warn("backtest failed", zap.String("job_id", job.ID), zap.Error(err))
		} else {
			job.Status = StatusCompleted
			job.result = result
			job.metrics = metrics.Calculate(result.Trades, result.EquityCurve, req.InitialCapital, tf)
		}
		s.publish(job.ID, ProgressEvent{JobID: job.ID, Kind: "backtest", Status: job.Status})
	}()

	return job, nil
}

// CancelBacktest requests cooperative cancellation of a running backtest.
func (s *Server) CancelBacktest(id string) (*BacktestJob, bool) {
	s.mu.RLock()
	job, ok := s.backtests[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	job.engineRef.Cancel()
	return job, true
}

// GetBacktest returns the tracked job by ID.
func (s *Server) GetBacktest(id string) (*BacktestJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.backtests[id]
	return job, ok
}

// BacktestSnapshot is a read-only view of a BacktestJob's mutable state for
// serialization, avoiding a data race on json.Marshal reading job fields
// directly while the run goroutine is still writing them.
type BacktestSnapshot struct {
	ID      string           `json:"id"`
	Status  JobStatus        `json:"status"`
	Result  *engine.Result   `json:"result,omitempty"`
	Metrics *metrics.Metrics `json:"metrics,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func (j *BacktestJob) Snapshot() BacktestSnapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	snap := BacktestSnapshot{ID: j.ID, Status: j.Status, Result: j.result, Metrics: j.metrics}
	if j.err != nil {
		snap.Error = j.err.Error()
	}
	return snap
}

// SubmitSearch validates req, loads its candle series, and runs the
// requested grid/genetic search in a background goroutine.
func (s *Server) SubmitSearch(ctx context.Context, req SearchRequest) (*SearchJob, error) {
	tf, err := candle.ParseTimeframe(req.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	if req.Strategy == nil {
		return nil, fmt.Errorf("api: strategy is required")
	}
	if len(req.Ranges) == 0 {
		return nil, fmt.Errorf("api: at least one parameter range is required")
	}

	series, err := s.store.LoadOHLCV(ctx, req.Symbol, tf, req.StartMicros, req.EndMicros)
	if err != nil {
		return nil, fmt.Errorf("api: loading ohlcv: %w", err)
	}

	job := &SearchJob{
		ID:        newJobID(),
		Status:    StatusRunning,
		Request:   req,
		engineRef: search.NewEngine(),
	}

	s.mu.Lock()
	s.searches[job.ID] = job
	s.mu.Unlock()

	go func() {
		// ctx is the request's context, which ends when the handler returns;
		// the search outlives it and stops only through CancelSearch.
		runCtx := context.WithoutCancel(ctx)
		onProgress := func(processed, total int) {
			s.publish(job.ID, ProgressEvent{JobID: job.ID, Kind: "search", Processed: processed, Total: total})
		}
		gridCfg := search.GridConfig{
			Prototype:      req.Strategy,
			Ranges:         req.Ranges,
			Series:         series,
			Instrument:     req.Instrument,
			InitialCapital: req.InitialCapital,
			Timeframe:      tf,
			Objectives:     req.Objectives,
			MaxResults:     req.MaxResults,
			OnProgress:     onProgress,
		}

		var result *search.SearchResult
		var err error
		if req.Kind == "genetic" {
			ga := req.GA
			if ga == nil {
				ga = &GASettings{}
			}
			result, err = job.engineRef.Genetic(runCtx, search.GAConfig{
				GridConfig:     gridCfg,
				PopulationSize: ga.PopulationSize,
				Generations:    ga.Generations,
				CrossoverRate:  ga.CrossoverRate,
				MutationRate:   ga.MutationRate,
				Seed:           ga.Seed,
			})
		} else {
			result, err = job.engineRef.Grid(runCtx, gridCfg)
		}

		job.mu.Lock()
		defer job.mu.Unlock()
		switch {
		case err != nil:
			job.Status = StatusFailed
			job.err = err
			s.logger.Warn("search failed", zap.String("job_id", job.ID), zap.Error(err))
		case result.Cancelled:
			job.Status = StatusCancelled
			job.result = result
		default:
			job.Status = StatusCompleted
			job.result = result
		}
		s.publish(job.ID, ProgressEvent{JobID: job.ID, Kind: "search", Status: job.Status})
	}()

	return job, nil
}

// CancelSearch requests cooperative cancellation of a running search;
// per spec Design Notes #1 the run returns the partial result set rather
// than discarding it.
func (s *Server) CancelSearch(id string) (*SearchJob, bool) {
	s.mu.RLock()
	job, ok := s.searches[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	job.engineRef.Cancel()
	return job, true
}

// GetSearch returns the tracked search job by ID.
func (s *Server) GetSearch(id string) (*SearchJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.searches[id]
	return job, ok
}

// SearchSnapshot is a read-only view of a SearchJob's mutable state.
type SearchSnapshot struct {
	ID     string              `json:"id"`
	Status JobStatus           `json:"status"`
	Result *search.SearchResult `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

func (j *SearchJob) Snapshot() SearchSnapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	snap := SearchSnapshot{ID: j.ID, Status: j.Status, Result: j.result}
	if j.err != nil {
		snap.Error = j.err.Error()
	}
	return snap
}
