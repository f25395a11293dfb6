package search

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/atlas-desktop/quantback/internal/position"
	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// ProgressFunc is invoked periodically with (evaluations completed, total).
type ProgressFunc func(done, total int)

// GridConfig bundles a grid search's inputs: the strategy to patch, the
// tunable ranges, the data to run against, and the objectives to score by.
type GridConfig struct {
	Prototype       *strategy.Strategy
	Ranges          []ParameterRange
	Series          candle.Series
	Sub             candle.SubBarData
	Instrument      position.Instrument
	InitialCapital  float64
	Timeframe       candle.Timeframe
	Objectives      []ObjectiveKey
	MaxCombinations int
	MaxResults      int
	Workers         int
	OnProgress      ProgressFunc
}

// Engine runs grid and genetic-algorithm searches. Cancel is cooperative and
// distinct per-instance from C6's single-run Engine.cancelled: a cancelled
// search engine returns the results it had already computed rather than
// failing outright (spec Design Notes #1 — a long search is too expensive
// to discard on a late cancellation).
type Engine struct {
	cancelled atomic.Bool
}

func NewEngine() *Engine { return &Engine{} }

func (e *Engine) Cancel() { e.cancelled.Store(true) }

// Grid runs every combination of cfg.Ranges against cfg.Series, fanning the
// independent evaluations out across a bounded worker pool (spec §4.8: the
// teacher's semaphore-channel pool is replaced here with
// golang.org/x/sync/errgroup, per the pack's own errgroup usage elsewhere).
func (e *Engine) Grid(ctx context.Context, cfg GridConfig) (*SearchResult, error) {
	maxCombos := cfg.MaxCombinations
	if maxCombos <= 0 {
		maxCombos = 500_000
	}
	combos, err := combinations(cfg.Ranges, maxCombos)
	if err != nil {
		return nil, err
	}
	if len(combos) == 0 {
		return &SearchResult{RunID: uuid.New().String()}, nil
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	params := evalParams{
		Prototype:      cfg.Prototype,
		Ranges:         cfg.Ranges,
		Series:         cfg.Series,
		Sub:            cfg.Sub,
		Instrument:     cfg.Instrument,
		InitialCapital: cfg.InitialCapital,
		Timeframe:      cfg.Timeframe,
		Objectives:     cfg.Objectives,
	}

	results := make([]*Result, len(combos))
	var completed atomic.Int64
	progressEvery := len(combos) / 100
	if progressEvery < 1 {
		progressEvery = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var cancelledMid atomic.Bool
	for i, combo := range combos {
		i, combo := i, combo
		g.Go(func() error {
			if e.cancelled.Load() || gctx.Err() != nil {
				cancelledMid.Store(true)
				return nil
			}
			activeWorkers.Inc()
			started := time.Now()
			r, err := evaluate(params, combo)
			recordEvaluation("grid", err, time.Since(started).Seconds())
			activeWorkers.Dec()
			if err != nil {
				return err
			}
			results[i] = r

			done := completed.Add(1)
			if cfg.OnProgress != nil && done%int64(progressEvery) == 0 {
				cfg.OnProgress(int(done), len(combos))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := make([]*Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			kept = append(kept, r)
		}
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}
	kept = finalize(kept, cfg.Objectives, maxResults)

	if cfg.OnProgress != nil {
		cfg.OnProgress(len(combos), len(combos))
	}

	return &SearchResult{RunID: uuid.New().String(), Results: kept, Cancelled: cancelledMid.Load() || e.cancelled.Load()}, nil
}
