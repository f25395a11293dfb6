package search

import (
	"testing"

	"github.com/atlas-desktop/quantback/internal/metrics"
)

func TestExtractObjectiveNegatesMinimiseKinds(t *testing.T) {
	m := &metrics.Metrics{StagnationBars: 50, UlcerIndex: 2.5}
	if got := extractObjective(m, MinStagnation); got != -50 {
		t.Fatalf("expected -50, got %v", got)
	}
	if got := extractObjective(m, MinUlcerIndex); got != -2.5 {
		t.Fatalf("expected -2.5, got %v", got)
	}
}

func TestCompositeScoreSingleObjectivePassesThrough(t *testing.T) {
	results := []*Result{
		{ObjectiveValues: map[ObjectiveKey]float64{TotalProfit: 100}},
		{ObjectiveValues: map[ObjectiveKey]float64{TotalProfit: 200}},
	}
	compositeScore(results, []ObjectiveKey{TotalProfit})
	if results[0].CompositeScore != 100 || results[1].CompositeScore != 200 {
		t.Fatalf("expected composite score to equal the raw objective value for a single objective")
	}
}

func TestCompositeScoreMinMaxNormalizesAcrossResultSet(t *testing.T) {
	results := []*Result{
		{ObjectiveValues: map[ObjectiveKey]float64{TotalProfit: 0, SharpeRatio: 1}},
		{ObjectiveValues: map[ObjectiveKey]float64{TotalProfit: 50, SharpeRatio: 0}},
		{ObjectiveValues: map[ObjectiveKey]float64{TotalProfit: 100, SharpeRatio: 2}},
	}
	compositeScore(results, []ObjectiveKey{TotalProfit, SharpeRatio})

	// result 0: profit norm 0.0, sharpe norm 0.5 -> mean 0.25
	if diff := results[0].CompositeScore - 0.25; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected composite 0.25, got %v", results[0].CompositeScore)
	}
	// result 1: profit norm 0.5, sharpe norm 0.0 -> mean 0.25
	if diff := results[1].CompositeScore - 0.25; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected composite 0.25, got %v", results[1].CompositeScore)
	}
	// result 2: profit norm 1.0, sharpe norm 1.0 -> mean 1.0
	if diff := results[2].CompositeScore - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected composite 1.0, got %v", results[2].CompositeScore)
	}
}

func TestCompositeScoreConstantObjectiveDefaultsToHalf(t *testing.T) {
	results := []*Result{
		{ObjectiveValues: map[ObjectiveKey]float64{TotalProfit: 10, SharpeRatio: 1}},
		{ObjectiveValues: map[ObjectiveKey]float64{TotalProfit: 10, SharpeRatio: 3}},
	}
	compositeScore(results, []ObjectiveKey{TotalProfit, SharpeRatio})
	// TotalProfit has zero spread across the set, so it normalises to 0.5 for both.
	if diff := results[0].CompositeScore - 0.25; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected 0.25, got %v", results[0].CompositeScore)
	}
	if diff := results[1].CompositeScore - 0.75; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected 0.75, got %v", results[1].CompositeScore)
	}
}
