// Package cache implements the indicator cache & lookback planner (C3):
// it collects the distinct indicator specs a strategy's rule sequences
// reference, computes each exactly once, and derives the first bar index at
// which every predicate may be safely evaluated.
package cache

import (
	"math"

	"github.com/atlas-desktop/quantback/internal/indicator"
)

// Cache stores one indicator.Output per distinct Spec.CacheKey(), alongside
// each spec's warm-up length (the count of leading NaN bars in its primary
// output), used by the lookback planner.
type Cache struct {
	outputs map[string]indicator.Output
	warmup  map[string]int
}

// Build computes every spec in specs exactly once (deduplicated by
// Spec.CacheKey(), per spec §4.3 — "two rules that differ only in which
// output they read share the computation"). Specs are expected to already
// be deduplicated by the caller for efficiency, but Build dedupes again
// defensively.
func Build(specs []indicator.Spec, ohlcv indicator.OHLCV) (*Cache, error) {
	c := &Cache{
		outputs: make(map[string]indicator.Output, len(specs)),
		warmup:  make(map[string]int, len(specs)),
	}
	for _, spec := range specs {
		key := spec.CacheKey()
		if _, ok := c.outputs[key]; ok {
			continue
		}
		out, err := indicator.Compute(spec, ohlcv)
		if err != nil {
			return nil, err
		}
		c.outputs[key] = out
		c.warmup[key] = firstFiniteIndex(out.Primary)
	}
	return c, nil
}

// Get implements rule.IndicatorSource: it looks the spec up by its cache
// key, ignoring OutputSelector, and lets the caller select the output array
// it actually wants.
func (c *Cache) Get(spec indicator.Spec) (indicator.Output, bool) {
	out, ok := c.outputs[spec.CacheKey()]
	return out, ok
}

// WarmupFor returns how many leading bars of spec's primary output are NaN
// (the count of bars that must elapse before this indicator's values are
// usable at all).
func (c *Cache) WarmupFor(spec indicator.Spec) int {
	return c.warmup[spec.CacheKey()]
}

func firstFiniteIndex(vals []float64) int {
	for i, v := range vals {
		if !math.IsNaN(v) {
			return i
		}
	}
	return len(vals)
}
