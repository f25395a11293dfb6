package cache

import (
	"github.com/atlas-desktop/quantback/internal/indicator"
	"github.com/atlas-desktop/quantback/internal/rule"
)

// CollectSpecs walks every rule in every sequence and returns the distinct
// indicator specs referenced by any operand (Left or Right), ready to hand
// to Build. Deduplication is by Spec.CacheKey(), mirroring Build's own
// dedup so callers can pass the result straight through.
func CollectSpecs(sequences ...[]rule.Rule) []indicator.Spec {
	seen := make(map[string]bool)
	var specs []indicator.Spec
	add := func(op rule.Operand) {
		if op.Kind != rule.OperandIndicator {
			return
		}
		key := op.IndicatorSpec.CacheKey()
		if seen[key] {
			return
		}
		seen[key] = true
		specs = append(specs, op.IndicatorSpec)
	}
	for _, seq := range sequences {
		for _, r := range seq {
			add(r.Left)
			add(r.Right)
		}
	}
	return specs
}

// StartBar derives the first bar index at which every rule in every
// sequence may be safely evaluated: the maximum lookback (operand offset
// plus that operand's indicator warm-up, 0 for non-indicator operands)
// across every operand in every rule, plus one more bar if any rule uses
// CrossAbove/CrossBelow (which additionally reads bar i-1), per spec §4.3.
func StartBar(c *Cache, sequences ...[]rule.Rule) int {
	maxLookback := 0
	needsCrossMargin := false

	lookback := func(op rule.Operand) int {
		warmup := 0
		if op.Kind == rule.OperandIndicator {
			warmup = c.WarmupFor(op.IndicatorSpec)
		}
		return warmup + int(op.Offset)
	}

	for _, seq := range sequences {
		for _, r := range seq {
			if l := lookback(r.Left); l > maxLookback {
				maxLookback = l
			}
			if l := lookback(r.Right); l > maxLookback {
				maxLookback = l
			}
			if r.Comparator == rule.CrossAbove || r.Comparator == rule.CrossBelow {
				needsCrossMargin = true
			}
		}
	}

	if needsCrossMargin {
		maxLookback++
	}
	return maxLookback
}
