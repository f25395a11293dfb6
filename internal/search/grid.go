package search

import "github.com/atlas-desktop/quantback/pkg/bterrors"

// combinations builds the cartesian product of each range's grid values,
// rejecting the whole search up front if the product exceeds maxCombinations
// (spec §4.8, default 500 000) rather than discovering it mid-evaluation.
func combinations(ranges []ParameterRange, maxCombinations int) ([][]float64, error) {
	if len(ranges) == 0 {
		return nil, nil
	}

	perRange := make([][]float64, len(ranges))
	total := 1
	for i, pr := range ranges {
		vals := pr.Values()
		perRange[i] = vals
		total *= len(vals)
		if total > maxCombinations {
			return nil, bterrors.NewTooManyCombinations(total, maxCombinations)
		}
	}

	combos := [][]float64{{}}
	for _, vals := range perRange {
		next := make([][]float64, 0, len(combos)*len(vals))
		for _, combo := range combos {
			for _, v := range vals {
				extended := append(append([]float64(nil), combo...), v)
				next = append(next, extended)
			}
		}
		combos = next
	}
	return combos, nil
}
