package search

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// GAConfig bundles a genetic-algorithm run's inputs on top of the shared
// grid/GA fields (spec §4.8): population size, generation count, and the
// two operator rates. Seed must be supplied explicitly — the search engine
// never seeds its own RNG off wall-clock time, so a GA run is reproducible
// given the same seed.
type GAConfig struct {
	GridConfig
	PopulationSize int
	Generations    int
	CrossoverRate  float64
	MutationRate   float64
	Seed           int64
}

// individual is one population member: a gene vector in cfg.Ranges order.
type individual struct {
	genes   []float64
	result  *Result
	fitness float64
}

// Genetic runs a generational GA: tournament-of-3 selection, single-point
// crossover, per-gene uniform mutation snapped to each range's step, and
// single-elite carryover between non-final generations (spec §4.8). Every
// individual ever evaluated is retained in the returned SearchResult, not
// just the final generation's population.
func (e *Engine) Genetic(ctx context.Context, cfg GAConfig) (*SearchResult, error) {
	if len(cfg.Ranges) == 0 {
		return &SearchResult{RunID: uuid.New().String()}, nil
	}
	popSize := cfg.PopulationSize
	if popSize <= 0 {
		popSize = 50
	}
	generations := cfg.Generations
	if generations <= 0 {
		generations = 20
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
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

	pop := make([]individual, popSize)
	for i := range pop {
		pop[i].genes = randomGenes(cfg.Ranges, rng)
	}

	var all []*Result
	cancelled := false

	for gen := 0; gen < generations; gen++ {
		if e.cancelled.Load() || ctx.Err() != nil {
			cancelled = true
			break
		}

		for i := range pop {
			if pop[i].result != nil {
				continue
			}
			activeWorkers.Inc()
			started := time.Now()
			r, err := evaluate(params, pop[i].genes)
			recordEvaluation("genetic", err, time.Since(started).Seconds())
			activeWorkers.Dec()
			if err != nil {
				return nil, err
			}
			pop[i].result = r
			pop[i].fitness = primaryFitness(r, cfg.Objectives)
			all = append(all, r)
		}
		if cfg.OnProgress != nil {
			cfg.OnProgress((gen+1)*popSize, generations*popSize)
		}

		if gen == generations-1 {
			break
		}

		next := make([]individual, 0, popSize)
		// Elitism: the single fittest individual survives unchanged.
		elite := fittest(pop)
		next = append(next, individual{genes: append([]float64(nil), elite.genes...)})

		for len(next) < popSize {
			parentA := tournamentSelect(pop, rng)
			parentB := tournamentSelect(pop, rng)
			childA, childB := parentA, parentB
			if rng.Float64() < cfg.CrossoverRate {
				childA, childB = crossover(parentA, parentB, rng)
			}
			mutate(&childA, cfg.Ranges, cfg.MutationRate, rng)
			next = append(next, individual{genes: childA.genes})
			if len(next) < popSize {
				mutate(&childB, cfg.Ranges, cfg.MutationRate, rng)
				next = append(next, individual{genes: childB.genes})
			}
		}
		pop = next
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}
	kept := finalize(all, cfg.Objectives, maxResults)

	return &SearchResult{RunID: uuid.New().String(), Results: kept, Cancelled: cancelled || e.cancelled.Load()}, nil
}

func randomGenes(ranges []ParameterRange, rng *rand.Rand) []float64 {
	genes := make([]float64, len(ranges))
	for i, pr := range ranges {
		v := pr.Min + rng.Float64()*(pr.Max-pr.Min)
		genes[i] = pr.Snap(v)
	}
	return genes
}

func primaryFitness(r *Result, objectives []ObjectiveKey) float64 {
	if len(objectives) == 0 {
		return 0
	}
	if len(objectives) == 1 {
		return r.ObjectiveValues[objectives[0]]
	}
	var sum float64
	for _, key := range objectives {
		sum += r.ObjectiveValues[key]
	}
	return sum / float64(len(objectives))
}

func fittest(pop []individual) individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.fitness > best.fitness {
			best = ind
		}
	}
	return best
}

// tournamentSelect picks the fittest of 3 randomly drawn individuals.
func tournamentSelect(pop []individual, rng *rand.Rand) individual {
	best := pop[rng.Intn(len(pop))]
	for i := 0; i < 2; i++ {
		challenger := pop[rng.Intn(len(pop))]
		if challenger.fitness > best.fitness {
			best = challenger
		}
	}
	return best
}

// crossover performs single-point crossover on the gene vectors.
func crossover(a, b individual, rng *rand.Rand) (individual, individual) {
	n := len(a.genes)
	if n < 2 {
		return a, b
	}
	point := 1 + rng.Intn(n-1)
	childA := append([]float64(nil), a.genes[:point]...)
	childA = append(childA, b.genes[point:]...)
	childB := append([]float64(nil), b.genes[:point]...)
	childB = append(childB, a.genes[point:]...)
	return individual{genes: childA}, individual{genes: childB}
}

// mutate applies per-gene uniform mutation: with probability rate, a gene is
// replaced by a fresh uniform draw over its range and snapped to its step.
func mutate(ind *individual, ranges []ParameterRange, rate float64, rng *rand.Rand) {
	for i, pr := range ranges {
		if rng.Float64() < rate {
			ind.genes[i] = pr.Snap(pr.Min + rng.Float64()*(pr.Max-pr.Min))
		}
	}
}
