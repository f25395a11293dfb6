package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlas-desktop/quantback/internal/search"
	"github.com/atlas-desktop/quantback/pkg/calendar"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

var (
	searchSymbol     string
	searchTimeframe  string
	searchStart      string
	searchEnd        string
	searchCapital    float64
	searchStrategy   string
	searchInstrument string
	searchSpecPath   string
	searchKind       string
)

// searchSpec is the on-disk config for a search run: tunable ranges,
// objectives, and GA-only knobs when kind is "genetic".
type searchSpec struct {
	Ranges         []search.ParameterRange `json:"ranges"`
	Objectives     []search.ObjectiveKey   `json:"objectives"`
	MaxResults     int                     `json:"max_results"`
	PopulationSize int                     `json:"population_size"`
	Generations    int                     `json:"generations"`
	CrossoverRate  float64                 `json:"crossover_rate"`
	MutationRate   float64                 `json:"mutation_rate"`
	Seed           int64                   `json:"seed"`
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a grid or genetic-algorithm parameter search and print results as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		strat, err := loadStrategy(searchStrategy)
		if err != nil {
			return err
		}
		instr, err := loadInstrument(searchInstrument)
		if err != nil {
			return err
		}
		spec, err := loadSearchSpec(searchSpecPath)
		if err != nil {
			return err
		}
		tf, err := candle.ParseTimeframe(searchTimeframe)
		if err != nil {
			return err
		}
		startMicros, err := calendar.ParseMicros(searchStart)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		endMicros, err := calendar.ParseMicros(searchEnd)
		if err != nil {
			return fmt.Errorf("end: %w", err)
		}

		series, err := store.LoadOHLCV(context.Background(), searchSymbol, tf, startMicros, endMicros)
		if err != nil {
			return fmt.Errorf("loading ohlcv: %w", err)
		}

		eng := search.NewEngine()
		gridCfg := search.GridConfig{
			Prototype:       strat,
			Ranges:          spec.Ranges,
			Series:          series,
			Instrument:      instr,
			InitialCapital:  searchCapital,
			Timeframe:       tf,
			Objectives:      spec.Objectives,
			MaxCombinations: cfg.Search.MaxCombinations,
			MaxResults:      spec.MaxResults,
			Workers:         cfg.Search.ParallelWorkers,
			OnProgress: func(done, total int) {
				fmt.Fprintf(os.Stderr, "\r%d/%d evaluated", done, total)
			},
		}

		var result *search.SearchResult
		if searchKind == "genetic" {
			result, err = eng.Genetic(context.Background(), search.GAConfig{
				GridConfig:     gridCfg,
				PopulationSize: spec.PopulationSize,
				Generations:    spec.Generations,
				CrossoverRate:  spec.CrossoverRate,
				MutationRate:   spec.MutationRate,
				Seed:           spec.Seed,
			})
		} else {
			result, err = eng.Grid(context.Background(), gridCfg)
		}
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		return printJSON(result)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchSymbol, "symbol", "", "symbol name registered in the data store (required)")
	searchCmd.Flags().StringVar(&searchTimeframe, "timeframe", "1m", "bar timeframe")
	searchCmd.Flags().StringVar(&searchStart, "start", "", "range start (required)")
	searchCmd.Flags().StringVar(&searchEnd, "end", "", "range end, exclusive (required)")
	searchCmd.Flags().Float64Var(&searchCapital, "capital", 10_000, "initial capital")
	searchCmd.Flags().StringVar(&searchStrategy, "strategy", "", "path to a strategy JSON file (required)")
	searchCmd.Flags().StringVar(&searchInstrument, "instrument", "", "path to an instrument JSON file (required)")
	searchCmd.Flags().StringVar(&searchSpecPath, "spec", "", "path to a search spec JSON file (ranges/objectives/GA knobs, required)")
	searchCmd.Flags().StringVar(&searchKind, "kind", "grid", "grid or genetic")
	searchCmd.MarkFlagRequired("symbol")
	searchCmd.MarkFlagRequired("start")
	searchCmd.MarkFlagRequired("end")
	searchCmd.MarkFlagRequired("strategy")
	searchCmd.MarkFlagRequired("instrument")
	searchCmd.MarkFlagRequired("spec")
	rootCmd.AddCommand(searchCmd)
}

func loadSearchSpec(path string) (*searchSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading search spec file: %w", err)
	}
	var spec searchSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parsing search spec file: %w", err)
	}
	return &spec, nil
}
