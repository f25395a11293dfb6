package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlas-desktop/quantback/internal/engine"
	"github.com/atlas-desktop/quantback/internal/metrics"
	"github.com/atlas-desktop/quantback/internal/position"
	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/pkg/calendar"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

var (
	runSymbol     string
	runTimeframe  string
	runStart      string
	runEnd        string
	runCapital    float64
	runStrategy   string
	runInstrument string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single backtest and print its metrics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		strat, err := loadStrategy(runStrategy)
		if err != nil {
			return err
		}
		instr, err := loadInstrument(runInstrument)
		if err != nil {
			return err
		}
		tf, err := candle.ParseTimeframe(runTimeframe)
		if err != nil {
			return err
		}
		startMicros, err := calendar.ParseMicros(runStart)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		endMicros, err := calendar.ParseMicros(runEnd)
		if err != nil {
			return fmt.Errorf("end: %w", err)
		}

		series, err := store.LoadOHLCV(context.Background(), runSymbol, tf, startMicros, endMicros)
		if err != nil {
			return fmt.Errorf("loading ohlcv: %w", err)
		}

		eng := engine.New(logger)
		result, err := eng.Run(strat, series, candle.SubBarData{}, instr, runCapital, nil)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		m := metrics.Calculate(result.Trades, result.EquityCurve, runCapital, tf)

		return printJSON(struct {
			RunID   string           `json:"run_id"`
			Metrics *metrics.Metrics `json:"metrics"`
			Trades  int              `json:"trade_count"`
		}{RunID: result.RunID, Metrics: m, Trades: len(result.Trades)})
	},
}

func init() {
	runCmd.Flags().StringVar(&runSymbol, "symbol", "", "symbol name registered in the data store (required)")
	runCmd.Flags().StringVar(&runTimeframe, "timeframe", "1m", "bar timeframe (tick, 1m, 5m, 15m, 30m, 1h, 4h, 1d)")
	runCmd.Flags().StringVar(&runStart, "start", "", "range start (YYYY-MM-DD HH:MM:SS or raw micros, required)")
	runCmd.Flags().StringVar(&runEnd, "end", "", "range end, exclusive (required)")
	runCmd.Flags().Float64Var(&runCapital, "capital", 10_000, "initial capital")
	runCmd.Flags().StringVar(&runStrategy, "strategy", "", "path to a strategy JSON file (required)")
	runCmd.Flags().StringVar(&runInstrument, "instrument", "", "path to an instrument JSON file (required)")
	runCmd.MarkFlagRequired("symbol")
	runCmd.MarkFlagRequired("start")
	runCmd.MarkFlagRequired("end")
	runCmd.MarkFlagRequired("strategy")
	runCmd.MarkFlagRequired("instrument")
	rootCmd.AddCommand(runCmd)
}

func loadStrategy(path string) (*strategy.Strategy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading strategy file: %w", err)
	}
	var strat strategy.Strategy
	if err := json.Unmarshal(raw, &strat); err != nil {
		return nil, fmt.Errorf("parsing strategy file: %w", err)
	}
	return &strat, nil
}

func loadInstrument(path string) (position.Instrument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return position.Instrument{}, fmt.Errorf("reading instrument file: %w", err)
	}
	var instr position.Instrument
	if err := json.Unmarshal(raw, &instr); err != nil {
		return position.Instrument{}, fmt.Errorf("parsing instrument file: %w", err)
	}
	return instr, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
