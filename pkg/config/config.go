// Package config loads engine- and server-wide defaults from file and
// environment via spf13/viper. The teacher's go.mod carried viper but never
// imported it; this package is where it is actually wired in, following the
// grouped-struct shape of the teacher's pkg/types/config.go.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InstrumentDefaults seeds InstrumentConfig fields (§6 "Instrument config")
// when a strategy doesn't override them.
type InstrumentDefaults struct {
	PipSize  float64 `mapstructure:"pip_size"`
	PipValue float64 `mapstructure:"pip_value"`
	LotSize  float64 `mapstructure:"lot_size"`
	MinLot   float64 `mapstructure:"min_lot"`
	LotStep  float64 `mapstructure:"lot_step"`
	TickSize float64 `mapstructure:"tick_size"`
	Digits   int     `mapstructure:"digits"`
}

// SearchDefaults seeds internal/search's configurable knobs (§4.8, §5).
type SearchDefaults struct {
	MaxCombinations    int `mapstructure:"max_combinations"`
	MaxResults         int `mapstructure:"max_results"`
	CancelPollInterval int `mapstructure:"cancel_poll_interval"`
	ParallelWorkers    int `mapstructure:"parallel_workers"`
}

// ServerDefaults seeds internal/api's HTTP server.
type ServerDefaults struct {
	Port            int    `mapstructure:"port"`
	LogLevel        string `mapstructure:"log_level"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// Config is the top-level, viper-backed configuration record.
type Config struct {
	Instrument InstrumentDefaults `mapstructure:"instrument"`
	Search     SearchDefaults     `mapstructure:"search"`
	Server     ServerDefaults     `mapstructure:"server"`
}

// Default returns the built-in defaults (used when no config file is
// present — mirrors the engine's own documented defaults: 1000-bar
// cancellation polling, MAX_COMBINATIONS = 500000).
func Default() Config {
	return Config{
		Instrument: InstrumentDefaults{
			PipSize:  0.0001,
			PipValue: 10.0,
			LotSize:  100000.0,
			MinLot:   0.01,
			LotStep:  0.01,
			TickSize: 0.00001,
			Digits:   5,
		},
		Search: SearchDefaults{
			MaxCombinations:    500_000,
			MaxResults:         100,
			CancelPollInterval: 1000,
			ParallelWorkers:    0, // 0 => runtime.NumCPU()
		},
		Server: ServerDefaults{
			Port:           8080,
			LogLevel:       "info",
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load reads configuration from the given file path (if non-empty) and from
// environment variables prefixed QUANTBACK_, falling back to Default() for
// anything unset.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("QUANTBACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bind(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// bind seeds viper's defaults so AutomaticEnv/Unmarshal has something to
// overlay onto even without a config file present.
func bind(v *viper.Viper, cfg Config) {
	v.SetDefault("instrument.pip_size", cfg.Instrument.PipSize)
	v.SetDefault("instrument.pip_value", cfg.Instrument.PipValue)
	v.SetDefault("instrument.lot_size", cfg.Instrument.LotSize)
	v.SetDefault("instrument.min_lot", cfg.Instrument.MinLot)
	v.SetDefault("instrument.lot_step", cfg.Instrument.LotStep)
	v.SetDefault("instrument.tick_size", cfg.Instrument.TickSize)
	v.SetDefault("instrument.digits", cfg.Instrument.Digits)

	v.SetDefault("search.max_combinations", cfg.Search.MaxCombinations)
	v.SetDefault("search.max_results", cfg.Search.MaxResults)
	v.SetDefault("search.cancel_poll_interval", cfg.Search.CancelPollInterval)
	v.SetDefault("search.parallel_workers", cfg.Search.ParallelWorkers)

	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.log_level", cfg.Server.LogLevel)
	v.SetDefault("server.allowed_origins", cfg.Server.AllowedOrigins)
}
