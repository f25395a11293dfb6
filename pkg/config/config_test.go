package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atlas-desktop/quantback/pkg/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.Search.MaxCombinations != 500_000 {
		t.Errorf("MaxCombinations = %d, want 500000", cfg.Search.MaxCombinations)
	}
	if cfg.Instrument.MinLot != 0.01 {
		t.Errorf("MinLot = %v, want 0.01", cfg.Instrument.MinLot)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "search:\n  max_combinations: 1000\ninstrument:\n  pip_size: 0.01\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.MaxCombinations != 1000 {
		t.Errorf("MaxCombinations = %d, want 1000", cfg.Search.MaxCombinations)
	}
	if cfg.Instrument.PipSize != 0.01 {
		t.Errorf("PipSize = %v, want 0.01", cfg.Instrument.PipSize)
	}
	// Unset fields still fall back to defaults.
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.MaxResults != 100 {
		t.Errorf("MaxResults = %d, want 100", cfg.Search.MaxResults)
	}
}
