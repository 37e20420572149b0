package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "site:\n  name: Test Site\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Module.RatedPowerWp != 545 || cfg.Module.OpenCircuitV != 49.91 || cfg.Module.VmpVocRatio != 0.82 {
		t.Fatalf("module defaults not applied: %+v", cfg.Module)
	}
	if cfg.Analysis.NumStrings != 18 {
		t.Fatalf("num_strings default = %d, want 18", cfg.Analysis.NumStrings)
	}
	if cfg.Analysis.ReferenceIrradiance != 1000 {
		t.Fatalf("reference irradiance default = %g", cfg.Analysis.ReferenceIrradiance)
	}
	if cfg.Analysis.CRLowThreshold != 0.90 || cfg.Analysis.DutyCycleThreshold != 0.30 {
		t.Fatalf("threshold defaults not applied: %+v", cfg.Analysis)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
site:
  timezone: UTC
analysis:
  num_strings: 4
  cr_low_threshold: 0.85
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Analysis.NumStrings != 4 {
		t.Fatalf("num_strings = %d, want 4", cfg.Analysis.NumStrings)
	}
	if cfg.Analysis.CRLowThreshold != 0.85 {
		t.Fatalf("cr_low_threshold = %g, want 0.85", cfg.Analysis.CRLowThreshold)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location failed: %v", err)
	}
	if loc.String() != "UTC" {
		t.Fatalf("location = %s, want UTC", loc)
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	path := writeConfig(t, "site:\n  timezone: Mars/Olympus\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}

func TestLoadRejectsStringColumnMismatch(t *testing.T) {
	path := writeConfig(t, `
analysis:
  num_strings: 3
ingest:
  string_columns: [a, b]
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for string column count mismatch")
	}
}

func TestLoadRejectsCombinerRegisterMismatch(t *testing.T) {
	path := writeConfig(t, `
analysis:
  num_strings: 2
collector:
  servers:
    - combiner_id: scb-1
      strings:
        - { address: 1 }
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for register map count mismatch")
	}
}
