package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Execution.MemorySize != Default().Execution.MemorySize {
		t.Errorf("MemorySize = %d, want default", cfg.Execution.MemorySize)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rvm8.toml")
	contents := `
[execution]
max_cycles = 42
enable_trace = true

[display]
number_format = "dec"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Execution.MaxCycles != 42 {
		t.Errorf("MaxCycles = %d, want 42", cfg.Execution.MaxCycles)
	}
	if !cfg.Execution.EnableTrace {
		t.Error("EnableTrace = false, want true")
	}
	if cfg.Display.NumberFormat != "dec" {
		t.Errorf("NumberFormat = %q, want dec", cfg.Display.NumberFormat)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Execution.MemorySize != Default().Execution.MemorySize {
		t.Errorf("MemorySize = %d, want default", cfg.Execution.MemorySize)
	}
}

func TestValidateRejectsBadNumberFormat(t *testing.T) {
	cfg := Default()
	cfg.Display.NumberFormat = "octal"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad number_format")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
