// Package config loads the TOML-backed run configuration consumed by the
// CLI and the terminal debugger. None of this is part of the assembler or
// VM's correctness contract; it only tunes ambient behavior.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds every user-tunable knob. The CLI reads only the Execution
// section; the Assembler and Display sections are decoded and validated but
// nothing acts on them.
type Config struct {
	Execution struct {
		MaxCycles  uint64 `toml:"max_cycles"`
		MemorySize int    `toml:"memory_size"`
		EnableTrace bool  `toml:"enable_trace"`
	} `toml:"execution"`

	Assembler struct {
		EntryDirectiveRequired bool `toml:"entry_directive_required"`
		WarnUnusedLabels       bool `toml:"warn_unused_labels"`
	} `toml:"assembler"`

	Display struct {
		NumberFormat string `toml:"number_format"` // "hex" or "dec"
	} `toml:"display"`
}

// Default returns the zero-config defaults: a 10 KiB memory, a one-million
// cycle ceiling, tracing off, and hex display.
func Default() *Config {
	cfg := &Config{}
	cfg.Execution.MaxCycles = 1_000_000
	cfg.Execution.MemorySize = 10 * 1024
	cfg.Execution.EnableTrace = false
	cfg.Assembler.EntryDirectiveRequired = false
	cfg.Assembler.WarnUnusedLabels = true
	cfg.Display.NumberFormat = "hex"
	return cfg
}

// Load reads and parses a TOML config file, filling in defaults for any
// field the file omits.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}

// Validate returns an error if the config holds a value the rest of the
// program cannot act on.
func (c *Config) Validate() error {
	if c.Execution.MemorySize < 10*1024 {
		return fmt.Errorf("config: execution.memory_size must be >= 10240 bytes")
	}
	switch c.Display.NumberFormat {
	case "hex", "dec":
	default:
		return fmt.Errorf("config: display.number_format must be 'hex' or 'dec', got %q", c.Display.NumberFormat)
	}
	return nil
}
