package utils

import (
	"testing"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/elements"
)

// TestDefaultConfig tests the DefaultConfig function
func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if len(config.RevealNames) != len(elements.ProofNames) {
		t.Errorf("RevealNames has %d entries, want %d", len(config.RevealNames), len(elements.ProofNames))
	}

	if config.TerminalGadget {
		t.Error("TerminalGadget should default to false")
	}

	if config.MaxStackSize != 1000 {
		t.Errorf("MaxStackSize = %d, want 1000", config.MaxStackSize)
	}

	if config.Workers <= 0 {
		t.Error("Workers should be positive")
	}

	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig() should be valid: %v", err)
	}
}

// TestConfigValidate tests the Validate method
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		expectErr bool
	}{
		{"valid default config", func(*Config) {}, false},
		{"empty reveal set", func(c *Config) { c.RevealNames = nil }, false},
		{"empty reveal name", func(c *Config) { c.RevealNames = []string{""} }, true},
		{"duplicate reveal name", func(c *Config) { c.RevealNames = []string{"a", "a"} }, true},
		{"zero stack size", func(c *Config) { c.MaxStackSize = 0 }, true},
		{"zero steps", func(c *Config) { c.MaxSteps = 0 }, true},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"unsupported hash", func(c *Config) { c.HashFunction = "blake3" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if (err != nil) != tt.expectErr {
				t.Errorf("Validate() error = %v, expectErr %v", err, tt.expectErr)
			}
		})
	}
}

// TestConfigSetters tests the fluent With* methods
func TestConfigSetters(t *testing.T) {
	config := DefaultConfig().
		WithRevealNames("x", "y").
		WithTerminalGadget(true).
		WithMaxStackSize(64).
		WithMaxSteps(500).
		WithWorkers(3).
		WithHashFunction("blake2s")

	if len(config.RevealNames) != 2 || !config.TerminalGadget || config.MaxStackSize != 64 ||
		config.MaxSteps != 500 || config.Workers != 3 {
		t.Errorf("setters not applied: %+v", config)
	}

	set := config.RevealSet()
	if !set.Contains("x") || set.Contains(elements.ProofA) {
		t.Error("RevealSet() does not reflect RevealNames")
	}

	limits := config.VMLimits()
	if limits.MaxStackSize != 64 || limits.MaxSteps != 500 {
		t.Errorf("VMLimits() = %+v", limits)
	}
}

// TestConfigClone tests that clones are independent
func TestConfigClone(t *testing.T) {
	original := DefaultConfig()
	clone := original.Clone()

	clone.RevealNames[0] = "changed"
	clone.Workers = 99

	if original.RevealNames[0] == "changed" {
		t.Error("Clone() shares RevealNames with the original")
	}
	if original.Workers == 99 {
		t.Error("Clone() shares fields with the original")
	}
}
