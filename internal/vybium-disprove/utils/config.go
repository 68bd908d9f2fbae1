package utils

import (
	"fmt"
	"runtime"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/elements"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/vm"
)

// Config represents the configuration of one protocol instance
type Config struct {
	// Names compared by raw value instead of by digest. Fixed per protocol instance.
	RevealNames []string

	// Emit the fault gadget for terminal segments as well
	TerminalGadget bool

	// Execution limits of the target machine
	MaxStackSize int    // Combined main and alt stack items
	MaxSteps     uint64 // Executed instructions per leaf

	// Batch compilation
	Workers int // Segments compiled concurrently

	// Hash function behind OP_HASHN
	HashFunction string // "blake2s"
}

// DefaultConfig returns the configuration used by the Groth16 verifier chunks
func DefaultConfig() *Config {
	return &Config{
		RevealNames:    append([]string(nil), elements.ProofNames...),
		TerminalGadget: false,
		MaxStackSize:   1000,
		MaxSteps:       10_000_000,
		Workers:        runtime.NumCPU(),
		HashFunction:   "blake2s",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.RevealNames))
	for _, n := range c.RevealNames {
		if n == "" {
			return fmt.Errorf("reveal names must not be empty")
		}
		if seen[n] {
			return fmt.Errorf("duplicate reveal name %q", n)
		}
		seen[n] = true
	}

	if c.MaxStackSize <= 0 {
		return fmt.Errorf("max stack size must be positive")
	}

	if c.MaxSteps == 0 {
		return fmt.Errorf("max steps must be positive")
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}

	if c.HashFunction != "blake2s" {
		return fmt.Errorf("hash function must be 'blake2s', got '%s'", c.HashFunction)
	}

	return nil
}

// WithRevealNames sets the direct-reveal names
func (c *Config) WithRevealNames(names ...string) *Config {
	c.RevealNames = append([]string(nil), names...)
	return c
}

// WithTerminalGadget sets whether terminal segments keep the fault gadget
func (c *Config) WithTerminalGadget(enabled bool) *Config {
	c.TerminalGadget = enabled
	return c
}

// WithMaxStackSize sets the stack size limit
func (c *Config) WithMaxStackSize(size int) *Config {
	c.MaxStackSize = size
	return c
}

// WithMaxSteps sets the step limit
func (c *Config) WithMaxSteps(steps uint64) *Config {
	c.MaxSteps = steps
	return c
}

// WithWorkers sets the batch concurrency
func (c *Config) WithWorkers(workers int) *Config {
	c.Workers = workers
	return c
}

// WithHashFunction sets the hash function
func (c *Config) WithHashFunction(hashFunc string) *Config {
	c.HashFunction = hashFunc
	return c
}

// RevealSet builds the direct-reveal set
func (c *Config) RevealSet() elements.RevealSet {
	return elements.NewRevealSet(c.RevealNames...)
}

// VMLimits returns the interpreter limits
func (c *Config) VMLimits() vm.Limits {
	return vm.Limits{
		MaxStackSize: c.MaxStackSize,
		MaxSteps:     c.MaxSteps,
	}
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	return &Config{
		RevealNames:    append([]string(nil), c.RevealNames...),
		TerminalGadget: c.TerminalGadget,
		MaxStackSize:   c.MaxStackSize,
		MaxSteps:       c.MaxSteps,
		Workers:        c.Workers,
		HashFunction:   c.HashFunction,
	}
}
