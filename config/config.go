// Package config holds the settings of a conversion run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/miku/zbkg"
)

// LookupFilename is the default name of the MSC lookup table.
const LookupFilename = "msc_codes.jsonl"

var (
	ErrNoInput      = errors.New("input file required")
	ErrNoOutputBase = errors.New("output base required")
)

// Config for a single conversion; there are no config files or environment
// variables.
type Config struct {
	// InputFile is a JSON lines file, optionally compressed.
	InputFile string
	// OutputBase is the output path without extension; a trailing .ttl or
	// .nt is stripped.
	OutputBase string
	// LookupFile is the MSC lookup table.
	LookupFile string
	// BlankNodes selects blank node labels, "seq" or "uuid".
	BlankNodes string
	Verbose    bool
}

// DefaultLookupFile returns msc_codes.jsonl in the working directory, if it
// exists, otherwise the location under the XDG data directory.
func DefaultLookupFile() string {
	if _, err := os.Stat(LookupFilename); err == nil {
		return LookupFilename
	}
	return filepath.Join(xdg.DataHome, zbkg.AppName, LookupFilename)
}

// Base returns the output base with any serialization extension removed.
func (c *Config) Base() string {
	base := c.OutputBase
	for _, ext := range []string{".ttl", ".nt"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// TurtleFile is the Turtle output path.
func (c *Config) TurtleFile() string { return c.Base() + ".ttl" }

// NTriplesFile is the N-Triples output path.
func (c *Config) NTriplesFile() string { return c.Base() + ".nt" }

// Validate checks that input and lookup exist and the output directory is
// there, before anything gets processed.
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return ErrNoInput
	}
	if c.Base() == "" {
		return ErrNoOutputBase
	}
	if err := isFile(c.InputFile); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := isFile(c.LookupFile); err != nil {
		return fmt.Errorf("lookup: %w", err)
	}
	switch c.BlankNodes {
	case "", "seq", "uuid":
	default:
		return fmt.Errorf("blank nodes: unknown mode %q", c.BlankNodes)
	}
	dir := filepath.Dir(c.Base())
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("output: %s is not a directory", dir)
	}
	return nil
}

func isFile(filename string) error {
	fi, err := os.Stat(filename)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}
	return nil
}
