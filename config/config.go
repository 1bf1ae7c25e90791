// Package config loads the run configuration from a cellcomplex.yaml
// found by walking up from the working directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = "cellcomplex.yaml"

// Ordering selects the adaptive builder's plane-candidate ordering.
type Ordering string

const (
	OrderingOptimal Ordering = "optimal"
	OrderingInput   Ordering = "input"
)

// Mode selects the adaptive builder's frontier traversal order.
type Mode string

const (
	ModeDepth Mode = "DEPTH"
	ModeWidth Mode = "WIDTH"
)

// Config is the run configuration for a cell complex build.
type Config struct {
	InitialPadding  float64  `yaml:"initial_padding"`
	BuildGraph      bool     `yaml:"build_graph"`
	Exhaustive      bool     `yaml:"exhaustive"`
	Ordering        Ordering `yaml:"ordering"`
	Mode            Mode     `yaml:"mode"`
	Theta           int      `yaml:"theta"`
	NumWorkers      int      `yaml:"num_workers"`
	MergeDuplicates bool     `yaml:"merge_duplicates"`
}

// Default returns the documented defaults: initial_padding 0.1,
// build_graph true, ordering optimal, mode DEPTH, θ 1, everything else
// zero-valued/false.
func Default() Config {
	return Config{
		InitialPadding: 0.1,
		BuildGraph:     true,
		Ordering:       OrderingOptimal,
		Mode:           ModeDepth,
		Theta:          1,
	}
}

// Validate checks θ >= 1, num_workers >= 0, plus the enumerated
// Ordering/Mode values.
func (c Config) Validate() error {
	if c.Theta < 1 {
		return fmt.Errorf("config: theta must be >= 1, got %d", c.Theta)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("config: num_workers must be >= 0, got %d", c.NumWorkers)
	}
	if c.Ordering != OrderingOptimal && c.Ordering != OrderingInput {
		return fmt.Errorf("config: ordering must be 'optimal' or 'input', got %q", c.Ordering)
	}
	if c.Mode != ModeDepth && c.Mode != ModeWidth {
		return fmt.Errorf("config: mode must be 'DEPTH' or 'WIDTH', got %q", c.Mode)
	}
	return nil
}

// FindProjectRoot walks up from the current working directory looking
// for cellcomplex.yaml, returning the directory that contains it.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, configFileName)
		if _, err := os.Stat(configPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found in any parent directory of %s", configFileName, cwd)
		}
		dir = parent
	}
}

// Load reads and parses cellcomplex.yaml from the given project root,
// applying Default() for any field the file omits.
func Load(projectRoot string) (*Config, error) {
	configPath := filepath.Join(projectRoot, configFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", configFileName, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configFileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", configFileName, err)
	}

	return &cfg, nil
}
