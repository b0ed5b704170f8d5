// Package config loads and validates the YAML pipeline configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/buildgraph/ifcgraph/pkg/topology"
	"github.com/buildgraph/ifcgraph/pkg/validation"
)

// Config is the full pipeline configuration.
type Config struct {
	Store      StoreConfig               `yaml:"store"`
	Processing topology.ProcessingConfig `yaml:"processing"`
	Export     ExportConfig              `yaml:"export"`
	Logging    LoggingConfig             `yaml:"logging"`
}

// Duration wraps time.Duration so config files can use values like "90s"
// or "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// StoreConfig configures the embedded graph store.
type StoreConfig struct {
	DataDir         string `yaml:"data_dir"`
	SnapshotOnClose bool   `yaml:"snapshot_on_close"`
}

// ExportConfig configures the chain export engine.
type ExportConfig struct {
	ContractAddress string   `yaml:"contract_address"`
	ChainID         uint64   `yaml:"chain_id"`
	HTTPURIBase     string   `yaml:"http_uri_base"`
	MintTimeout     Duration `yaml:"mint_timeout"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Processing: topology.DefaultProcessingConfig(),
		Export: ExportConfig{
			ChainID:     1,
			MintTimeout: Duration(2 * time.Minute),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML config file and overlays it on the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Explicit empty values in the file fall back to the defaults rather
	// than failing validation.
	cfg.Processing.Method = validation.DefaultOr(cfg.Processing.Method, "direct")
	cfg.Processing.Tolerance = validation.DefaultOrFloat(cfg.Processing.Tolerance, topology.DefaultEngineTolerance)
	cfg.Logging.Level = validation.DefaultOr(cfg.Logging.Level, "info")
	cfg.Export.ChainID = validation.DefaultOr(cfg.Export.ChainID, 1)
	cfg.Export.MintTimeout = validation.DefaultOr(cfg.Export.MintTimeout, Duration(2*time.Minute))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the whole configuration and reports every problem found.
func (c *Config) Validate() error {
	methods := []string{
		"direct",
		topology.MethodDirectWithDictionaries,
		topology.MethodDirectWithoutDictionaries,
		topology.MethodTraditionalWithTypes,
		topology.MethodTraditionalFallback,
	}
	cv := validation.NewConfigValidator("Config").
		OneOf("Processing.Method", c.Processing.Method, methods).
		RangeFloat("Processing.Tolerance", c.Processing.Tolerance, 0, 1).
		OneOf("Logging.Level", c.Logging.Level, []string{"debug", "info", "warn", "error"}).
		When(c.Export.ContractAddress != "", func(v *validation.ConfigValidator) {
			v.Custom("Export.ContractAddress", func() error {
				return validateAddress(c.Export.ContractAddress)
			})
		}).
		MinDuration("Export.MintTimeout", c.Export.MintTimeout.Std(), time.Second)

	return cv.Validate()
}

func validateAddress(addr string) error {
	if len(addr) != 42 || addr[0] != '0' || addr[1] != 'x' {
		return fmt.Errorf("address %q must be 0x followed by 40 hex digits", addr)
	}
	for _, c := range addr[2:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return fmt.Errorf("address %q must be 0x followed by 40 hex digits", addr)
		}
	}
	return nil
}
