package vcedit

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
)

// Identity strategies accepted by Config.IDStrategy.
const (
	IDStrategyCounter   = "counter"
	IDStrategyAttribute = "attribute"
)

// Config is the declarative form of the history options, as found in an
// embedding application's TOML settings:
//
//	max_batches = 500 # zero or absent keeps every batch
//	merge_text = true
//	strict_selection = false
//	id_strategy = "attribute"
//	id_attribute = "data-block-id"
type Config struct {
	MaxBatches      int    `toml:"max_batches"`
	MergeText       bool   `toml:"merge_text"`
	StrictSelection bool   `toml:"strict_selection"`
	IDStrategy      string `toml:"id_strategy"`
	IDAttribute     string `toml:"id_attribute"`
}

// DefaultConfig returns the configuration matching the option defaults.
func DefaultConfig() Config {
	return Config{
		MaxBatches: DefaultMaxBatches,
		MergeText:  true,
		IDStrategy: IDStrategyCounter,
	}
}

// ParseConfig decodes TOML on top of DefaultConfig. Keys absent from data
// keep their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ReadConfig reads and decodes TOML from r.
func ReadConfig(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks the fields that have a closed set of values.
func (c Config) Validate() error {
	switch c.IDStrategy {
	case "", IDStrategyCounter, IDStrategyAttribute:
	default:
		return fmt.Errorf("invalid id_strategy %q: want %q or %q", c.IDStrategy, IDStrategyCounter, IDStrategyAttribute)
	}
	if c.MaxBatches < 0 {
		return fmt.Errorf("invalid max_batches %d: must not be negative", c.MaxBatches)
	}
	return nil
}

// Options converts the configuration into options. Each call builds a
// new identity store.
func (c Config) Options() []Option {
	var store IDStore
	if c.IDStrategy == IDStrategyAttribute {
		store = NewAttrStore(c.IDAttribute)
	} else {
		store = NewMapStore()
	}
	return []Option{
		WithIDStore(store),
		WithMaxBatches(c.MaxBatches),
		WithTextMerge(c.MergeText),
		WithStrictSelection(c.StrictSelection),
	}
}
