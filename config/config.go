// Package config loads the operator-facing settings for pagecachectl:
// the pool size and heap file path. This lives outside disk and
// bufferpool deliberately — spec.md §1 treats "any command-line or
// configuration plumbing" as an external collaborator to the core.
//
// Grounded on the teacher's internal/config.go (viper + mapstructure).
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the on-disk YAML shape for pagecachectl.
type Config struct {
	Heap struct {
		File string `mapstructure:"file"`
	} `mapstructure:"heap"`
	Pool struct {
		Size int `mapstructure:"size"`
	} `mapstructure:"pool"`
}

// DefaultPoolSize is used when a config file omits pool.size or sets it
// to a non-positive value. A missing config file is an error, not a
// fallback to defaults.
const DefaultPoolSize = 16

// Load reads a YAML config file at path. A missing pool.size defaults
// to DefaultPoolSize.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("pool.size", DefaultPoolSize)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}

	if cfg.Heap.File == "" {
		return nil, fmt.Errorf("config: heap.file is required")
	}
	if cfg.Pool.Size <= 0 {
		cfg.Pool.Size = DefaultPoolSize
	}

	return &cfg, nil
}
