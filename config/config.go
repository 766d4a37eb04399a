// Package config holds the generation request and output path resolution.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Compression codec names accepted by the writer.
const (
	CompressionUncompressed = "uncompressed"
	CompressionSnappy       = "snappy"
	CompressionGzip         = "gzip"
	CompressionZstd         = "zstd"
	CompressionLZ4          = "lz4"
	CompressionBrotli       = "brotli"
)

// ConfigError reports an invalid generation request. It is raised
// before any row is produced and is never retried.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// Config describes one zone generation run.
type Config struct {
	// ScaleFactor sizes the dataset. The CLI clamps it upward to 1.0
	// before construction; this package never sees values below 1.0.
	ScaleFactor float64 `mapstructure:"scale_factor" yaml:"scale_factor"`

	// OutputDir is the root directory the table is written under.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// Parts is the number of horizontal slices the table is split into.
	Parts int32 `mapstructure:"parts" yaml:"parts"`

	// Part selects a single 1-based part. Zero means all parts.
	Part int32 `mapstructure:"part" yaml:"part"`

	// RowGroupBytes is the parquet row-group size hint in bytes.
	RowGroupBytes int64 `mapstructure:"row_group_bytes" yaml:"row_group_bytes"`

	// Compression is the parquet compression codec.
	Compression string `mapstructure:"compression" yaml:"compression"`
}

// Load reads a Config from a YAML file via viper.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects invalid part/parts combinations before any work starts.
func (c *Config) Validate() error {
	if c.Parts < 1 {
		return &ConfigError{Msg: fmt.Sprintf("invalid --parts=%d: must be at least 1", c.Parts)}
	}
	if c.Part != 0 && (c.Part < 1 || c.Part > c.Parts) {
		return &ConfigError{Msg: fmt.Sprintf("invalid --part=%d for --parts=%d", c.Part, c.Parts)}
	}
	return nil
}

// OutputPath resolves the output file for a given 1-based part. Pure
// path computation; directory creation belongs to the writer.
func (c *Config) OutputPath(part int32) string {
	if c.Parts > 1 {
		return filepath.Join(c.OutputDir, "zone", fmt.Sprintf("zone.%d.parquet", part))
	}
	return filepath.Join(c.OutputDir, "zone.parquet")
}
