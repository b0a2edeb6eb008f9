// Package config handles exporter configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/zmdl/internal/export"
)

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export" toml:"export"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ExportConfig holds the export pipeline settings.
type ExportConfig struct {
	UVLayer      string  `yaml:"uv_layer" toml:"uv_layer"`         // empty picks the active layer
	DeformLayer  string  `yaml:"deform_layer" toml:"deform_layer"` // empty picks the active layer
	MergeEpsilon float32 `yaml:"merge_epsilon" toml:"merge_epsilon"`
	Keyframes    string  `yaml:"keyframes" toml:"keyframes"` // strict or resample
	YUp          bool    `yaml:"y_up" toml:"y_up"`
	FlipV        bool    `yaml:"flip_v" toml:"flip_v"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			MergeEpsilon: 0,
			Keyframes:    export.KeyframesStrict.String(),
			YUp:          true,
			FlipV:        true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Options converts the export settings into exporter options. The logger is
// left for the caller to set.
func (c *Config) Options() (export.Options, error) {
	policy, err := export.ParseKeyframePolicy(c.Export.Keyframes)
	if err != nil {
		return export.Options{}, err
	}
	if c.Export.MergeEpsilon < 0 {
		return export.Options{}, fmt.Errorf("merge_epsilon must not be negative, got %g", c.Export.MergeEpsilon)
	}
	return export.Options{
		UVLayer:      c.Export.UVLayer,
		DeformLayer:  c.Export.DeformLayer,
		MergeEpsilon: c.Export.MergeEpsilon,
		Keyframes:    policy,
		YUp:          c.Export.YUp,
		FlipV:        c.Export.FlipV,
	}, nil
}
