// Package config handles bldgltf configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/bldgltf/pkg/export"
	"github.com/Faultbox/bldgltf/pkg/geom"
	"github.com/Faultbox/bldgltf/pkg/material"
)

// ErrNegativeTolerance is returned by Validate for a tolerance below zero.
var ErrNegativeTolerance = errors.New("tolerance must not be negative")

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds the settings passed to every export.
type ExportConfig struct {
	Generator    string  `yaml:"generator"`
	ColorBy      string  `yaml:"color_by"`
	Binary       bool    `yaml:"binary"`    // write .glb regardless of extension
	Tolerance    float64 `yaml:"tolerance"` // vertex merge distance in meters
	AssignColors bool    `yaml:"assign_colors"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Generator: export.DefaultGenerator,
			ColorBy:   string(material.BySurfaceType),
			Tolerance: geom.DefaultTolerance,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if _, err := material.ParseColorBy(c.Export.ColorBy); err != nil {
		return fmt.Errorf("export.color_by: %w", err)
	}
	if c.Export.Tolerance < 0 {
		return fmt.Errorf("export.tolerance %v: %w", c.Export.Tolerance, ErrNegativeTolerance)
	}
	return nil
}

// ColorBy returns the validated color mode, BySurfaceType when unset.
func (c *Config) ColorBy() material.ColorBy {
	cb, err := material.ParseColorBy(c.Export.ColorBy)
	if err != nil {
		return material.BySurfaceType
	}
	return cb
}
