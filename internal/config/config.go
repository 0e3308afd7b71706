// Package config loads namefang settings from file, environment and
// defaults.
package config

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/namefang/pkg/review"
)

// Default configuration values.
const (
	DefaultMinConfidence    = 0.0
	DefaultTargetConvention = review.TargetPreserve
	DefaultFuzzyThreshold   = 0.3
	DefaultMaxInputBytes    = review.DefaultMaxInputBytes
	DefaultStatsEnabled     = true
	DefaultStatsPath        = ".namefang_stats.jsonl"
	DefaultLogLevel         = "info"
)

// ErrInvalidConfig indicates a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the root configuration.
type Config struct {
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Review     ReviewConfig     `mapstructure:"review"`
	Stats      StatsConfig      `mapstructure:"stats"`
	Log        LogConfig        `mapstructure:"log"`
}

// DictionaryConfig points at the terminology dictionary file. An empty
// path selects the builtin dictionary.
type DictionaryConfig struct {
	Path string `mapstructure:"path"`
}

// ReviewConfig carries the engine options.
type ReviewConfig struct {
	MinConfidence    float64 `mapstructure:"min_confidence"`
	TargetConvention string  `mapstructure:"target_convention"`
	FuzzyThreshold   float64 `mapstructure:"fuzzy_match_threshold"`
	MaxInputBytes    int     `mapstructure:"max_input_bytes"`
}

// StatsConfig controls the transformation statistics log.
type StatsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Options converts the review section into engine options.
func (r ReviewConfig) Options(fileID string) review.Options {
	return review.Options{
		MinConfidence:    r.MinConfidence,
		TargetConvention: r.TargetConvention,
		FuzzyThreshold:   r.FuzzyThreshold,
		MaxInputBytes:    r.MaxInputBytes,
		FileID:           fileID,
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Review.MinConfidence < 0 || c.Review.MinConfidence > 1 {
		return fmt.Errorf("%w: review.min_confidence %v not in [0,1]", ErrInvalidConfig, c.Review.MinConfidence)
	}

	if c.Review.FuzzyThreshold < 0 || c.Review.FuzzyThreshold > 1 {
		return fmt.Errorf("%w: review.fuzzy_threshold %v not in [0,1]", ErrInvalidConfig, c.Review.FuzzyThreshold)
	}

	if c.Review.MaxInputBytes < 0 {
		return fmt.Errorf("%w: review.max_input_bytes must not be negative", ErrInvalidConfig)
	}

	switch c.Review.TargetConvention {
	case "", review.TargetPreserve, review.TargetSnake, review.TargetCamel:
	default:
		return fmt.Errorf("%w: review.target_convention %q", ErrInvalidConfig, c.Review.TargetConvention)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}

	return nil
}
