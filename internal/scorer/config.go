// Package scorer trains a lead quality classifier on synthetically
// labeled feature tables and produces 0-1 lead scores and categories.
package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-quality-cli/internal/config"
)

// DefaultModelConfig returns a config.ModelConfig with the stock
// ensemble and threshold settings.
func DefaultModelConfig() config.ModelConfig {
	return config.ModelConfig{
		Trees:          50,
		MaxDepth:       10,
		Seed:           42,
		TestFraction:   0.2,
		NoiseStdDev:    0.05,
		LabelThreshold: 0.6,

		HotThreshold:  0.8,
		WarmThreshold: 0.6,
		ColdThreshold: 0.4,
	}
}

// ValidateConfig checks that a ModelConfig is internally consistent.
func ValidateConfig(c config.ModelConfig) error {
	var errs []string

	if c.Trees <= 0 {
		errs = append(errs, "trees must be > 0")
	}
	if c.MaxDepth <= 0 {
		errs = append(errs, "max_depth must be > 0")
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		errs = append(errs, fmt.Sprintf("test_fraction must be in (0,1), got %.2f", c.TestFraction))
	}
	if c.NoiseStdDev < 0 {
		errs = append(errs, "noise_std_dev must be >= 0")
	}
	if c.LabelThreshold < 0 || c.LabelThreshold > 1 {
		errs = append(errs, "label_threshold must be between 0 and 1")
	}

	// Category thresholds must be ordered and in range.
	if c.HotThreshold < c.WarmThreshold || c.WarmThreshold < c.ColdThreshold {
		errs = append(errs, "category thresholds must satisfy hot >= warm >= cold")
	}
	for name, v := range map[string]float64{
		"hot_threshold":  c.HotThreshold,
		"warm_threshold": c.WarmThreshold,
		"cold_threshold": c.ColdThreshold,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and 1", name))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
