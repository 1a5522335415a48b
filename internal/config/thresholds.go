package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultThresholds returns the built-in per-sport-family value thresholds,
// keyed by sport_key prefix.
func DefaultThresholds() map[string]float64 {
	return map[string]float64{
		"basketball":       1.15,
		"americanfootball": 1.15,
		"baseball":         1.16,
		"soccer":           1.13,
		"tennis":           1.12,
	}
}

type thresholdsFile struct {
	Thresholds map[string]float64 `yaml:"thresholds"`
}

// LoadThresholds reads a per-sport threshold table from a YAML file:
//
//	thresholds:
//	  basketball: 1.15
//	  soccer: 1.13
func LoadThresholds(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read thresholds file: %w", err)
	}

	var f thresholdsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse thresholds file: %w", err)
	}

	if len(f.Thresholds) == 0 {
		return nil, fmt.Errorf("thresholds file %s defines no thresholds", path)
	}

	for sport, threshold := range f.Thresholds {
		if threshold < 1.0 {
			return nil, fmt.Errorf("threshold for %s must be >= 1.0, got %.3f", sport, threshold)
		}
	}

	return f.Thresholds, nil
}
