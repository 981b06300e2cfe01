// Package models pkg/models/metrics.go
package models

import "time"

// RefreshCycle records one run of the update source.
type RefreshCycle struct {
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Entries   int           `json:"entries"`
	Error     string        `json:"error,omitempty"`
}

// MetricsConfig controls how many refresh cycles are kept in memory.
type MetricsConfig struct {
	Enabled   bool `json:"metrics_enabled"`
	Retention int  `json:"metrics_retention"`
}

const defaultRetention = 100

// RetentionOrDefault returns the configured retention, falling back to a
// sane default when unset.
func (c MetricsConfig) RetentionOrDefault() int {
	if c.Retention <= 0 {
		return defaultRetention
	}

	return c.Retention
}
