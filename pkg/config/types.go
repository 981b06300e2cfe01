package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mfreeman451/passpersist/pkg/models"
	"github.com/mfreeman451/passpersist/pkg/oid"
)

const (
	DefaultRefresh  = Duration(60 * time.Second)
	DefaultLogLevel = "info"
)

// Duration accepts either a Go duration string ("30s") or a bare number of
// seconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as seconds
		*d = Duration(time.Duration(value * float64(time.Second)))
		return nil
	case string:
		if secs, err := strconv.ParseFloat(value, 64); err == nil {
			*d = Duration(time.Duration(secs * float64(time.Second)))
			return nil
		}

		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Source selects the update source and carries its own configuration,
// decoded by the source factory.
type Source struct {
	Type   string          `json:"type"`             // e.g., "ini", "sqlite", "snmp"
	Config json.RawMessage `json:"config,omitempty"` // Source-specific configuration
}

// Config represents the configuration for a pass_persist backend.
type Config struct {
	BaseOID    string               `json:"base_oid"`              // e.g., .1.3.6.1.4.1.8072.9999
	Refresh    Duration             `json:"refresh"`               // How often the source is re-read
	EnableDump bool                 `json:"enable_dump"`           // Answer the DUMP debug directive
	LogLevel   string               `json:"log_level,omitempty"`   // debug, info, warn, error
	StatusAddr string               `json:"status_addr,omitempty"` // e.g., 127.0.0.1:8161; empty disables
	Metrics    models.MetricsConfig `json:"metrics"`
	Source     Source               `json:"source"`
}

// Validate fills defaults and checks required fields.
func (c *Config) Validate() error {
	if c.BaseOID == "" {
		return fmt.Errorf("%w: base_oid", errMissingField)
	}

	if _, err := oid.NewBase(c.BaseOID); err != nil {
		return fmt.Errorf("%w: base_oid %q: %w", errInvalidField, c.BaseOID, err)
	}

	if c.Refresh == 0 {
		c.Refresh = DefaultRefresh
	}

	if c.Refresh < 0 {
		return fmt.Errorf("%w: refresh must be positive", errInvalidField)
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	if c.Source.Type == "" {
		return fmt.Errorf("%w: source.type", errMissingField)
	}

	return nil
}
