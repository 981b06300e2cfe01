/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	errInvalidDuration = errors.New("invalid duration")
	errMissingField    = errors.New("missing required field")
	errInvalidField    = errors.New("invalid field")
	errReadConfig      = errors.New("failed to read config")
	errParseConfig     = errors.New("failed to parse config")
	errInvalidConfig   = errors.New("invalid config")
)

// Override adjusts a loaded configuration before it is validated, for
// example with command line flags.
type Override func(*Config)

// Load reads the JSON configuration at path, applies overrides in order
// and validates the result.
func Load(path string, overrides ...Override) (*Config, error) {
	var cfg Config

	if err := loadFile(path, &cfg); err != nil {
		return nil, err
	}

	for _, o := range overrides {
		o(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w %s: %w", errInvalidConfig, path, err)
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w '%s': %w", errReadConfig, path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w '%s': %w", errParseConfig, path, err)
	}

	return nil
}
