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

// Package snmp pkg/source/snmp/client.go
package snmp

import (
	"fmt"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"
)

// SNMPError wraps SNMP-specific errors with additional context.
type SNMPError struct {
	Op      string
	Target  string
	Wrapped error
}

func (e *SNMPError) Error() string {
	return fmt.Sprintf("SNMP %s failed for target %s: %v", e.Op, e.Target, e.Wrapped)
}

func (e *SNMPError) Unwrap() error {
	return e.Wrapped
}

// gosnmpClient implements Client on top of gosnmp.
type gosnmpClient struct {
	client    *gosnmp.GoSNMP
	host      string
	mu        sync.Mutex
	connected bool
}

func newClient(cfg *Config) (Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid target: %w", err)
	}

	client := &gosnmp.GoSNMP{
		Target:             cfg.Host,
		Port:               cfg.Port,
		Community:          cfg.Community,
		Timeout:            time.Duration(cfg.Timeout),
		Retries:            cfg.Retries,
		ExponentialTimeout: true,
		MaxOids:            gosnmp.MaxOids,
		MaxRepetitions:     cfg.MaxRepetitions,
	}

	switch cfg.Version {
	case Version1:
		client.Version = gosnmp.Version1
	case Version2c:
		client.Version = gosnmp.Version2c
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedVersion, cfg.Version)
	}

	return &gosnmpClient{
		client: client,
		host:   cfg.Host,
	}, nil
}

// Connect implements Client.
func (c *gosnmpClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	if err := c.client.Connect(); err != nil {
		return &SNMPError{Op: "connect", Target: c.host, Wrapped: err}
	}

	c.connected = true

	return nil
}

// BulkWalkAll implements Client. SNMPv1 has no GETBULK, so it falls back
// to a plain walk.
func (c *gosnmpClient) BulkWalkAll(rootOid string) ([]gosnmp.SnmpPDU, error) {
	var (
		pdus []gosnmp.SnmpPDU
		err  error
	)

	if c.client.Version == gosnmp.Version1 {
		pdus, err = c.client.WalkAll(rootOid)
	} else {
		pdus, err = c.client.BulkWalkAll(rootOid)
	}

	if err != nil {
		return nil, &SNMPError{Op: "walk", Target: c.host, Wrapped: err}
	}

	return pdus, nil
}

// Close implements Client.
func (c *gosnmpClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	if err := c.client.Conn.Close(); err != nil {
		return err
	}

	c.connected = false

	return nil
}
