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

// Package snmp republishes a subtree walked from a remote SNMP agent.
package snmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gosnmp/gosnmp"

	"github.com/mfreeman451/passpersist/pkg/logger"
	"github.com/mfreeman451/passpersist/pkg/mib"
	"github.com/mfreeman451/passpersist/pkg/oid"
	"github.com/mfreeman451/passpersist/pkg/refresh"
)

var errUnexpectedValue = errors.New("unexpected value")

// Source walks Root on every refresh. Each variable is published under
// the local base with the remote root removed.
type Source struct {
	client Client
	root   oid.Base
	log    *slog.Logger
}

// New is the source factory.
func New(_ context.Context, raw json.RawMessage, log *slog.Logger) (refresh.Updater, error) {
	var cfg Config

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("snmp source: invalid config: %w", err)
		}
	}

	client, err := newClient(&cfg)
	if err != nil {
		return nil, err
	}

	src, err := NewSource(client, cfg.Root, log)
	if err != nil {
		return nil, err
	}

	return src, nil
}

// NewSource creates a source walking root through client.
func NewSource(client Client, root string, log *slog.Logger) (*Source, error) {
	base, err := oid.NewBase(root)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Source{client: client, root: base, log: log}, nil
}

// Update walks the remote subtree and restages it.
func (s *Source) Update(_ context.Context, w mib.Writer) error {
	if err := s.client.Connect(); err != nil {
		return err
	}

	pdus, err := s.client.BulkWalkAll(s.root.Root())
	if err != nil {
		return err
	}

	w.Reset()

	n := 0

	for _, pdu := range pdus {
		suffix, ok := s.root.Strip(pdu.Name)
		if !ok || suffix == "" {
			continue
		}

		typ, value, err := convertVariable(pdu)
		if err != nil {
			s.log.Debug("skipping variable", "oid", pdu.Name, "error", err)
			continue
		}

		w.Upsert(suffix, typ, value)
		n++
	}

	s.log.Debug("walk complete", "root", s.root.Root(), "variables", len(pdus), "staged", n)

	return nil
}

// Close closes the SNMP connection.
func (s *Source) Close() error {
	return s.client.Close()
}

// convertVariable maps an SNMP variable onto a tag and its text value.
func convertVariable(pdu gosnmp.SnmpPDU) (mib.Type, string, error) {
	typ, err := mib.TypeFromBER(pdu.Type)
	if err != nil {
		return "", "", err
	}

	switch pdu.Type {
	case gosnmp.OctetString:
		b, ok := pdu.Value.([]byte)
		if !ok {
			return "", "", fmt.Errorf("%w: %T", errUnexpectedValue, pdu.Value)
		}

		return typ, string(b), nil
	case gosnmp.IPAddress, gosnmp.ObjectIdentifier:
		v, ok := pdu.Value.(string)
		if !ok {
			return "", "", fmt.Errorf("%w: %T", errUnexpectedValue, pdu.Value)
		}

		return typ, v, nil
	default:
		return typ, gosnmp.ToBigInt(pdu.Value).String(), nil
	}
}
