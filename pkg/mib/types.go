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

// Package mib pkg/mib/types.go
package mib

import (
	"fmt"

	"github.com/gosnmp/gosnmp"
)

// Type is the SNMP type tag sent to the agent. The spelling of each
// constant is part of the pass_persist protocol.
type Type string

const (
	TypeInteger Type = "INTEGER"
	TypeString  Type = "STRING"
	TypeCounter Type = "Counter32"
	TypeGauge   Type = "GAUGE"
)

// Entry is a single value in the tree, keyed by its base-relative OID.
type Entry struct {
	OID   string `json:"oid"`
	Type  Type   `json:"type"`
	Value string `json:"value"`
}

// Valid reports whether t is one of the supported tags.
func (t Type) Valid() bool {
	switch t {
	case TypeInteger, TypeString, TypeCounter, TypeGauge:
		return true
	default:
		return false
	}
}

// ParseType accepts the wire spelling of a tag.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}

	return t, nil
}

// TypeFromBER maps an SNMP wire type onto the closest supported tag.
func TypeFromBER(ber gosnmp.Asn1BER) (Type, error) {
	switch ber {
	case gosnmp.Integer:
		return TypeInteger, nil
	case gosnmp.OctetString, gosnmp.IPAddress, gosnmp.ObjectIdentifier:
		return TypeString, nil
	case gosnmp.Counter32:
		return TypeCounter, nil
	case gosnmp.Gauge32, gosnmp.TimeTicks, gosnmp.Uinteger32:
		return TypeGauge, nil
	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedBER, ber)
	}
}
