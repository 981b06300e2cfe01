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

// Package oid converts between strings, full OIDs and base-relative suffixes.
package oid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errEmptyBase   = errors.New("base OID is required")
	errInvalidBase = errors.New("invalid base OID")
)

// Encode turns an arbitrary string into an OID fragment of the form
// "<len>.<b1>.<b2>...", one arc per byte. Encode("") is "0.".
func Encode(s string) string {
	var b strings.Builder

	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte('.')

	for i := 0; i < len(s); i++ {
		if i > 0 {
			b.WriteByte('.')
		}

		b.WriteString(strconv.Itoa(int(s[i])))
	}

	return b.String()
}

// Valid reports whether s is a dotted-decimal OID. A single leading dot is
// allowed, empty arcs are not.
func Valid(s string) bool {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return false
	}

	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}

		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}

	return true
}

// Base is the immutable OID prefix every served entry lives under.
// It always starts and ends with a dot.
type Base struct {
	prefix string
}

// NewBase validates and normalizes a base OID. "1.3.6.1" and ".1.3.6.1."
// both become ".1.3.6.1.".
func NewBase(s string) (Base, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Base{}, errEmptyBase
	}

	trimmed := strings.TrimSuffix(s, ".")
	if !Valid(trimmed) {
		return Base{}, fmt.Errorf("%w: %q", errInvalidBase, s)
	}

	if !strings.HasPrefix(trimmed, ".") {
		trimmed = "." + trimmed
	}

	return Base{prefix: trimmed + "."}, nil
}

// MustBase is NewBase for constants known to be valid.
func MustBase(s string) Base {
	b, err := NewBase(s)
	if err != nil {
		panic(err)
	}

	return b
}

// String returns the base with its trailing dot.
func (b Base) String() string {
	return b.prefix
}

// Root returns the base without its trailing dot, as an SNMP agent sends it.
func (b Base) Root() string {
	return strings.TrimSuffix(b.prefix, ".")
}

// Strip removes the base prefix from a full OID. ok is false when the OID is
// not under the base; an OID equal to the base yields the empty suffix.
func (b Base) Strip(full string) (suffix string, ok bool) {
	if full != "" && !strings.HasPrefix(full, ".") {
		full = "." + full
	}

	if full == b.Root() {
		return "", true
	}

	if !strings.HasPrefix(full, b.prefix) {
		return "", false
	}

	return full[len(b.prefix):], true
}

// Join prefixes a suffix with the base, producing the OID sent on the wire.
func (b Base) Join(suffix string) string {
	return b.prefix + suffix
}
