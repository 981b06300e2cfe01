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

// Package mib pkg/mib/interfaces.go
package mib

// Reader is the read-only view served to the protocol responder and the
// status endpoint. Every call observes a single published snapshot.
type Reader interface {
	// Lookup returns the entry stored at suffix
	Lookup(suffix string) (Entry, bool)
	// LookupNext returns the entry following suffix in index order
	LookupNext(suffix string) (Entry, bool)
	// LookupFirst returns the first entry in index order
	LookupFirst() (Entry, bool)
	// Entries returns every published entry in index order
	Entries() []Entry
	Len() int
}

// Writer is handed to update sources during a refresh cycle. Writes are
// staged and only become visible on the next publish.
type Writer interface {
	Upsert(suffix string, typ Type, value string)
	Delete(suffix string)
	// Reset drops every staged entry
	Reset()
}
