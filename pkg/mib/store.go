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

// Package mib pkg/mib/store.go
package mib

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// snapshot is an immutable tree and its sorted index. Once published it is
// never modified.
type snapshot struct {
	tree      map[string]Entry
	index     []string
	published time.Time
}

// Store owns the MIB tree. Writers stage entries and publish them with
// Commit or Replace; readers load the current snapshot without locking.
type Store struct {
	current atomic.Pointer[snapshot]

	mu      sync.Mutex // guards staging
	staging map[string]Entry
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{
		staging: make(map[string]Entry),
	}

	s.current.Store(&snapshot{tree: map[string]Entry{}})

	return s
}

func newSnapshot(tree map[string]Entry) *snapshot {
	index := make([]string, 0, len(tree))
	for k := range tree {
		index = append(index, k)
	}

	// Plain string order, so "10.1" sorts before "2.1".
	sort.Strings(index)

	return &snapshot{
		tree:      tree,
		index:     index,
		published: time.Now(),
	}
}

// Upsert stages an entry. It is not visible to readers until Commit.
func (s *Store) Upsert(suffix string, typ Type, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.staging[suffix] = Entry{OID: suffix, Type: typ, Value: value}
}

// Delete removes a staged entry.
func (s *Store) Delete(suffix string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.staging, suffix)
}

// Reset drops every staged entry.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.staging = make(map[string]Entry)
}

// Commit publishes the staged entries as a new snapshot and rebuilds the
// index. It returns the number of published entries.
func (s *Store) Commit() int {
	s.mu.Lock()
	tree := make(map[string]Entry, len(s.staging))
	for k, v := range s.staging {
		tree[k] = v
	}
	s.mu.Unlock()

	s.current.Store(newSnapshot(tree))

	return len(tree)
}

// Replace discards the staged entries, stages a copy of entries and
// publishes it.
func (s *Store) Replace(entries map[string]Entry) {
	tree := make(map[string]Entry, len(entries))
	for k, v := range entries {
		v.OID = k
		tree[k] = v
	}

	staged := make(map[string]Entry, len(tree))
	for k, v := range tree {
		staged[k] = v
	}

	s.mu.Lock()
	s.staging = staged
	s.current.Store(newSnapshot(tree))
	s.mu.Unlock()
}

func (s *Store) load() *snapshot {
	return s.current.Load()
}

// Lookup returns the entry stored at suffix.
func (s *Store) Lookup(suffix string) (Entry, bool) {
	e, ok := s.load().tree[suffix]
	return e, ok
}

// LookupNext returns the entry after suffix in index order. When suffix is
// not a stored key, the first key that has suffix as a string prefix is
// returned instead, which lets a walk start from a container OID.
func (s *Store) LookupNext(suffix string) (Entry, bool) {
	snap := s.load()

	i := sort.SearchStrings(snap.index, suffix)
	if i < len(snap.index) && snap.index[i] == suffix {
		if i+1 >= len(snap.index) {
			return Entry{}, false
		}

		return snap.tree[snap.index[i+1]], true
	}

	// Keys sharing a prefix are contiguous in the index and start at the
	// insertion point.
	if i < len(snap.index) && strings.HasPrefix(snap.index[i], suffix) {
		return snap.tree[snap.index[i]], true
	}

	return Entry{}, false
}

// LookupFirst returns the first entry in index order.
func (s *Store) LookupFirst() (Entry, bool) {
	snap := s.load()
	if len(snap.index) == 0 {
		return Entry{}, false
	}

	return snap.tree[snap.index[0]], true
}

// Entries returns the published entries in index order.
func (s *Store) Entries() []Entry {
	snap := s.load()

	entries := make([]Entry, 0, len(snap.index))
	for _, k := range snap.index {
		entries = append(entries, snap.tree[k])
	}

	return entries
}

// Len returns the number of published entries.
func (s *Store) Len() int {
	return len(s.load().index)
}

// PublishedAt returns when the current snapshot was published.
func (s *Store) PublishedAt() time.Time {
	return s.load().published
}
