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

// Package source holds the update sources that feed the refresh loop.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mfreeman451/passpersist/pkg/logger"
	"github.com/mfreeman451/passpersist/pkg/refresh"
)

var (
	errNoSource = errors.New("no source found")
)

// Factory builds an updater from its raw JSON configuration.
type Factory func(ctx context.Context, raw json.RawMessage, log *slog.Logger) (refresh.Updater, error)

// Registry defines how to store and retrieve source factories.
type Registry interface {
	Register(sourceType string, factory Factory)
	Get(ctx context.Context, sourceType string, raw json.RawMessage, log *slog.Logger) (refresh.Updater, error)
	Types() []string
}

// Watcher is implemented by sources that can notice changes on their own
// and ask for an early refresh.
type Watcher interface {
	Watch(ctx context.Context, t refresh.Triggerer) error
}

// sourceRegistry is a simple in-memory implementation of Registry.
type sourceRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() Registry {
	return &sourceRegistry{
		factories: make(map[string]Factory),
	}
}

func (r *sourceRegistry) Register(sourceType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[sourceType] = factory
}

func (r *sourceRegistry) Get(
	ctx context.Context, sourceType string, raw json.RawMessage, log *slog.Logger) (refresh.Updater, error) {
	r.mu.RLock()
	f, ok := r.factories[sourceType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", errNoSource, sourceType)
	}

	if log == nil {
		log = logger.Discard()
	}

	return f(ctx, raw, log.With("source", sourceType))
}

// Types lists the registered source types in sorted order.
func (r *sourceRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}

	sort.Strings(types)

	return types
}

// WatchService adapts a Watcher to the supervisor's service contract.
type WatchService struct {
	watcher Watcher
	trigger refresh.Triggerer
}

func NewWatchService(w Watcher, t refresh.Triggerer) *WatchService {
	return &WatchService{watcher: w, trigger: t}
}

// Start blocks until ctx ends or the watcher fails.
func (s *WatchService) Start(ctx context.Context) error {
	return s.watcher.Watch(ctx, s.trigger)
}

func (*WatchService) Stop(context.Context) error {
	return nil
}
