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

// Package refresh runs the update source on a fixed interval and publishes
// its output to the MIB store.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mfreeman451/passpersist/pkg/logger"
	"github.com/mfreeman451/passpersist/pkg/metrics"
	"github.com/mfreeman451/passpersist/pkg/models"
)

const defaultTriggerInterval = time.Second

// Scheduler owns the refresh loop. The first load runs synchronously in
// Start; later cycles run on a background goroutine. Any failure after the
// first load stops the loop, records the error and closes Done.
type Scheduler struct {
	store    Publisher
	updater  Updater
	interval time.Duration
	log      *slog.Logger
	cycles   metrics.CycleStore

	limiter *rate.Limiter
	trigger chan struct{}
	done    chan struct{}

	mu      sync.RWMutex
	err     error
	started bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

// WithCycleStore records every refresh cycle in cs.
func WithCycleStore(cs metrics.CycleStore) Option {
	return func(s *Scheduler) {
		s.cycles = cs
	}
}

// WithTriggerLimit caps early refresh requests to one per d.
func WithTriggerLimit(d time.Duration) Option {
	return func(s *Scheduler) {
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewScheduler creates a scheduler that runs updater every interval and
// publishes to store.
func NewScheduler(store Publisher, updater Updater, interval time.Duration, opts ...Option) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errInvalidPeriod
	}

	s := &Scheduler{
		store:    store,
		updater:  updater,
		interval: interval,
		log:      logger.Discard(),
		cycles:   metrics.NewBuffer(1),
		limiter:  rate.NewLimiter(rate.Every(defaultTriggerInterval), 1),
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Start performs the first load and launches the refresh loop. If the first
// load fails nothing is published and no goroutine is started.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()

		return ErrAlreadyStarted
	}

	s.started = true
	s.mu.Unlock()

	if err := s.runOnce(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrInitialLoad, err)
	}

	s.log.Info("initial load complete", "interval", s.interval)

	go s.loop(ctx)

	return nil
}

// Done is closed when the refresh loop exits, either on failure or because
// ctx was canceled.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that stopped the loop, or nil.
func (s *Scheduler) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.err
}

// Trigger asks for an early refresh. Requests beyond the rate limit and
// requests made while one is already pending are dropped.
func (s *Scheduler) Trigger() {
	if !s.limiter.Allow() {
		s.log.Debug("refresh trigger rate limited")

		return
	}

	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Cycles returns the recorded refresh cycles, oldest first.
func (s *Scheduler) Cycles() []models.RefreshCycle {
	return s.cycles.GetCycles()
}

// LastCycle returns the most recent refresh cycle, or nil.
func (s *Scheduler) LastCycle() *models.RefreshCycle {
	return s.cycles.GetLastCycle()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("refresh loop stopped", "reason", ctx.Err())

			return
		case <-timer.C:
		case <-s.trigger:
			s.log.Debug("early refresh requested")
			timer.Stop()
		}

		if err := s.runOnce(ctx); err != nil {
			s.fail(err)

			return
		}

		timer.Reset(s.interval)
	}
}

func (s *Scheduler) fail(err error) {
	s.mu.Lock()
	s.err = fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	s.mu.Unlock()

	s.log.Error("refresh loop stopped", "error", err)
}

// runOnce runs the updater and publishes on success. Staged writes from a
// failed cycle stay in staging and are never published by this cycle.
func (s *Scheduler) runOnce(ctx context.Context) error {
	start := time.Now()

	err := s.update(ctx)

	cycle := models.RefreshCycle{
		Timestamp: start,
		Duration:  time.Since(start),
	}

	if err != nil {
		cycle.Error = err.Error()
		s.cycles.Add(cycle)

		return err
	}

	cycle.Entries = s.store.Commit()
	cycle.Duration = time.Since(start)
	s.cycles.Add(cycle)

	s.log.Debug("refresh complete", "entries", cycle.Entries, "took", cycle.Duration)

	return nil
}

func (s *Scheduler) update(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUpdaterPanic, r)
		}
	}()

	return s.updater.Update(ctx, s.store)
}
