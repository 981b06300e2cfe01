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

// Package lifecycle wires the refresh loop, the protocol responder and any
// auxiliary services together and decides when the process stops.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/mfreeman451/passpersist/pkg/logger"
)

const (
	ShutdownTimeout = 10 * time.Second
)

var (
	ErrRefreshStopped = errors.New("refresh loop stopped")
	ErrMissingOption  = errors.New("missing required option")
)

// Service is an auxiliary component that lives as long as the process,
// such as the status endpoint or a file watcher. Start may block.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// Scheduler is the refresh loop as seen by the supervisor.
type Scheduler interface {
	Start(ctx context.Context) error
	Done() <-chan struct{}
	Err() error
}

// Responder serves protocol requests until its input closes.
type Responder interface {
	Serve(ctx context.Context, in io.Reader, out io.Writer) error
}

// ServerOptions holds everything RunServer needs.
type ServerOptions struct {
	ServiceName string
	Scheduler   Scheduler
	Responder   Responder
	In          io.Reader
	Out         io.Writer
	Services    []Service
	Logger      *slog.Logger
}

func (o *ServerOptions) validate() error {
	if o.Scheduler == nil {
		return fmt.Errorf("%w: scheduler", ErrMissingOption)
	}

	if o.Responder == nil {
		return fmt.Errorf("%w: responder", ErrMissingOption)
	}

	if o.In == nil {
		o.In = os.Stdin
	}

	if o.Out == nil {
		o.Out = os.Stdout
	}

	if o.Logger == nil {
		o.Logger = logger.Discard()
	}

	return nil
}

// RunServer loads the initial tree, then serves requests until the agent
// closes the pipe, a signal arrives, ctx ends, or the refresh loop dies.
// The last case returns an error wrapping ErrRefreshStopped so the caller
// exits non-zero instead of serving data that can no longer change.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := opts.Logger

	log.Info("starting service", "service", opts.ServiceName)

	if err := opts.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to load initial data: %w", err)
	}

	errChan := make(chan error, len(opts.Services))

	var wg conc.WaitGroup

	for _, svc := range opts.Services {
		wg.Go(func() {
			if err := svc.Start(ctx); err != nil {
				select {
				case errChan <- err:
				default:
					log.Error("service error", "error", err)
				}
			}
		})
	}

	serveDone := make(chan error, 1)

	go func() {
		serveDone <- opts.Responder.Serve(ctx, opts.In, opts.Out)
	}()

	return handleShutdown(ctx, cancel, opts, &wg, serveDone, errChan)
}

func handleShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	opts *ServerOptions,
	wg *conc.WaitGroup,
	serveDone, errChan <-chan error) error {
	log := opts.Logger

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(sigChan)

	var (
		result error
		served bool
	)

	select {
	case sig := <-sigChan:
		log.Info("received signal, initiating shutdown", "signal", sig)
	case err := <-serveDone:
		served = true

		if err != nil {
			result = fmt.Errorf("responder error: %w", err)
		} else {
			log.Info("agent closed the pipe, initiating shutdown")
		}
	case <-opts.Scheduler.Done():
		result = refreshStopped(ctx, opts.Scheduler.Err())
	case err := <-errChan:
		log.Error("service error, initiating shutdown", "error", err)

		result = fmt.Errorf("service error: %w", err)
	case <-ctx.Done():
		log.Info("context canceled, initiating shutdown")

		result = ctx.Err()
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	for _, svc := range opts.Services {
		if err := svc.Stop(shutdownCtx); err != nil {
			log.Error("error during service shutdown", "error", err)
		}
	}

	if !served {
		waitResponder(shutdownCtx, serveDone, log)
	}

	waitServices(shutdownCtx, wg, log)

	if result != nil && !errors.Is(result, context.Canceled) {
		log.Error("service stopped", "service", opts.ServiceName, "error", result)
	}

	return result
}

// waitResponder waits for an in-flight answer to be written so nothing
// reaches Out after RunServer returns.
func waitResponder(ctx context.Context, serveDone <-chan error, log *slog.Logger) {
	select {
	case err := <-serveDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("responder stopped with error", "error", err)
		}
	case <-ctx.Done():
		log.Warn("responder did not stop before the shutdown timeout")
	}
}

// waitServices waits for every service goroutine to return, reporting any
// panic, but gives up once ctx expires.
func waitServices(ctx context.Context, wg *conc.WaitGroup, log *slog.Logger) {
	done := make(chan *panics.Recovered, 1)

	go func() {
		done <- wg.WaitAndRecover()
	}()

	select {
	case r := <-done:
		if r != nil {
			log.Error("service panicked", "error", r.AsError())
		}
	case <-ctx.Done():
		log.Warn("services did not stop before the shutdown timeout")
	}
}

// refreshStopped builds the error for a refresh loop that exited on its
// own. A loop that exited because ctx ended is not a failure.
func refreshStopped(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err == nil {
		return ErrRefreshStopped
	}

	return fmt.Errorf("%w: %w", ErrRefreshStopped, err)
}
