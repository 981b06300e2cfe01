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

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mfreeman451/passpersist/pkg/config"
	"github.com/mfreeman451/passpersist/pkg/lifecycle"
	"github.com/mfreeman451/passpersist/pkg/logger"
	"github.com/mfreeman451/passpersist/pkg/metrics"
	"github.com/mfreeman451/passpersist/pkg/mib"
	"github.com/mfreeman451/passpersist/pkg/oid"
	"github.com/mfreeman451/passpersist/pkg/passpersist"
	"github.com/mfreeman451/passpersist/pkg/refresh"
	"github.com/mfreeman451/passpersist/pkg/source"
	"github.com/mfreeman451/passpersist/pkg/source/ini"
	"github.com/mfreeman451/passpersist/pkg/source/snmp"
	"github.com/mfreeman451/passpersist/pkg/source/sqlite"
	"github.com/mfreeman451/passpersist/pkg/status"
)

var version = "dev"

func main() {
	opt, err := parseCLI(os.Args[1:])
	if err != nil {
		if isHelp(err) {
			os.Exit(0)
		}

		os.Exit(1)
	}

	if opt.Version {
		fmt.Fprintln(os.Stderr, "passpersist", version)
		return
	}

	log := logger.New()

	if err := run(context.Background(), opt, log, os.Stdin, os.Stdout); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func newRegistry() source.Registry {
	r := source.NewRegistry()
	r.Register("ini", ini.New)
	r.Register("sqlite", sqlite.New)
	r.Register("snmp", snmp.New)

	return r
}

func run(ctx context.Context, opt *Option, log *slog.Logger, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(opt.Config, opt.apply)
	if err != nil {
		return err
	}

	logger.Level.SetByName(cfg.LogLevel)

	base, err := oid.NewBase(cfg.BaseOID)
	if err != nil {
		return err
	}

	updater, err := newRegistry().Get(ctx, cfg.Source.Type, cfg.Source.Config, log)
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	if c, ok := updater.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				log.Error("error closing source", "error", err)
			}
		}()
	}

	store := mib.NewStore()

	sched, err := refresh.NewScheduler(store, updater, time.Duration(cfg.Refresh),
		refresh.WithLogger(log.With("component", "refresh")),
		refresh.WithCycleStore(metrics.NewBufferFromConfig(cfg.Metrics)),
	)
	if err != nil {
		return err
	}

	responder := passpersist.NewResponder(store, base,
		passpersist.WithDump(cfg.EnableDump),
		passpersist.WithLogger(log.With("component", "responder")),
	)

	var services []lifecycle.Service

	if w, ok := updater.(source.Watcher); ok {
		services = append(services, source.NewWatchService(w, sched))
	}

	if cfg.StatusAddr != "" {
		services = append(services, status.NewServer(cfg.StatusAddr, base, store, sched,
			status.WithLogger(log.With("component", "status")),
			status.WithStats(responder),
		))
	}

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ServiceName: "passpersist",
		Scheduler:   sched,
		Responder:   responder,
		In:          in,
		Out:         out,
		Services:    services,
		Logger:      log,
	})
}
