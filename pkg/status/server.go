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

// Package status serves a read-only JSON view of the published tree. It is
// meant for operators and replaces the DUMP directive outside debugging.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"

	httpx "github.com/mfreeman451/passpersist/pkg/http"
	"github.com/mfreeman451/passpersist/pkg/logger"
	"github.com/mfreeman451/passpersist/pkg/oid"
)

const (
	defaultMaxConns   = 16
	readHeaderTimeout = 5 * time.Second
)

// Server is the status HTTP server.
type Server struct {
	addr      string
	maxConns  int
	base      oid.Base
	store     Snapshot
	refresher Refresher
	stats     StatsProvider
	log       *slog.Logger
	router    *mux.Router
	srv       *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithMaxConns caps concurrently open connections.
func WithMaxConns(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxConns = n
		}
	}
}

// WithStats adds protocol request counters to /api/status.
func WithStats(p StatsProvider) Option {
	return func(s *Server) {
		s.stats = p
	}
}

func NewServer(addr string, base oid.Base, store Snapshot, refresher Refresher, opts ...Option) *Server {
	s := &Server{
		addr:      addr,
		maxConns:  defaultMaxConns,
		base:      base,
		store:     store,
		refresher: refresher,
		log:       logger.Discard(),
		router:    mux.NewRouter(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(httpx.CommonMiddleware)
	s.router.Use(httpx.LoggingMiddleware(s.log))

	s.router.HandleFunc("/api/entries", s.getEntries).Methods("GET")
	s.router.HandleFunc("/api/entries/{oid}", s.getEntry).Methods("GET")
	s.router.HandleFunc("/api/status", s.getStatus).Methods("GET")
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until Stop.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.log.Info("status server listening", "addr", ln.Addr().String())

	err = s.srv.Serve(netutil.LimitListener(ln, s.maxConns))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) getEntries(w http.ResponseWriter, _ *http.Request) {
	entries := s.store.Entries()

	resp := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, EntryResponse{OID: s.base.Join(e.OID), Type: e.Type, Value: e.Value})
	}

	s.writeJSON(w, resp)
}

// getEntry accepts either a full OID under the base or a bare suffix.
func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	requested := mux.Vars(r)["oid"]

	suffix, ok := s.base.Strip(requested)
	if !ok {
		suffix = requested
	}

	e, found := s.store.Lookup(suffix)
	if !found {
		http.Error(w, "Entry not found", http.StatusNotFound)
		return
	}

	s.writeJSON(w, EntryResponse{OID: s.base.Join(e.OID), Type: e.Type, Value: e.Value})
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	status := SystemStatus{
		BaseOID:     s.base.Root(),
		Entries:     s.store.Len(),
		LastRefresh: s.store.PublishedAt(),
		Cycles:      s.refresher.Cycles(),
	}

	if err := s.refresher.Err(); err != nil {
		status.RefreshError = err.Error()
	}

	if s.stats != nil {
		status.Requests = s.stats.Stats()
	}

	s.writeJSON(w, status)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("error encoding response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
