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

// Package passpersist implements the responder side of Net-SNMP's
// pass_persist protocol.
//
// snmpd writes one directive per cycle and waits for exactly one answer:
//
//	PING                      -> PONG
//	getnext\n<OID>            -> NONE | <OID>\n<TYPE>\n<VALUE>
//	get\n<OID>                -> NONE | <OID>\n<TYPE>\n<VALUE>
//	set\n<OID>\n<TYPE> <VAL>  -> not-writable
package passpersist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/mfreeman451/passpersist/pkg/logger"
	"github.com/mfreeman451/passpersist/pkg/mib"
	"github.com/mfreeman451/passpersist/pkg/oid"
)

const (
	replyPong        = "PONG"
	replyNone        = "NONE"
	replyNotWritable = "not-writable"

	maxLineLength = 64 * 1024
)

type command int

const (
	cmdUnknown command = iota
	cmdPing
	cmdGetNext
	cmdGet
	cmdSet
	cmdDump
)

func (c command) String() string {
	switch c {
	case cmdPing:
		return "PING"
	case cmdGetNext:
		return "getnext"
	case cmdGet:
		return "get"
	case cmdSet:
		return "set"
	case cmdDump:
		return "DUMP"
	default:
		return "unknown"
	}
}

// Order matters: "get" is a prefix of "getnext".
var commands = []struct {
	prefix string
	cmd    command
}{
	{"PING", cmdPing},
	{"getnext", cmdGetNext},
	{"get", cmdGet},
	{"set", cmdSet},
	{"DUMP", cmdDump},
}

func parseCommand(line string) command {
	for _, c := range commands {
		if strings.HasPrefix(line, c.prefix) {
			return c.cmd
		}
	}

	return cmdUnknown
}

// Stats are cumulative request counters.
type Stats struct {
	Requests int64 `json:"requests"`
	Misses   int64 `json:"misses"`
}

// Responder answers pass_persist directives from a read-only MIB view.
type Responder struct {
	store mib.Reader
	base  oid.Base
	dump  bool
	log   *slog.Logger

	requests atomic.Int64
	misses   atomic.Int64
}

// Option configures a Responder.
type Option func(*Responder)

// WithDump enables the DUMP debugging directive. It is off by default.
func WithDump(enabled bool) Option {
	return func(r *Responder) {
		r.dump = enabled
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(r *Responder) {
		r.log = l
	}
}

// NewResponder creates a responder serving store under base.
func NewResponder(store mib.Reader, base oid.Base, opts ...Option) *Responder {
	r := &Responder{
		store: store,
		base:  base,
		log:   logger.Discard(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Stats returns the request counters.
func (r *Responder) Stats() Stats {
	return Stats{
		Requests: r.requests.Load(),
		Misses:   r.misses.Load(),
	}
}

// Serve handles directives read from in until the agent closes the pipe,
// ctx is canceled, or I/O fails. A closed pipe is a clean exit.
func (r *Responder) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := newLineReader(in)
	defer lines.stop()

	w := bufio.NewWriter(out)

	for {
		err := r.serveOne(ctx, lines, w)
		if errors.Is(err, io.EOF) {
			r.log.Info("agent closed input, stopping responder")
			return nil
		}

		if err != nil {
			return err
		}
	}
}

// serveOne reads one directive, writes its answer and flushes.
func (r *Responder) serveOne(ctx context.Context, lines *lineReader, w *bufio.Writer) error {
	var reply string

	line, err := lines.next(ctx)

	switch {
	case errors.Is(err, errLineTooLong):
		r.log.Warn("oversized directive ignored", "limit", maxLineLength)

		reply = replyNone
	case err != nil:
		return err
	default:
		reply, err = r.handle(ctx, lines, line)
		if err != nil {
			return err
		}
	}

	r.requests.Add(1)

	if reply == replyNone {
		r.misses.Add(1)
	}

	if _, err := w.WriteString(reply + "\n"); err != nil {
		return fmt.Errorf("%w: %w", errWriteOutput, err)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", errWriteOutput, err)
	}

	return nil
}

func (r *Responder) handle(ctx context.Context, lines *lineReader, line string) (string, error) {
	cmd := parseCommand(line)

	switch cmd {
	case cmdPing:
		return replyPong, nil
	case cmdGetNext:
		full, err := lines.next(ctx)
		if errors.Is(err, errLineTooLong) {
			return replyNone, nil
		}

		if err != nil {
			return "", err
		}

		r.log.Debug("request", "cmd", cmd, "oid", full)

		return r.getNext(full), nil
	case cmdGet:
		full, err := lines.next(ctx)
		if errors.Is(err, errLineTooLong) {
			return replyNone, nil
		}

		if err != nil {
			return "", err
		}

		r.log.Debug("request", "cmd", cmd, "oid", full)

		return r.get(full), nil
	case cmdSet:
		// OID and "<type> <value>" are consumed and ignored.
		for i := 0; i < 2; i++ {
			if _, err := lines.next(ctx); err != nil && !errors.Is(err, errLineTooLong) {
				return "", err
			}
		}

		return replyNotWritable, nil
	case cmdDump:
		if !r.dump {
			return replyNone, nil
		}

		return r.dumpTree(), nil
	default:
		r.log.Debug("unknown directive", "line", line)

		return replyNone, nil
	}
}

func (r *Responder) get(full string) string {
	suffix, ok := r.base.Strip(full)
	if !ok {
		return replyNone
	}

	e, ok := r.store.Lookup(suffix)
	if !ok {
		return replyNone
	}

	return r.format(e)
}

func (r *Responder) getNext(full string) string {
	suffix, ok := r.base.Strip(full)
	if !ok {
		return replyNone
	}

	var e mib.Entry

	if suffix == "" {
		e, ok = r.store.LookupFirst()
	} else {
		e, ok = r.store.LookupNext(suffix)
	}

	if !ok {
		return replyNone
	}

	return r.format(e)
}

var valueReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// format renders an entry as three lines, without the final newline.
// Embedded newlines in the value would desynchronize the agent.
func (r *Responder) format(e mib.Entry) string {
	return r.base.Join(e.OID) + "\n" + string(e.Type) + "\n" + valueReplacer.Replace(e.Value)
}

func (r *Responder) dumpTree() string {
	entries := r.store.Entries()
	if len(entries) == 0 {
		return replyNone
	}

	var b strings.Builder

	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}

		fmt.Fprintf(&b, "%s = %s: %s", r.base.Join(e.OID), e.Type, valueReplacer.Replace(e.Value))
	}

	return b.String()
}
