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

// Package logger builds the process logger. Everything goes to stderr:
// stdout belongs to the pass_persist protocol.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// New returns a logger writing to stderr, colored when stderr is a terminal.
func New() *slog.Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return slog.New(newTerminalHandler(os.Stderr))
	}

	return slog.New(newTextHandler(os.Stderr, isStderrConnectedToJournal()))
}

// NewWriter returns a plain text logger writing to w.
func NewWriter(w io.Writer) *slog.Logger {
	return slog.New(newTextHandler(w, false))
}

// Discard returns a logger that drops every record. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
