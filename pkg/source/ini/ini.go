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

// Package ini publishes the contents of an ini file.
//
// Sections and keys are sorted by name and numbered from 1. For section i
// and key j:
//
//	i.0.1.0  STRING   section name
//	i.j.1.0  STRING   key name
//	i.j.2.0  INTEGER  key value, or STRING when it is not an integer
package ini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/ini.v1"

	"github.com/mfreeman451/passpersist/pkg/logger"
	"github.com/mfreeman451/passpersist/pkg/mib"
	"github.com/mfreeman451/passpersist/pkg/refresh"
)

const (
	nameSuffix  = ".1.0"
	valueSuffix = ".2.0"
)

var (
	errMissingPath = errors.New("ini source: path is required")
	errStat        = errors.New("ini source: stat failed")
	errLoad        = errors.New("ini source: load failed")
)

// Config is the JSON configuration of the ini source.
type Config struct {
	Path  string `json:"path"`
	Watch bool   `json:"watch"`
}

// Source reloads the file whenever its modification time advances.
type Source struct {
	path  string
	watch bool
	log   *slog.Logger

	mu     sync.Mutex
	mtime  time.Time
	loaded bool
}

// New is the source factory.
func New(_ context.Context, raw json.RawMessage, log *slog.Logger) (refresh.Updater, error) {
	var cfg Config

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("ini source: invalid config: %w", err)
		}
	}

	src, err := NewSource(cfg, log)
	if err != nil {
		return nil, err
	}

	return src, nil
}

// NewSource creates a source reading cfg.Path.
func NewSource(cfg Config, log *slog.Logger) (*Source, error) {
	if cfg.Path == "" {
		return nil, errMissingPath
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Source{
		path:  filepath.Clean(cfg.Path),
		watch: cfg.Watch,
		log:   log,
	}, nil
}

// Update restages the tree if the file changed since the last load. An
// unchanged file leaves staging untouched.
func (s *Source) Update(_ context.Context, w mib.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fi, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("%w: %w", errStat, err)
	}

	if s.loaded && !fi.ModTime().After(s.mtime) {
		return nil
	}

	f, err := ini.Load(s.path)
	if err != nil {
		return fmt.Errorf("%w: %w", errLoad, err)
	}

	w.Reset()
	n := stage(f, w)

	s.mtime = fi.ModTime()
	s.loaded = true

	s.log.Info("reading settings", "path", s.path, "entries", n)

	return nil
}

// stage writes the numbered layout of f and returns the entry count.
func stage(f *ini.File, w mib.Writer) int {
	sections := make([]*ini.Section, 0, len(f.Sections()))

	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}

		sections = append(sections, sec)
	}

	sort.Slice(sections, func(a, b int) bool {
		return sections[a].Name() < sections[b].Name()
	})

	n := 0

	for i, sec := range sections {
		mib.AddString(w, fmt.Sprintf("%d.0%s", i+1, nameSuffix), sec.Name())
		n++

		keys := sec.Keys()
		sort.Slice(keys, func(a, b int) bool {
			return keys[a].Name() < keys[b].Name()
		})

		for j, key := range keys {
			oid := fmt.Sprintf("%d.%d", i+1, j+1)

			mib.AddString(w, oid+nameSuffix, key.Name())
			stageValue(w, oid+valueSuffix, key.String())
			n += 2
		}
	}

	return n
}

// stageValue stores v as INTEGER when it parses as one, otherwise as STRING.
func stageValue(w mib.Writer, suffix, v string) {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		mib.AddInt(w, suffix, n)
		return
	}

	mib.AddString(w, suffix, v)
}

// Watch triggers a refresh whenever the file is written, created or
// renamed into place. The parent directory is watched so that editors
// which replace the file are still noticed. A source configured without
// watch returns as soon as ctx ends.
func (s *Source) Watch(ctx context.Context, t refresh.Triggerer) error {
	if !s.watch {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("ini source: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("ini source: watch %s: %w", s.path, err)
	}

	s.log.Debug("watching file", "path", s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != s.path {
				continue
			}

			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				s.log.Debug("file changed", "op", ev.Op.String())
				t.Trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			s.log.Warn("watcher error", "error", err)
		}
	}
}
