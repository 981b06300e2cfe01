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

// Package refresh pkg/refresh/interfaces.go
package refresh

import (
	"context"

	"github.com/mfreeman451/passpersist/pkg/mib"
)

//go:generate mockgen -destination=mock_refresh.go -package=refresh github.com/mfreeman451/passpersist/pkg/refresh Updater

// Updater populates the tree during a refresh cycle. It stages entries on w;
// a returned error stops the refresh loop for good.
type Updater interface {
	Update(ctx context.Context, w mib.Writer) error
}

// UpdaterFunc adapts a plain function to Updater.
type UpdaterFunc func(ctx context.Context, w mib.Writer) error

// Update calls f.
func (f UpdaterFunc) Update(ctx context.Context, w mib.Writer) error {
	return f(ctx, w)
}

// Publisher is the write side of the store: staging plus the publish step.
type Publisher interface {
	mib.Writer
	// Commit publishes staged entries and returns how many were published
	Commit() int
}

// Triggerer requests an early refresh.
type Triggerer interface {
	Trigger()
}
