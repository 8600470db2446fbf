/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"time"

	"dirpx.dev/implreg/apis"
)

const (
	// DefaultPending represents the default for Pending.
	// Queueing keeps every registry that arrives before a hook.
	DefaultPending = apis.PendingQueue
	// DefaultPendingLimit represents the default for PendingLimit (unbounded).
	DefaultPendingLimit = 0
	// DefaultWorkers represents the default for Workers.
	DefaultWorkers = 4
	// DefaultDebounce represents the default for Debounce.
	DefaultDebounce = 200 * time.Millisecond
	// DefaultStrict represents the default for Strict.
	DefaultStrict = false
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return normalize(cfg)
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		Pending:      DefaultPending,
		PendingLimit: DefaultPendingLimit,
		Workers:      DefaultWorkers,
		Debounce:     DefaultDebounce,
		Strict:       DefaultStrict,
	}
}

// normalize replaces out-of-range values with their defaults.
func normalize(cfg apis.Config) apis.Config {
	if cfg.Pending != apis.PendingQueue && cfg.Pending != apis.PendingSlot {
		cfg.Pending = DefaultPending
	}
	if cfg.PendingLimit < 0 {
		cfg.PendingLimit = DefaultPendingLimit
	}
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = DefaultDebounce
	}
	return cfg
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithPending sets the Pending option.
// Unknown policies reset to the default.
func WithPending(p apis.PendingPolicy) Option {
	return func(c *apis.Config) {
		c.Pending = p
	}
}

// WithPendingLimit sets the PendingLimit option.
// A negative value resets to the default.
func WithPendingLimit(limit int) Option {
	return func(c *apis.Config) {
		if limit < 0 {
			c.PendingLimit = DefaultPendingLimit
			return
		}
		c.PendingLimit = limit
	}
}

// WithWorkers sets the Workers option.
// A value below one resets to the default.
func WithWorkers(n int) Option {
	return func(c *apis.Config) {
		if n < 1 {
			c.Workers = DefaultWorkers
			return
		}
		c.Workers = n
	}
}

// WithDebounce sets the Debounce option.
func WithDebounce(d time.Duration) Option {
	return func(c *apis.Config) {
		c.Debounce = d
	}
}

// WithStrict sets the Strict option.
func WithStrict(strict bool) Option {
	return func(c *apis.Config) {
		c.Strict = strict
	}
}
