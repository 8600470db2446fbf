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

package implreg

import (
	"errors"
	"sync"
	"sync/atomic"

	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/builder"
	"dirpx.dev/implreg/config"
)

// init initializes the global default state.
func init() {
	s := &state{cfg: config.DefaultConfig()}
	b := builder.New()
	s.ctx = b.BuildContext(s.cfg, nil, nil)
	s.bld = b
	st.Store(s)
}

// ErrNilContext is returned when a builder returns a nil context.
var ErrNilContext = errors.New("implreg: builder returned nil context")

// Deliver hands reg to the default context.
// This is a convenience wrapper around Context().Deliver.
func Deliver(reg apis.Registry) (apis.Outcome, error) {
	return st.Load().ctx.Deliver(reg)
}

// Register installs hook on the default context, flushing any registries
// that arrived before it.
// This is a convenience wrapper around Context().Register.
func Register(hook apis.Hook) error {
	return st.Load().ctx.Register(hook)
}

// Drain returns and clears the registries buffered in the default context.
// This is a convenience wrapper around Context().Drain.
func Drain() []apis.Registry {
	return st.Load().ctx.Drain()
}

// SetAll explicitly sets all global state components.
//
// Nil arguments leave the corresponding component unchanged,
// except for ext which is always replaced. A nil ctx rebuilds the context
// from the (possibly new) builder and unpins it.
func SetAll(cfg *apis.Config, ext any, ctx apis.Context, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()

	ncfg := old.cfg
	if cfg != nil {
		ncfg = *cfg
	}
	nbld := old.bld
	if bld != nil {
		nbld = bld
	}

	nctx := ctx
	pinned := true
	if nctx == nil {
		nctx = nbld.BuildContext(ncfg, old.ctx, ext)
		pinned = false
	}
	if nctx == nil {
		panic(ErrNilContext)
	}

	st.Store(&state{cfg: ncfg, ext: ext, ctx: nctx, bld: nbld, pctx: pinned})
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration to cfg and rebuilds the default
// context unless it is pinned. Buffered registries and the hook carry over,
// and deliveries made through the replaced context are forwarded to the new
// one when the builder's contexts support it (see apis.Successor).
func SetConfig(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	nctx := old.ctx
	if !old.pctx {
		nctx = old.bld.BuildContext(cfg, old.ctx, old.ext)
	}
	if nctx == nil {
		panic(ErrNilContext)
	}

	st.Store(old.with(func(s *state) {
		s.cfg = cfg
		s.ctx = nctx
	}))
}

// Context returns the default context.
func Context() apis.Context {
	return st.Load().ctx
}

// SetContext replaces the default context with ctx and pins it.
// Registries buffered in the previous context are not migrated.
func SetContext(ctx apis.Context) {
	if ctx == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	st.Store(st.Load().with(func(s *state) {
		s.ctx = ctx
		s.pctx = true
	}))
}

// Builder returns the global builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder sets the global builder to b and rebuilds the default context
// unless it is pinned.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	nctx := old.ctx
	if !old.pctx {
		nctx = b.BuildContext(old.cfg, old.ctx, old.ext)
	}
	if nctx == nil {
		panic(ErrNilContext)
	}

	st.Store(old.with(func(s *state) {
		s.bld = b
		s.ctx = nctx
	}))
}

// SetExt replaces extension config and rebuilds the context via the builder
// unless it is pinned.
func SetExt[T any](ext T) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	nctx := old.ctx
	if !old.pctx {
		nctx = old.bld.BuildContext(old.cfg, old.ctx, ext)
	}
	if nctx == nil {
		panic(ErrNilContext)
	}

	st.Store(old.with(func(s *state) {
		s.ext = ext
		s.ctx = nctx
	}))
}

// ExtAs returns the global extension config as type T.
func ExtAs[T any]() (T, bool) {
	ext, ok := st.Load().ext.(T)
	return ext, ok
}

// IsContextPinned returns whether the default context is pinned.
func IsContextPinned() bool {
	return st.Load().pctx
}

// PinContext stops config, builder and ext changes from rebuilding the
// default context.
func PinContext() {
	buildMu.Lock()
	defer buildMu.Unlock()
	st.Store(st.Load().with(func(s *state) { s.pctx = true }))
}

// UnpinContext lets config, builder and ext changes rebuild the default
// context again.
func UnpinContext() {
	buildMu.Lock()
	defer buildMu.Unlock()
	st.Store(st.Load().with(func(s *state) { s.pctx = false }))
}

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots.
var buildMu sync.Mutex

// st is the global state.
var st atomic.Pointer[state]

// state is the global state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	// cfg is the global configuration.
	cfg apis.Config
	// ext is the global extension configuration.
	ext any
	// ctx is the default registration context.
	ctx apis.Context
	// bld builds ctx from cfg.
	bld apis.Builder
	// pctx indicates whether ctx is pinned.
	pctx bool
}

// with returns a copy of s modified by fn.
func (s *state) with(fn func(*state)) *state {
	n := *s
	fn(&n)
	return &n
}
