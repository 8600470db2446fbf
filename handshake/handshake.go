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

package handshake

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/config"
)

var (
	// ErrNilHook is returned when Register is called with a nil hook.
	ErrNilHook = errors.New("implreg(handshake): nil hook provided")
	// ErrNilRegistry is returned when Deliver is called with a nil registry.
	ErrNilRegistry = errors.New("implreg(handshake): nil registry provided")
)

// Option configures a Context built by New.
type Option func(*handshake)

// WithLogger sets the logger used for delivery diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(h *handshake) {
		if l != nil {
			h.log = l
		}
	}
}

// New constructs an apis.Context that buffers according to cfg.
// Only Pending and PendingLimit are used here.
func New(cfg apis.Config, opts ...Option) apis.Context {
	if cfg.Pending != apis.PendingQueue && cfg.Pending != apis.PendingSlot {
		cfg.Pending = config.DefaultPending
	}
	if cfg.PendingLimit < 0 {
		cfg.PendingLimit = config.DefaultPendingLimit
	}
	h := &handshake{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// handshake is the two-state Context implementation.
type handshake struct {
	// cfg is the configuration used for buffering.
	cfg apis.Config
	// log receives delivery diagnostics.
	log *zap.Logger
	// dmu serializes hook invocations so arrival order equals call order.
	// It is always acquired before mu.
	dmu sync.Mutex
	// mu guards hook, pending and dropped.
	mu sync.Mutex
	// hook is the registered consumer; nil means Unregistered.
	hook apis.Hook
	// pending holds undelivered registries in arrival order.
	pending []apis.Registry
	// dropped counts registries discarded by the pending policy.
	dropped int
	// next is the successor set by Handover; calls on a retired
	// handshake are forwarded to it.
	next apis.Context
}

// Ensure handshake implements apis.Context and apis.Successor.
var (
	_ apis.Context   = (*handshake)(nil)
	_ apis.Successor = (*handshake)(nil)
)

// isNil reports whether reg carries no registry, including a TraitRegistry
// whose embedded Registry is unset.
func isNil(reg apis.Registry) bool {
	switch r := reg.(type) {
	case nil:
		return true
	case apis.TraitRegistry:
		return r.Registry == nil
	case *apis.TraitRegistry:
		return r == nil || r.Registry == nil
	}
	return false
}

// Handover moves the buffered registries and the hook of h into next, in
// arrival order, and forwards every later call on h to next. Deliveries
// racing with the handover wait for it and are then forwarded, so none is
// left behind in h.
func (h *handshake) Handover(next apis.Context) {
	if next == nil || next == apis.Context(h) {
		return
	}

	h.dmu.Lock()
	defer h.dmu.Unlock()

	h.mu.Lock()
	if h.next != nil {
		h.mu.Unlock()
		return
	}
	h.next = next
	backlog, hook := h.pending, h.hook
	h.pending, h.hook = nil, nil
	h.mu.Unlock()

	for _, reg := range backlog {
		_, _ = next.Deliver(reg)
	}
	if hook != nil {
		_ = next.Register(hook)
	}
	h.log.Debug("context handed over", zap.Int("backlog", len(backlog)), zap.Bool("hook", hook != nil))
}

// Deliver invokes the hook with reg if one is registered, otherwise buffers reg.
func (h *handshake) Deliver(reg apis.Registry) (apis.Outcome, error) {
	if isNil(reg) {
		return apis.Rejected, ErrNilRegistry
	}

	h.dmu.Lock()
	h.mu.Lock()
	if next := h.next; next != nil {
		h.mu.Unlock()
		h.dmu.Unlock()
		return next.Deliver(reg)
	}
	defer h.dmu.Unlock()

	hook := h.hook
	if hook == nil {
		h.enqueue(reg)
		n := len(h.pending)
		h.mu.Unlock()
		h.log.Debug("registry queued", zap.Int("libraries", reg.Len()), zap.Int("pending", n))
		return apis.Queued, nil
	}
	h.mu.Unlock()

	hook(reg)
	h.log.Debug("registry delivered", zap.Int("libraries", reg.Len()))
	return apis.Delivered, nil
}

// enqueue applies the pending policy. Caller holds mu.
func (h *handshake) enqueue(reg apis.Registry) {
	switch h.cfg.Pending {
	case apis.PendingSlot:
		if len(h.pending) > 0 {
			h.dropped += len(h.pending)
			h.log.Debug("pending slot overwritten")
		}
		h.pending = []apis.Registry{reg}
	default:
		if h.cfg.PendingLimit > 0 && len(h.pending) >= h.cfg.PendingLimit {
			over := len(h.pending) - h.cfg.PendingLimit + 1
			h.pending = h.pending[over:]
			h.dropped += over
			h.log.Warn("pending queue full, dropped oldest registry", zap.Int("limit", h.cfg.PendingLimit))
		}
		h.pending = append(h.pending, reg)
	}
}

// Register installs hook and flushes buffered registries to it in arrival order.
// Registering over an existing hook replaces it.
func (h *handshake) Register(hook apis.Hook) error {
	if hook == nil {
		return ErrNilHook
	}

	h.dmu.Lock()
	h.mu.Lock()
	if next := h.next; next != nil {
		h.mu.Unlock()
		h.dmu.Unlock()
		return next.Register(hook)
	}
	defer h.dmu.Unlock()

	replaced := h.hook != nil
	h.hook = hook
	backlog := h.pending
	h.pending = nil
	h.mu.Unlock()

	h.log.Debug("hook registered", zap.Bool("replaced", replaced), zap.Int("backlog", len(backlog)))
	for _, reg := range backlog {
		hook(reg)
	}
	return nil
}

// Hook returns the registered hook, or nil.
func (h *handshake) Hook() apis.Hook {
	h.mu.Lock()
	if next := h.next; next != nil {
		h.mu.Unlock()
		return next.Hook()
	}
	defer h.mu.Unlock()
	return h.hook
}

// Unregister removes the hook. Later deliveries are buffered.
func (h *handshake) Unregister() {
	h.mu.Lock()
	if next := h.next; next != nil {
		h.mu.Unlock()
		next.Unregister()
		return
	}
	defer h.mu.Unlock()
	h.hook = nil
}

// Drain returns and clears the buffered registries without invoking the hook.
func (h *handshake) Drain() []apis.Registry {
	h.mu.Lock()
	if next := h.next; next != nil {
		h.mu.Unlock()
		return next.Drain()
	}
	defer h.mu.Unlock()
	out := h.pending
	h.pending = nil
	return out
}

// Pending returns the number of buffered registries.
func (h *handshake) Pending() int {
	h.mu.Lock()
	if next := h.next; next != nil {
		h.mu.Unlock()
		return next.Pending()
	}
	defer h.mu.Unlock()
	return len(h.pending)
}

// Dropped returns how many registries the pending policy discarded.
func (h *handshake) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// State returns Registered when a hook is installed.
func (h *handshake) State() apis.State {
	h.mu.Lock()
	if next := h.next; next != nil {
		h.mu.Unlock()
		return next.State()
	}
	defer h.mu.Unlock()
	if h.hook != nil {
		return apis.Registered
	}
	return apis.Unregistered
}
