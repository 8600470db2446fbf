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

package builder

import (
	"go.uber.org/zap"

	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/handshake"
)

// New creates and returns a new instance of an apis.Builder.
// opts are applied to every Context it builds.
func New(opts ...handshake.Option) apis.Builder {
	return &builder{opts: opts}
}

// builder carries the handshake options used for each BuildContext call.
type builder struct {
	opts []handshake.Option
}

// BuildContext builds a new apis.Context for cfg. If a previous context is
// provided, its buffered registries are moved into the new context in
// arrival order and its hook, if any, is registered on the new context
// (which flushes them). A previous context implementing apis.Successor also
// forwards every later call to the new one, so deliveries made through a
// stale reference still arrive. If ext is a *zap.Logger it overrides the
// logger.
func (b *builder) BuildContext(cfg apis.Config, prev apis.Context, ext any) apis.Context {
	opts := b.opts
	if l, ok := ext.(*zap.Logger); ok && l != nil {
		opts = append(opts[:len(opts):len(opts)], handshake.WithLogger(l))
	}
	next := handshake.New(cfg, opts...)
	if prev == nil {
		return next
	}

	if s, ok := prev.(apis.Successor); ok {
		s.Handover(next)
		return next
	}
	for _, reg := range prev.Drain() {
		_, _ = next.Deliver(reg)
	}
	if hook := prev.Hook(); hook != nil {
		_ = next.Register(hook)
	}
	return next
}
