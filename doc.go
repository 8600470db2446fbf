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

// Package implreg hands implementor registries from the code that loads
// them to the code that consumes them.
//
// A documentation generator emits one "implementors" data file per trait.
// Each file describes, per library, which types implement that trait, and
// ends with a handoff: call the registration hook if one exists, otherwise
// park the table in a pending slot for the hook to pick up later. implreg
// models that handoff explicitly.
//
// # Design
//
// The handoff is an apis.Context, a small two-state holder:
//
//   - Unregistered: Deliver buffers the registry.
//   - Registered(hook): Deliver invokes the hook synchronously.
//
// Register moves a context to Registered and flushes everything buffered,
// in arrival order, before returning. Drain empties the buffer without
// involving the hook. Whether the buffer keeps every registry or only the
// latest one is chosen by apis.Config.Pending.
//
// Contexts are ordinary values built by handshake.New or by an
// apis.Builder, and every package in this module takes one explicitly.
//
// # Process default
//
// For binaries that want a single well-known context, this package keeps a
// default one inside an immutable snapshot published through an atomic
// pointer:
//
//	implreg.Register(func(reg apis.Registry) { ... })
//	implreg.Deliver(reg)
//
// Readers load the snapshot without locks. Writers (SetConfig, SetBuilder,
// SetExt, SetContext, SetAll) take a short build mutex, derive a new
// snapshot and swap it in. Rebuilding the context carries its buffered
// registries and its hook over to the new one.
//
// # Pinning
//
// SetContext installs a caller-owned context and pins it: later SetConfig,
// SetBuilder and SetExt calls leave it alone until UnpinContext.
//
// # Related packages
//
//   - codec: reads and writes the implementors data-file format.
//   - loader: loads a whole implementors tree and delivers each trait.
//   - index, resolver, strategy: cross-reference queries over loaded traits.
//   - watch: re-delivers data files as they change on disk.
//   - schema: JSON Schema for descriptors and registries.
package implreg
