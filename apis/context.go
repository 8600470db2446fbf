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

package apis

// Hook consumes a completed Registry. It is owned by the caller that
// registers it and is invoked synchronously.
type Hook func(reg Registry)

// State is the registration state of a Context.
type State int

const (
	// Unregistered means no hook is present; deliveries are buffered.
	Unregistered State = iota
	// Registered means a hook is present; deliveries invoke it directly.
	Registered
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case Registered:
		return "registered"
	default:
		return "unknown"
	}
}

// Outcome reports what Deliver did with a Registry.
type Outcome int

const (
	// Rejected means the Registry was refused and neither delivered nor buffered.
	Rejected Outcome = iota
	// Delivered means the hook was invoked with the Registry.
	Delivered
	// Queued means the Registry was buffered for a later hook.
	Queued
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Delivered:
		return "delivered"
	case Queued:
		return "queued"
	default:
		return "unknown"
	}
}

// Context is an explicit registration context replacing the ambient
// hook/pending-slot pair. It is a two-state handshake: registering a hook
// flushes buffered registries to it; delivering a registry either invokes
// the hook or buffers.
//
// Hooks run synchronously on the delivering goroutine and must not call
// Deliver or Register on the Context that invoked them.
type Context interface {
	// Deliver hands reg to the hook if one is registered, otherwise buffers it.
	Deliver(reg Registry) (Outcome, error)
	// Register installs hook and synchronously delivers buffered registries
	// to it in arrival order.
	Register(hook Hook) error
	// Hook returns the registered hook, or nil.
	Hook() Hook
	// Unregister removes the hook; later deliveries are buffered.
	Unregister()
	// Drain returns and clears the buffered registries without invoking the hook.
	Drain() []Registry
	// Pending returns the number of buffered registries.
	Pending() int
	// Dropped returns how many buffered registries were discarded by the
	// pending policy.
	Dropped() int
	// State returns the current registration state.
	State() State
}

// Successor is implemented by contexts that can be retired in favour of a
// rebuilt one. Handover moves buffered registries and the hook into next and
// forwards every later call to it.
type Successor interface {
	Handover(next Context)
}
