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

// Builder composes a Context from a Config.
// Implementations may migrate state from a previous Context, or ignore it.
type Builder interface {
	// BuildContext constructs a Context for cfg. If prev is non-nil its
	// buffered registries may be carried over (and its hook re-registered).
	// ext is an optional extension context. Its meaning is implementation-defined.
	BuildContext(cfg Config, prev Context, ext any) Context
}
