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

// Hit is one (trait, library, descriptor) association found by a query.
type Hit struct {
	// Trait is the trait path the descriptor was registered under.
	Trait string
	// Library is the library the descriptor was authored for.
	Library string
	// Descriptor is the matching descriptor.
	Descriptor Descriptor
}

// Index is a read-only cross-reference over a set of trait registries.
// Implementations must be safe for concurrent reads. Result order is stable:
// trait order, then library order, then descriptor order.
type Index interface {
	// Implementors returns every descriptor registered under trait.
	Implementors(trait string) []Hit
	// TraitsOf returns every descriptor whose Types contains typePath.
	TraitsOf(typePath string) []Hit
	// ByName returns every descriptor with a type whose last path segment
	// (generic arguments stripped) equals name.
	ByName(name string) []Hit
	// ByLibrary returns every descriptor authored for lib.
	ByLibrary(lib string) []Hit
	// Traits returns all trait paths in sorted order.
	Traits() []string
	// Libraries returns all library names in sorted order.
	Libraries() []string
}
