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

// Registry is an immutable, ordered mapping from library name to the
// descriptors authored for it. Iteration order is the authored insertion order.
// Implementations must be safe for concurrent reads.
type Registry interface {
	// Libraries returns the library names in insertion order.
	Libraries() []string
	// Lookup returns the descriptors for lib. The returned slice is a copy.
	Lookup(lib string) ([]Descriptor, bool)
	// Len returns the number of libraries.
	Len() int
	// Count returns the total number of descriptors across all libraries.
	Count() int
	// Range calls fn for each library in order until fn returns false.
	Range(fn func(lib string, descs []Descriptor) bool)
}

// TraitRegistry pairs a Registry with the trait path it documents,
// e.g. "core::hash::Hash". It is itself a Registry, so it can be delivered
// through a Context and recovered by hooks with a type assertion.
type TraitRegistry struct {
	// Registry holds the implementors of Trait.
	Registry
	// Trait is the "::"-separated trait path.
	Trait string
}
