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

package registry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"dirpx.dev/implreg/apis"
)

var (
	// ErrEmptyLibrary is returned when an empty library name is provided.
	ErrEmptyLibrary = errors.New("implreg(registry): empty library name provided")
	// ErrDuplicateLibrary indicates an attempt to add a library twice.
	ErrDuplicateLibrary = errors.New("implreg(registry): duplicate library")
	// ErrNoDescriptors is returned when a library is given no descriptors.
	ErrNoDescriptors = errors.New("implreg(registry): library has no descriptors")
	// ErrNoTypes is returned when a descriptor names no implementing type.
	ErrNoTypes = errors.New("implreg(registry): descriptor has no types")
	// ErrInvalidDescriptor wraps any other descriptor validation failure.
	ErrInvalidDescriptor = errors.New("implreg(registry): invalid descriptor")
)

var validate = validator.New()

// Builder accumulates libraries in insertion order and produces immutable
// registries. A Builder is not safe for concurrent use.
type Builder struct {
	libs []string
	m    map[string][]apis.Descriptor
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{m: make(map[string][]apis.Descriptor)}
}

// Add appends lib with descs. Adding a library that is already present
// returns ErrDuplicateLibrary.
func (b *Builder) Add(lib string, descs ...apis.Descriptor) error {
	if _, ok := b.m[lib]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateLibrary, lib)
	}
	return b.Set(lib, descs...)
}

// Set assigns descs to lib. A library that is already present keeps its
// original position and has its descriptors replaced.
func (b *Builder) Set(lib string, descs ...apis.Descriptor) error {
	if lib == "" {
		return ErrEmptyLibrary
	}
	if len(descs) == 0 {
		return fmt.Errorf("%w: %q", ErrNoDescriptors, lib)
	}
	out := make([]apis.Descriptor, len(descs))
	for i, d := range descs {
		if err := checkDescriptor(d); err != nil {
			return fmt.Errorf("library %q descriptor %d: %w", lib, i, err)
		}
		out[i] = d.Clone()
	}
	if _, ok := b.m[lib]; !ok {
		b.libs = append(b.libs, lib)
	}
	b.m[lib] = out
	return nil
}

// Has reports whether lib has been added.
func (b *Builder) Has(lib string) bool {
	_, ok := b.m[lib]
	return ok
}

// Len returns the number of libraries added so far.
func (b *Builder) Len() int {
	return len(b.libs)
}

// Build returns an immutable snapshot of the libraries added so far.
// The Builder may continue to be used; later changes do not affect the result.
func (b *Builder) Build() apis.Registry {
	r := &registry{
		libs: slices.Clone(b.libs),
		m:    make(map[string][]apis.Descriptor, len(b.m)),
	}
	for _, lib := range b.libs {
		descs := b.m[lib]
		r.m[lib] = slices.Clone(descs)
		r.count += len(descs)
	}
	return r
}

// checkDescriptor enforces the descriptor invariants.
func checkDescriptor(d apis.Descriptor) error {
	if len(d.Types) == 0 {
		return ErrNoTypes
	}
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	return nil
}

// registry is the immutable, insertion-ordered apis.Registry implementation.
type registry struct {
	// libs holds library names in insertion order.
	libs []string
	// m maps library name to its descriptors.
	m map[string][]apis.Descriptor
	// count is the total number of descriptors.
	count int
}

// Ensure registry implements apis.Registry.
var _ apis.Registry = (*registry)(nil)

// Libraries returns the library names in insertion order.
func (r *registry) Libraries() []string {
	return slices.Clone(r.libs)
}

// Lookup returns a copy of the descriptors for lib.
func (r *registry) Lookup(lib string) ([]apis.Descriptor, bool) {
	descs, ok := r.m[lib]
	if !ok {
		return nil, false
	}
	out := make([]apis.Descriptor, len(descs))
	for i, d := range descs {
		out[i] = d.Clone()
	}
	return out, true
}

// Len returns the number of libraries.
func (r *registry) Len() int {
	return len(r.libs)
}

// Count returns the total number of descriptors.
func (r *registry) Count() int {
	return r.count
}

// Range calls fn for each library in insertion order until fn returns false.
// fn must not modify descs.
func (r *registry) Range(fn func(lib string, descs []apis.Descriptor) bool) {
	for _, lib := range r.libs {
		if !fn(lib, r.m[lib]) {
			return
		}
	}
}

// Empty returns a registry with no libraries.
func Empty() apis.Registry {
	return NewBuilder().Build()
}

// Equal reports whether a and b hold the same libraries in the same order
// with field-for-field equal descriptors. Two nil registries are equal.
func Equal(a, b apis.Registry) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Len() != b.Len() || a.Count() != b.Count() {
		return false
	}
	if !slices.Equal(a.Libraries(), b.Libraries()) {
		return false
	}
	equal := true
	a.Range(func(lib string, descs []apis.Descriptor) bool {
		other, _ := b.Lookup(lib)
		equal = slices.EqualFunc(descs, other, apis.Descriptor.Equal)
		return equal
	})
	return equal
}
