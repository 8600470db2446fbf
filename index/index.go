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

package index

import (
	"slices"
	"strings"

	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/utils/typepath"
)

// Build constructs an immutable apis.Index over trs. Registries are visited
// in trait order regardless of the order of trs; a trait that appears more
// than once has its hits concatenated in input order.
func Build(trs []apis.TraitRegistry) apis.Index {
	sorted := slices.Clone(trs)
	slices.SortStableFunc(sorted, func(a, b apis.TraitRegistry) int {
		return strings.Compare(a.Trait, b.Trait)
	})

	idx := &index{
		byTrait:   map[string][]apis.Hit{},
		byType:    map[string][]apis.Hit{},
		byName:    map[string][]apis.Hit{},
		byLibrary: map[string][]apis.Hit{},
	}
	for _, tr := range sorted {
		if tr.Registry == nil {
			continue
		}
		if _, ok := idx.byTrait[tr.Trait]; !ok {
			idx.traits = append(idx.traits, tr.Trait)
			idx.byTrait[tr.Trait] = nil
		}
		tr.Range(func(lib string, descs []apis.Descriptor) bool {
			for _, d := range descs {
				idx.add(apis.Hit{Trait: tr.Trait, Library: lib, Descriptor: d.Clone()})
			}
			return true
		})
	}
	for lib := range idx.byLibrary {
		idx.libs = append(idx.libs, lib)
	}
	slices.Sort(idx.libs)
	return idx
}

// index is the map-backed apis.Index implementation. It is never mutated
// after Build returns.
type index struct {
	traits    []string
	libs      []string
	byTrait   map[string][]apis.Hit
	byType    map[string][]apis.Hit
	byName    map[string][]apis.Hit
	byLibrary map[string][]apis.Hit
}

// Ensure index implements apis.Index.
var _ apis.Index = (*index)(nil)

func (x *index) add(h apis.Hit) {
	x.byTrait[h.Trait] = append(x.byTrait[h.Trait], h)
	x.byLibrary[h.Library] = append(x.byLibrary[h.Library], h)

	// A descriptor listing the same type twice is indexed once per key.
	seenType := map[string]bool{}
	seenName := map[string]bool{}
	for _, t := range h.Descriptor.Types {
		p, err := typepath.Normalize(t)
		if err != nil {
			continue
		}
		if !seenType[p] {
			seenType[p] = true
			x.byType[p] = append(x.byType[p], h)
		}
		if n := typepath.Name(p); n != "" && !seenName[n] {
			seenName[n] = true
			x.byName[n] = append(x.byName[n], h)
		}
	}
}

// Implementors returns every hit registered under trait.
func (x *index) Implementors(trait string) []apis.Hit {
	return cloneHits(x.byTrait[trait])
}

// TraitsOf returns every hit whose descriptor names typePath.
func (x *index) TraitsOf(typePath string) []apis.Hit {
	p, err := typepath.Normalize(typePath)
	if err != nil {
		return nil
	}
	return cloneHits(x.byType[p])
}

// ByName returns every hit with a type whose last segment is name.
func (x *index) ByName(name string) []apis.Hit {
	return cloneHits(x.byName[strings.TrimSpace(name)])
}

// ByLibrary returns every hit authored for lib.
func (x *index) ByLibrary(lib string) []apis.Hit {
	return cloneHits(x.byLibrary[lib])
}

// Traits returns the trait paths in sorted order.
func (x *index) Traits() []string {
	return slices.Clone(x.traits)
}

// Libraries returns the library names in sorted order.
func (x *index) Libraries() []string {
	return slices.Clone(x.libs)
}

// cloneHits deep-copies hits so callers cannot reach index internals.
func cloneHits(hits []apis.Hit) []apis.Hit {
	if len(hits) == 0 {
		return nil
	}
	out := make([]apis.Hit, len(hits))
	for i, h := range hits {
		h.Descriptor = h.Descriptor.Clone()
		out[i] = h
	}
	return out
}
