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

package resolver_test

import (
	"testing"

	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/index"
	"dirpx.dev/implreg/registry"
	"dirpx.dev/implreg/resolver"
)

// stubStrategy returns a fixed answer and counts calls.
type stubStrategy struct {
	hits    []apis.Hit
	handled bool
	calls   int
}

func (s *stubStrategy) TryResolve(string, apis.Index) ([]apis.Hit, bool) {
	s.calls++
	return s.hits, s.handled
}

func TestChain_FirstHandledWins(t *testing.T) {
	miss := &stubStrategy{}
	hit := &stubStrategy{hits: []apis.Hit{{Trait: "t"}}, handled: true}
	never := &stubStrategy{hits: []apis.Hit{{Trait: "other"}}, handled: true}

	r := resolver.New(miss, nil, hit, never)
	got := r.Resolve("q", nil)

	if len(got) != 1 || got[0].Trait != "t" {
		t.Fatalf("Resolve = %+v, want [t]", got)
	}
	if miss.calls != 1 || hit.calls != 1 || never.calls != 0 {
		t.Fatalf("calls = %d/%d/%d, want 1/1/0", miss.calls, hit.calls, never.calls)
	}
}

func TestChain_NoneHandled(t *testing.T) {
	if got := resolver.New().Resolve("q", nil); got != nil {
		t.Fatalf("empty chain = %+v, want nil", got)
	}
}

func TestDefault_Precedence(t *testing.T) {
	b := registry.NewBuilder()
	if err := b.Add("hashlib", apis.Descriptor{Text: "impl", Types: []string{"hashlib::Hash"}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	idx := index.Build([]apis.TraitRegistry{{Registry: b.Build(), Trait: "core::hash::Hash"}})
	r := resolver.Default()

	// "Hash" is both a trait name and a type name; the trait wins.
	hits := r.Resolve("Hash", idx)
	if len(hits) != 1 || hits[0].Trait != "core::hash::Hash" {
		t.Fatalf("Resolve(Hash) = %+v", hits)
	}
	if hits := r.Resolve("hashlib::Hash", idx); len(hits) != 1 {
		t.Fatalf("Resolve(type path) = %+v", hits)
	}
	if hits := r.Resolve("hashlib", idx); len(hits) != 1 || hits[0].Library != "hashlib" {
		t.Fatalf("Resolve(library) = %+v", hits)
	}
	if hits := r.Resolve("missing", idx); hits != nil {
		t.Fatalf("Resolve(missing) = %+v, want nil", hits)
	}
}
