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

package strategy

import (
	"strings"

	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/utils/typepath"
)

// NewTraitStrategy creates an apis.Strategy that treats the query as a trait,
// either by full path ("core::hash::Hash") or by bare name ("Hash").
func NewTraitStrategy() apis.Strategy {
	return &traitStrategy{}
}

// traitStrategy answers "who implements T".
type traitStrategy struct{}

// Ensure traitStrategy implements apis.Strategy.
var _ apis.Strategy = (*traitStrategy)(nil)

// TryResolve returns the implementors of every trait matching query.
func (*traitStrategy) TryResolve(query string, idx apis.Index) ([]apis.Hit, bool) {
	if idx == nil {
		return nil, false
	}
	q, err := typepath.Normalize(query)
	if err != nil {
		return nil, false
	}
	bare := !strings.Contains(q, typepath.Sep)

	var hits []apis.Hit
	for _, tr := range idx.Traits() {
		if tr == q || (bare && typepath.Name(tr) == q) {
			hits = append(hits, idx.Implementors(tr)...)
		}
	}
	return hits, len(hits) > 0
}
