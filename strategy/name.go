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
	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/utils/typepath"
)

// NewNameStrategy creates an apis.Strategy that matches the last path
// segment of implementing types, so "Key" finds "termion::event::Key".
func NewNameStrategy() apis.Strategy {
	return nameStrategy{}
}

// nameStrategy is the loose fallback for unqualified type names.
type nameStrategy struct{}

// Ensure nameStrategy implements apis.Strategy.
var _ apis.Strategy = (*nameStrategy)(nil)

// TryResolve looks up the normalized last segment of query.
func (nameStrategy) TryResolve(query string, idx apis.Index) ([]apis.Hit, bool) {
	if idx == nil {
		return nil, false
	}
	n := typepath.Name(query)
	if n == "" {
		return nil, false
	}
	hits := idx.ByName(n)
	return hits, len(hits) > 0
}
