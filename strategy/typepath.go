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

// NewTypePathStrategy creates an apis.Strategy that matches a fully-qualified
// type path such as "termion::event::Key".
func NewTypePathStrategy() apis.Strategy {
	return typePathStrategy{}
}

// typePathStrategy answers "what does type X implement" for qualified paths.
type typePathStrategy struct{}

// Ensure typePathStrategy implements apis.Strategy.
var _ apis.Strategy = (*typePathStrategy)(nil)

// TryResolve looks query up as a type path. Bare names fall through.
func (typePathStrategy) TryResolve(query string, idx apis.Index) ([]apis.Hit, bool) {
	if idx == nil || !strings.Contains(query, typepath.Sep) {
		return nil, false
	}
	hits := idx.TraitsOf(query)
	return hits, len(hits) > 0
}
