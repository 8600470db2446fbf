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
)

// NewLibraryStrategy creates an apis.Strategy that lists everything a
// library documents.
func NewLibraryStrategy() apis.Strategy {
	return &libraryStrategy{}
}

type libraryStrategy struct{}

var _ apis.Strategy = (*libraryStrategy)(nil)

// TryResolve returns every hit authored for the library named query. If no
// library has that exact name, it returns the hits of every library whose
// name starts with query, in library order.
func (*libraryStrategy) TryResolve(query string, idx apis.Index) ([]apis.Hit, bool) {
	query = strings.TrimSpace(query)
	if idx == nil || query == "" {
		return nil, false
	}
	if hits := idx.ByLibrary(query); len(hits) > 0 {
		return hits, true
	}

	var hits []apis.Hit
	for _, lib := range idx.Libraries() {
		if strings.HasPrefix(lib, query) {
			hits = append(hits, idx.ByLibrary(lib)...)
		}
	}
	return hits, len(hits) > 0
}
