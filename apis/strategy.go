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

// Strategy is a pluggable resolution step. A Resolver can chain multiple
// strategies in order (e.g., Trait -> TypePath -> Name).
type Strategy interface {
	// TryResolve attempts to answer query from idx.
	// It returns (hits, true) if handled; otherwise (nil, false) to fall through.
	TryResolve(query string, idx Index) (hits []Hit, handled bool)
}
