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

import "slices"

// Descriptor is one documented implementation relationship: a pre-rendered
// display string plus the fully-qualified path(s) of the implementing type.
// Descriptors are values; callers must not mutate Types after construction.
type Descriptor struct {
	// Text is the display string emitted by the generator. It usually holds
	// markup and is treated as opaque; it may be empty.
	Text string `json:"text" yaml:"text"`
	// Synthetic marks auto-derived implementations.
	Synthetic bool `json:"synthetic" yaml:"synthetic"`
	// Types lists the implementing type paths, e.g. "termion::event::Key".
	Types []string `json:"types" yaml:"types" validate:"min=1,dive,required"`
}

// Equal reports whether d and o are field-for-field equal.
func (d Descriptor) Equal(o Descriptor) bool {
	return d.Text == o.Text && d.Synthetic == o.Synthetic && slices.Equal(d.Types, o.Types)
}

// Clone returns a copy of d that shares no memory with it.
func (d Descriptor) Clone() Descriptor {
	d.Types = slices.Clone(d.Types)
	return d
}
