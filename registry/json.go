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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"dirpx.dev/implreg/apis"
)

// ErrNotObject is returned when a JSON registry document is not an object.
var ErrNotObject = errors.New("implreg(registry): JSON registry must be an object")

// ErrTrailingData is returned when a JSON registry document has content after
// the closing brace.
var ErrTrailingData = errors.New("implreg(registry): trailing data after JSON registry")

// MarshalJSON encodes the registry as a JSON object whose member order is the
// registry order. Markup in descriptor text is written unescaped.
func (r *registry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, lib := range r.libs {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := MarshalValue(lib)
		if err != nil {
			return nil, err
		}
		v, err := MarshalValue(r.m[lib])
		if err != nil {
			return nil, fmt.Errorf("library %q: %w", lib, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalValue is json.Marshal without HTML escaping and without the
// trailing newline json.Encoder appends.
func MarshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// ReadJSON decodes a JSON object of library -> descriptor array, preserving
// member order. With strict set, a repeated member is ErrDuplicateLibrary;
// otherwise the later member replaces the earlier one in place.
func ReadJSON(rd io.Reader, strict bool) (apis.Registry, error) {
	dec := json.NewDecoder(rd)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("implreg(registry): %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}

	b := NewBuilder()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("implreg(registry): %w", err)
		}
		lib, _ := tok.(string)

		var descs []apis.Descriptor
		if err := dec.Decode(&descs); err != nil {
			return nil, fmt.Errorf("implreg(registry): library %q: %w", lib, err)
		}
		if strict {
			err = b.Add(lib, descs...)
		} else {
			err = b.Set(lib, descs...)
		}
		if err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("implreg(registry): %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}
	return b.Build(), nil
}
