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

// Package schema publishes JSON Schemas for the descriptor and registry
// JSON forms, generated from the Go types with invopop/jsonschema.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"dirpx.dev/implreg/apis"
)

// ID prefixes the $id of every generated schema.
const ID = "https://dirpx.dev/implreg/schema/"

// Descriptor returns the JSON Schema of a single descriptor.
func Descriptor() ([]byte, error) {
	s := reflector().Reflect(&apis.Descriptor{})
	s.ID = jsonschema.ID(ID + "descriptor.json")
	s.Title = "Implementor descriptor"
	return marshal(s)
}

// Registry returns the JSON Schema of a registry: an object mapping library
// name to a non-empty array of descriptors.
func Registry() ([]byte, error) {
	desc := reflector().Reflect(&apis.Descriptor{})
	desc.Version = ""
	desc.ID = ""

	one := uint64(1)
	s := &jsonschema.Schema{
		Version: jsonschema.Version,
		ID:      jsonschema.ID(ID + "registry.json"),
		Title:   "Implementor registry",
		Type:    "object",
		AdditionalProperties: &jsonschema.Schema{
			Type:     "array",
			MinItems: &one,
			Items:    desc,
		},
	}
	return marshal(s)
}

// reflector expands structs inline and requires fields without omitempty.
func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
}

func marshal(s *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("implreg(schema): marshal: %w", err)
	}
	return data, nil
}
