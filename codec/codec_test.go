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

package codec_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/codec"
	"dirpx.dev/implreg/registry"
)

const (
	partialEqFile = "testdata/implementors/core/cmp/trait.PartialEq.js"
	hashFile      = "testdata/implementors/core/hash/trait.Hash.js"
)

func decodeFile(t *testing.T, path string) (apis.Registry, []byte) {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	reg, err := codec.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return reg, raw
}

func TestDecode_GeneratedFile(t *testing.T) {
	reg, _ := decodeFile(t, partialEqFile)

	assert.Equal(t, []string{"cassowary", "file_utility", "termion", "tui", "unicode_segmentation"}, reg.Libraries())
	counts := map[string]int{}
	reg.Range(func(lib string, descs []apis.Descriptor) bool {
		counts[lib] = len(descs)
		return true
	})
	want := map[string]int{"cassowary": 3, "file_utility": 2, "termion": 12, "tui": 25, "unicode_segmentation": 1}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Fatalf("descriptor counts (-want +got):\n%s", diff)
	}
	assert.Equal(t, 43, reg.Count())

	descs, ok := reg.Lookup("cassowary")
	require.True(t, ok)
	assert.Equal(t, []string{"cassowary::Variable"}, descs[0].Types)
	assert.False(t, descs[0].Synthetic)
	assert.True(t, strings.HasPrefix(descs[0].Text, "impl <a class=\"trait\""))
}

func TestEncode_ReproducesGeneratedFile(t *testing.T) {
	for _, path := range []string{partialEqFile, hashFile} {
		t.Run(path, func(t *testing.T) {
			reg, raw := decodeFile(t, path)

			var out bytes.Buffer
			require.NoError(t, codec.Encode(&out, reg))
			assert.Equal(t, string(raw), out.String())
		})
	}
}

func TestRoundTrip(t *testing.T) {
	b := registry.NewBuilder()
	require.NoError(t, b.Add("a", apis.Descriptor{Text: "impl <b>A</b> & co", Types: []string{"a::A"}}))
	require.NoError(t, b.Add("b", apis.Descriptor{Text: "impl \"quoted\"", Synthetic: true, Types: []string{"b::B", "b::C"}}))
	reg := b.Build()

	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, reg))
	back, err := codec.Decode(&buf)
	require.NoError(t, err)
	assert.True(t, registry.Equal(reg, back), "round trip changed the registry")
}

func TestDecode_BareJSON(t *testing.T) {
	doc := `  {"a":[{"text":"x","synthetic":false,"types":["a::X"]}]}`
	reg, err := codec.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, reg.Libraries())
}

func TestDecode_EmptyTextRoundTrips(t *testing.T) {
	src := strings.Join([]string{
		codec.Prologue,
		`implementors["a"] = [{"text":"","synthetic":false,"types":["a::A"]}];`,
		codec.Dispatch + codec.Epilogue,
	}, "\n")
	reg, err := codec.Decode(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 1, reg.Count())
	descs, _ := reg.Lookup("a")
	assert.Empty(t, descs[0].Text)

	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, reg))
	assert.Equal(t, src, buf.String())
}

func TestDecode_Empty(t *testing.T) {
	reg, err := codec.Decode(strings.NewReader(codec.Prologue + "\n" + codec.Dispatch + codec.Epilogue))
	require.NoError(t, err)
	assert.Zero(t, reg.Len())
}

func TestDecode_DuplicateAssignment(t *testing.T) {
	src := strings.Join([]string{
		codec.Prologue,
		`implementors["a"] = [{"text":"1","synthetic":false,"types":["a::X"]}];`,
		`implementors["b"] = [{"text":"b","synthetic":false,"types":["b::X"]}];`,
		`implementors["a"] = [{"text":"2","synthetic":false,"types":["a::Y"]}];`,
		codec.Dispatch + codec.Epilogue,
	}, "\n")

	reg, err := codec.Decode(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, reg.Libraries())
	descs, _ := reg.Lookup("a")
	assert.Equal(t, "2", descs[0].Text)

	_, err = codec.Decode(strings.NewReader(src), codec.WithStrict(true))
	assert.ErrorIs(t, err, registry.ErrDuplicateLibrary)
	assert.ErrorIs(t, err, codec.ErrSyntax)
}

func TestDecode_SyntaxErrors(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"unknown statement", `window.foo = 1;`},
		{"missing semicolon", `implementors["a"] = [{"text":"x","synthetic":false,"types":["a::X"]}]`},
		{"missing bracket", `implementors["a" = [];`},
		{"bad key", `implementors[a] = [];`},
		{"bad json", `implementors["a"] = [{"text":};`},
		{"no types", `implementors["a"] = [{"text":"x","synthetic":false,"types":[]}];`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := codec.Prologue + "\n" + tc.line + "\n"
			_, err := codec.Decode(strings.NewReader(src))
			require.Error(t, err)
			assert.ErrorIs(t, err, codec.ErrSyntax)

			var se *codec.SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, 2, se.Line)
		})
	}
}
