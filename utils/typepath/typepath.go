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

package typepath

import (
	"errors"
	"path"
	"strings"
)

// Sep separates path segments, as in "termion::event::Key".
const Sep = "::"

var (
	// ErrEmptyPath is returned when a path has no segments.
	ErrEmptyPath = errors.New("typepath: empty path provided")
	// ErrEmptySegment indicates a path such as "a::::b" or "::a".
	ErrEmptySegment = errors.New("typepath: path has an empty segment")
	// ErrNotDataFile is returned when a file name is not "<kind>.<Name>.js".
	ErrNotDataFile = errors.New("typepath: not an implementors data file")
)

// Normalize trims whitespace and generic arguments from every segment and
// returns the canonical "::"-joined path, or an error if a segment is empty.
//
// Examples:
//
//	"tui::widgets::List<'a>"  -> "tui::widgets::List"
//	" termion::event::Key "   -> "termion::event::Key"
func Normalize(p string) (string, error) {
	segs, err := Segments(p)
	if err != nil {
		return "", err
	}
	return strings.Join(segs, Sep), nil
}

// Segments splits p on "::" and normalizes each segment.
func Segments(p string) ([]string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return nil, ErrEmptyPath
	}
	raw := splitTopLevel(p)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = stripGenerics(strings.TrimSpace(s))
		if s == "" {
			return nil, ErrEmptySegment
		}
		out = append(out, s)
	}
	return out, nil
}

// Crate returns the first segment of p, or "" if p is empty.
func Crate(p string) string {
	segs, err := Segments(p)
	if err != nil {
		return ""
	}
	return segs[0]
}

// Name returns the last segment of p without generic arguments, or "".
func Name(p string) string {
	segs, err := Segments(p)
	if err != nil {
		return ""
	}
	return segs[len(segs)-1]
}

// FromFile derives a trait path from a data file path relative to the
// implementors root: "core/cmp/trait.PartialEq.js" -> "core::cmp::PartialEq".
func FromFile(rel string) (string, error) {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	dir, file := path.Split(rel)

	base, ok := strings.CutSuffix(file, ".js")
	if !ok {
		return "", ErrNotDataFile
	}
	_, name, ok := strings.Cut(base, ".")
	if !ok || name == "" {
		return "", ErrNotDataFile
	}

	var segs []string
	for _, s := range strings.Split(strings.Trim(dir, "/"), "/") {
		if s != "" && s != "." {
			segs = append(segs, s)
		}
	}
	segs = append(segs, name)
	return strings.Join(segs, Sep), nil
}

// splitTopLevel splits on "::" outside of angle brackets so that
// "a::B<c::D>" yields ["a", "B<c::D>"].
func splitTopLevel(p string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 && i+1 < len(p) && p[i+1] == ':' {
				out = append(out, p[start:i])
				i++
				start = i + 1
			}
		}
	}
	return append(out, p[start:])
}

// stripGenerics removes a generic argument suffix: "List<'a>" -> "List".
func stripGenerics(s string) string {
	if i := strings.IndexByte(s, '<'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
