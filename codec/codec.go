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

package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/registry"
)

const (
	// Prologue opens a data file and declares the table.
	Prologue = "(function() {var implementors = {};"
	// Dispatch hands the table to the hook if present, else parks it.
	Dispatch = "if (window.register_implementors) {window.register_implementors(implementors);} else {window.pending_implementors = implementors;}"
	// Epilogue closes the wrapper function and invokes it.
	Epilogue = "})()"

	stmtPrefix = "implementors["
)

// ErrSyntax is matched by every *SyntaxError via errors.Is.
var ErrSyntax = errors.New("implreg(codec): syntax error")

// SyntaxError reports a malformed data file line.
type SyntaxError struct {
	// Line is the 1-based line number.
	Line int
	// Msg describes the problem.
	Msg string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements error.
func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("implreg(codec): line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("implreg(codec): line %d: %s", e.Line, e.Msg)
}

// Unwrap returns the underlying cause.
func (e *SyntaxError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSyntax) hold for any *SyntaxError.
func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// Option configures Decode.
type Option func(*options)

type options struct {
	strict bool
}

// WithStrict rejects a library assigned twice in one input. Without it the
// later assignment replaces the earlier one in place.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// Decode reads a Registry from r. It accepts the generated data-file form
// (one "implementors[...] = [...];" statement per line inside the wrapper
// function) or a bare JSON object of library -> descriptor array.
func Decode(r io.Reader, opts ...Option) (apis.Registry, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	br := bufio.NewReader(r)
	if first, err := peekNonSpace(br); err == nil && first == '{' {
		return registry.ReadJSON(br, o.strict)
	}

	b := registry.NewBuilder()
	line := 0
	for {
		text, err := br.ReadString('\n')
		if len(text) > 0 {
			line++
			if perr := decodeLine(b, strings.TrimSpace(text), line, o.strict); perr != nil {
				return nil, perr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("implreg(codec): read: %w", err)
		}
	}
	return b.Build(), nil
}

// decodeLine handles one trimmed input line.
func decodeLine(b *registry.Builder, text string, line int, strict bool) error {
	if rest, ok := strings.CutPrefix(text, Prologue); ok {
		text = strings.TrimSpace(rest)
	}
	text = strings.TrimSpace(strings.TrimSuffix(text, Epilogue))

	switch {
	case text == "", text == Dispatch, strings.HasPrefix(text, "//"):
		return nil
	case strings.HasPrefix(text, stmtPrefix):
		lib, descs, err := parseStatement(text[len(stmtPrefix):])
		if err != nil {
			return &SyntaxError{Line: line, Msg: "bad assignment", Err: err}
		}
		if strict {
			err = b.Add(lib, descs...)
		} else {
			err = b.Set(lib, descs...)
		}
		if err != nil {
			return &SyntaxError{Line: line, Msg: "invalid registry data", Err: err}
		}
		return nil
	default:
		return &SyntaxError{Line: line, Msg: "unexpected statement"}
	}
}

// parseStatement parses `"lib"] = [ ... ];` (the text after "implementors[").
func parseStatement(s string) (string, []apis.Descriptor, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	var lib string
	if err := dec.Decode(&lib); err != nil {
		return "", nil, fmt.Errorf("library key: %w", err)
	}
	rest := strings.TrimSpace(s[dec.InputOffset():])

	rest, ok := strings.CutPrefix(rest, "]")
	if !ok {
		return "", nil, errors.New("missing ']'")
	}
	rest, ok = strings.CutPrefix(strings.TrimSpace(rest), "=")
	if !ok {
		return "", nil, errors.New("missing '='")
	}
	rest, ok = strings.CutSuffix(strings.TrimSpace(rest), ";")
	if !ok {
		return "", nil, errors.New("missing ';'")
	}

	var descs []apis.Descriptor
	if err := json.Unmarshal([]byte(rest), &descs); err != nil {
		return "", nil, fmt.Errorf("descriptors: %w", err)
	}
	return lib, descs, nil
}

// peekNonSpace returns the first non-whitespace byte without consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		c, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			return c, br.UnreadByte()
		}
	}
}

// Encode writes reg in the generated data-file form. The output has no
// trailing newline, matching generator output byte for byte.
func Encode(w io.Writer, reg apis.Registry) error {
	var buf bytes.Buffer
	buf.WriteString(Prologue)
	buf.WriteByte('\n')

	var err error
	reg.Range(func(lib string, descs []apis.Descriptor) bool {
		var k, v []byte
		if k, err = registry.MarshalValue(lib); err != nil {
			return false
		}
		if v, err = registry.MarshalValue(descs); err != nil {
			err = fmt.Errorf("library %q: %w", lib, err)
			return false
		}
		buf.WriteString(stmtPrefix)
		buf.Write(k)
		buf.WriteString("] = ")
		buf.Write(v)
		buf.WriteString(";\n")
		return true
	})
	if err != nil {
		return fmt.Errorf("implreg(codec): encode: %w", err)
	}

	buf.WriteString(Dispatch)
	buf.WriteString(Epilogue)
	_, err = w.Write(buf.Bytes())
	return err
}
