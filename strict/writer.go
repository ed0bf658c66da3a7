// Copyright 2026 Cairn Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package strict

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// Writer accumulates a canonical encoding. Writes validate their input
// eagerly; a Writer never holds partially-written garbage because every
// method either appends a complete item or returns an error without
// appending.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoding accumulated so far.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes accumulated so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteRaw appends bytes verbatim. Used for fixed-size items such as
// 32-byte identifiers whose length is implied by their type.
func (w *Writer) WriteRaw(b []byte) {
	w.buf.Write(b)
}

// WriteUint appends a fixed-width big-endian unsigned integer. Values
// exceeding the declared width are rejected rather than truncated.
func (w *Writer) WriteUint(v uint64, width IntWidth, path Path) error {
	if !width.valid() {
		return MalformedEncodingError{
			Path:   path,
			Reason: fmt.Sprintf("invalid integer width %d", width),
		}
	}
	if v > width.MaxValue() {
		return MalformedEncodingError{
			Path:   path,
			Reason: fmt.Sprintf("value %d exceeds %d-bit width", v, width.Bits()),
		}
	}
	for i := int(width) - 1; i >= 0; i-- {
		w.buf.WriteByte(byte(v >> (8 * i)))
	}
	return nil
}

// WriteBool appends a canonical boolean byte (0 or 1).
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// WriteCount appends a collection length prefix after checking the
// cardinality bound. The prefix width is determined by the bound, not the
// value.
func (w *Writer) WriteCount(n uint64, s Sizing, path Path) error {
	if err := s.CheckCard(n, path); err != nil {
		return err
	}
	return w.WriteUint(n, s.PrefixWidth(), path)
}

// WriteByteString appends a length-prefixed byte string.
func (w *Writer) WriteByteString(b []byte, s Sizing, path Path) error {
	if err := w.WriteCount(uint64(len(b)), s, path); err != nil {
		return err
	}
	w.buf.Write(b)
	return nil
}

// WriteAscii appends a length-prefixed restricted string. The first
// character is validated against the first charset, the remainder against
// the rest charset.
func (w *Writer) WriteAscii(v string, first, rest Charset, s Sizing, path Path) error {
	if err := s.CheckLen(uint64(len(v)), path); err != nil {
		return err
	}
	for i := 0; i < len(v); i++ {
		cs := rest
		if i == 0 {
			cs = first
		}
		if !cs.Contains(v[i]) {
			return InvalidCharsetError{
				Path:     path,
				Charset:  cs.Name(),
				Position: i,
				Char:     v[i],
			}
		}
	}
	if err := w.WriteUint(uint64(len(v)), s.PrefixWidth(), path); err != nil {
		return err
	}
	w.buf.WriteString(v)
	return nil
}

// WriteUnicode appends a length-prefixed UTF-8 string. The sizing bound is
// measured in bytes.
func (w *Writer) WriteUnicode(v string, s Sizing, path Path) error {
	if !utf8.ValidString(v) {
		return MalformedEncodingError{Path: path, Reason: "invalid UTF-8 string"}
	}
	if err := s.CheckLen(uint64(len(v)), path); err != nil {
		return err
	}
	if err := w.WriteUint(uint64(len(v)), s.PrefixWidth(), path); err != nil {
		return err
	}
	w.buf.WriteString(v)
	return nil
}
