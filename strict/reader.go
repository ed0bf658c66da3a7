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
	"fmt"
	"unicode/utf8"
)

// Reader consumes a canonical encoding. Every read is strict: truncated
// input, out-of-range lengths and non-canonical layouts fail immediately
// with the offending field path. Decoding never truncates or coerces.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader over the given bytes.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Pos returns the current read offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Finish fails with MalformedEncodingError if unconsumed bytes remain.
func (r *Reader) Finish(path Path) error {
	if n := r.Remaining(); n != 0 {
		return MalformedEncodingError{
			Path:   path,
			Reason: fmt.Sprintf("%d trailing bytes after value", n),
		}
	}
	return nil
}

func (r *Reader) take(n int, path Path) ([]byte, error) {
	if r.Remaining() < n {
		return nil, MalformedEncodingError{
			Path: path,
			Reason: fmt.Sprintf(
				"unexpected end of input: need %d bytes, have %d",
				n,
				r.Remaining(),
			),
		}
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadRaw consumes exactly n bytes and returns a copy.
func (r *Reader) ReadRaw(n int, path Path) ([]byte, error) {
	b, err := r.take(n, path)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadUint consumes a fixed-width big-endian unsigned integer.
func (r *Reader) ReadUint(width IntWidth, path Path) (uint64, error) {
	if !width.valid() {
		return 0, MalformedEncodingError{
			Path:   path,
			Reason: fmt.Sprintf("invalid integer width %d", width),
		}
	}
	b, err := r.take(int(width), path)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v, nil
}

// ReadBool consumes a canonical boolean byte; any value other than 0 or 1
// is rejected.
func (r *Reader) ReadBool(path Path) (bool, error) {
	b, err := r.take(1, path)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, MalformedEncodingError{
			Path:   path,
			Reason: fmt.Sprintf("non-canonical boolean byte 0x%02x", b[0]),
		}
	}
}

// ReadCount consumes a collection length prefix and checks it against the
// cardinality bound.
func (r *Reader) ReadCount(s Sizing, path Path) (uint64, error) {
	n, err := r.ReadUint(s.PrefixWidth(), path)
	if err != nil {
		return 0, err
	}
	if err := s.CheckCard(n, path); err != nil {
		return 0, err
	}
	return n, nil
}

// ReadByteString consumes a length-prefixed byte string.
func (r *Reader) ReadByteString(s Sizing, path Path) ([]byte, error) {
	n, err := r.ReadCount(s, path)
	if err != nil {
		return nil, err
	}
	return r.ReadRaw(int(n), path)
}

// ReadAscii consumes a length-prefixed restricted string and validates its
// charset classes.
func (r *Reader) ReadAscii(first, rest Charset, s Sizing, path Path) (string, error) {
	n, err := r.ReadUint(s.PrefixWidth(), path)
	if err != nil {
		return "", err
	}
	if err := s.CheckLen(n, path); err != nil {
		return "", err
	}
	b, err := r.take(int(n), path)
	if err != nil {
		return "", err
	}
	for i, ch := range b {
		cs := rest
		if i == 0 {
			cs = first
		}
		if !cs.Contains(ch) {
			return "", InvalidCharsetError{
				Path:     path,
				Charset:  cs.Name(),
				Position: i,
				Char:     ch,
			}
		}
	}
	return string(b), nil
}

// ReadUnicode consumes a length-prefixed UTF-8 string.
func (r *Reader) ReadUnicode(s Sizing, path Path) (string, error) {
	n, err := r.ReadUint(s.PrefixWidth(), path)
	if err != nil {
		return "", err
	}
	if err := s.CheckLen(n, path); err != nil {
		return "", err
	}
	b, err := r.take(int(n), path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", MalformedEncodingError{Path: path, Reason: "invalid UTF-8 string"}
	}
	return string(b), nil
}
