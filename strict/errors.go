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

import "fmt"

// MalformedEncodingError indicates input bytes that cannot be a canonical
// encoding of any value: truncation, trailing bytes, non-canonical booleans
// or presence bytes, or values exceeding their declared width.
type MalformedEncodingError struct {
	Path   Path
	Reason string
}

func (e MalformedEncodingError) Error() string {
	return fmt.Sprintf("malformed encoding at %s: %s", e.Path, e.Reason)
}

// LengthOutOfRangeError indicates a string length outside its declared
// inclusive bound.
type LengthOutOfRangeError struct {
	Path   Path
	Min    uint64
	Max    uint64
	Actual uint64
}

func (e LengthOutOfRangeError) Error() string {
	return fmt.Sprintf(
		"length out of range at %s: %d not within [%d, %d]",
		e.Path,
		e.Actual,
		e.Min,
		e.Max,
	)
}

// CardinalityViolationError indicates a collection element count outside its
// declared inclusive bound.
type CardinalityViolationError struct {
	Path   Path
	Min    uint64
	Max    uint64
	Actual uint64
}

func (e CardinalityViolationError) Error() string {
	return fmt.Sprintf(
		"cardinality violation at %s: %d elements not within [%d, %d]",
		e.Path,
		e.Actual,
		e.Min,
		e.Max,
	)
}

// InvalidCharsetError indicates a restricted string character outside its
// charset class.
type InvalidCharsetError struct {
	Path     Path
	Charset  string
	Position int
	Char     byte
}

func (e InvalidCharsetError) Error() string {
	return fmt.Sprintf(
		"invalid character %q at position %d of %s: not in charset %s",
		e.Char,
		e.Position,
		e.Path,
		e.Charset,
	)
}

// OrderingViolationError indicates a set element or map key that is not in
// ascending canonical byte order.
type OrderingViolationError struct {
	Path  Path
	Index int
}

func (e OrderingViolationError) Error() string {
	return fmt.Sprintf(
		"ordering violation at %s: element %d not in ascending canonical order",
		e.Path,
		e.Index,
	)
}

// DuplicateKeyError indicates a repeated set element or map key.
type DuplicateKeyError struct {
	Path  Path
	Index int
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key at %s: element %d", e.Path, e.Index)
}

// UnknownTagError indicates a union or enum discriminant with no declared
// variant.
type UnknownTagError struct {
	Path Path
	Tag  uint8
}

func (e UnknownTagError) Error() string {
	return fmt.Sprintf("unknown tag %d at %s", e.Tag, e.Path)
}
