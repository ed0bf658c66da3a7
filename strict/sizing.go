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

import "math"

// IntWidth is the byte width of a fixed-width unsigned integer.
type IntWidth uint8

const (
	W8  IntWidth = 1
	W16 IntWidth = 2
	W24 IntWidth = 3
	W32 IntWidth = 4
	W64 IntWidth = 8
)

// Bits returns the width in bits.
func (w IntWidth) Bits() int {
	return int(w) * 8
}

// MaxValue returns the largest value representable at this width.
func (w IntWidth) MaxValue() uint64 {
	if w >= W64 {
		return math.MaxUint64
	}
	return 1<<(uint(w)*8) - 1
}

func (w IntWidth) valid() bool {
	switch w {
	case W8, W16, W24, W32, W64:
		return true
	default:
		return false
	}
}

// Sizing is an inclusive [Min, Max] bound on a string length or collection
// cardinality. The bound is part of a type's identity: the byte width of the
// length prefix is the smallest unsigned integer tier covering Max.
type Sizing struct {
	Min uint64
	Max uint64
}

var (
	// SizingU8 allows 0..255 elements.
	SizingU8 = Sizing{Min: 0, Max: math.MaxUint8}

	// SizingU16 allows 0..65535 elements.
	SizingU16 = Sizing{Min: 0, Max: math.MaxUint16}

	// SizingU24 allows 0..16777215 elements.
	SizingU24 = Sizing{Min: 0, Max: 1<<24 - 1}

	// SizingU32 allows 0..4294967295 elements.
	SizingU32 = Sizing{Min: 0, Max: math.MaxUint32}
)

// NewSizing builds an inclusive sizing bound.
func NewSizing(minLen, maxLen uint64) Sizing {
	return Sizing{Min: minLen, Max: maxLen}
}

// SizingNonEmpty builds a bound requiring at least one element.
func SizingNonEmpty(maxLen uint64) Sizing {
	return Sizing{Min: 1, Max: maxLen}
}

// SizingFixed builds a bound requiring exactly n elements.
func SizingFixed(n uint64) Sizing {
	return Sizing{Min: n, Max: n}
}

// PrefixWidth returns the length-prefix tier for the declared maximum.
func (s Sizing) PrefixWidth() IntWidth {
	switch {
	case s.Max <= math.MaxUint8:
		return W8
	case s.Max <= math.MaxUint16:
		return W16
	case s.Max <= 1<<24-1:
		return W24
	default:
		return W32
	}
}

// CheckLen validates a string length against the bound, failing with
// LengthOutOfRangeError.
func (s Sizing) CheckLen(n uint64, path Path) error {
	if n < s.Min || n > s.Max {
		return LengthOutOfRangeError{Path: path, Min: s.Min, Max: s.Max, Actual: n}
	}
	return nil
}

// CheckCard validates a collection cardinality against the bound, failing
// with CardinalityViolationError.
func (s Sizing) CheckCard(n uint64, path Path) error {
	if n < s.Min || n > s.Max {
		return CardinalityViolationError{Path: path, Min: s.Min, Max: s.Max, Actual: n}
	}
	return nil
}
