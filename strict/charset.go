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

// Charset is a named class of 7-bit ASCII characters. Restricted string
// types validate their first character against one charset and the
// remaining characters against another.
type Charset struct {
	name string
	bits [2]uint64
}

// CharRange is an inclusive range of ASCII characters.
type CharRange struct {
	From byte
	To   byte
}

// NewCharset builds a charset from the given inclusive character ranges.
// Characters above 0x7f are not representable and are silently ignored.
func NewCharset(name string, ranges ...CharRange) Charset {
	c := Charset{name: name}
	for _, r := range ranges {
		for ch := int(r.From); ch <= int(r.To) && ch <= 0x7f; ch++ {
			c.bits[ch/64] |= 1 << (ch % 64)
		}
	}
	return c
}

// Name returns the charset name used in error reporting.
func (c Charset) Name() string {
	return c.name
}

// Contains reports whether the given byte belongs to the charset.
func (c Charset) Contains(b byte) bool {
	if b > 0x7f {
		return false
	}
	return c.bits[b/64]&(1<<(b%64)) != 0
}

var (
	// CharsetAscii allows any 7-bit character.
	CharsetAscii = NewCharset("Ascii", CharRange{0x00, 0x7f})

	// CharsetAsciiPrintable allows printable 7-bit characters including space.
	CharsetAsciiPrintable = NewCharset("AsciiPrintable", CharRange{0x20, 0x7e})

	// CharsetAlpha allows latin letters of either case.
	CharsetAlpha = NewCharset("Alpha", CharRange{'A', 'Z'}, CharRange{'a', 'z'})

	// CharsetAlphaNum allows latin letters and decimal digits.
	CharsetAlphaNum = NewCharset(
		"AlphaNum",
		CharRange{'A', 'Z'},
		CharRange{'a', 'z'},
		CharRange{'0', '9'},
	)

	// CharsetAlphaNumDash allows latin letters, decimal digits and '-'.
	CharsetAlphaNumDash = NewCharset(
		"AlphaNumDash",
		CharRange{'A', 'Z'},
		CharRange{'a', 'z'},
		CharRange{'0', '9'},
		CharRange{'-', '-'},
	)

	// CharsetAlphaNumLodash allows latin letters, decimal digits, '-' and '_'.
	CharsetAlphaNumLodash = NewCharset(
		"AlphaNumLodash",
		CharRange{'A', 'Z'},
		CharRange{'a', 'z'},
		CharRange{'0', '9'},
		CharRange{'-', '-'},
		CharRange{'_', '_'},
	)

	// CharsetDigit allows decimal digits only.
	CharsetDigit = NewCharset("Digit", CharRange{'0', '9'})
)
