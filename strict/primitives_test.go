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

package strict_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairnlabs-io/cairn/internal/test"
	"github.com/cairnlabs-io/cairn/strict"
)

type uintTestDefinition struct {
	Width strict.IntWidth
	Value uint64
	Hex   string
}

var uintTests = []uintTestDefinition{
	{Width: strict.W8, Value: 0, Hex: "00"},
	{Width: strict.W8, Value: 0xff, Hex: "ff"},
	{Width: strict.W16, Value: 0x0102, Hex: "0102"},
	{Width: strict.W24, Value: 0x010203, Hex: "010203"},
	{Width: strict.W32, Value: 0x01020304, Hex: "01020304"},
	{Width: strict.W64, Value: 0x0102030405060708, Hex: "0102030405060708"},
	// Small value in a wide field keeps the full width
	{Width: strict.W64, Value: 1, Hex: "0000000000000001"},
}

func TestUintEncoding(t *testing.T) {
	for _, tc := range uintTests {
		w := strict.NewWriter()
		require.NoError(t, w.WriteUint(tc.Value, tc.Width, nil))
		assert.Equal(t, tc.Hex, hex.EncodeToString(w.Bytes()))

		r := strict.NewReader(test.DecodeHexString(tc.Hex))
		v, err := r.ReadUint(tc.Width, nil)
		require.NoError(t, err)
		assert.Equal(t, tc.Value, v)
		require.NoError(t, r.Finish(nil))
	}
}

func TestUintRejectsOverflow(t *testing.T) {
	overflows := []uintTestDefinition{
		{Width: strict.W8, Value: 0x100},
		{Width: strict.W16, Value: 0x10000},
		{Width: strict.W24, Value: 0x1000000},
		{Width: strict.W32, Value: 0x100000000},
	}
	for _, tc := range overflows {
		w := strict.NewWriter()
		err := w.WriteUint(tc.Value, tc.Width, nil)
		assert.ErrorAs(t, err, &strict.MalformedEncodingError{})
		assert.Zero(t, w.Len())
	}
}

func TestBoolEncoding(t *testing.T) {
	w := strict.NewWriter()
	w.WriteBool(false)
	w.WriteBool(true)
	assert.Equal(t, "0001", hex.EncodeToString(w.Bytes()))

	r := strict.NewReader(w.Bytes())
	v, err := r.ReadBool(nil)
	require.NoError(t, err)
	assert.False(t, v)
	v, err = r.ReadBool(nil)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestBoolRejectsNonCanonical(t *testing.T) {
	r := strict.NewReader([]byte{0x02})
	_, err := r.ReadBool(nil)
	assert.ErrorAs(t, err, &strict.MalformedEncodingError{})
}

type prefixWidthTestDefinition struct {
	Sizing strict.Sizing
	Width  strict.IntWidth
}

var prefixWidthTests = []prefixWidthTestDefinition{
	{Sizing: strict.SizingU8, Width: strict.W8},
	{Sizing: strict.NewSizing(0, 0xff), Width: strict.W8},
	{Sizing: strict.NewSizing(0, 0x100), Width: strict.W16},
	{Sizing: strict.SizingU16, Width: strict.W16},
	{Sizing: strict.NewSizing(0, 0x10000), Width: strict.W24},
	{Sizing: strict.SizingU24, Width: strict.W24},
	{Sizing: strict.NewSizing(0, 0x1000000), Width: strict.W32},
	// The prefix width follows the bound, not the value
	{Sizing: strict.NewSizing(5, 10), Width: strict.W8},
}

func TestPrefixWidthFollowsBound(t *testing.T) {
	for _, tc := range prefixWidthTests {
		assert.Equal(t, tc.Width, tc.Sizing.PrefixWidth())
	}
}

func TestCountRejectsOutOfBounds(t *testing.T) {
	s := strict.NewSizing(1, 3)

	w := strict.NewWriter()
	err := w.WriteCount(0, s, nil)
	assert.ErrorAs(t, err, &strict.CardinalityViolationError{})

	err = w.WriteCount(4, s, nil)
	assert.ErrorAs(t, err, &strict.CardinalityViolationError{})

	require.NoError(t, w.WriteCount(2, s, nil))
	assert.Equal(t, "02", hex.EncodeToString(w.Bytes()))
}

func TestByteStringEncoding(t *testing.T) {
	w := strict.NewWriter()
	require.NoError(
		t,
		w.WriteByteString([]byte{0xde, 0xad, 0xbe, 0xef}, strict.SizingU8, nil),
	)
	assert.Equal(t, "04deadbeef", hex.EncodeToString(w.Bytes()))

	r := strict.NewReader(w.Bytes())
	b, err := r.ReadByteString(strict.SizingU8, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)
	require.NoError(t, r.Finish(nil))
}

func TestByteStringRejectsCountOutOfBounds(t *testing.T) {
	w := strict.NewWriter()
	err := w.WriteByteString(nil, strict.SizingNonEmpty(0xff), nil)
	assert.ErrorAs(t, err, &strict.CardinalityViolationError{})

	// Declared length larger than the bound
	r := strict.NewReader(test.DecodeHexString("03aabbcc"))
	_, err = r.ReadByteString(strict.NewSizing(0, 2), nil)
	assert.ErrorAs(t, err, &strict.CardinalityViolationError{})
}

func TestAsciiCharsetValidation(t *testing.T) {
	sizing := strict.NewSizing(1, 100)

	w := strict.NewWriter()
	require.NoError(t, w.WriteAscii(
		"Asset_1",
		strict.CharsetAlpha,
		strict.CharsetAlphaNumLodash,
		sizing,
		nil,
	))
	assert.Equal(t, "0741737365745f31", hex.EncodeToString(w.Bytes()))

	// Leading digit violates the first charset
	w = strict.NewWriter()
	err := w.WriteAscii(
		"1asset",
		strict.CharsetAlpha,
		strict.CharsetAlphaNumLodash,
		sizing,
		nil,
	)
	var charsetErr strict.InvalidCharsetError
	require.ErrorAs(t, err, &charsetErr)
	assert.Equal(t, 0, charsetErr.Position)

	// Same violation must be caught on decode
	r := strict.NewReader(test.DecodeHexString("06316173736574"))
	_, err = r.ReadAscii(
		strict.CharsetAlpha,
		strict.CharsetAlphaNumLodash,
		sizing,
		nil,
	)
	assert.ErrorAs(t, err, &strict.InvalidCharsetError{})
}

func TestUnicodeRejectsInvalidUtf8(t *testing.T) {
	w := strict.NewWriter()
	err := w.WriteUnicode(string([]byte{0xff, 0xfe}), strict.SizingU8, nil)
	assert.ErrorAs(t, err, &strict.MalformedEncodingError{})

	r := strict.NewReader(test.DecodeHexString("02fffe"))
	_, err = r.ReadUnicode(strict.SizingU8, nil)
	assert.ErrorAs(t, err, &strict.MalformedEncodingError{})
}

func TestFinishRejectsTrailingBytes(t *testing.T) {
	r := strict.NewReader(test.DecodeHexString("0700"))
	_, err := r.ReadUint(strict.W8, nil)
	require.NoError(t, err)
	err = r.Finish(nil)
	assert.ErrorAs(t, err, &strict.MalformedEncodingError{})
}

func TestReadPastEnd(t *testing.T) {
	r := strict.NewReader([]byte{0x01})
	_, err := r.ReadUint(strict.W16, nil)
	assert.ErrorAs(t, err, &strict.MalformedEncodingError{})
}
