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

package typesys_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairnlabs-io/cairn/strict"
	"github.com/cairnlabs-io/cairn/typesys"
)

func TestSemIdDeterministic(t *testing.T) {
	a, err := typesys.SemIdOf(typesys.Primitive{Width: strict.W64})
	require.NoError(t, err)
	b, err := typesys.SemIdOf(typesys.Primitive{Width: strict.W64})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSemIdDefinitionSensitive(t *testing.T) {
	u64, err := typesys.SemIdOf(typesys.Primitive{Width: strict.W64})
	require.NoError(t, err)
	u32, err := typesys.SemIdOf(typesys.Primitive{Width: strict.W32})
	require.NoError(t, err)
	assert.NotEqual(t, u64, u32)

	// Changing only a sizing bound changes the identity
	narrow, err := typesys.SemIdOf(typesys.Unicode{Sizing: strict.NewSizing(1, 8)})
	require.NoError(t, err)
	wide, err := typesys.SemIdOf(typesys.Unicode{Sizing: strict.NewSizing(1, 9)})
	require.NoError(t, err)
	assert.NotEqual(t, narrow, wide)
}

func TestSemIdFieldNameSensitive(t *testing.T) {
	ts := typesys.NewTypeSystem()
	u64, err := ts.Insert(typesys.Primitive{Width: strict.W64})
	require.NoError(t, err)

	a, err := typesys.SemIdOf(typesys.Struct{
		Fields: []typesys.StructField{{Name: "amount", Ref: u64}},
	})
	require.NoError(t, err)
	b, err := typesys.SemIdOf(typesys.Struct{
		Fields: []typesys.StructField{{Name: "value", Ref: u64}},
	})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestInsertIsIdempotent(t *testing.T) {
	ts := typesys.NewTypeSystem()
	a, err := ts.Insert(typesys.Primitive{Width: strict.W64})
	require.NoError(t, err)
	b, err := ts.Insert(typesys.Primitive{Width: strict.W64})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, ts.Len())
}

func TestInsertRequiresReferencedTypes(t *testing.T) {
	ts := typesys.NewTypeSystem()
	missing, err := typesys.SemIdOf(typesys.Primitive{Width: strict.W64})
	require.NoError(t, err)

	_, err = ts.Insert(typesys.List{
		Elem:   missing,
		Sizing: strict.SizingU8,
	})
	var refErr typesys.UnresolvedTypeReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, missing, refErr.Ref)

	// After the dependency is inserted, the same definition is accepted
	_, err = ts.Insert(typesys.Primitive{Width: strict.W64})
	require.NoError(t, err)
	_, err = ts.Insert(typesys.List{Elem: missing, Sizing: strict.SizingU8})
	require.NoError(t, err)
}

func TestDefinitionRejectsDuplicateNames(t *testing.T) {
	ts := typesys.NewTypeSystem()
	u64, err := ts.Insert(typesys.Primitive{Width: strict.W64})
	require.NoError(t, err)

	_, err = ts.Insert(typesys.Struct{
		Fields: []typesys.StructField{
			{Name: "amount", Ref: u64},
			{Name: "amount", Ref: u64},
		},
	})
	assert.ErrorAs(t, err, &strict.DuplicateKeyError{})

	_, err = ts.Insert(typesys.Enum{
		Variants: []typesys.EnumVariant{
			{Name: "a", Tag: 0},
			{Name: "b", Tag: 0},
		},
	})
	assert.ErrorAs(t, err, &strict.DuplicateKeyError{})
}

func buildTestSystem(t *testing.T) (*typesys.TypeSystem, typesys.SemId) {
	t.Helper()
	ts := typesys.NewTypeSystem()
	u64, err := ts.Insert(typesys.Primitive{Width: strict.W64})
	require.NoError(t, err)
	name, err := ts.Insert(typesys.Unicode{Sizing: strict.NewSizing(1, 32)})
	require.NoError(t, err)
	record, err := ts.Insert(typesys.Struct{
		Fields: []typesys.StructField{
			{Name: "name", Ref: name},
			{Name: "amount", Ref: u64},
		},
	})
	require.NoError(t, err)
	records, err := ts.Insert(typesys.List{Elem: record, Sizing: strict.SizingU16})
	require.NoError(t, err)
	_, err = ts.Insert(typesys.Option(u64))
	require.NoError(t, err)
	return ts, records
}

func TestTypeSystemRoundTrip(t *testing.T) {
	ts, _ := buildTestSystem(t)

	w := strict.NewWriter()
	require.NoError(t, ts.Encode(w))

	decoded, err := typesys.DecodeTypeSystem(strict.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, ts.Len(), decoded.Len())

	origId, err := ts.Id()
	require.NoError(t, err)
	decodedId, err := decoded.Id()
	require.NoError(t, err)
	assert.Equal(t, origId, decodedId)
}

func TestTypeSystemDecodeRejectsUnsortedEntries(t *testing.T) {
	ts := typesys.NewTypeSystem()
	_, err := ts.Insert(typesys.Primitive{Width: strict.W8})
	require.NoError(t, err)
	_, err = ts.Insert(typesys.Primitive{Width: strict.W16})
	require.NoError(t, err)

	w := strict.NewWriter()
	require.NoError(t, ts.Encode(w))
	encoded := w.Bytes()

	// Two primitive entries of 34 bytes each follow the 3-byte count
	// prefix; swapping them breaks the ascending order.
	require.Len(t, encoded, 3+2*34)
	tampered := append([]byte{}, encoded[:3]...)
	tampered = append(tampered, encoded[3+34:]...)
	tampered = append(tampered, encoded[3:3+34]...)

	_, err = typesys.DecodeTypeSystem(strict.NewReader(tampered))
	assert.ErrorAs(t, err, &strict.OrderingViolationError{})
}

func TestTypeSystemDecodeRejectsIdMismatch(t *testing.T) {
	ts := typesys.NewTypeSystem()
	_, err := ts.Insert(typesys.Primitive{Width: strict.W8})
	require.NoError(t, err)

	w := strict.NewWriter()
	require.NoError(t, ts.Encode(w))
	encoded := w.Bytes()

	// Flip one bit of the carried semantic id
	tampered := append([]byte{}, encoded...)
	tampered[3] ^= 0x01

	_, err = typesys.DecodeTypeSystem(strict.NewReader(tampered))
	assert.ErrorAs(t, err, &strict.MalformedEncodingError{})
}

func TestTypeSystemDecodeRejectsDanglingRef(t *testing.T) {
	u64, err := typesys.SemIdOf(typesys.Primitive{Width: strict.W64})
	require.NoError(t, err)
	list := typesys.List{Elem: u64, Sizing: strict.SizingU8}
	listId, err := typesys.SemIdOf(list)
	require.NoError(t, err)

	// Hand-build a one-entry system carrying only the list, whose element
	// type is never defined: count prefix, carried id, class byte, the
	// 32-byte element ref and the 16-byte sizing.
	w := strict.NewWriter()
	require.NoError(t, w.WriteUint(1, strict.W24, nil))
	w.WriteRaw(listId.Bytes())
	require.NoError(t, w.WriteUint(uint64(typesys.ClassList), strict.W8, nil))
	w.WriteRaw(u64.Bytes())
	require.NoError(t, w.WriteUint(strict.SizingU8.Min, strict.W64, nil))
	require.NoError(t, w.WriteUint(strict.SizingU8.Max, strict.W64, nil))

	_, err = typesys.DecodeTypeSystem(strict.NewReader(w.Bytes()))
	assert.ErrorAs(t, err, &typesys.UnresolvedTypeReferenceError{})
}

func TestDescriptorValueRoundTrip(t *testing.T) {
	ts, records := buildTestSystem(t)

	value := []any{
		[]any{"alice", uint64(600)},
		[]any{"bob", uint64(400)},
	}
	encoded, err := ts.EncodeValue(records, value)
	require.NoError(t, err)

	decoded, err := ts.DecodeValue(records, encoded)
	require.NoError(t, err)
	assert.Equal(t, value, decoded)
}

func TestDescriptorUnknownId(t *testing.T) {
	ts := typesys.NewTypeSystem()
	missing, err := typesys.SemIdOf(typesys.Primitive{Width: strict.W64})
	require.NoError(t, err)

	_, err = ts.Descriptor(missing)
	assert.ErrorAs(t, err, &typesys.UnresolvedTypeReferenceError{})
}
