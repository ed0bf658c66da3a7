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

package typesys

import (
	"fmt"

	"github.com/cairnlabs-io/cairn/strict"
)

// Class is the discriminant byte of a type definition variant.
type Class uint8

const (
	ClassPrimitive Class = 0x00
	ClassUnicode   Class = 0x01
	ClassEnum      Class = 0x02
	ClassUnion     Class = 0x03
	ClassTuple     Class = 0x04
	ClassStruct    Class = 0x05
	ClassArray     Class = 0x06
	ClassList      Class = 0x07
	ClassSet       Class = 0x08
	ClassMap       Class = 0x09
)

func (c Class) String() string {
	switch c {
	case ClassPrimitive:
		return "primitive"
	case ClassUnicode:
		return "unicode"
	case ClassEnum:
		return "enum"
	case ClassUnion:
		return "union"
	case ClassTuple:
		return "tuple"
	case ClassStruct:
		return "struct"
	case ClassArray:
		return "array"
	case ClassList:
		return "list"
	case ClassSet:
		return "set"
	case ClassMap:
		return "map"
	default:
		return "unknown"
	}
}

// Identifier bounds shared by enum variants, union variants and struct
// fields.
var (
	identSizing = strict.NewSizing(1, 100)
	identFirst  = strict.CharsetAlpha
	identRest   = strict.CharsetAlphaNumLodash
)

// Collection counts inside a definition. Composite definitions must carry
// at least one member.
var (
	memberSizing  = strict.NewSizing(1, 255)
	variantSizing = strict.NewSizing(1, 255)
)

// Ty is one type definition variant. Implementations encode their own
// definition payload; nested types appear only as 32-byte SemId
// references.
type Ty interface {
	Class() Class

	// Refs returns the SemIds this definition depends on, in declared
	// order.
	Refs() []SemId

	encodePayload(w *strict.Writer, path strict.Path) error
}

// Primitive is a fixed-width unsigned integer type.
type Primitive struct {
	Width strict.IntWidth
}

func (Primitive) Class() Class { return ClassPrimitive }

func (Primitive) Refs() []SemId { return nil }

func (t Primitive) encodePayload(w *strict.Writer, path strict.Path) error {
	switch t.Width {
	case strict.W8, strict.W16, strict.W24, strict.W32, strict.W64:
	default:
		return strict.MalformedEncodingError{
			Path:   path,
			Reason: fmt.Sprintf("invalid primitive width %d", t.Width),
		}
	}
	return w.WriteUint(uint64(t.Width), strict.W8, path)
}

// Unicode is a UTF-8 string type bounded in bytes.
type Unicode struct {
	Sizing strict.Sizing
}

func (Unicode) Class() Class { return ClassUnicode }

func (Unicode) Refs() []SemId { return nil }

func (t Unicode) encodePayload(w *strict.Writer, path strict.Path) error {
	return encodeSizing(w, t.Sizing, path)
}

// EnumVariant is one named, explicitly tagged alternative of an Enum.
type EnumVariant struct {
	Name string
	Tag  uint8
}

// Enum is a tagged enumeration without payloads. Variant order is part of
// the type's identity; names and tags must be unique.
type Enum struct {
	Variants []EnumVariant
}

func (Enum) Class() Class { return ClassEnum }

func (Enum) Refs() []SemId { return nil }

func (t Enum) encodePayload(w *strict.Writer, path strict.Path) error {
	if err := w.WriteCount(uint64(len(t.Variants)), variantSizing, path); err != nil {
		return err
	}
	for i, v := range t.Variants {
		vp := path.Index(i)
		if err := w.WriteAscii(v.Name, identFirst, identRest, identSizing, vp); err != nil {
			return err
		}
		if err := w.WriteUint(uint64(v.Tag), strict.W8, vp); err != nil {
			return err
		}
	}
	return nil
}

// UnionVariant is one named, explicitly tagged alternative of a Union. A
// variant without a payload leaves Void set and Ref zero.
type UnionVariant struct {
	Name string
	Tag  uint8
	Ref  SemId
	Void bool
}

// Union is a tagged union over referenced types.
type Union struct {
	Variants []UnionVariant
}

func (Union) Class() Class { return ClassUnion }

func (t Union) Refs() []SemId {
	refs := make([]SemId, 0, len(t.Variants))
	for _, v := range t.Variants {
		if !v.Void {
			refs = append(refs, v.Ref)
		}
	}
	return refs
}

func (t Union) encodePayload(w *strict.Writer, path strict.Path) error {
	if err := w.WriteCount(uint64(len(t.Variants)), variantSizing, path); err != nil {
		return err
	}
	for i, v := range t.Variants {
		vp := path.Index(i)
		if err := w.WriteAscii(v.Name, identFirst, identRest, identSizing, vp); err != nil {
			return err
		}
		if err := w.WriteUint(uint64(v.Tag), strict.W8, vp); err != nil {
			return err
		}
		w.WriteBool(!v.Void)
		if !v.Void {
			w.WriteRaw(v.Ref[:])
		}
	}
	return nil
}

// Option builds the conventional optional wrapper over a referenced type:
// a union of a void "none" variant (tag 0) and a "some" variant (tag 1).
func Option(inner SemId) Union {
	return Union{Variants: []UnionVariant{
		{Name: "none", Tag: 0, Void: true},
		{Name: "some", Tag: 1, Ref: inner},
	}}
}

// Tuple is an ordered sequence of unnamed fields.
type Tuple struct {
	Fields []SemId
}

func (Tuple) Class() Class { return ClassTuple }

func (t Tuple) Refs() []SemId { return t.Fields }

func (t Tuple) encodePayload(w *strict.Writer, path strict.Path) error {
	if err := w.WriteCount(uint64(len(t.Fields)), memberSizing, path); err != nil {
		return err
	}
	for _, ref := range t.Fields {
		w.WriteRaw(ref[:])
	}
	return nil
}

// StructField is one named member of a Struct.
type StructField struct {
	Name string
	Ref  SemId
}

// Struct is an ordered sequence of named fields. Names are metadata: they
// participate in the type's identity but never appear in value encodings.
type Struct struct {
	Fields []StructField
}

func (Struct) Class() Class { return ClassStruct }

func (t Struct) Refs() []SemId {
	refs := make([]SemId, len(t.Fields))
	for i, f := range t.Fields {
		refs[i] = f.Ref
	}
	return refs
}

func (t Struct) encodePayload(w *strict.Writer, path strict.Path) error {
	if err := w.WriteCount(uint64(len(t.Fields)), memberSizing, path); err != nil {
		return err
	}
	for i, f := range t.Fields {
		fp := path.Index(i)
		if err := w.WriteAscii(f.Name, identFirst, identRest, identSizing, fp); err != nil {
			return err
		}
		w.WriteRaw(f.Ref[:])
	}
	return nil
}

// Array is a fixed-length sequence of one element type.
type Array struct {
	Elem SemId
	Len  uint16
}

func (Array) Class() Class { return ClassArray }

func (t Array) Refs() []SemId { return []SemId{t.Elem} }

func (t Array) encodePayload(w *strict.Writer, path strict.Path) error {
	w.WriteRaw(t.Elem[:])
	return w.WriteUint(uint64(t.Len), strict.W16, path)
}

// List is an ordered, size-bounded sequence of one element type.
type List struct {
	Elem   SemId
	Sizing strict.Sizing
}

func (List) Class() Class { return ClassList }

func (t List) Refs() []SemId { return []SemId{t.Elem} }

func (t List) encodePayload(w *strict.Writer, path strict.Path) error {
	w.WriteRaw(t.Elem[:])
	return encodeSizing(w, t.Sizing, path)
}

// Set is a size-bounded set of one element type, canonically ordered.
type Set struct {
	Elem   SemId
	Sizing strict.Sizing
}

func (Set) Class() Class { return ClassSet }

func (t Set) Refs() []SemId { return []SemId{t.Elem} }

func (t Set) encodePayload(w *strict.Writer, path strict.Path) error {
	w.WriteRaw(t.Elem[:])
	return encodeSizing(w, t.Sizing, path)
}

// Map is a size-bounded mapping, canonically ordered by encoded key bytes.
type Map struct {
	Key    SemId
	Value  SemId
	Sizing strict.Sizing
}

func (Map) Class() Class { return ClassMap }

func (t Map) Refs() []SemId { return []SemId{t.Key, t.Value} }

func (t Map) encodePayload(w *strict.Writer, path strict.Path) error {
	w.WriteRaw(t.Key[:])
	w.WriteRaw(t.Value[:])
	return encodeSizing(w, t.Sizing, path)
}

func encodeSizing(w *strict.Writer, s strict.Sizing, path strict.Path) error {
	if s.Min > s.Max {
		return strict.MalformedEncodingError{
			Path:   path,
			Reason: fmt.Sprintf("inverted sizing bound [%d, %d]", s.Min, s.Max),
		}
	}
	if err := w.WriteUint(s.Min, strict.W64, path); err != nil {
		return err
	}
	return w.WriteUint(s.Max, strict.W64, path)
}

func decodeSizing(r *strict.Reader, path strict.Path) (strict.Sizing, error) {
	minLen, err := r.ReadUint(strict.W64, path)
	if err != nil {
		return strict.Sizing{}, err
	}
	maxLen, err := r.ReadUint(strict.W64, path)
	if err != nil {
		return strict.Sizing{}, err
	}
	if minLen > maxLen {
		return strict.Sizing{}, strict.MalformedEncodingError{
			Path:   path,
			Reason: fmt.Sprintf("inverted sizing bound [%d, %d]", minLen, maxLen),
		}
	}
	return strict.NewSizing(minLen, maxLen), nil
}

// encodeDef writes a complete definition: the class discriminant byte
// followed by the class payload. This byte sequence is the preimage of the
// definition's SemId.
func encodeDef(w *strict.Writer, ty Ty, path strict.Path) error {
	if ty == nil {
		return strict.MalformedEncodingError{Path: path, Reason: "nil type definition"}
	}
	if err := checkDefinition(ty, path); err != nil {
		return err
	}
	if err := w.WriteUint(uint64(ty.Class()), strict.W8, path); err != nil {
		return err
	}
	return ty.encodePayload(w, path)
}

// decodeDef parses one definition from the reader.
func decodeDef(r *strict.Reader, path strict.Path) (Ty, error) {
	class, err := r.ReadUint(strict.W8, path)
	if err != nil {
		return nil, err
	}
	var ty Ty
	switch Class(class) {
	case ClassPrimitive:
		width, err := r.ReadUint(strict.W8, path)
		if err != nil {
			return nil, err
		}
		switch strict.IntWidth(width) {
		case strict.W8, strict.W16, strict.W24, strict.W32, strict.W64:
		default:
			return nil, strict.MalformedEncodingError{
				Path:   path,
				Reason: fmt.Sprintf("invalid primitive width %d", width),
			}
		}
		ty = Primitive{Width: strict.IntWidth(width)}

	case ClassUnicode:
		s, err := decodeSizing(r, path)
		if err != nil {
			return nil, err
		}
		ty = Unicode{Sizing: s}

	case ClassEnum:
		n, err := r.ReadCount(variantSizing, path)
		if err != nil {
			return nil, err
		}
		variants := make([]EnumVariant, 0, n)
		for i := uint64(0); i < n; i++ {
			vp := path.Index(int(i))
			name, err := r.ReadAscii(identFirst, identRest, identSizing, vp)
			if err != nil {
				return nil, err
			}
			tag, err := r.ReadUint(strict.W8, vp)
			if err != nil {
				return nil, err
			}
			variants = append(variants, EnumVariant{Name: name, Tag: uint8(tag)})
		}
		ty = Enum{Variants: variants}

	case ClassUnion:
		n, err := r.ReadCount(variantSizing, path)
		if err != nil {
			return nil, err
		}
		variants := make([]UnionVariant, 0, n)
		for i := uint64(0); i < n; i++ {
			vp := path.Index(int(i))
			name, err := r.ReadAscii(identFirst, identRest, identSizing, vp)
			if err != nil {
				return nil, err
			}
			tag, err := r.ReadUint(strict.W8, vp)
			if err != nil {
				return nil, err
			}
			present, err := r.ReadBool(vp)
			if err != nil {
				return nil, err
			}
			v := UnionVariant{Name: name, Tag: uint8(tag), Void: !present}
			if present {
				ref, err := readSemId(r, vp)
				if err != nil {
					return nil, err
				}
				v.Ref = ref
			}
			variants = append(variants, v)
		}
		ty = Union{Variants: variants}

	case ClassTuple:
		n, err := r.ReadCount(memberSizing, path)
		if err != nil {
			return nil, err
		}
		fields := make([]SemId, 0, n)
		for i := uint64(0); i < n; i++ {
			ref, err := readSemId(r, path.Index(int(i)))
			if err != nil {
				return nil, err
			}
			fields = append(fields, ref)
		}
		ty = Tuple{Fields: fields}

	case ClassStruct:
		n, err := r.ReadCount(memberSizing, path)
		if err != nil {
			return nil, err
		}
		fields := make([]StructField, 0, n)
		for i := uint64(0); i < n; i++ {
			fp := path.Index(int(i))
			name, err := r.ReadAscii(identFirst, identRest, identSizing, fp)
			if err != nil {
				return nil, err
			}
			ref, err := readSemId(r, fp)
			if err != nil {
				return nil, err
			}
			fields = append(fields, StructField{Name: name, Ref: ref})
		}
		ty = Struct{Fields: fields}

	case ClassArray:
		ref, err := readSemId(r, path)
		if err != nil {
			return nil, err
		}
		n, err := r.ReadUint(strict.W16, path)
		if err != nil {
			return nil, err
		}
		ty = Array{Elem: ref, Len: uint16(n)}

	case ClassList:
		ref, err := readSemId(r, path)
		if err != nil {
			return nil, err
		}
		s, err := decodeSizing(r, path)
		if err != nil {
			return nil, err
		}
		ty = List{Elem: ref, Sizing: s}

	case ClassSet:
		ref, err := readSemId(r, path)
		if err != nil {
			return nil, err
		}
		s, err := decodeSizing(r, path)
		if err != nil {
			return nil, err
		}
		ty = Set{Elem: ref, Sizing: s}

	case ClassMap:
		key, err := readSemId(r, path)
		if err != nil {
			return nil, err
		}
		value, err := readSemId(r, path)
		if err != nil {
			return nil, err
		}
		s, err := decodeSizing(r, path)
		if err != nil {
			return nil, err
		}
		ty = Map{Key: key, Value: value, Sizing: s}

	default:
		return nil, strict.UnknownTagError{Path: path, Tag: uint8(class)}
	}
	if err := checkDefinition(ty, path); err != nil {
		return nil, err
	}
	return ty, nil
}

func readSemId(r *strict.Reader, path strict.Path) (SemId, error) {
	b, err := r.ReadRaw(len(SemId{}), path)
	if err != nil {
		return SemId{}, err
	}
	var id SemId
	copy(id[:], b)
	return id, nil
}

// checkDefinition validates self-consistency constraints that the byte
// format alone cannot express: unique variant names and tags, unique
// struct field names.
func checkDefinition(ty Ty, path strict.Path) error {
	switch t := ty.(type) {
	case Enum:
		names := make(map[string]struct{}, len(t.Variants))
		tags := make(map[uint8]struct{}, len(t.Variants))
		for i, v := range t.Variants {
			if _, ok := names[v.Name]; ok {
				return strict.DuplicateKeyError{Path: path.Field("variants"), Index: i}
			}
			if _, ok := tags[v.Tag]; ok {
				return strict.DuplicateKeyError{Path: path.Field("variants"), Index: i}
			}
			names[v.Name] = struct{}{}
			tags[v.Tag] = struct{}{}
		}
	case Union:
		names := make(map[string]struct{}, len(t.Variants))
		tags := make(map[uint8]struct{}, len(t.Variants))
		for i, v := range t.Variants {
			if _, ok := names[v.Name]; ok {
				return strict.DuplicateKeyError{Path: path.Field("variants"), Index: i}
			}
			if _, ok := tags[v.Tag]; ok {
				return strict.DuplicateKeyError{Path: path.Field("variants"), Index: i}
			}
			names[v.Name] = struct{}{}
			tags[v.Tag] = struct{}{}
		}
	case Struct:
		names := make(map[string]struct{}, len(t.Fields))
		for i, f := range t.Fields {
			if _, ok := names[f.Name]; ok {
				return strict.DuplicateKeyError{Path: path.Field("fields"), Index: i}
			}
			names[f.Name] = struct{}{}
		}
	}
	return nil
}
