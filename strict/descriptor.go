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

// Kind enumerates the structural shapes the dynamic codec understands.
type Kind uint8

const (
	KindUint Kind = iota + 1
	KindAscii
	KindUnicode
	KindBytes
	KindEnum
	KindUnion
	KindTuple
	KindStruct
	KindArray
	KindList
	KindSet
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindAscii:
		return "ascii"
	case KindUnicode:
		return "unicode"
	case KindBytes:
		return "bytes"
	case KindEnum:
		return "enum"
	case KindUnion:
		return "union"
	case KindTuple:
		return "tuple"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Field is a named member of a tuple or struct descriptor. Names are
// metadata only: the byte stream carries field encodings in declared order
// and never the names themselves.
type Field struct {
	Name string
	Ty   *Descriptor
}

// Variant is a tagged alternative of a union or enum descriptor. Tags are
// explicit and need not be contiguous. Ty is nil for enum variants.
type Variant struct {
	Name string
	Tag  uint8
	Ty   *Descriptor
}

// Descriptor is a fully structural description of a type's canonical
// encoding, with no external references. Which fields are meaningful
// depends on Kind. Optional and Wrapped are encoding strategy flags:
// Optional prepends a 0/1 presence byte, Wrapped makes a single-field
// tuple or struct transparent so the caller passes the inner value
// directly instead of a one-element slice.
type Descriptor struct {
	Kind     Kind
	Width    IntWidth // KindUint
	First    Charset  // KindAscii
	Rest     Charset  // KindAscii
	Sizing   Sizing   // KindAscii, KindUnicode, KindBytes, KindList, KindSet, KindMap
	Elem     *Descriptor
	Key      *Descriptor
	Value    *Descriptor
	Fields   []Field
	Variants []Variant
	ArrayLen uint16
	Optional bool
	Wrapped  bool
}

// UintDesc describes a fixed-width unsigned integer.
func UintDesc(width IntWidth) *Descriptor {
	return &Descriptor{Kind: KindUint, Width: width}
}

// AsciiDesc describes a charset-restricted string.
func AsciiDesc(first, rest Charset, s Sizing) *Descriptor {
	return &Descriptor{Kind: KindAscii, First: first, Rest: rest, Sizing: s}
}

// UnicodeDesc describes a UTF-8 string bounded in bytes.
func UnicodeDesc(s Sizing) *Descriptor {
	return &Descriptor{Kind: KindUnicode, Sizing: s}
}

// BytesDesc describes a length-prefixed byte string.
func BytesDesc(s Sizing) *Descriptor {
	return &Descriptor{Kind: KindBytes, Sizing: s}
}

// EnumDesc describes a tagged enumeration with no payloads.
func EnumDesc(variants ...Variant) *Descriptor {
	return &Descriptor{Kind: KindEnum, Variants: variants}
}

// UnionDesc describes a tagged union of payload-bearing variants.
func UnionDesc(variants ...Variant) *Descriptor {
	return &Descriptor{Kind: KindUnion, Variants: variants}
}

// TupleDesc describes an ordered sequence of unnamed fields.
func TupleDesc(fields ...*Descriptor) *Descriptor {
	named := make([]Field, len(fields))
	for i, f := range fields {
		named[i] = Field{Ty: f}
	}
	return &Descriptor{Kind: KindTuple, Fields: named}
}

// StructDesc describes an ordered sequence of named fields.
func StructDesc(fields ...Field) *Descriptor {
	return &Descriptor{Kind: KindStruct, Fields: fields}
}

// ArrayDesc describes a fixed-length array.
func ArrayDesc(elem *Descriptor, n uint16) *Descriptor {
	return &Descriptor{Kind: KindArray, Elem: elem, ArrayLen: n}
}

// ListDesc describes an ordered, bounded list.
func ListDesc(elem *Descriptor, s Sizing) *Descriptor {
	return &Descriptor{Kind: KindList, Elem: elem, Sizing: s}
}

// SetDesc describes a bounded set encoded ascending by element bytes.
func SetDesc(elem *Descriptor, s Sizing) *Descriptor {
	return &Descriptor{Kind: KindSet, Elem: elem, Sizing: s}
}

// MapDesc describes a bounded map encoded ascending by key bytes.
func MapDesc(key, value *Descriptor, s Sizing) *Descriptor {
	return &Descriptor{Kind: KindMap, Key: key, Value: value, Sizing: s}
}

// AsOptional returns a copy of the descriptor with the presence-byte
// strategy enabled.
func (d *Descriptor) AsOptional() *Descriptor {
	nd := *d
	nd.Optional = true
	return &nd
}

// AsWrapped returns a copy of the descriptor with the transparent
// single-field strategy enabled.
func (d *Descriptor) AsWrapped() *Descriptor {
	nd := *d
	nd.Wrapped = true
	return &nd
}

func (d *Descriptor) variantByTag(tag uint8) (Variant, bool) {
	for _, v := range d.Variants {
		if v.Tag == tag {
			return v, true
		}
	}
	return Variant{}, false
}

// Alt is the dynamic value of a union: a discriminant tag plus the variant
// payload (nil for enum-like variants).
type Alt struct {
	Tag   uint8
	Value any
}

// MapEntry is one key/value pair of a dynamic map value. Entry order in the
// slice is irrelevant: the encoder sorts entries canonically.
type MapEntry struct {
	Key   any
	Value any
}
