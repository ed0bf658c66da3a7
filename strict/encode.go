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
	"sort"
)

// Encode produces the canonical encoding of a dynamic value against its
// descriptor. Encoding is a pure function: two semantically equal values
// always yield identical bytes.
//
// Dynamic value forms by kind: uint64 (KindUint), string (KindAscii,
// KindUnicode), []byte (KindBytes and byte arrays), uint8 (KindEnum),
// Alt (KindUnion), []any (KindTuple, KindStruct, KindArray, KindList,
// KindSet), []MapEntry (KindMap). Optional descriptors accept nil for an
// absent value.
func Encode(v any, d *Descriptor) ([]byte, error) {
	w := NewWriter()
	if err := EncodeTo(w, v, d, nil); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeTo appends the canonical encoding of a dynamic value to a Writer.
func EncodeTo(w *Writer, v any, d *Descriptor, path Path) error {
	if d == nil {
		return MalformedEncodingError{Path: path, Reason: "nil descriptor"}
	}
	if d.Optional {
		if v == nil {
			w.WriteBool(false)
			return nil
		}
		w.WriteBool(true)
	}
	return encodeValue(w, v, d, path)
}

func encodeValue(w *Writer, v any, d *Descriptor, path Path) error {
	switch d.Kind {
	case KindUint:
		u, ok := v.(uint64)
		if !ok {
			return typeMismatch(path, "uint64", v)
		}
		return w.WriteUint(u, d.Width, path)

	case KindAscii:
		s, ok := v.(string)
		if !ok {
			return typeMismatch(path, "string", v)
		}
		return w.WriteAscii(s, d.First, d.Rest, d.Sizing, path)

	case KindUnicode:
		s, ok := v.(string)
		if !ok {
			return typeMismatch(path, "string", v)
		}
		return w.WriteUnicode(s, d.Sizing, path)

	case KindBytes:
		b, ok := v.([]byte)
		if !ok {
			return typeMismatch(path, "[]byte", v)
		}
		return w.WriteByteString(b, d.Sizing, path)

	case KindEnum:
		tag, ok := v.(uint8)
		if !ok {
			return typeMismatch(path, "uint8", v)
		}
		if _, ok := d.variantByTag(tag); !ok {
			return UnknownTagError{Path: path, Tag: tag}
		}
		return w.WriteUint(uint64(tag), W8, path)

	case KindUnion:
		alt, ok := v.(Alt)
		if !ok {
			return typeMismatch(path, "strict.Alt", v)
		}
		variant, ok := d.variantByTag(alt.Tag)
		if !ok {
			return UnknownTagError{Path: path, Tag: alt.Tag}
		}
		if err := w.WriteUint(uint64(alt.Tag), W8, path); err != nil {
			return err
		}
		if variant.Ty == nil {
			return nil
		}
		return EncodeTo(w, alt.Value, variant.Ty, path.Field(variant.Name))

	case KindTuple, KindStruct:
		if d.Wrapped && len(d.Fields) == 1 {
			return EncodeTo(w, v, d.Fields[0].Ty, fieldPath(path, d.Fields[0], 0))
		}
		vals, ok := v.([]any)
		if !ok {
			return typeMismatch(path, "[]any", v)
		}
		if len(vals) != len(d.Fields) {
			return MalformedEncodingError{
				Path: path,
				Reason: fmt.Sprintf(
					"field count mismatch: %d values for %d fields",
					len(vals),
					len(d.Fields),
				),
			}
		}
		for i, f := range d.Fields {
			if err := EncodeTo(w, vals[i], f.Ty, fieldPath(path, f, i)); err != nil {
				return err
			}
		}
		return nil

	case KindArray:
		if b, ok := v.([]byte); ok && isByteElem(d.Elem) {
			if len(b) != int(d.ArrayLen) {
				return MalformedEncodingError{
					Path: path,
					Reason: fmt.Sprintf(
						"array length mismatch: %d bytes for array of %d",
						len(b),
						d.ArrayLen,
					),
				}
			}
			w.WriteRaw(b)
			return nil
		}
		vals, ok := v.([]any)
		if !ok {
			return typeMismatch(path, "[]any", v)
		}
		if len(vals) != int(d.ArrayLen) {
			return MalformedEncodingError{
				Path: path,
				Reason: fmt.Sprintf(
					"array length mismatch: %d elements for array of %d",
					len(vals),
					d.ArrayLen,
				),
			}
		}
		for i, ev := range vals {
			if err := EncodeTo(w, ev, d.Elem, path.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case KindList:
		vals, ok := v.([]any)
		if !ok {
			return typeMismatch(path, "[]any", v)
		}
		if err := w.WriteCount(uint64(len(vals)), d.Sizing, path); err != nil {
			return err
		}
		for i, ev := range vals {
			if err := EncodeTo(w, ev, d.Elem, path.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case KindSet:
		vals, ok := v.([]any)
		if !ok {
			return typeMismatch(path, "[]any", v)
		}
		if err := w.WriteCount(uint64(len(vals)), d.Sizing, path); err != nil {
			return err
		}
		encoded := make([][]byte, len(vals))
		for i, ev := range vals {
			eb, err := Encode(ev, d.Elem)
			if err != nil {
				return wrapChildPath(err, path.Index(i))
			}
			encoded[i] = eb
		}
		sort.Slice(encoded, func(i, j int) bool {
			return bytes.Compare(encoded[i], encoded[j]) < 0
		})
		for i, eb := range encoded {
			if i > 0 && bytes.Equal(encoded[i-1], eb) {
				return DuplicateKeyError{Path: path, Index: i}
			}
			w.WriteRaw(eb)
		}
		return nil

	case KindMap:
		entries, ok := v.([]MapEntry)
		if !ok {
			return typeMismatch(path, "[]strict.MapEntry", v)
		}
		if err := w.WriteCount(uint64(len(entries)), d.Sizing, path); err != nil {
			return err
		}
		type pair struct {
			key []byte
			val []byte
		}
		pairs := make([]pair, len(entries))
		for i, e := range entries {
			kb, err := Encode(e.Key, d.Key)
			if err != nil {
				return wrapChildPath(err, path.Index(i))
			}
			vb, err := Encode(e.Value, d.Value)
			if err != nil {
				return wrapChildPath(err, path.Index(i))
			}
			pairs[i] = pair{key: kb, val: vb}
		}
		sort.Slice(pairs, func(i, j int) bool {
			return bytes.Compare(pairs[i].key, pairs[j].key) < 0
		})
		for i, p := range pairs {
			if i > 0 && bytes.Equal(pairs[i-1].key, p.key) {
				return DuplicateKeyError{Path: path, Index: i}
			}
			w.WriteRaw(p.key)
			w.WriteRaw(p.val)
		}
		return nil

	default:
		return MalformedEncodingError{
			Path:   path,
			Reason: fmt.Sprintf("unknown descriptor kind %d", d.Kind),
		}
	}
}

func isByteElem(d *Descriptor) bool {
	return d != nil && d.Kind == KindUint && d.Width == W8 && !d.Optional
}

func typeMismatch(path Path, want string, got any) error {
	return MalformedEncodingError{
		Path:   path,
		Reason: fmt.Sprintf("expected %s value, got %T", want, got),
	}
}

// wrapChildPath re-roots errors produced while encoding set elements and map
// entries through a standalone Encode call, which starts from an empty path.
func wrapChildPath(err error, path Path) error {
	switch e := err.(type) {
	case MalformedEncodingError:
		e.Path = joinPath(path, e.Path)
		return e
	case LengthOutOfRangeError:
		e.Path = joinPath(path, e.Path)
		return e
	case CardinalityViolationError:
		e.Path = joinPath(path, e.Path)
		return e
	case InvalidCharsetError:
		e.Path = joinPath(path, e.Path)
		return e
	case OrderingViolationError:
		e.Path = joinPath(path, e.Path)
		return e
	case DuplicateKeyError:
		e.Path = joinPath(path, e.Path)
		return e
	case UnknownTagError:
		e.Path = joinPath(path, e.Path)
		return e
	default:
		return err
	}
}

func joinPath(parent, child Path) Path {
	np := make(Path, 0, len(parent)+len(child))
	np = append(np, parent...)
	return append(np, child...)
}
