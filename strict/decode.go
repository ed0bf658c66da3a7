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
)

// Decode parses a canonical encoding into its dynamic value form and
// rejects everything that Encode would not have produced: trailing bytes,
// out-of-order set elements and map keys, duplicate keys, unknown tags and
// out-of-range lengths. The accepted language satisfies
// Encode(Decode(b)) == b.
func Decode(data []byte, d *Descriptor) (any, error) {
	r := NewReader(data)
	v, err := DecodeFrom(r, d, nil)
	if err != nil {
		return nil, err
	}
	if err := r.Finish(nil); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeFrom parses one value from a Reader, leaving any following bytes
// unconsumed.
func DecodeFrom(r *Reader, d *Descriptor, path Path) (any, error) {
	if d == nil {
		return nil, MalformedEncodingError{Path: path, Reason: "nil descriptor"}
	}
	if d.Optional {
		present, err := r.ReadBool(path)
		if err != nil {
			return nil, err
		}
		if !present {
			return nil, nil
		}
	}
	return decodeValue(r, d, path)
}

func decodeValue(r *Reader, d *Descriptor, path Path) (any, error) {
	switch d.Kind {
	case KindUint:
		return r.ReadUint(d.Width, path)

	case KindAscii:
		return r.ReadAscii(d.First, d.Rest, d.Sizing, path)

	case KindUnicode:
		return r.ReadUnicode(d.Sizing, path)

	case KindBytes:
		return r.ReadByteString(d.Sizing, path)

	case KindEnum:
		tag, err := r.ReadUint(W8, path)
		if err != nil {
			return nil, err
		}
		if _, ok := d.variantByTag(uint8(tag)); !ok {
			return nil, UnknownTagError{Path: path, Tag: uint8(tag)}
		}
		return uint8(tag), nil

	case KindUnion:
		tag, err := r.ReadUint(W8, path)
		if err != nil {
			return nil, err
		}
		variant, ok := d.variantByTag(uint8(tag))
		if !ok {
			return nil, UnknownTagError{Path: path, Tag: uint8(tag)}
		}
		alt := Alt{Tag: uint8(tag)}
		if variant.Ty != nil {
			inner, err := DecodeFrom(r, variant.Ty, path.Field(variant.Name))
			if err != nil {
				return nil, err
			}
			alt.Value = inner
		}
		return alt, nil

	case KindTuple, KindStruct:
		if d.Wrapped && len(d.Fields) == 1 {
			return DecodeFrom(r, d.Fields[0].Ty, fieldPath(path, d.Fields[0], 0))
		}
		vals := make([]any, len(d.Fields))
		for i, f := range d.Fields {
			v, err := DecodeFrom(r, f.Ty, fieldPath(path, f, i))
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return vals, nil

	case KindArray:
		if isByteElem(d.Elem) {
			return r.ReadRaw(int(d.ArrayLen), path)
		}
		vals := make([]any, d.ArrayLen)
		for i := range vals {
			v, err := DecodeFrom(r, d.Elem, path.Index(i))
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return vals, nil

	case KindList:
		n, err := r.ReadCount(d.Sizing, path)
		if err != nil {
			return nil, err
		}
		vals := make([]any, 0, n)
		for i := uint64(0); i < n; i++ {
			v, err := DecodeFrom(r, d.Elem, path.Index(int(i)))
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		return vals, nil

	case KindSet:
		n, err := r.ReadCount(d.Sizing, path)
		if err != nil {
			return nil, err
		}
		vals := make([]any, 0, n)
		var prev []byte
		for i := uint64(0); i < n; i++ {
			start := r.Pos()
			v, err := DecodeFrom(r, d.Elem, path.Index(int(i)))
			if err != nil {
				return nil, err
			}
			raw := r.data[start:r.Pos()]
			if prev != nil {
				switch cmp := bytes.Compare(raw, prev); {
				case cmp == 0:
					return nil, DuplicateKeyError{Path: path, Index: int(i)}
				case cmp < 0:
					return nil, OrderingViolationError{Path: path, Index: int(i)}
				}
			}
			prev = raw
			vals = append(vals, v)
		}
		return vals, nil

	case KindMap:
		n, err := r.ReadCount(d.Sizing, path)
		if err != nil {
			return nil, err
		}
		entries := make([]MapEntry, 0, n)
		var prev []byte
		for i := uint64(0); i < n; i++ {
			start := r.Pos()
			k, err := DecodeFrom(r, d.Key, path.Index(int(i)))
			if err != nil {
				return nil, err
			}
			rawKey := r.data[start:r.Pos()]
			if prev != nil {
				switch cmp := bytes.Compare(rawKey, prev); {
				case cmp == 0:
					return nil, DuplicateKeyError{Path: path, Index: int(i)}
				case cmp < 0:
					return nil, OrderingViolationError{Path: path, Index: int(i)}
				}
			}
			prev = rawKey
			v, err := DecodeFrom(r, d.Value, path.Index(int(i)))
			if err != nil {
				return nil, err
			}
			entries = append(entries, MapEntry{Key: k, Value: v})
		}
		return entries, nil

	default:
		return nil, MalformedEncodingError{
			Path:   path,
			Reason: fmt.Sprintf("unknown descriptor kind %d", d.Kind),
		}
	}
}

func fieldPath(path Path, f Field, i int) Path {
	if f.Name != "" {
		return path.Field(f.Name)
	}
	return path.Index(i)
}
