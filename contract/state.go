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

package contract

import (
	"github.com/cairnlabs-io/cairn/strict"
)

// StateKind discriminates the three forms of owned state.
type StateKind uint8

const (
	StateKindVoid       StateKind = 0x00
	StateKindFungible   StateKind = 0x01
	StateKindStructured StateKind = 0x02
)

func (k StateKind) String() string {
	switch k {
	case StateKindVoid:
		return "void"
	case StateKindFungible:
		return "fungible"
	case StateKindStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// structuredSizing bounds the opaque payload of structured state.
var structuredSizing = strict.SizingU16

// State is one value of owned state carried by a revealed assignment.
type State interface {
	Kind() StateKind
	encodeState(w *strict.Writer, path strict.Path) error
}

// VoidState is declarative state carrying no data: ownership itself is the
// information.
type VoidState struct{}

func (VoidState) Kind() StateKind { return StateKindVoid }

func (VoidState) encodeState(*strict.Writer, strict.Path) error { return nil }

// FungibleState is a 64-bit quantity.
type FungibleState struct {
	Value uint64
}

func (FungibleState) Kind() StateKind { return StateKindFungible }

func (s FungibleState) encodeState(w *strict.Writer, path strict.Path) error {
	return w.WriteUint(s.Value, strict.W64, path)
}

// StructuredState is an opaque, bounded data blob whose shape is declared
// in the schema's type system.
type StructuredState struct {
	Data []byte
}

func (StructuredState) Kind() StateKind { return StateKindStructured }

func (s StructuredState) encodeState(w *strict.Writer, path strict.Path) error {
	return w.WriteByteString(s.Data, structuredSizing, path)
}

// encodeStateTagged writes the discriminant byte followed by the payload.
func encodeStateTagged(w *strict.Writer, s State, path strict.Path) error {
	if err := w.WriteUint(uint64(s.Kind()), strict.W8, path); err != nil {
		return err
	}
	return s.encodeState(w, path)
}

func decodeStateTagged(r *strict.Reader, path strict.Path) (State, error) {
	tag, err := r.ReadUint(strict.W8, path)
	if err != nil {
		return nil, err
	}
	switch StateKind(tag) {
	case StateKindVoid:
		return VoidState{}, nil
	case StateKindFungible:
		v, err := r.ReadUint(strict.W64, path)
		if err != nil {
			return nil, err
		}
		return FungibleState{Value: v}, nil
	case StateKindStructured:
		data, err := r.ReadByteString(structuredSizing, path)
		if err != nil {
			return nil, err
		}
		return StructuredState{Data: data}, nil
	default:
		return nil, strict.UnknownTagError{Path: path, Tag: uint8(tag)}
	}
}
