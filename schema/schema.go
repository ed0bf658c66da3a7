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

// Package schema defines contract schemata: named declarations of the
// meta, global-state and assignment field types a contract may use, plus
// per-operation occurrence bounds, and the conformance validator checking
// operations against them.
package schema

import (
	"sort"

	"github.com/cairnlabs-io/cairn/commit"
	"github.com/cairnlabs-io/cairn/strict"
	"github.com/cairnlabs-io/cairn/typesys"
)

// SchemaIdTag is the domain tag for schema identifiers.
const SchemaIdTag = "urn:cairnlabs:consign:schema#2026-05-19"

// Field type discriminators. Values are schema-author-assigned and stable
// for the life of a contract.
type (
	MetaType        uint16
	GlobalStateType uint16
	AssignmentType  uint16
	TransitionType  uint16
)

// SchemaId is the 32-byte identifier of a schema, derived from its
// canonical encoding.
type SchemaId [commit.Size]byte

func (id SchemaId) String() string {
	return commit.Hash(id).String()
}

func (id SchemaId) Bytes() []byte {
	return id[:]
}

func (id SchemaId) MarshalJSON() ([]byte, error) {
	return commit.Hash(id).MarshalJSON()
}

func (id SchemaId) Bech32() string {
	return commit.Hash(id).Bech32("schema")
}

// LibId is the 32-byte identifier of an opaque validation-script library.
type LibId [commit.Size]byte

func (id LibId) String() string {
	return commit.Hash(id).String()
}

func (id LibId) Bytes() []byte {
	return id[:]
}

func (id LibId) MarshalJSON() ([]byte, error) {
	return commit.Hash(id).MarshalJSON()
}

// LibAnchor points an operation schema at an entry point inside a script
// library. Script execution is out of scope here; the graph checker only
// verifies the referenced library is supplied.
type LibAnchor struct {
	Lib   LibId
	Entry uint16
}

// FieldDecl binds a schema-author-visible name to the semantic type of a
// field.
type FieldDecl struct {
	Name string
	Ty   typesys.SemId
}

// OpSchema declares the occurrence bounds an operation must satisfy for
// each field type it may carry, plus an optional validation-script anchor.
type OpSchema struct {
	Metadata    map[MetaType]Occurrences
	Globals     map[GlobalStateType]Occurrences
	Assignments map[AssignmentType]Occurrences
	Validator   *LibAnchor
}

// TransitionSchema extends OpSchema with a bound on input count.
type TransitionSchema struct {
	OpSchema
	Inputs Occurrences
}

// Schema is the complete, immutable declaration of a contract interface:
// field type declarations, the genesis occurrence schema and one occurrence
// schema per transition type.
type Schema struct {
	Name            string
	MetaTypes       map[MetaType]FieldDecl
	GlobalTypes     map[GlobalStateType]FieldDecl
	AssignmentTypes map[AssignmentType]FieldDecl
	Genesis         OpSchema
	Transitions     map[TransitionType]TransitionSchema
}

var (
	schemaNameSizing = strict.NewSizing(1, 100)
	declSizing       = strict.SizingU8
	transitionSizing = strict.SizingU8
)

// Encode writes the canonical encoding of the schema. All maps are written
// ascending by numeric key.
func (s *Schema) Encode(w *strict.Writer) error {
	path := strict.Path{"schema"}
	if err := w.WriteAscii(
		s.Name,
		strict.CharsetAlpha,
		strict.CharsetAlphaNumLodash,
		schemaNameSizing,
		path.Field("name"),
	); err != nil {
		return err
	}
	if err := encodeDecls(w, s.MetaTypes, path.Field("metaTypes")); err != nil {
		return err
	}
	if err := encodeDecls(w, s.GlobalTypes, path.Field("globalTypes")); err != nil {
		return err
	}
	if err := encodeDecls(w, s.AssignmentTypes, path.Field("assignmentTypes")); err != nil {
		return err
	}
	if err := s.Genesis.encode(w, path.Field("genesis")); err != nil {
		return err
	}
	tp := path.Field("transitions")
	keys := sortedKeys(s.Transitions)
	if err := w.WriteCount(uint64(len(keys)), transitionSizing, tp); err != nil {
		return err
	}
	for _, tt := range keys {
		if err := w.WriteUint(uint64(tt), strict.W16, tp); err != nil {
			return err
		}
		ts := s.Transitions[tt]
		if err := ts.OpSchema.encode(w, tp); err != nil {
			return err
		}
		if err := ts.Inputs.encode(w, tp); err != nil {
			return err
		}
	}
	return nil
}

// SchemaId derives the schema identifier from the canonical encoding.
func (s *Schema) SchemaId() (SchemaId, error) {
	w := strict.NewWriter()
	if err := s.Encode(w); err != nil {
		return SchemaId{}, err
	}
	return SchemaId(commit.Compute(SchemaIdTag, w.Bytes())), nil
}

// DecodeSchema parses a canonical schema encoding.
func DecodeSchema(r *strict.Reader) (*Schema, error) {
	path := strict.Path{"schema"}
	name, err := r.ReadAscii(
		strict.CharsetAlpha,
		strict.CharsetAlphaNumLodash,
		schemaNameSizing,
		path.Field("name"),
	)
	if err != nil {
		return nil, err
	}
	s := &Schema{Name: name}
	if s.MetaTypes, err = decodeDecls[MetaType](r, path.Field("metaTypes")); err != nil {
		return nil, err
	}
	if s.GlobalTypes, err = decodeDecls[GlobalStateType](r, path.Field("globalTypes")); err != nil {
		return nil, err
	}
	if s.AssignmentTypes, err = decodeDecls[AssignmentType](r, path.Field("assignmentTypes")); err != nil {
		return nil, err
	}
	genesis, err := decodeOpSchema(r, path.Field("genesis"))
	if err != nil {
		return nil, err
	}
	s.Genesis = genesis
	tp := path.Field("transitions")
	n, err := r.ReadCount(transitionSizing, tp)
	if err != nil {
		return nil, err
	}
	s.Transitions = make(map[TransitionType]TransitionSchema, n)
	var prev *TransitionType
	for i := uint64(0); i < n; i++ {
		key, err := r.ReadUint(strict.W16, tp)
		if err != nil {
			return nil, err
		}
		tt := TransitionType(key)
		if prev != nil {
			switch {
			case tt == *prev:
				return nil, strict.DuplicateKeyError{Path: tp, Index: int(i)}
			case tt < *prev:
				return nil, strict.OrderingViolationError{Path: tp, Index: int(i)}
			}
		}
		op, err := decodeOpSchema(r, tp)
		if err != nil {
			return nil, err
		}
		inputs, err := decodeOccurrences(r, tp)
		if err != nil {
			return nil, err
		}
		s.Transitions[tt] = TransitionSchema{OpSchema: op, Inputs: inputs}
		ttCopy := tt
		prev = &ttCopy
	}
	return s, nil
}

func (os *OpSchema) encode(w *strict.Writer, path strict.Path) error {
	if err := encodeOccMap(w, os.Metadata, path.Field("metadata")); err != nil {
		return err
	}
	if err := encodeOccMap(w, os.Globals, path.Field("globals")); err != nil {
		return err
	}
	if err := encodeOccMap(w, os.Assignments, path.Field("assignments")); err != nil {
		return err
	}
	vp := path.Field("validator")
	w.WriteBool(os.Validator != nil)
	if os.Validator != nil {
		w.WriteRaw(os.Validator.Lib[:])
		if err := w.WriteUint(uint64(os.Validator.Entry), strict.W16, vp); err != nil {
			return err
		}
	}
	return nil
}

func decodeOpSchema(r *strict.Reader, path strict.Path) (OpSchema, error) {
	var os OpSchema
	var err error
	if os.Metadata, err = decodeOccMap[MetaType](r, path.Field("metadata")); err != nil {
		return OpSchema{}, err
	}
	if os.Globals, err = decodeOccMap[GlobalStateType](r, path.Field("globals")); err != nil {
		return OpSchema{}, err
	}
	if os.Assignments, err = decodeOccMap[AssignmentType](r, path.Field("assignments")); err != nil {
		return OpSchema{}, err
	}
	vp := path.Field("validator")
	present, err := r.ReadBool(vp)
	if err != nil {
		return OpSchema{}, err
	}
	if present {
		raw, err := r.ReadRaw(commit.Size, vp)
		if err != nil {
			return OpSchema{}, err
		}
		entry, err := r.ReadUint(strict.W16, vp)
		if err != nil {
			return OpSchema{}, err
		}
		anchor := LibAnchor{Entry: uint16(entry)}
		copy(anchor.Lib[:], raw)
		os.Validator = &anchor
	}
	return os, nil
}

func encodeDecls[K ~uint16](w *strict.Writer, decls map[K]FieldDecl, path strict.Path) error {
	keys := sortedKeys(decls)
	if err := w.WriteCount(uint64(len(keys)), declSizing, path); err != nil {
		return err
	}
	for _, k := range keys {
		if err := w.WriteUint(uint64(k), strict.W16, path); err != nil {
			return err
		}
		decl := decls[k]
		if err := w.WriteAscii(
			decl.Name,
			strict.CharsetAlpha,
			strict.CharsetAlphaNumLodash,
			schemaNameSizing,
			path,
		); err != nil {
			return err
		}
		w.WriteRaw(decl.Ty[:])
	}
	return nil
}

func decodeDecls[K ~uint16](r *strict.Reader, path strict.Path) (map[K]FieldDecl, error) {
	n, err := r.ReadCount(declSizing, path)
	if err != nil {
		return nil, err
	}
	decls := make(map[K]FieldDecl, n)
	var prev *K
	for i := uint64(0); i < n; i++ {
		key, err := r.ReadUint(strict.W16, path)
		if err != nil {
			return nil, err
		}
		k := K(key)
		if prev != nil {
			switch {
			case k == *prev:
				return nil, strict.DuplicateKeyError{Path: path, Index: int(i)}
			case k < *prev:
				return nil, strict.OrderingViolationError{Path: path, Index: int(i)}
			}
		}
		name, err := r.ReadAscii(
			strict.CharsetAlpha,
			strict.CharsetAlphaNumLodash,
			schemaNameSizing,
			path,
		)
		if err != nil {
			return nil, err
		}
		raw, err := r.ReadRaw(commit.Size, path)
		if err != nil {
			return nil, err
		}
		var ty typesys.SemId
		copy(ty[:], raw)
		decls[k] = FieldDecl{Name: name, Ty: ty}
		kCopy := k
		prev = &kCopy
	}
	return decls, nil
}

func encodeOccMap[K ~uint16](w *strict.Writer, m map[K]Occurrences, path strict.Path) error {
	keys := sortedKeys(m)
	if err := w.WriteCount(uint64(len(keys)), declSizing, path); err != nil {
		return err
	}
	for _, k := range keys {
		if err := w.WriteUint(uint64(k), strict.W16, path); err != nil {
			return err
		}
		if err := m[k].encode(w, path); err != nil {
			return err
		}
	}
	return nil
}

func decodeOccMap[K ~uint16](r *strict.Reader, path strict.Path) (map[K]Occurrences, error) {
	n, err := r.ReadCount(declSizing, path)
	if err != nil {
		return nil, err
	}
	m := make(map[K]Occurrences, n)
	var prev *K
	for i := uint64(0); i < n; i++ {
		key, err := r.ReadUint(strict.W16, path)
		if err != nil {
			return nil, err
		}
		k := K(key)
		if prev != nil {
			switch {
			case k == *prev:
				return nil, strict.DuplicateKeyError{Path: path, Index: int(i)}
			case k < *prev:
				return nil, strict.OrderingViolationError{Path: path, Index: int(i)}
			}
		}
		occ, err := decodeOccurrences(r, path)
		if err != nil {
			return nil, err
		}
		m[k] = occ
		kCopy := k
		prev = &kCopy
	}
	return m, nil
}

func sortedKeys[K ~uint16, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
