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
	"bytes"
	"fmt"
	"sort"

	"github.com/cairnlabs-io/cairn/commit"
	"github.com/cairnlabs-io/cairn/strict"
)

// TypeSysTag is the domain tag for whole-system identifiers.
const TypeSysTag = "urn:cairnlabs:strict-types:type-system#2026-05-19"

// MaxEntries bounds the number of definitions a TypeSystem may hold. It is
// also the encoding bound, so every insertable system stays encodable under
// a 24-bit count prefix.
const MaxEntries = 1<<24 - 1

var entrySizing = strict.NewSizing(0, MaxEntries)

// TypeSysId is the 32-byte identifier of a whole TypeSystem.
type TypeSysId [commit.Size]byte

func (id TypeSysId) String() string {
	return commit.Hash(id).String()
}

func (id TypeSysId) Bytes() []byte {
	return id[:]
}

func (id TypeSysId) MarshalJSON() ([]byte, error) {
	return commit.Hash(id).MarshalJSON()
}

// TypeSystem is an append-only mapping from SemId to type definition,
// closed over references: no entry may depend on an id that is not already
// present. Not safe for concurrent mutation; read access is safe once
// populated.
type TypeSystem struct {
	order []SemId
	defs  map[SemId]Ty
}

// NewTypeSystem returns an empty TypeSystem.
func NewTypeSystem() *TypeSystem {
	return &TypeSystem{defs: make(map[SemId]Ty)}
}

// Insert adds a definition, deriving and returning its SemId. Every
// dependency must already be present: callers insert in topological order.
// Re-inserting an identical definition is a no-op.
func (ts *TypeSystem) Insert(ty Ty) (SemId, error) {
	id, err := SemIdOf(ty)
	if err != nil {
		return SemId{}, err
	}
	if _, ok := ts.defs[id]; ok {
		return id, nil
	}
	for _, ref := range ty.Refs() {
		if _, ok := ts.defs[ref]; !ok {
			return SemId{}, UnresolvedTypeReferenceError{Ref: ref}
		}
	}
	if len(ts.order) >= MaxEntries {
		return SemId{}, strict.CardinalityViolationError{
			Path:   strict.Path{"types"},
			Min:    0,
			Max:    MaxEntries,
			Actual: uint64(len(ts.order)) + 1,
		}
	}
	ts.order = append(ts.order, id)
	ts.defs[id] = ty
	return id, nil
}

// Get returns the definition for an id, if present.
func (ts *TypeSystem) Get(id SemId) (Ty, bool) {
	ty, ok := ts.defs[id]
	return ty, ok
}

// Contains reports whether the id is present.
func (ts *TypeSystem) Contains(id SemId) bool {
	_, ok := ts.defs[id]
	return ok
}

// Len returns the number of definitions.
func (ts *TypeSystem) Len() int {
	return len(ts.order)
}

// Ids returns the SemIds in insertion (topological) order.
func (ts *TypeSystem) Ids() []SemId {
	out := make([]SemId, len(ts.order))
	copy(out, ts.order)
	return out
}

// maxResolveDepth bounds descriptor resolution. Reference cycles cannot be
// constructed through Insert, but decoded foreign systems get the same
// guard.
const maxResolveDepth = 64

// Descriptor resolves a SemId into a fully structural descriptor suitable
// for encoding and decoding values of the type.
func (ts *TypeSystem) Descriptor(id SemId) (*strict.Descriptor, error) {
	return ts.resolve(id, 0)
}

func (ts *TypeSystem) resolve(id SemId, depth int) (*strict.Descriptor, error) {
	if depth > maxResolveDepth {
		return nil, strict.MalformedEncodingError{
			Reason: fmt.Sprintf("type nesting exceeds depth %d", maxResolveDepth),
		}
	}
	ty, ok := ts.defs[id]
	if !ok {
		return nil, UnresolvedTypeReferenceError{Ref: id}
	}
	switch t := ty.(type) {
	case Primitive:
		return strict.UintDesc(t.Width), nil
	case Unicode:
		return strict.UnicodeDesc(t.Sizing), nil
	case Enum:
		variants := make([]strict.Variant, len(t.Variants))
		for i, v := range t.Variants {
			variants[i] = strict.Variant{Name: v.Name, Tag: v.Tag}
		}
		return strict.EnumDesc(variants...), nil
	case Union:
		variants := make([]strict.Variant, len(t.Variants))
		for i, v := range t.Variants {
			variants[i] = strict.Variant{Name: v.Name, Tag: v.Tag}
			if !v.Void {
				inner, err := ts.resolve(v.Ref, depth+1)
				if err != nil {
					return nil, err
				}
				variants[i].Ty = inner
			}
		}
		return strict.UnionDesc(variants...), nil
	case Tuple:
		fields := make([]*strict.Descriptor, len(t.Fields))
		for i, ref := range t.Fields {
			inner, err := ts.resolve(ref, depth+1)
			if err != nil {
				return nil, err
			}
			fields[i] = inner
		}
		return strict.TupleDesc(fields...), nil
	case Struct:
		fields := make([]strict.Field, len(t.Fields))
		for i, f := range t.Fields {
			inner, err := ts.resolve(f.Ref, depth+1)
			if err != nil {
				return nil, err
			}
			fields[i] = strict.Field{Name: f.Name, Ty: inner}
		}
		return strict.StructDesc(fields...), nil
	case Array:
		inner, err := ts.resolve(t.Elem, depth+1)
		if err != nil {
			return nil, err
		}
		return strict.ArrayDesc(inner, t.Len), nil
	case List:
		inner, err := ts.resolve(t.Elem, depth+1)
		if err != nil {
			return nil, err
		}
		return strict.ListDesc(inner, t.Sizing), nil
	case Set:
		inner, err := ts.resolve(t.Elem, depth+1)
		if err != nil {
			return nil, err
		}
		return strict.SetDesc(inner, t.Sizing), nil
	case Map:
		key, err := ts.resolve(t.Key, depth+1)
		if err != nil {
			return nil, err
		}
		value, err := ts.resolve(t.Value, depth+1)
		if err != nil {
			return nil, err
		}
		return strict.MapDesc(key, value, t.Sizing), nil
	default:
		return nil, strict.MalformedEncodingError{
			Reason: fmt.Sprintf("unknown type definition %T", ty),
		}
	}
}

// EncodeValue canonically encodes a dynamic value of the identified type.
func (ts *TypeSystem) EncodeValue(id SemId, v any) ([]byte, error) {
	desc, err := ts.Descriptor(id)
	if err != nil {
		return nil, err
	}
	return strict.Encode(v, desc)
}

// DecodeValue strictly decodes a canonical encoding of the identified type.
func (ts *TypeSystem) DecodeValue(id SemId, data []byte) (any, error) {
	desc, err := ts.Descriptor(id)
	if err != nil {
		return nil, err
	}
	return strict.Decode(data, desc)
}

// Encode writes the canonical whole-system encoding: entries sorted
// ascending by SemId, each as the raw 32-byte id followed by its
// definition.
func (ts *TypeSystem) Encode(w *strict.Writer) error {
	path := strict.Path{"types"}
	sorted := ts.Ids()
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})
	if err := w.WriteCount(uint64(len(sorted)), entrySizing, path); err != nil {
		return err
	}
	for i, id := range sorted {
		w.WriteRaw(id[:])
		if err := encodeDef(w, ts.defs[id], path.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// Id derives the identifier of the whole system from its canonical
// encoding.
func (ts *TypeSystem) Id() (TypeSysId, error) {
	w := strict.NewWriter()
	if err := ts.Encode(w); err != nil {
		return TypeSysId{}, err
	}
	return TypeSysId(commit.Compute(TypeSysTag, w.Bytes())), nil
}

// DecodeTypeSystem parses a canonical whole-system encoding, re-deriving
// and verifying every SemId, checking the ascending entry order and the
// reference closure, and rebuilding a topological insertion order.
func DecodeTypeSystem(r *strict.Reader) (*TypeSystem, error) {
	path := strict.Path{"types"}
	n, err := r.ReadCount(entrySizing, path)
	if err != nil {
		return nil, err
	}
	defs := make(map[SemId]Ty, n)
	ids := make([]SemId, 0, n)
	var prev *SemId
	for i := uint64(0); i < n; i++ {
		ep := path.Index(int(i))
		id, err := readSemId(r, ep)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			switch cmp := bytes.Compare(id[:], prev[:]); {
			case cmp == 0:
				return nil, strict.DuplicateKeyError{Path: path, Index: int(i)}
			case cmp < 0:
				return nil, strict.OrderingViolationError{Path: path, Index: int(i)}
			}
		}
		ty, err := decodeDef(r, ep)
		if err != nil {
			return nil, err
		}
		derived, err := SemIdOf(ty)
		if err != nil {
			return nil, err
		}
		if derived != id {
			return nil, strict.MalformedEncodingError{
				Path: ep,
				Reason: fmt.Sprintf(
					"semantic id mismatch: carried %s, derived %s",
					id,
					derived,
				),
			}
		}
		idCopy := id
		prev = &idCopy
		defs[id] = ty
		ids = append(ids, id)
	}
	// Closure check plus topological ordering (Kahn over the dependency
	// DAG) so the decoded system behaves identically to one built through
	// Insert.
	order, err := topoOrder(ids, defs)
	if err != nil {
		return nil, err
	}
	return &TypeSystem{order: order, defs: defs}, nil
}

func topoOrder(ids []SemId, defs map[SemId]Ty) ([]SemId, error) {
	indegree := make(map[SemId]int, len(ids))
	dependents := make(map[SemId][]SemId, len(ids))
	for _, id := range ids {
		for _, ref := range defs[id].Refs() {
			if _, ok := defs[ref]; !ok {
				return nil, UnresolvedTypeReferenceError{Ref: ref}
			}
			indegree[id]++
			dependents[ref] = append(dependents[ref], id)
		}
	}
	queue := make([]SemId, 0, len(ids))
	for _, id := range ids {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	order := make([]SemId, 0, len(ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if len(order) != len(ids) {
		// A cycle is unreachable for honestly derived ids but carried
		// input is never trusted.
		return nil, strict.MalformedEncodingError{
			Path:   strict.Path{"types"},
			Reason: "cyclic type references",
		}
	}
	return order, nil
}
