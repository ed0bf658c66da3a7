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
	"fmt"

	"github.com/cairnlabs-io/cairn/commit"
	"github.com/cairnlabs-io/cairn/schema"
	"github.com/cairnlabs-io/cairn/strict"
)

// Assignment discriminants.
const (
	assignTagConfidential uint8 = 0x00
	assignTagRevealed     uint8 = 0x01
)

// assignListSizing bounds the assignment list of one slot. Lists are
// non-empty: an empty slot is expressed by omitting the slot.
var assignListSizing = strict.SizingNonEmpty(0xffff)

// Assignment is one allocation of state to a seal, in either revealed or
// confidential form. Both forms yield a seal commitment; only the revealed
// form exposes the seal and its state, which keeps validator logic uniform
// across variants.
type Assignment interface {
	// SealCommitment returns the secret-seal commitment, concealing the
	// seal first if the assignment is revealed.
	SealCommitment() SecretSeal

	// Revealed returns the explicit seal and state, or false for a
	// confidential assignment.
	Revealed() (ExplicitSeal, State, bool)

	encode(w *strict.Writer, path strict.Path) error
}

// RevealedAssignment is an explicit seal together with its state.
type RevealedAssignment struct {
	Seal  ExplicitSeal
	State State
}

func (a RevealedAssignment) SealCommitment() SecretSeal {
	return a.Seal.Conceal()
}

func (a RevealedAssignment) Revealed() (ExplicitSeal, State, bool) {
	return a.Seal, a.State, true
}

func (a RevealedAssignment) encode(w *strict.Writer, path strict.Path) error {
	if err := w.WriteUint(uint64(assignTagRevealed), strict.W8, path); err != nil {
		return err
	}
	if err := a.Seal.Encode(w, path.Field("seal")); err != nil {
		return err
	}
	return encodeStateTagged(w, a.State, path.Field("state"))
}

// ConfidentialAssignment carries only the 32-byte secret-seal commitment.
type ConfidentialAssignment struct {
	Seal SecretSeal
}

func (a ConfidentialAssignment) SealCommitment() SecretSeal {
	return a.Seal
}

func (a ConfidentialAssignment) Revealed() (ExplicitSeal, State, bool) {
	return ExplicitSeal{}, nil, false
}

func (a ConfidentialAssignment) encode(w *strict.Writer, path strict.Path) error {
	if err := w.WriteUint(uint64(assignTagConfidential), strict.W8, path); err != nil {
		return err
	}
	w.WriteRaw(a.Seal[:])
	return nil
}

func decodeAssignment(r *strict.Reader, kind StateKind, path strict.Path) (Assignment, error) {
	tag, err := r.ReadUint(strict.W8, path)
	if err != nil {
		return nil, err
	}
	switch uint8(tag) {
	case assignTagConfidential:
		raw, err := r.ReadRaw(commit.Size, path)
		if err != nil {
			return nil, err
		}
		var seal SecretSeal
		copy(seal[:], raw)
		return ConfidentialAssignment{Seal: seal}, nil
	case assignTagRevealed:
		seal, err := DecodeExplicitSeal(r, path.Field("seal"))
		if err != nil {
			return nil, err
		}
		state, err := decodeStateTagged(r, path.Field("state"))
		if err != nil {
			return nil, err
		}
		if state.Kind() != kind {
			return nil, strict.MalformedEncodingError{
				Path: path.Field("state"),
				Reason: fmt.Sprintf(
					"state kind %s in a %s slot",
					state.Kind(),
					kind,
				),
			}
		}
		return RevealedAssignment{Seal: seal, State: state}, nil
	default:
		return nil, strict.UnknownTagError{Path: path, Tag: uint8(tag)}
	}
}

// TypedAssignments is the non-empty, bounded assignment list of one
// assignment-type slot. All revealed assignments in the list carry state of
// the slot's kind; list order is semantic because operation-output
// references address assignments by index.
type TypedAssignments struct {
	Kind StateKind
	List []Assignment
}

// NewTypedAssignments builds a slot after checking kind homogeneity.
func NewTypedAssignments(kind StateKind, list []Assignment) (TypedAssignments, error) {
	for i, a := range list {
		if _, state, ok := a.Revealed(); ok && state.Kind() != kind {
			return TypedAssignments{}, strict.MalformedEncodingError{
				Path: strict.Path{"assignments"}.Index(i),
				Reason: fmt.Sprintf(
					"state kind %s in a %s slot",
					state.Kind(),
					kind,
				),
			}
		}
	}
	return TypedAssignments{Kind: kind, List: list}, nil
}

func (ta TypedAssignments) encode(w *strict.Writer, path strict.Path) error {
	if err := w.WriteUint(uint64(ta.Kind), strict.W8, path); err != nil {
		return err
	}
	if err := w.WriteCount(uint64(len(ta.List)), assignListSizing, path); err != nil {
		return err
	}
	for i, a := range ta.List {
		if _, state, ok := a.Revealed(); ok && state.Kind() != ta.Kind {
			return strict.MalformedEncodingError{
				Path: path.Index(i),
				Reason: fmt.Sprintf(
					"state kind %s in a %s slot",
					state.Kind(),
					ta.Kind,
				),
			}
		}
		if err := a.encode(w, path.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func decodeTypedAssignments(r *strict.Reader, path strict.Path) (TypedAssignments, error) {
	kind, err := r.ReadUint(strict.W8, path)
	if err != nil {
		return TypedAssignments{}, err
	}
	switch StateKind(kind) {
	case StateKindVoid, StateKindFungible, StateKindStructured:
	default:
		return TypedAssignments{}, strict.UnknownTagError{Path: path, Tag: uint8(kind)}
	}
	n, err := r.ReadCount(assignListSizing, path)
	if err != nil {
		return TypedAssignments{}, err
	}
	list := make([]Assignment, 0, n)
	for i := uint64(0); i < n; i++ {
		a, err := decodeAssignment(r, StateKind(kind), path.Index(int(i)))
		if err != nil {
			return TypedAssignments{}, err
		}
		list = append(list, a)
	}
	return TypedAssignments{Kind: StateKind(kind), List: list}, nil
}

// Assignments maps assignment types to their slots.
type Assignments map[schema.AssignmentType]TypedAssignments

var assignSlotSizing = strict.SizingU8

func (as Assignments) encode(w *strict.Writer, path strict.Path) error {
	keys := sortedU16Keys(as)
	if err := w.WriteCount(uint64(len(keys)), assignSlotSizing, path); err != nil {
		return err
	}
	for _, at := range keys {
		if err := w.WriteUint(uint64(at), strict.W16, path); err != nil {
			return err
		}
		if err := as[at].encode(w, path.Index(int(at))); err != nil {
			return err
		}
	}
	return nil
}

func decodeAssignments(r *strict.Reader, path strict.Path) (Assignments, error) {
	n, err := r.ReadCount(assignSlotSizing, path)
	if err != nil {
		return nil, err
	}
	as := make(Assignments, n)
	var prev *schema.AssignmentType
	for i := uint64(0); i < n; i++ {
		key, err := r.ReadUint(strict.W16, path)
		if err != nil {
			return nil, err
		}
		at := schema.AssignmentType(key)
		if prev != nil {
			switch {
			case at == *prev:
				return nil, strict.DuplicateKeyError{Path: path, Index: int(i)}
			case at < *prev:
				return nil, strict.OrderingViolationError{Path: path, Index: int(i)}
			}
		}
		ta, err := decodeTypedAssignments(r, path.Index(int(at)))
		if err != nil {
			return nil, err
		}
		as[at] = ta
		atCopy := at
		prev = &atCopy
	}
	return as, nil
}
