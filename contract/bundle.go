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
	"bytes"
	"fmt"
	"sort"

	"github.com/cairnlabs-io/cairn/commit"
	"github.com/cairnlabs-io/cairn/strict"
)

// BundleIdTag is the domain tag for bundle identifiers.
const BundleIdTag = "urn:cairnlabs:consign:bundle#2026-05-19"

// BundleId is the 32-byte identifier of a transition bundle, derived from
// the bundle's input map alone. Transitions may be partially disclosed
// without changing the bundle identity.
type BundleId [commit.Size]byte

func (id BundleId) String() string {
	return commit.Hash(id).String()
}

func (id BundleId) Bytes() []byte {
	return id[:]
}

func (id BundleId) MarshalJSON() ([]byte, error) {
	return commit.Hash(id).MarshalJSON()
}

var bundleMapSizing = strict.SizingNonEmpty(0xffff)

// TransitionBundle groups the transitions anchored to one witness
// transaction: a map from spent operation outputs to the ids of the
// transitions spending them, plus the set of transitions disclosed in this
// consignment.
type TransitionBundle struct {
	InputMap         map[Opout]OpId
	KnownTransitions map[OpId]*Transition
}

// BundleId derives the bundle identifier by committing to the canonical
// input map encoding.
func (b *TransitionBundle) BundleId() (BundleId, error) {
	w := strict.NewWriter()
	if err := b.encodeInputMap(w, strict.Path{"inputMap"}); err != nil {
		return BundleId{}, err
	}
	return BundleId(commit.Compute(BundleIdTag, w.Bytes())), nil
}

func (b *TransitionBundle) encodeInputMap(w *strict.Writer, path strict.Path) error {
	keys := make([]Opout, 0, len(b.InputMap))
	for o := range b.InputMap {
		keys = append(keys, o)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	if err := w.WriteCount(uint64(len(keys)), bundleMapSizing, path); err != nil {
		return err
	}
	for i, o := range keys {
		if err := o.encode(w, path.Index(i)); err != nil {
			return err
		}
		opid := b.InputMap[o]
		w.WriteRaw(opid[:])
	}
	return nil
}

// Encode writes the canonical bundle encoding: the input map followed by
// the known transitions sorted ascending by operation id.
func (b *TransitionBundle) Encode(w *strict.Writer) error {
	path := strict.Path{"bundle"}
	if err := b.encodeInputMap(w, path.Field("inputMap")); err != nil {
		return err
	}
	tp := path.Field("knownTransitions")
	ids := make([]OpId, 0, len(b.KnownTransitions))
	for id := range b.KnownTransitions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	if err := w.WriteCount(uint64(len(ids)), bundleMapSizing, tp); err != nil {
		return err
	}
	for _, id := range ids {
		if err := b.KnownTransitions[id].Encode(w); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTransitionBundle parses a canonical bundle encoding, re-deriving
// each known transition's operation id as its map key.
func DecodeTransitionBundle(r *strict.Reader) (*TransitionBundle, error) {
	path := strict.Path{"bundle"}
	b := &TransitionBundle{}
	ip := path.Field("inputMap")
	n, err := r.ReadCount(bundleMapSizing, ip)
	if err != nil {
		return nil, err
	}
	b.InputMap = make(map[Opout]OpId, n)
	var prev *Opout
	for i := uint64(0); i < n; i++ {
		o, err := decodeOpout(r, ip.Index(int(i)))
		if err != nil {
			return nil, err
		}
		if prev != nil {
			switch {
			case o == *prev:
				return nil, strict.DuplicateKeyError{Path: ip, Index: int(i)}
			case o.less(*prev):
				return nil, strict.OrderingViolationError{Path: ip, Index: int(i)}
			}
		}
		raw, err := r.ReadRaw(commit.Size, ip.Index(int(i)))
		if err != nil {
			return nil, err
		}
		var opid OpId
		copy(opid[:], raw)
		b.InputMap[o] = opid
		oCopy := o
		prev = &oCopy
	}
	tp := path.Field("knownTransitions")
	tn, err := r.ReadCount(bundleMapSizing, tp)
	if err != nil {
		return nil, err
	}
	b.KnownTransitions = make(map[OpId]*Transition, tn)
	var prevId *OpId
	for i := uint64(0); i < tn; i++ {
		t, err := DecodeTransition(r)
		if err != nil {
			return nil, err
		}
		id, err := t.OpId()
		if err != nil {
			return nil, err
		}
		if prevId != nil {
			switch cmp := bytes.Compare(id[:], prevId[:]); {
			case cmp == 0:
				return nil, strict.DuplicateKeyError{Path: tp, Index: int(i)}
			case cmp < 0:
				return nil, strict.OrderingViolationError{Path: tp, Index: int(i)}
			}
		}
		b.KnownTransitions[id] = t
		idCopy := id
		prevId = &idCopy
	}
	return b, nil
}

// ContainsOp reports whether the bundle discloses a transition with the
// given operation id.
func (b *TransitionBundle) ContainsOp(id OpId) bool {
	_, ok := b.KnownTransitions[id]
	return ok
}

// ConfidentialSeals collects the secret-seal commitments of every
// confidential assignment disclosed in the bundle.
func (b *TransitionBundle) ConfidentialSeals() map[SecretSeal]struct{} {
	seals := make(map[SecretSeal]struct{})
	for _, t := range b.KnownTransitions {
		for _, ta := range t.Assignments {
			for _, a := range ta.List {
				if _, _, revealed := a.Revealed(); !revealed {
					seals[a.SealCommitment()] = struct{}{}
				}
			}
		}
	}
	return seals
}

// OpIds returns the ids of disclosed transitions in ascending byte order.
func (b *TransitionBundle) OpIds() []OpId {
	ids := make([]OpId, 0, len(b.KnownTransitions))
	for id := range b.KnownTransitions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// Check verifies internal consistency: every input map value naming a
// known transition must match a transition that actually spends that
// input.
func (b *TransitionBundle) Check() error {
	for o, opid := range b.InputMap {
		t, ok := b.KnownTransitions[opid]
		if !ok {
			continue
		}
		found := false
		for _, in := range t.Inputs {
			if in == o {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf(
				"bundle input map entry %s names transition %s which does not spend it",
				o,
				opid,
			)
		}
	}
	return nil
}
