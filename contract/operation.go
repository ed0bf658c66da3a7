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
	"github.com/cairnlabs-io/cairn/schema"
	"github.com/cairnlabs-io/cairn/strict"
)

// Domain tags for operation-level identifiers.
const (
	OpIdTag       = "urn:cairnlabs:consign:operation#2026-05-19"
	ContractIdTag = "urn:cairnlabs:consign:contract#2026-05-19"
)

// Operation discriminants committed as the first byte of every operation
// encoding, separating genesis from transition preimages.
const (
	opTagGenesis    uint8 = 0x00
	opTagTransition uint8 = 0x01
)

// OpId is the 32-byte identifier of an operation, derived from its
// canonical encoding.
type OpId [commit.Size]byte

func (id OpId) String() string {
	return commit.Hash(id).String()
}

func (id OpId) Bytes() []byte {
	return id[:]
}

func (id OpId) MarshalJSON() ([]byte, error) {
	return commit.Hash(id).MarshalJSON()
}

// ContractId is the 32-byte identifier of a contract, derived from its
// genesis operation id.
type ContractId [commit.Size]byte

func (id ContractId) String() string {
	return commit.Hash(id).String()
}

func (id ContractId) Bytes() []byte {
	return id[:]
}

func (id ContractId) MarshalJSON() ([]byte, error) {
	return commit.Hash(id).MarshalJSON()
}

// Bech32 renders the contract id with the "contract" prefix.
func (id ContractId) Bech32() string {
	return commit.Hash(id).Bech32("contract")
}

// ChainNet identifies the chain and network a contract operates on.
type ChainNet uint8

const (
	ChainNetBitcoinMainnet ChainNet = 0x00
	ChainNetBitcoinTestnet ChainNet = 0x01
	ChainNetBitcoinSignet  ChainNet = 0x02
	ChainNetBitcoinRegtest ChainNet = 0x03
	ChainNetLiquidMainnet  ChainNet = 0x04
	ChainNetLiquidTestnet  ChainNet = 0x05
)

func (c ChainNet) valid() bool {
	return c <= ChainNetLiquidTestnet
}

func (c ChainNet) String() string {
	switch c {
	case ChainNetBitcoinMainnet:
		return "bitcoinMainnet"
	case ChainNetBitcoinTestnet:
		return "bitcoinTestnet"
	case ChainNetBitcoinSignet:
		return "bitcoinSignet"
	case ChainNetBitcoinRegtest:
		return "bitcoinRegtest"
	case ChainNetLiquidMainnet:
		return "liquidMainnet"
	case ChainNetLiquidTestnet:
		return "liquidTestnet"
	default:
		return fmt.Sprintf("chainNet(%d)", uint8(c))
	}
}

// Opout references one assignment of a previous operation by operation id,
// assignment type and position within the slot's list.
type Opout struct {
	Op    OpId
	Type  schema.AssignmentType
	Index uint16
}

func (o Opout) String() string {
	return fmt.Sprintf("%s/%d/%d", o.Op, o.Type, o.Index)
}

func (o Opout) encode(w *strict.Writer, path strict.Path) error {
	w.WriteRaw(o.Op[:])
	if err := w.WriteUint(uint64(o.Type), strict.W16, path); err != nil {
		return err
	}
	return w.WriteUint(uint64(o.Index), strict.W16, path)
}

func decodeOpout(r *strict.Reader, path strict.Path) (Opout, error) {
	raw, err := r.ReadRaw(commit.Size, path)
	if err != nil {
		return Opout{}, err
	}
	at, err := r.ReadUint(strict.W16, path)
	if err != nil {
		return Opout{}, err
	}
	index, err := r.ReadUint(strict.W16, path)
	if err != nil {
		return Opout{}, err
	}
	var o Opout
	copy(o.Op[:], raw)
	o.Type = schema.AssignmentType(at)
	o.Index = uint16(index)
	return o, nil
}

// less orders opouts by their canonical encoding, which coincides with
// (op, type, index) lexicographic order.
func (o Opout) less(other Opout) bool {
	if c := bytes.Compare(o.Op[:], other.Op[:]); c != 0 {
		return c < 0
	}
	if o.Type != other.Type {
		return o.Type < other.Type
	}
	return o.Index < other.Index
}

var (
	issuerSizing = strict.SizingU8
	inputSizing  = strict.SizingU16
)

// Genesis is the single origin operation of a contract.
type Genesis struct {
	SchemaId    schema.SchemaId
	Timestamp   int64
	Issuer      string
	ChainNet    ChainNet
	CloseMethod CloseMethod
	Metadata    Metadata
	Globals     GlobalState
	Assignments Assignments
}

// Encode writes the canonical genesis encoding, which is also the OpId
// preimage.
func (g *Genesis) Encode(w *strict.Writer) error {
	path := strict.Path{"genesis"}
	if err := w.WriteUint(uint64(opTagGenesis), strict.W8, path); err != nil {
		return err
	}
	w.WriteRaw(g.SchemaId[:])
	if err := w.WriteUint(uint64(g.Timestamp), strict.W64, path.Field("timestamp")); err != nil {
		return err
	}
	if err := w.WriteAscii(
		g.Issuer,
		strict.CharsetAsciiPrintable,
		strict.CharsetAsciiPrintable,
		issuerSizing,
		path.Field("issuer"),
	); err != nil {
		return err
	}
	if !g.ChainNet.valid() {
		return strict.UnknownTagError{Path: path.Field("chainNet"), Tag: uint8(g.ChainNet)}
	}
	if err := w.WriteUint(uint64(g.ChainNet), strict.W8, path.Field("chainNet")); err != nil {
		return err
	}
	if !g.CloseMethod.valid() {
		return strict.UnknownTagError{Path: path.Field("closeMethod"), Tag: uint8(g.CloseMethod)}
	}
	if err := w.WriteUint(uint64(g.CloseMethod), strict.W8, path.Field("closeMethod")); err != nil {
		return err
	}
	if err := g.Metadata.encode(w, path.Field("metadata")); err != nil {
		return err
	}
	if err := g.Globals.encode(w, path.Field("globals")); err != nil {
		return err
	}
	return g.Assignments.encode(w, path.Field("assignments"))
}

// DecodeGenesis parses a canonical genesis encoding. The leading operation
// discriminant must name a genesis.
func DecodeGenesis(r *strict.Reader) (*Genesis, error) {
	path := strict.Path{"genesis"}
	tag, err := r.ReadUint(strict.W8, path)
	if err != nil {
		return nil, err
	}
	if uint8(tag) != opTagGenesis {
		return nil, strict.UnknownTagError{Path: path, Tag: uint8(tag)}
	}
	g := &Genesis{}
	raw, err := r.ReadRaw(commit.Size, path)
	if err != nil {
		return nil, err
	}
	copy(g.SchemaId[:], raw)
	ts, err := r.ReadUint(strict.W64, path.Field("timestamp"))
	if err != nil {
		return nil, err
	}
	g.Timestamp = int64(ts)
	if g.Issuer, err = r.ReadAscii(
		strict.CharsetAsciiPrintable,
		strict.CharsetAsciiPrintable,
		issuerSizing,
		path.Field("issuer"),
	); err != nil {
		return nil, err
	}
	cn, err := r.ReadUint(strict.W8, path.Field("chainNet"))
	if err != nil {
		return nil, err
	}
	g.ChainNet = ChainNet(cn)
	if !g.ChainNet.valid() {
		return nil, strict.UnknownTagError{Path: path.Field("chainNet"), Tag: uint8(cn)}
	}
	cm, err := r.ReadUint(strict.W8, path.Field("closeMethod"))
	if err != nil {
		return nil, err
	}
	g.CloseMethod = CloseMethod(cm)
	if !g.CloseMethod.valid() {
		return nil, strict.UnknownTagError{Path: path.Field("closeMethod"), Tag: uint8(cm)}
	}
	if g.Metadata, err = decodeMetadata(r, path.Field("metadata")); err != nil {
		return nil, err
	}
	if g.Globals, err = decodeGlobalState(r, path.Field("globals")); err != nil {
		return nil, err
	}
	if g.Assignments, err = decodeAssignments(r, path.Field("assignments")); err != nil {
		return nil, err
	}
	return g, nil
}

// OpId derives the genesis operation identifier.
func (g *Genesis) OpId() (OpId, error) {
	w := strict.NewWriter()
	if err := g.Encode(w); err != nil {
		return OpId{}, err
	}
	return OpId(commit.Compute(OpIdTag, w.Bytes())), nil
}

// ContractId derives the contract identifier from the genesis operation
// id under its own domain tag.
func (g *Genesis) ContractId() (ContractId, error) {
	opid, err := g.OpId()
	if err != nil {
		return ContractId{}, err
	}
	return ContractId(commit.Compute(ContractIdTag, opid[:])), nil
}

// TransitionType reports that a genesis carries no transition type.
func (g *Genesis) TransitionType() (schema.TransitionType, bool) {
	return 0, false
}

func (g *Genesis) MetaCounts() map[schema.MetaType]int {
	counts := make(map[schema.MetaType]int, len(g.Metadata))
	for mt := range g.Metadata {
		counts[mt] = 1
	}
	return counts
}

func (g *Genesis) GlobalCounts() map[schema.GlobalStateType]int {
	counts := make(map[schema.GlobalStateType]int, len(g.Globals))
	for gt, values := range g.Globals {
		counts[gt] = len(values)
	}
	return counts
}

func (g *Genesis) AssignmentCounts() map[schema.AssignmentType]int {
	counts := make(map[schema.AssignmentType]int, len(g.Assignments))
	for at, ta := range g.Assignments {
		counts[at] = len(ta.List)
	}
	return counts
}

func (g *Genesis) InputCount() int { return 0 }

// Transition is one append-only state change of a contract, immutable once
// committed.
type Transition struct {
	ContractId   ContractId
	TransitionTy schema.TransitionType
	Nonce        uint64
	Metadata     Metadata
	Globals      GlobalState
	Inputs       []Opout
	Assignments  Assignments
}

// Encode writes the canonical transition encoding, which is also the OpId
// preimage. Inputs are written as a canonical set: sorted with strict
// uniqueness.
func (t *Transition) Encode(w *strict.Writer) error {
	path := strict.Path{"transition"}
	if err := w.WriteUint(uint64(opTagTransition), strict.W8, path); err != nil {
		return err
	}
	w.WriteRaw(t.ContractId[:])
	if err := w.WriteUint(uint64(t.TransitionTy), strict.W16, path.Field("transitionType")); err != nil {
		return err
	}
	if err := w.WriteUint(t.Nonce, strict.W64, path.Field("nonce")); err != nil {
		return err
	}
	if err := t.Metadata.encode(w, path.Field("metadata")); err != nil {
		return err
	}
	if err := t.Globals.encode(w, path.Field("globals")); err != nil {
		return err
	}
	ip := path.Field("inputs")
	sorted := make([]Opout, len(t.Inputs))
	copy(sorted, t.Inputs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].less(sorted[j]) })
	if err := w.WriteCount(uint64(len(sorted)), inputSizing, ip); err != nil {
		return err
	}
	for i, in := range sorted {
		if i > 0 && sorted[i-1] == in {
			return strict.DuplicateKeyError{Path: ip, Index: i}
		}
		if err := in.encode(w, ip.Index(i)); err != nil {
			return err
		}
	}
	return t.Assignments.encode(w, path.Field("assignments"))
}

// DecodeTransition parses a canonical transition encoding.
func DecodeTransition(r *strict.Reader) (*Transition, error) {
	path := strict.Path{"transition"}
	tag, err := r.ReadUint(strict.W8, path)
	if err != nil {
		return nil, err
	}
	if uint8(tag) != opTagTransition {
		return nil, strict.UnknownTagError{Path: path, Tag: uint8(tag)}
	}
	t := &Transition{}
	raw, err := r.ReadRaw(commit.Size, path)
	if err != nil {
		return nil, err
	}
	copy(t.ContractId[:], raw)
	tt, err := r.ReadUint(strict.W16, path.Field("transitionType"))
	if err != nil {
		return nil, err
	}
	t.TransitionTy = schema.TransitionType(tt)
	if t.Nonce, err = r.ReadUint(strict.W64, path.Field("nonce")); err != nil {
		return nil, err
	}
	if t.Metadata, err = decodeMetadata(r, path.Field("metadata")); err != nil {
		return nil, err
	}
	if t.Globals, err = decodeGlobalState(r, path.Field("globals")); err != nil {
		return nil, err
	}
	ip := path.Field("inputs")
	n, err := r.ReadCount(inputSizing, ip)
	if err != nil {
		return nil, err
	}
	inputs := make([]Opout, 0, n)
	var prev *Opout
	for i := uint64(0); i < n; i++ {
		in, err := decodeOpout(r, ip.Index(int(i)))
		if err != nil {
			return nil, err
		}
		if prev != nil {
			switch {
			case in == *prev:
				return nil, strict.DuplicateKeyError{Path: ip, Index: int(i)}
			case in.less(*prev):
				return nil, strict.OrderingViolationError{Path: ip, Index: int(i)}
			}
		}
		inputs = append(inputs, in)
		inCopy := in
		prev = &inCopy
	}
	t.Inputs = inputs
	if t.Assignments, err = decodeAssignments(r, path.Field("assignments")); err != nil {
		return nil, err
	}
	return t, nil
}

// OpId derives the transition operation identifier.
func (t *Transition) OpId() (OpId, error) {
	w := strict.NewWriter()
	if err := t.Encode(w); err != nil {
		return OpId{}, err
	}
	return OpId(commit.Compute(OpIdTag, w.Bytes())), nil
}

// TransitionType returns the transition type for schema conformance.
func (t *Transition) TransitionType() (schema.TransitionType, bool) {
	return t.TransitionTy, true
}

func (t *Transition) MetaCounts() map[schema.MetaType]int {
	counts := make(map[schema.MetaType]int, len(t.Metadata))
	for mt := range t.Metadata {
		counts[mt] = 1
	}
	return counts
}

func (t *Transition) GlobalCounts() map[schema.GlobalStateType]int {
	counts := make(map[schema.GlobalStateType]int, len(t.Globals))
	for gt, values := range t.Globals {
		counts[gt] = len(values)
	}
	return counts
}

func (t *Transition) AssignmentCounts() map[schema.AssignmentType]int {
	counts := make(map[schema.AssignmentType]int, len(t.Assignments))
	for at, ta := range t.Assignments {
		counts[at] = len(ta.List)
	}
	return counts
}

func (t *Transition) InputCount() int { return len(t.Inputs) }
