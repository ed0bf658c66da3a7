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

// Package consignment defines the full transferable package of contract
// state, history, schema and type system for one transfer, together with
// the graph checker that either accepts it as an immutable whole or
// reports the complete set of violations found.
package consignment

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/cairnlabs-io/cairn/commit"
	"github.com/cairnlabs-io/cairn/contract"
	"github.com/cairnlabs-io/cairn/schema"
	"github.com/cairnlabs-io/cairn/strict"
	"github.com/cairnlabs-io/cairn/typesys"
)

// Domain tags for container-level identifiers.
const (
	ConsignmentIdTag = "urn:cairnlabs:consign:consignment#2026-05-19"
	LibIdTag         = "urn:cairnlabs:consign:lib#2026-05-19"
)

// CurrentVersion is the only consignment container version this
// implementation produces and accepts.
const CurrentVersion uint16 = 2

// ConsignmentId is the 32-byte identifier of a whole consignment, derived
// from its canonical encoding.
type ConsignmentId [commit.Size]byte

func (id ConsignmentId) String() string {
	return commit.Hash(id).String()
}

func (id ConsignmentId) Bytes() []byte {
	return id[:]
}

func (id ConsignmentId) MarshalJSON() ([]byte, error) {
	return commit.Hash(id).MarshalJSON()
}

// Bech32 renders the consignment id with the "csg" prefix.
func (id ConsignmentId) Bech32() string {
	return commit.Hash(id).Bech32("csg")
}

var libCodeSizing = strict.SizingNonEmpty(0xffff)

// Lib is an opaque validation-script library. Execution semantics are out
// of scope; the graph checker only resolves references to it.
type Lib struct {
	Code []byte
}

// Id derives the library identifier from its code.
func (l Lib) Id() schema.LibId {
	return schema.LibId(commit.Compute(LibIdTag, l.Code))
}

var (
	terminalSizing     = strict.SizingU16
	terminalSealSizing = strict.SizingNonEmpty(0xffff)
	bundleListSizing   = strict.SizingU16
	libListSizing      = strict.SizingU8
)

// Consignment is the fully materialized transfer package. It is assembled
// once and never mutated; Validate yields the accepted immutable view.
type Consignment struct {
	Version  uint16
	Transfer bool

	// Terminals name the secret seals a transfer ends at, keyed by the
	// bundle disclosing the matching confidential assignments.
	Terminals map[contract.BundleId][]contract.SecretSeal

	Genesis contract.Genesis
	Bundles []contract.WitnessBundle
	Schema  schema.Schema
	Types   *typesys.TypeSystem
	Libs    []Lib
}

// Encode writes the canonical consignment encoding.
func (c *Consignment) Encode(w *strict.Writer) error {
	path := strict.Path{"consignment"}
	if err := w.WriteUint(uint64(c.Version), strict.W16, path.Field("version")); err != nil {
		return err
	}
	w.WriteBool(c.Transfer)
	if err := c.Genesis.Encode(w); err != nil {
		return err
	}
	if err := c.encodeTerminals(w, path.Field("terminals")); err != nil {
		return err
	}
	bp := path.Field("bundles")
	if err := w.WriteCount(uint64(len(c.Bundles)), bundleListSizing, bp); err != nil {
		return err
	}
	for i := range c.Bundles {
		if err := c.Bundles[i].Encode(w); err != nil {
			return err
		}
	}
	if err := c.Schema.Encode(w); err != nil {
		return err
	}
	if c.Types == nil {
		return strict.MalformedEncodingError{
			Path:   path.Field("types"),
			Reason: "missing type system",
		}
	}
	if err := c.Types.Encode(w); err != nil {
		return err
	}
	return c.encodeLibs(w, path.Field("libs"))
}

func (c *Consignment) encodeTerminals(w *strict.Writer, path strict.Path) error {
	ids := make([]contract.BundleId, 0, len(c.Terminals))
	for id := range c.Terminals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	if err := w.WriteCount(uint64(len(ids)), terminalSizing, path); err != nil {
		return err
	}
	for i, id := range ids {
		w.WriteRaw(id[:])
		tp := path.Index(i)
		seals := make([]contract.SecretSeal, len(c.Terminals[id]))
		copy(seals, c.Terminals[id])
		sort.Slice(seals, func(a, b int) bool {
			return bytes.Compare(seals[a][:], seals[b][:]) < 0
		})
		if err := w.WriteCount(uint64(len(seals)), terminalSealSizing, tp); err != nil {
			return err
		}
		for j, seal := range seals {
			if j > 0 && seals[j-1] == seal {
				return strict.DuplicateKeyError{Path: tp, Index: j}
			}
			w.WriteRaw(seal[:])
		}
	}
	return nil
}

func (c *Consignment) encodeLibs(w *strict.Writer, path strict.Path) error {
	libs := make([]Lib, len(c.Libs))
	copy(libs, c.Libs)
	sort.Slice(libs, func(i, j int) bool {
		a, b := libs[i].Id(), libs[j].Id()
		return bytes.Compare(a[:], b[:]) < 0
	})
	if err := w.WriteCount(uint64(len(libs)), libListSizing, path); err != nil {
		return err
	}
	for i, l := range libs {
		if i > 0 && libs[i-1].Id() == l.Id() {
			return strict.DuplicateKeyError{Path: path, Index: i}
		}
		if err := w.WriteByteString(l.Code, libCodeSizing, path.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// Id derives the consignment identifier from the canonical encoding.
func (c *Consignment) Id() (ConsignmentId, error) {
	w := strict.NewWriter()
	if err := c.Encode(w); err != nil {
		return ConsignmentId{}, err
	}
	return ConsignmentId(commit.Compute(ConsignmentIdTag, w.Bytes())), nil
}

// Decode parses a canonical consignment encoding, consuming the reader to
// the end. All carried identifiers are re-derived during decoding; graph
// validation is a separate, explicit step.
func Decode(r *strict.Reader) (*Consignment, error) {
	path := strict.Path{"consignment"}
	version, err := r.ReadUint(strict.W16, path.Field("version"))
	if err != nil {
		return nil, err
	}
	if uint16(version) != CurrentVersion {
		return nil, strict.MalformedEncodingError{
			Path: path.Field("version"),
			Reason: fmt.Sprintf(
				"unsupported consignment version %d", version,
			),
		}
	}
	c := &Consignment{Version: uint16(version)}
	if c.Transfer, err = r.ReadBool(path.Field("transfer")); err != nil {
		return nil, err
	}
	genesis, err := contract.DecodeGenesis(r)
	if err != nil {
		return nil, err
	}
	c.Genesis = *genesis
	if c.Terminals, err = decodeTerminals(r, path.Field("terminals")); err != nil {
		return nil, err
	}
	bp := path.Field("bundles")
	n, err := r.ReadCount(bundleListSizing, bp)
	if err != nil {
		return nil, err
	}
	c.Bundles = make([]contract.WitnessBundle, 0, n)
	for i := uint64(0); i < n; i++ {
		wb, err := contract.DecodeWitnessBundle(r)
		if err != nil {
			return nil, err
		}
		c.Bundles = append(c.Bundles, *wb)
	}
	sch, err := schema.DecodeSchema(r)
	if err != nil {
		return nil, err
	}
	c.Schema = *sch
	if c.Types, err = typesys.DecodeTypeSystem(r); err != nil {
		return nil, err
	}
	if c.Libs, err = decodeLibs(r, path.Field("libs")); err != nil {
		return nil, err
	}
	if err := r.Finish(path); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeTerminals(
	r *strict.Reader,
	path strict.Path,
) (map[contract.BundleId][]contract.SecretSeal, error) {
	n, err := r.ReadCount(terminalSizing, path)
	if err != nil {
		return nil, err
	}
	terminals := make(map[contract.BundleId][]contract.SecretSeal, n)
	var prev *contract.BundleId
	for i := uint64(0); i < n; i++ {
		raw, err := r.ReadRaw(commit.Size, path.Index(int(i)))
		if err != nil {
			return nil, err
		}
		var id contract.BundleId
		copy(id[:], raw)
		if prev != nil {
			switch cmp := bytes.Compare(id[:], prev[:]); {
			case cmp == 0:
				return nil, strict.DuplicateKeyError{Path: path, Index: int(i)}
			case cmp < 0:
				return nil, strict.OrderingViolationError{Path: path, Index: int(i)}
			}
		}
		tp := path.Index(int(i))
		count, err := r.ReadCount(terminalSealSizing, tp)
		if err != nil {
			return nil, err
		}
		seals := make([]contract.SecretSeal, 0, count)
		var prevSeal *contract.SecretSeal
		for j := uint64(0); j < count; j++ {
			sraw, err := r.ReadRaw(commit.Size, tp.Index(int(j)))
			if err != nil {
				return nil, err
			}
			var seal contract.SecretSeal
			copy(seal[:], sraw)
			if prevSeal != nil {
				switch cmp := bytes.Compare(seal[:], prevSeal[:]); {
				case cmp == 0:
					return nil, strict.DuplicateKeyError{Path: tp, Index: int(j)}
				case cmp < 0:
					return nil, strict.OrderingViolationError{Path: tp, Index: int(j)}
				}
			}
			seals = append(seals, seal)
			sealCopy := seal
			prevSeal = &sealCopy
		}
		terminals[id] = seals
		idCopy := id
		prev = &idCopy
	}
	return terminals, nil
}

func decodeLibs(r *strict.Reader, path strict.Path) ([]Lib, error) {
	n, err := r.ReadCount(libListSizing, path)
	if err != nil {
		return nil, err
	}
	libs := make([]Lib, 0, n)
	var prev *schema.LibId
	for i := uint64(0); i < n; i++ {
		code, err := r.ReadByteString(libCodeSizing, path.Index(int(i)))
		if err != nil {
			return nil, err
		}
		l := Lib{Code: code}
		id := l.Id()
		if prev != nil {
			switch cmp := bytes.Compare(id[:], prev[:]); {
			case cmp == 0:
				return nil, strict.DuplicateKeyError{Path: path, Index: int(i)}
			case cmp < 0:
				return nil, strict.OrderingViolationError{Path: path, Index: int(i)}
			}
		}
		libs = append(libs, l)
		idCopy := id
		prev = &idCopy
	}
	return libs, nil
}
