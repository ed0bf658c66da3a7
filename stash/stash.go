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

// Package stash provides an in-memory, append-only store of validated
// consignments, indexed per contract. Only consignments that passed the
// graph check can enter the stash, so everything read back is internally
// consistent.
package stash

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/cairnlabs-io/cairn/consignment"
	"github.com/cairnlabs-io/cairn/contract"
	"github.com/cairnlabs-io/cairn/schema"
	"github.com/cairnlabs-io/cairn/typesys"
)

// UnknownContractError is returned when a contract id has never been
// stored.
type UnknownContractError struct {
	Contract contract.ContractId
}

func (e UnknownContractError) Error() string {
	return fmt.Sprintf("unknown contract %s", e.Contract)
}

// UnknownOperationError is returned when a stored contract does not carry
// the requested transition.
type UnknownOperationError struct {
	Op contract.OpId
}

func (e UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %s", e.Op)
}

// UnknownBundleError is returned when a stored contract does not carry the
// requested bundle.
type UnknownBundleError struct {
	Bundle contract.BundleId
}

func (e UnknownBundleError) Error() string {
	return fmt.Sprintf("unknown bundle %s", e.Bundle)
}

// IdMismatchError is returned when a consignment's schema disagrees with
// the schema already stored for the same contract.
type IdMismatchError struct {
	Contract contract.ContractId
	Stored   schema.SchemaId
	Incoming schema.SchemaId
}

func (e IdMismatchError) Error() string {
	return fmt.Sprintf(
		"contract %s already stored with schema %s, consignment carries %s",
		e.Contract, e.Stored, e.Incoming,
	)
}

type contractState struct {
	genesis  contract.Genesis
	schema   schema.Schema
	schemaId schema.SchemaId
	types    *typesys.TypeSystem

	bundles   map[contract.BundleId]*contract.TransitionBundle
	ops       map[contract.OpId]*contract.Transition
	witnesses map[contract.BundleId]chainhash.Hash
}

// MemStash is a thread-safe in-memory consignment store. Entries are only
// ever added or merged, never removed.
type MemStash struct {
	mu        sync.RWMutex
	contracts map[contract.ContractId]*contractState
}

func NewMemStash() *MemStash {
	return &MemStash{
		contracts: make(map[contract.ContractId]*contractState),
	}
}

// Store merges a validated consignment into the stash. The first
// consignment seen for a contract establishes its genesis, schema and type
// system; later ones must carry the same schema.
func (s *MemStash) Store(vc *consignment.ValidConsignment) error {
	c := vc.Consignment()
	schemaId, err := c.Schema.SchemaId()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contractId := vc.ContractId()
	state, ok := s.contracts[contractId]
	if !ok {
		state = &contractState{
			genesis:   c.Genesis,
			schema:    c.Schema,
			schemaId:  schemaId,
			types:     c.Types,
			bundles:   make(map[contract.BundleId]*contract.TransitionBundle),
			ops:       make(map[contract.OpId]*contract.Transition),
			witnesses: make(map[contract.BundleId]chainhash.Hash),
		}
		s.contracts[contractId] = state
	} else if state.schemaId != schemaId {
		return IdMismatchError{
			Contract: contractId,
			Stored:   state.schemaId,
			Incoming: schemaId,
		}
	}

	bundleIds := vc.BundleIds()
	for i := range c.Bundles {
		wb := &c.Bundles[i]
		bid := bundleIds[i]
		state.bundles[bid] = &wb.Bundle
		state.witnesses[bid] = wb.PubWitness.Txid()
		for oid, t := range wb.Bundle.KnownTransitions {
			state.ops[oid] = t
		}
	}
	return nil
}

// Contracts lists the stored contract ids in ascending byte order.
func (s *MemStash) Contracts() []contract.ContractId {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]contract.ContractId, 0, len(s.contracts))
	for id := range s.contracts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

func (s *MemStash) state(id contract.ContractId) (*contractState, error) {
	state, ok := s.contracts[id]
	if !ok {
		return nil, UnknownContractError{Contract: id}
	}
	return state, nil
}

// Genesis returns the genesis operation of a stored contract.
func (s *MemStash) Genesis(id contract.ContractId) (*contract.Genesis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, err := s.state(id)
	if err != nil {
		return nil, err
	}
	return state.genesis.Clone(), nil
}

// Schema returns the schema governing a stored contract.
func (s *MemStash) Schema(id contract.ContractId) (*schema.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, err := s.state(id)
	if err != nil {
		return nil, err
	}
	sch := state.schema
	return &sch, nil
}

// Types returns the type system governing a stored contract.
func (s *MemStash) Types(id contract.ContractId) (*typesys.TypeSystem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, err := s.state(id)
	if err != nil {
		return nil, err
	}
	return state.types, nil
}

// Transition looks up a stored transition by operation id.
func (s *MemStash) Transition(
	id contract.ContractId,
	op contract.OpId,
) (*contract.Transition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, err := s.state(id)
	if err != nil {
		return nil, err
	}
	t, ok := state.ops[op]
	if !ok {
		return nil, UnknownOperationError{Op: op}
	}
	return t.Clone(), nil
}

// Bundle looks up a stored transition bundle by bundle id.
func (s *MemStash) Bundle(
	id contract.ContractId,
	bundle contract.BundleId,
) (*contract.TransitionBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, err := s.state(id)
	if err != nil {
		return nil, err
	}
	b, ok := state.bundles[bundle]
	if !ok {
		return nil, UnknownBundleError{Bundle: bundle}
	}
	return b.Clone(), nil
}

// BundleIds lists a contract's stored bundle ids in ascending byte order.
func (s *MemStash) BundleIds(id contract.ContractId) ([]contract.BundleId, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, err := s.state(id)
	if err != nil {
		return nil, err
	}
	ids := make([]contract.BundleId, 0, len(state.bundles))
	for bid := range state.bundles {
		ids = append(ids, bid)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids, nil
}

// WitnessTxid returns the txid of the public witness anchoring a stored
// bundle.
func (s *MemStash) WitnessTxid(
	id contract.ContractId,
	bundle contract.BundleId,
) (chainhash.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, err := s.state(id)
	if err != nil {
		return chainhash.Hash{}, err
	}
	txid, ok := state.witnesses[bundle]
	if !ok {
		return chainhash.Hash{}, UnknownBundleError{Bundle: bundle}
	}
	return txid, nil
}
