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

package consignment

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cairnlabs-io/cairn/contract"
	"github.com/cairnlabs-io/cairn/schema"
)

// DanglingReferenceError reports a reference inside the consignment whose
// target is not carried by the consignment itself.
type DanglingReferenceError struct {
	Kind string
	Ref  string
}

func (e DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling %s reference: %s", e.Kind, e.Ref)
}

// WrongContractError reports an operation claiming membership in a
// different contract than the consignment's genesis establishes.
type WrongContractError struct {
	Op       contract.OpId
	Claimed  contract.ContractId
	Expected contract.ContractId
}

func (e WrongContractError) Error() string {
	return fmt.Sprintf(
		"operation %s belongs to contract %s, not %s",
		e.Op, e.Claimed, e.Expected,
	)
}

// OpIdMismatchError reports a disclosed transition carried under an
// operation id that does not match the id derived from its encoding.
type OpIdMismatchError struct {
	Carried contract.OpId
	Derived contract.OpId
}

func (e OpIdMismatchError) Error() string {
	return fmt.Sprintf(
		"transition carried under operation id %s derives to %s",
		e.Carried, e.Derived,
	)
}

// Status accumulates everything the graph checker found wrong with a
// consignment. The failure order is deterministic: container-level checks
// first, then bundles in carried order, then terminals and libraries.
type Status struct {
	Failures []error
}

func (s *Status) Error() string {
	msgs := make([]string, len(s.Failures))
	for i, f := range s.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf(
		"consignment rejected with %d failure(s): %s",
		len(s.Failures), strings.Join(msgs, "; "),
	)
}

func (s *Status) add(errs ...error) {
	s.Failures = append(s.Failures, errs...)
}

// ValidConsignment is the proof that a consignment passed the full graph
// check. It can only be obtained from Validate and is immutable.
type ValidConsignment struct {
	c          *Consignment
	id         ConsignmentId
	contractId contract.ContractId
	bundleIds  []contract.BundleId
}

// Consignment returns the underlying validated container.
func (vc *ValidConsignment) Consignment() *Consignment {
	return vc.c
}

// Id returns the consignment identifier derived during validation.
func (vc *ValidConsignment) Id() ConsignmentId {
	return vc.id
}

// ContractId returns the contract the consignment belongs to.
func (vc *ValidConsignment) ContractId() contract.ContractId {
	return vc.contractId
}

// BundleIds returns the identifiers of the carried bundles, in carried
// order.
func (vc *ValidConsignment) BundleIds() []contract.BundleId {
	ids := make([]contract.BundleId, len(vc.bundleIds))
	copy(ids, vc.bundleIds)
	return ids
}

// opSlots describes how many assignment slots an operation exposes per
// assignment type, so inputs referring to it can be bounds-checked.
type opSlots map[schema.AssignmentType]int

func slotsOf(a contract.Assignments) opSlots {
	slots := make(opSlots, len(a))
	for ty, typed := range a {
		slots[ty] = len(typed.List)
	}
	return slots
}

// Validate runs the complete graph check. On success it returns the
// immutable validated view and a nil status; on failure the status carries
// every violation found, in deterministic order, and the view is nil.
//
// Bundles are checked concurrently; their results are merged back in
// carried bundle order so repeated runs over the same consignment produce
// byte-identical failure lists.
func (c *Consignment) Validate() (*ValidConsignment, *Status) {
	status := &Status{}

	id, err := c.Id()
	if err != nil {
		status.add(err)
		return nil, status
	}

	schemaId, err := c.Schema.SchemaId()
	if err != nil {
		status.add(err)
		return nil, status
	}
	if c.Genesis.SchemaId != schemaId {
		status.add(DanglingReferenceError{
			Kind: "schema",
			Ref:  c.Genesis.SchemaId.String(),
		})
	}

	if errs := c.Schema.Validate(c.Types, &c.Genesis); len(errs) > 0 {
		status.add(errs...)
	}

	genesisId, err := c.Genesis.OpId()
	if err != nil {
		status.add(err)
		return nil, status
	}
	contractId, err := c.Genesis.ContractId()
	if err != nil {
		status.add(err)
		return nil, status
	}

	// Index every operation the consignment carries before walking
	// inputs, so references across bundles resolve regardless of order.
	// Map keys are carried values and are never trusted: each disclosed
	// transition's id is re-derived here and indexed under the derived id.
	slots := map[contract.OpId]opSlots{
		genesisId: slotsOf(c.Genesis.Assignments),
	}
	bundleIds := make([]contract.BundleId, len(c.Bundles))
	opIds := make([]map[*contract.Transition]contract.OpId, len(c.Bundles))
	for i := range c.Bundles {
		bundle := &c.Bundles[i].Bundle
		bid, err := bundle.BundleId()
		if err != nil {
			status.add(err)
			return nil, status
		}
		bundleIds[i] = bid
		opIds[i] = make(map[*contract.Transition]contract.OpId, len(bundle.KnownTransitions))
		for _, oid := range bundle.OpIds() {
			t := bundle.KnownTransitions[oid]
			derived, err := t.OpId()
			if err != nil {
				status.add(err)
				return nil, status
			}
			if derived != oid {
				status.add(OpIdMismatchError{Carried: oid, Derived: derived})
			}
			slots[derived] = slotsOf(t.Assignments)
			opIds[i][t] = derived
		}
	}

	perBundle := make([][]error, len(c.Bundles))
	var wg sync.WaitGroup
	for i := range c.Bundles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			perBundle[i] = c.checkBundle(i, opIds[i], slots, contractId)
		}(i)
	}
	wg.Wait()
	for _, errs := range perBundle {
		status.add(errs...)
	}

	status.add(c.checkTerminals(bundleIds)...)
	status.add(c.checkLibs()...)

	if len(status.Failures) > 0 {
		return nil, status
	}
	return &ValidConsignment{
		c:          c,
		id:         id,
		contractId: contractId,
		bundleIds:  bundleIds,
	}, nil
}

func (c *Consignment) checkBundle(
	idx int,
	ids map[*contract.Transition]contract.OpId,
	slots map[contract.OpId]opSlots,
	contractId contract.ContractId,
) []error {
	var errs []error
	bundle := &c.Bundles[idx].Bundle
	if err := bundle.Check(); err != nil {
		errs = append(errs, err)
	}
	for _, oid := range bundle.OpIds() {
		t := bundle.KnownTransitions[oid]
		if t.ContractId != contractId {
			errs = append(errs, WrongContractError{
				Op:       oid,
				Claimed:  t.ContractId,
				Expected: contractId,
			})
		}
		errs = append(errs, c.Schema.Validate(c.Types, t)...)
		for _, in := range t.Inputs {
			target, known := slots[in.Op]
			if !known {
				errs = append(errs, DanglingReferenceError{
					Kind: "input operation",
					Ref:  in.String(),
				})
				continue
			}
			if in.Index >= uint16(target[in.Type]) {
				errs = append(errs, DanglingReferenceError{
					Kind: "input assignment",
					Ref:  in.String(),
				})
			}
			if spender, ok := bundle.InputMap[in]; !ok || spender != ids[t] {
				errs = append(errs, DanglingReferenceError{
					Kind: "bundle input",
					Ref:  in.String(),
				})
			}
		}
	}
	return errs
}

func (c *Consignment) checkTerminals(bundleIds []contract.BundleId) []error {
	var errs []error
	index := make(map[contract.BundleId]int, len(bundleIds))
	for i, id := range bundleIds {
		index[id] = i
	}
	for _, bid := range sortedBundleKeys(c.Terminals) {
		i, ok := index[bid]
		if !ok {
			errs = append(errs, DanglingReferenceError{
				Kind: "terminal bundle",
				Ref:  bid.String(),
			})
			continue
		}
		disclosed := c.Bundles[i].Bundle.ConfidentialSeals()
		for _, seal := range c.Terminals[bid] {
			if _, ok := disclosed[seal]; !ok {
				errs = append(errs, DanglingReferenceError{
					Kind: "terminal seal",
					Ref:  seal.String(),
				})
			}
		}
	}
	return errs
}

func (c *Consignment) checkLibs() []error {
	var errs []error
	known := make(map[schema.LibId]struct{}, len(c.Libs))
	for _, l := range c.Libs {
		known[l.Id()] = struct{}{}
	}
	check := func(anchor *schema.LibAnchor) {
		if anchor == nil {
			return
		}
		if _, ok := known[anchor.Lib]; !ok {
			errs = append(errs, DanglingReferenceError{
				Kind: "script library",
				Ref:  anchor.Lib.String(),
			})
		}
	}
	check(c.Schema.Genesis.Validator)
	for _, ty := range sortedTransitionTypes(c.Schema.Transitions) {
		ts := c.Schema.Transitions[ty]
		check(ts.Validator)
	}
	return errs
}

func sortedBundleKeys(
	m map[contract.BundleId][]contract.SecretSeal,
) []contract.BundleId {
	ids := make([]contract.BundleId, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

func sortedTransitionTypes(
	m map[schema.TransitionType]schema.TransitionSchema,
) []schema.TransitionType {
	tys := make([]schema.TransitionType, 0, len(m))
	for ty := range m {
		tys = append(tys, ty)
	}
	sort.Slice(tys, func(i, j int) bool { return tys[i] < tys[j] })
	return tys
}
