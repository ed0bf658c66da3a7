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

package stash_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cairnlabs-io/cairn/consignment"
	"github.com/cairnlabs-io/cairn/contract"
	"github.com/cairnlabs-io/cairn/internal/test"
	"github.com/cairnlabs-io/cairn/stash"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func storedConsignment(t *testing.T) (*stash.MemStash, *consignment.ValidConsignment) {
	t.Helper()
	vc, status := test.TokenConsignment().Validate()
	require.Nil(t, status)
	s := stash.NewMemStash()
	require.NoError(t, s.Store(vc))
	return s, vc
}

func TestStoreAndListContracts(t *testing.T) {
	s, vc := storedConsignment(t)
	contracts := s.Contracts()
	require.Len(t, contracts, 1)
	assert.Equal(t, vc.ContractId(), contracts[0])
}

func TestStoreIsIdempotent(t *testing.T) {
	s, vc := storedConsignment(t)
	require.NoError(t, s.Store(vc))
	assert.Len(t, s.Contracts(), 1)

	ids, err := s.BundleIds(vc.ContractId())
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestGenesisLookup(t *testing.T) {
	s, vc := storedConsignment(t)
	genesis, err := s.Genesis(vc.ContractId())
	require.NoError(t, err)
	assert.Equal(t, vc.Consignment().Genesis, *genesis)

	_, err = s.Genesis(contract.ContractId{0x01})
	assert.ErrorAs(t, err, &stash.UnknownContractError{})
}

func TestSchemaAndTypesLookup(t *testing.T) {
	s, vc := storedConsignment(t)

	sch, err := s.Schema(vc.ContractId())
	require.NoError(t, err)
	origId, err := vc.Consignment().Schema.SchemaId()
	require.NoError(t, err)
	storedId, err := sch.SchemaId()
	require.NoError(t, err)
	assert.Equal(t, origId, storedId)

	types, err := s.Types(vc.ContractId())
	require.NoError(t, err)
	assert.Equal(t, vc.Consignment().Types.Len(), types.Len())
}

func TestTransitionLookup(t *testing.T) {
	s, vc := storedConsignment(t)
	bundle := vc.Consignment().Bundles[0].Bundle
	for opid, transition := range bundle.KnownTransitions {
		stored, err := s.Transition(vc.ContractId(), opid)
		require.NoError(t, err)
		assert.Equal(t, transition, stored)
	}

	_, err := s.Transition(vc.ContractId(), contract.OpId{0x01})
	assert.ErrorAs(t, err, &stash.UnknownOperationError{})
}

func TestBundleAndWitnessLookup(t *testing.T) {
	s, vc := storedConsignment(t)
	ids, err := s.BundleIds(vc.ContractId())
	require.NoError(t, err)
	require.Len(t, ids, 1)

	bundle, err := s.Bundle(vc.ContractId(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, vc.Consignment().Bundles[0].Bundle.InputMap, bundle.InputMap)

	txid, err := s.WitnessTxid(vc.ContractId(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, test.Txid(0xaa), txid)

	_, err = s.Bundle(vc.ContractId(), contract.BundleId{0x01})
	assert.ErrorAs(t, err, &stash.UnknownBundleError{})

	_, err = s.WitnessTxid(vc.ContractId(), contract.BundleId{0x01})
	assert.ErrorAs(t, err, &stash.UnknownBundleError{})
}

func TestLookupsReturnDetachedCopies(t *testing.T) {
	s, vc := storedConsignment(t)
	id := vc.ContractId()
	opid := vc.Consignment().Bundles[0].Bundle.OpIds()[0]

	transition, err := s.Transition(id, opid)
	require.NoError(t, err)
	transition.Nonce++
	transition.Inputs[0].Index = 0xffff
	transition.Globals[99] = [][]byte{{0x01}}

	again, err := s.Transition(id, opid)
	require.NoError(t, err)
	derived, err := again.OpId()
	require.NoError(t, err)
	assert.Equal(t, opid, derived)

	bundleIds, err := s.BundleIds(id)
	require.NoError(t, err)
	require.Len(t, bundleIds, 1)

	bundle, err := s.Bundle(id, bundleIds[0])
	require.NoError(t, err)
	bundle.KnownTransitions[opid].Nonce++
	for opout := range bundle.InputMap {
		delete(bundle.InputMap, opout)
	}

	fresh, err := s.Bundle(id, bundleIds[0])
	require.NoError(t, err)
	rederived, err := fresh.BundleId()
	require.NoError(t, err)
	assert.Equal(t, bundleIds[0], rederived)
	assert.True(t, fresh.ContainsOp(opid))
	freshDerived, err := fresh.KnownTransitions[opid].OpId()
	require.NoError(t, err)
	assert.Equal(t, opid, freshDerived)
}

func TestConcurrentAccess(t *testing.T) {
	s, vc := storedConsignment(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Store(vc))
			_, err := s.Genesis(vc.ContractId())
			assert.NoError(t, err)
			s.Contracts()
		}()
	}
	wg.Wait()
	assert.Len(t, s.Contracts(), 1)
}
