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

package contract_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairnlabs-io/cairn/contract"
	"github.com/cairnlabs-io/cairn/internal/test"
	"github.com/cairnlabs-io/cairn/strict"
)

func TestConcealDeterministic(t *testing.T) {
	seal := test.Seal(0x11, 0)
	assert.Equal(t, seal.Conceal(), seal.Conceal())
}

func TestConcealBlindingSensitive(t *testing.T) {
	seal := test.Seal(0x11, 0)
	blinded := seal
	blinded.Blinding++
	assert.NotEqual(t, seal.Conceal(), blinded.Conceal())
}

func TestSecretSealBech32Prefix(t *testing.T) {
	encoded := test.Seal(0x11, 0).Conceal().Bech32()
	assert.True(t, strings.HasPrefix(encoded, "utxob1"))
}

func TestExplicitSealRoundTrip(t *testing.T) {
	seal := test.Seal(0x42, 3)
	w := strict.NewWriter()
	require.NoError(t, seal.Encode(w, nil))

	decoded, err := contract.DecodeExplicitSeal(strict.NewReader(w.Bytes()), nil)
	require.NoError(t, err)
	assert.Equal(t, seal, decoded)
}

func TestStateKindMismatchRejected(t *testing.T) {
	_, err := contract.NewTypedAssignments(
		contract.StateKindFungible,
		[]contract.Assignment{
			contract.RevealedAssignment{
				Seal:  test.Seal(0x11, 0),
				State: contract.StructuredState{Data: []byte{0x01}},
			},
		},
	)
	assert.ErrorAs(t, err, &strict.MalformedEncodingError{})
}

func TestGenesisRoundTrip(t *testing.T) {
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)
	genesis := test.TokenGenesis(ts, ids, sch)

	w := strict.NewWriter()
	require.NoError(t, genesis.Encode(w))

	decoded, err := contract.DecodeGenesis(strict.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, genesis, decoded)

	origId, err := genesis.OpId()
	require.NoError(t, err)
	decodedId, err := decoded.OpId()
	require.NoError(t, err)
	assert.Equal(t, origId, decodedId)
}

func TestTransitionRoundTrip(t *testing.T) {
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)
	genesis := test.TokenGenesis(ts, ids, sch)
	transfer := test.TokenTransfer(genesis)

	w := strict.NewWriter()
	require.NoError(t, transfer.Encode(w))

	decoded, err := contract.DecodeTransition(strict.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, transfer, decoded)
}

func TestOpIdContentSensitive(t *testing.T) {
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)
	genesis := test.TokenGenesis(ts, ids, sch)
	transfer := test.TokenTransfer(genesis)

	base, err := transfer.OpId()
	require.NoError(t, err)

	bumped := *transfer
	bumped.Nonce++
	bumpedId, err := bumped.OpId()
	require.NoError(t, err)
	assert.NotEqual(t, base, bumpedId)
}

func TestGenesisAndTransitionIdsAreDomainSeparated(t *testing.T) {
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)
	genesis := test.TokenGenesis(ts, ids, sch)
	transfer := test.TokenTransfer(genesis)

	genesisId, err := genesis.OpId()
	require.NoError(t, err)
	transferId, err := transfer.OpId()
	require.NoError(t, err)
	assert.NotEqual(t, genesisId, transferId)
}

func TestContractIdStable(t *testing.T) {
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)
	genesis := test.TokenGenesis(ts, ids, sch)

	a, err := genesis.ContractId()
	require.NoError(t, err)
	b, err := genesis.ContractId()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a.Bech32(), "contract1"))
}

func buildBundle(t *testing.T) (*contract.TransitionBundle, *contract.Transition) {
	t.Helper()
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)
	genesis := test.TokenGenesis(ts, ids, sch)
	transfer := test.TokenTransfer(genesis)
	transferId, err := transfer.OpId()
	require.NoError(t, err)
	return &contract.TransitionBundle{
		InputMap: map[contract.Opout]contract.OpId{
			transfer.Inputs[0]: transferId,
			transfer.Inputs[1]: transferId,
		},
		KnownTransitions: map[contract.OpId]*contract.Transition{
			transferId: transfer,
		},
	}, transfer
}

func TestBundleIdDependsOnlyOnInputMap(t *testing.T) {
	bundle, _ := buildBundle(t)
	full, err := bundle.BundleId()
	require.NoError(t, err)

	// Concealing every transition must not change the bundle identity
	concealed := &contract.TransitionBundle{InputMap: bundle.InputMap}
	partial, err := concealed.BundleId()
	require.NoError(t, err)
	assert.Equal(t, full, partial)
}

func TestBundleRoundTrip(t *testing.T) {
	bundle, transfer := buildBundle(t)
	w := strict.NewWriter()
	require.NoError(t, bundle.Encode(w))

	decoded, err := contract.DecodeTransitionBundle(strict.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, bundle.InputMap, decoded.InputMap)

	transferId, err := transfer.OpId()
	require.NoError(t, err)
	assert.True(t, decoded.ContainsOp(transferId))
	assert.Equal(t, transfer, decoded.KnownTransitions[transferId])
}

func TestBundleCheckRejectsUnspentInputEntry(t *testing.T) {
	bundle, transfer := buildBundle(t)
	require.NoError(t, bundle.Check())

	transferId, err := transfer.OpId()
	require.NoError(t, err)
	bundle.InputMap[contract.Opout{Op: transferId, Type: 9, Index: 9}] = transferId
	assert.Error(t, bundle.Check())
}

func TestBundleConfidentialSeals(t *testing.T) {
	bundle, _ := buildBundle(t)
	seals := bundle.ConfidentialSeals()
	require.Len(t, seals, 1)
	_, ok := seals[test.Seal(0x44, 1).Conceal()]
	assert.True(t, ok)
}

func TestPubWitnessTxidForms(t *testing.T) {
	txid := test.Txid(0xaa)
	pw := contract.NewPubWitnessTxid(txid)
	assert.Equal(t, txid, pw.Txid())
	assert.Nil(t, pw.Tx())

	w := strict.NewWriter()
	require.NoError(t, pw.Encode(w, nil))
	decoded, err := contract.DecodePubWitness(strict.NewReader(w.Bytes()), nil)
	require.NoError(t, err)
	assert.Equal(t, txid, decoded.Txid())
}
