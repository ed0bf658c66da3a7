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

package test

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/cairnlabs-io/cairn/consignment"
	"github.com/cairnlabs-io/cairn/contract"
	"github.com/cairnlabs-io/cairn/schema"
	"github.com/cairnlabs-io/cairn/strict"
	"github.com/cairnlabs-io/cairn/typesys"
)

// Field and transition type numbers of the toy fungible-token contract
// shared across test packages.
const (
	MetaTicker         schema.MetaType        = 1
	GlobalIssuedSupply schema.GlobalStateType = 1
	AssignmentOwner    schema.AssignmentType  = 1
	TransitionTransfer schema.TransitionType  = 1
)

// TokenTypeIds carries the semantic ids of the toy contract's field types.
type TokenTypeIds struct {
	Amount typesys.SemId
	Ticker typesys.SemId
}

// TokenTypes builds the type system of the toy fungible-token contract.
// Construction is static, so failures panic instead of returning errors.
func TokenTypes() (*typesys.TypeSystem, TokenTypeIds) {
	ts := typesys.NewTypeSystem()
	amount, err := ts.Insert(typesys.Primitive{Width: strict.W64})
	if err != nil {
		panic(fmt.Sprintf("error building token types: %s", err))
	}
	ticker, err := ts.Insert(typesys.Unicode{Sizing: strict.NewSizing(1, 8)})
	if err != nil {
		panic(fmt.Sprintf("error building token types: %s", err))
	}
	return ts, TokenTypeIds{Amount: amount, Ticker: ticker}
}

// TokenSchema declares the toy contract interface: a ticker in genesis
// metadata, an issued-supply global and fungible owner assignments, plus a
// single transfer transition type. A nil validator leaves script anchors
// out.
func TokenSchema(ids TokenTypeIds, validator *schema.LibAnchor) *schema.Schema {
	return &schema.Schema{
		Name: "FungibleToken",
		MetaTypes: map[schema.MetaType]schema.FieldDecl{
			MetaTicker: {Name: "ticker", Ty: ids.Ticker},
		},
		GlobalTypes: map[schema.GlobalStateType]schema.FieldDecl{
			GlobalIssuedSupply: {Name: "issuedSupply", Ty: ids.Amount},
		},
		AssignmentTypes: map[schema.AssignmentType]schema.FieldDecl{
			AssignmentOwner: {Name: "assetOwner", Ty: ids.Amount},
		},
		Genesis: schema.OpSchema{
			Metadata: map[schema.MetaType]schema.Occurrences{
				MetaTicker: schema.Once,
			},
			Globals: map[schema.GlobalStateType]schema.Occurrences{
				GlobalIssuedSupply: schema.Once,
			},
			Assignments: map[schema.AssignmentType]schema.Occurrences{
				AssignmentOwner: schema.OnceOrMore,
			},
			Validator: validator,
		},
		Transitions: map[schema.TransitionType]schema.TransitionSchema{
			TransitionTransfer: {
				OpSchema: schema.OpSchema{
					Assignments: map[schema.AssignmentType]schema.Occurrences{
						AssignmentOwner: schema.OnceOrMore,
					},
					Validator: validator,
				},
				Inputs: schema.OnceOrMore,
			},
		},
	}
}

// Txid builds a deterministic transaction id filled with one byte value.
func Txid(fill byte) chainhash.Hash {
	var h chainhash.Hash
	for i := range h {
		h[i] = fill
	}
	return h
}

// Seal builds a deterministic explicit seal.
func Seal(fill byte, vout uint32) contract.ExplicitSeal {
	return contract.ExplicitSeal{
		Txid:     Txid(fill),
		Vout:     vout,
		Blinding: uint64(fill)<<32 | uint64(vout),
	}
}

// Owned builds a revealed fungible owner assignment.
func Owned(seal contract.ExplicitSeal, amount uint64) contract.Assignment {
	return contract.RevealedAssignment{
		Seal:  seal,
		State: contract.FungibleState{Value: amount},
	}
}

// OwnerSlot builds the fungible owner slot from a list of assignments.
func OwnerSlot(list ...contract.Assignment) contract.Assignments {
	slot, err := contract.NewTypedAssignments(contract.StateKindFungible, list)
	if err != nil {
		panic(fmt.Sprintf("error building owner slot: %s", err))
	}
	return contract.Assignments{AssignmentOwner: slot}
}

// TokenGenesis issues 1000 token units split over two revealed owner
// seals.
func TokenGenesis(ts *typesys.TypeSystem, ids TokenTypeIds, sch *schema.Schema) *contract.Genesis {
	schemaId, err := sch.SchemaId()
	if err != nil {
		panic(fmt.Sprintf("error deriving schema id: %s", err))
	}
	ticker, err := ts.EncodeValue(ids.Ticker, "TOK")
	if err != nil {
		panic(fmt.Sprintf("error encoding ticker: %s", err))
	}
	supply, err := ts.EncodeValue(ids.Amount, uint64(1000))
	if err != nil {
		panic(fmt.Sprintf("error encoding supply: %s", err))
	}
	return &contract.Genesis{
		SchemaId:    schemaId,
		Timestamp:   1747651200,
		Issuer:      "Cairn Labs",
		ChainNet:    contract.ChainNetBitcoinRegtest,
		CloseMethod: contract.CloseMethodTapretFirst,
		Metadata:    contract.Metadata{MetaTicker: ticker},
		Globals:     contract.GlobalState{GlobalIssuedSupply: [][]byte{supply}},
		Assignments: OwnerSlot(
			Owned(Seal(0x11, 0), 600),
			Owned(Seal(0x22, 1), 400),
		),
	}
}

// TokenTransfer spends both genesis owner slots, paying 250 units to a
// revealed seal and concealing the change behind a confidential one.
func TokenTransfer(genesis *contract.Genesis) *contract.Transition {
	contractId, err := genesis.ContractId()
	if err != nil {
		panic(fmt.Sprintf("error deriving contract id: %s", err))
	}
	genesisId, err := genesis.OpId()
	if err != nil {
		panic(fmt.Sprintf("error deriving genesis op id: %s", err))
	}
	return &contract.Transition{
		ContractId:   contractId,
		TransitionTy: TransitionTransfer,
		Nonce:        0,
		Metadata:     contract.Metadata{},
		Globals:      contract.GlobalState{},
		Inputs: []contract.Opout{
			{Op: genesisId, Type: AssignmentOwner, Index: 0},
			{Op: genesisId, Type: AssignmentOwner, Index: 1},
		},
		Assignments: OwnerSlot(
			Owned(Seal(0x33, 0), 250),
			contract.ConfidentialAssignment{Seal: Seal(0x44, 1).Conceal()},
		),
	}
}

// TokenConsignment assembles a complete, valid transfer consignment for
// the toy contract: genesis, one witness bundle carrying the transfer and
// a terminal naming the transfer's confidential change seal.
func TokenConsignment() *consignment.Consignment {
	ts, ids := TokenTypes()
	lib := consignment.Lib{Code: []byte{0x51, 0x52, 0x53}}
	anchor := &schema.LibAnchor{Lib: lib.Id(), Entry: 0}
	sch := TokenSchema(ids, anchor)
	genesis := TokenGenesis(ts, ids, sch)
	transfer := TokenTransfer(genesis)
	transferId, err := transfer.OpId()
	if err != nil {
		panic(fmt.Sprintf("error deriving transfer op id: %s", err))
	}

	bundle := contract.TransitionBundle{
		InputMap: map[contract.Opout]contract.OpId{
			transfer.Inputs[0]: transferId,
			transfer.Inputs[1]: transferId,
		},
		KnownTransitions: map[contract.OpId]*contract.Transition{
			transferId: transfer,
		},
	}
	bundleId, err := bundle.BundleId()
	if err != nil {
		panic(fmt.Sprintf("error deriving bundle id: %s", err))
	}

	return &consignment.Consignment{
		Version:  consignment.CurrentVersion,
		Transfer: true,
		Terminals: map[contract.BundleId][]contract.SecretSeal{
			bundleId: {Seal(0x44, 1).Conceal()},
		},
		Genesis: *genesis,
		Bundles: []contract.WitnessBundle{{
			PubWitness: contract.NewPubWitnessTxid(Txid(0xaa)),
			Bundle:     bundle,
		}},
		Schema: *sch,
		Types:  ts,
		Libs:   []consignment.Lib{lib},
	}
}
