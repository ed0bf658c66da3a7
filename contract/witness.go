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

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/cairnlabs-io/cairn/strict"
)

// Public witness discriminants.
const (
	witnessTagTxid uint8 = 0x00
	witnessTagTx   uint8 = 0x01
)

var witnessTxSizing = strict.NewSizing(60, 4_000_000)

// PubWitness is the public witness of a bundle: either just the id of the
// transaction closing the bundle's seals, or the full transaction when the
// consignment discloses it. Equality and identity are by txid.
type PubWitness struct {
	txid chainhash.Hash
	tx   *wire.MsgTx
}

// NewPubWitnessTxid builds a txid-only witness.
func NewPubWitnessTxid(txid chainhash.Hash) PubWitness {
	return PubWitness{txid: txid}
}

// NewPubWitness builds a witness carrying the full transaction.
func NewPubWitness(tx *wire.MsgTx) PubWitness {
	return PubWitness{txid: tx.TxHash(), tx: tx}
}

// Txid returns the witness transaction id, computing it from the full
// transaction when one is carried.
func (pw PubWitness) Txid() chainhash.Hash {
	if pw.tx != nil {
		return pw.tx.TxHash()
	}
	return pw.txid
}

// Tx returns the full transaction, or nil for a txid-only witness.
func (pw PubWitness) Tx() *wire.MsgTx {
	return pw.tx
}

// Encode writes the canonical witness encoding. Full transactions are
// embedded as a length-prefixed byte string in bitcoin consensus
// serialization.
func (pw PubWitness) Encode(w *strict.Writer, path strict.Path) error {
	if pw.tx == nil {
		if err := w.WriteUint(uint64(witnessTagTxid), strict.W8, path); err != nil {
			return err
		}
		w.WriteRaw(pw.txid[:])
		return nil
	}
	if err := w.WriteUint(uint64(witnessTagTx), strict.W8, path); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := pw.tx.Serialize(&buf); err != nil {
		return strict.MalformedEncodingError{
			Path:   path,
			Reason: "unserializable witness transaction: " + err.Error(),
		}
	}
	return w.WriteByteString(buf.Bytes(), witnessTxSizing, path)
}

// DecodePubWitness parses a canonical witness encoding.
func DecodePubWitness(r *strict.Reader, path strict.Path) (PubWitness, error) {
	tag, err := r.ReadUint(strict.W8, path)
	if err != nil {
		return PubWitness{}, err
	}
	switch uint8(tag) {
	case witnessTagTxid:
		raw, err := r.ReadRaw(chainhash.HashSize, path)
		if err != nil {
			return PubWitness{}, err
		}
		var txid chainhash.Hash
		copy(txid[:], raw)
		return PubWitness{txid: txid}, nil
	case witnessTagTx:
		raw, err := r.ReadByteString(witnessTxSizing, path)
		if err != nil {
			return PubWitness{}, err
		}
		tx := wire.NewMsgTx(wire.TxVersion)
		if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
			return PubWitness{}, strict.MalformedEncodingError{
				Path:   path,
				Reason: "invalid witness transaction: " + err.Error(),
			}
		}
		return NewPubWitness(tx), nil
	default:
		return PubWitness{}, strict.UnknownTagError{Path: path, Tag: uint8(tag)}
	}
}

// WitnessBundle pairs a transition bundle with the public witness anchoring
// it.
type WitnessBundle struct {
	PubWitness PubWitness
	Bundle     TransitionBundle
}

// Encode writes the canonical witness bundle encoding.
func (wb *WitnessBundle) Encode(w *strict.Writer) error {
	if err := wb.PubWitness.Encode(w, strict.Path{"pubWitness"}); err != nil {
		return err
	}
	return wb.Bundle.Encode(w)
}

// DecodeWitnessBundle parses a canonical witness bundle encoding.
func DecodeWitnessBundle(r *strict.Reader) (*WitnessBundle, error) {
	pw, err := DecodePubWitness(r, strict.Path{"pubWitness"})
	if err != nil {
		return nil, err
	}
	bundle, err := DecodeTransitionBundle(r)
	if err != nil {
		return nil, err
	}
	return &WitnessBundle{PubWitness: pw, Bundle: *bundle}, nil
}
