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

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/cairnlabs-io/cairn/commit"
	"github.com/cairnlabs-io/cairn/strict"
)

// SecretSealTag is the domain tag under which explicit seals are concealed.
const SecretSealTag = "urn:cairnlabs:consign:secret-seal#2026-05-19"

// CloseMethod is the deterministic-bitcoin-commitment strategy a contract
// uses to close seals. Closing itself is out of scope; the method is part
// of the genesis identity.
type CloseMethod uint8

const (
	CloseMethodTapretFirst CloseMethod = 0x01
	CloseMethodOpretFirst  CloseMethod = 0x02
)

func (m CloseMethod) valid() bool {
	return m == CloseMethodTapretFirst || m == CloseMethodOpretFirst
}

func (m CloseMethod) String() string {
	switch m {
	case CloseMethodTapretFirst:
		return "tapretFirst"
	case CloseMethodOpretFirst:
		return "opretFirst"
	default:
		return fmt.Sprintf("closeMethod(%d)", uint8(m))
	}
}

// ExplicitSeal is an ownership marker bound to a transaction output,
// blinded with a random factor so the concealed form does not leak the
// outpoint.
type ExplicitSeal struct {
	Txid     chainhash.Hash
	Vout     uint32
	Blinding uint64
}

func (s ExplicitSeal) String() string {
	return fmt.Sprintf("%s:%d", s.Txid, s.Vout)
}

// Encode writes the canonical seal encoding.
func (s ExplicitSeal) Encode(w *strict.Writer, path strict.Path) error {
	w.WriteRaw(s.Txid[:])
	if err := w.WriteUint(uint64(s.Vout), strict.W32, path); err != nil {
		return err
	}
	return w.WriteUint(s.Blinding, strict.W64, path)
}

// DecodeExplicitSeal parses a canonical seal encoding.
func DecodeExplicitSeal(r *strict.Reader, path strict.Path) (ExplicitSeal, error) {
	raw, err := r.ReadRaw(chainhash.HashSize, path)
	if err != nil {
		return ExplicitSeal{}, err
	}
	vout, err := r.ReadUint(strict.W32, path)
	if err != nil {
		return ExplicitSeal{}, err
	}
	blinding, err := r.ReadUint(strict.W64, path)
	if err != nil {
		return ExplicitSeal{}, err
	}
	var seal ExplicitSeal
	copy(seal.Txid[:], raw)
	seal.Vout = uint32(vout)
	seal.Blinding = blinding
	return seal, nil
}

// Conceal derives the secret-seal commitment revealing nothing about the
// outpoint until the explicit form is disclosed.
func (s ExplicitSeal) Conceal() SecretSeal {
	w := strict.NewWriter()
	// Seal encoding only fails on invalid widths, which are fixed here.
	if err := s.Encode(w, nil); err != nil {
		panic(fmt.Sprintf("unexpected error encoding seal: %s", err))
	}
	return SecretSeal(commit.Compute(SecretSealTag, w.Bytes()))
}

// SecretSeal is the 32-byte commitment to an undisclosed explicit seal.
type SecretSeal [commit.Size]byte

func (s SecretSeal) String() string {
	return commit.Hash(s).String()
}

func (s SecretSeal) Bytes() []byte {
	return s[:]
}

func (s SecretSeal) MarshalJSON() ([]byte, error) {
	return commit.Hash(s).MarshalJSON()
}

// Bech32 renders the seal with the "utxob" prefix.
func (s SecretSeal) Bech32() string {
	return commit.Hash(s).Bech32("utxob")
}
