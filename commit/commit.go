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

// Package commit implements the tagged commitment engine producing all
// 32-byte content identifiers in this module.
//
// Every identifier class carries its own versioned domain tag, so
// byte-identical payloads committed for different purposes never collide.
// The construction is BIP-340-style tagging over BLAKE2b-256:
//
//	Commit(tag, payload) = H(H(tag) || H(tag) || payload)
//
// Changing the construction changes every derived identifier, so it is
// pinned here and versioned through the tag strings themselves.
package commit

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

// Size is the byte length of every commitment identifier.
const Size = 32

// Hash is a 32-byte tagged commitment.
type Hash [Size]byte

// NewHash builds a Hash from raw bytes, copying at most Size bytes.
func NewHash(data []byte) Hash {
	var h Hash
	copy(h[:], data)
	return h
}

// HashFromHex parses a 64-character hex string into a Hash.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid commitment hex: %w", err)
	}
	if len(b) != Size {
		return h, fmt.Errorf("invalid commitment length: %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := HashFromHex(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Bech32 renders the hash with a human-readable prefix.
func (h Hash) Bech32(prefix string) string {
	convData, err := bech32.ConvertBits(h[:], 8, 5, true)
	if err != nil {
		panic(
			fmt.Sprintf("unexpected error converting data to base32: %s", err),
		)
	}
	encoded, err := bech32.Encode(prefix, convData)
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding data as bech32: %s", err))
	}
	return encoded
}

func newHasher() hash.Hash {
	h, err := blake2b.New(Size, nil)
	if err != nil {
		panic(
			fmt.Sprintf("unexpected error creating empty blake2b hash: %s", err),
		)
	}
	return h
}

func tagDigest(tag string) Hash {
	h := newHasher()
	h.Write([]byte(tag))
	return NewHash(h.Sum(nil))
}

// Compute produces the tagged commitment of a payload. It is a pure,
// stateless function of its inputs.
func Compute(tag string, payload []byte) Hash {
	e := NewEngine(tag)
	e.Write(payload)
	return e.Finalize()
}

// Engine is a streaming tagged commitment. The tag digest is absorbed twice
// on construction; payload bytes are absorbed through Write.
type Engine struct {
	h hash.Hash
}

// NewEngine starts a commitment under the given domain tag.
func NewEngine(tag string) *Engine {
	h := newHasher()
	td := tagDigest(tag)
	h.Write(td[:])
	h.Write(td[:])
	return &Engine{h: h}
}

// Write absorbs payload bytes. It never fails.
func (e *Engine) Write(p []byte) (int, error) {
	return e.h.Write(p)
}

// Finalize returns the commitment over everything written so far. The
// engine remains usable; further writes extend the payload.
func (e *Engine) Finalize() Hash {
	return NewHash(e.h.Sum(nil))
}
