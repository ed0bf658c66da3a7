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

package typesys

import (
	"encoding/json"

	"github.com/cairnlabs-io/cairn/commit"
	"github.com/cairnlabs-io/cairn/strict"
)

// SemIdTag is the domain tag for semantic type identifiers. Changing the
// tag (or its version suffix) changes every derived SemId.
const SemIdTag = "urn:cairnlabs:strict-types:sem-id#2026-05-19"

// SemId is the content-derived 32-byte identifier of a type definition.
type SemId [commit.Size]byte

func (id SemId) String() string {
	return commit.Hash(id).String()
}

func (id SemId) Bytes() []byte {
	return id[:]
}

func (id SemId) MarshalJSON() ([]byte, error) {
	return commit.Hash(id).MarshalJSON()
}

func (id *SemId) UnmarshalJSON(data []byte) error {
	var h commit.Hash
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	*id = SemId(h)
	return nil
}

// Bech32 renders the identifier with the "semid" prefix.
func (id SemId) Bech32() string {
	return commit.Hash(id).Bech32("semid")
}

// SemIdOf derives the semantic identifier of a type definition from its
// canonical encoding. The definition must be self-consistent (unique
// variant tags, valid identifiers); the referenced SemIds are taken as
// given, so resolution against a TypeSystem is the caller's concern.
func SemIdOf(ty Ty) (SemId, error) {
	w := strict.NewWriter()
	if err := encodeDef(w, ty, nil); err != nil {
		return SemId{}, err
	}
	return SemId(commit.Compute(SemIdTag, w.Bytes())), nil
}
