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

package commit_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairnlabs-io/cairn/commit"
)

const testTag = "urn:cairnlabs:test:commit#2026-05-19"

func TestComputeDeterministic(t *testing.T) {
	payload := []byte("payload")
	a := commit.Compute(testTag, payload)
	b := commit.Compute(testTag, payload)
	assert.Equal(t, a, b)
}

func TestComputePayloadSensitive(t *testing.T) {
	a := commit.Compute(testTag, []byte("payload"))
	b := commit.Compute(testTag, []byte("payloae"))
	assert.NotEqual(t, a, b)
}

func TestComputeDomainSeparation(t *testing.T) {
	payload := []byte("payload")
	a := commit.Compute("urn:cairnlabs:test:alpha#2026-05-19", payload)
	b := commit.Compute("urn:cairnlabs:test:beta#2026-05-19", payload)
	assert.NotEqual(t, a, b)
}

func TestEngineMatchesCompute(t *testing.T) {
	e := commit.NewEngine(testTag)
	e.Write([]byte("pay"))
	e.Write([]byte("load"))
	assert.Equal(t, commit.Compute(testTag, []byte("payload")), e.Finalize())
}

func TestHashHexRoundTrip(t *testing.T) {
	h := commit.Compute(testTag, []byte("payload"))
	s := h.String()
	assert.Len(t, s, commit.Size*2)

	parsed, err := commit.HashFromHex(s)
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	_, err = commit.HashFromHex("not hex")
	assert.Error(t, err)

	_, err = commit.HashFromHex("abcd")
	assert.Error(t, err)
}

func TestHashJsonRoundTrip(t *testing.T) {
	h := commit.Compute(testTag, []byte("payload"))
	data, err := json.Marshal(h)
	require.NoError(t, err)

	var parsed commit.Hash
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, h, parsed)
}

func TestHashBech32Prefix(t *testing.T) {
	h := commit.Compute(testTag, []byte("payload"))
	encoded := h.Bech32("contract")
	assert.True(t, strings.HasPrefix(encoded, "contract1"))
}
