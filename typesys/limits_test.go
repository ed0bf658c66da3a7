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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cairnlabs-io/cairn/strict"
)

// Every system Insert admits must stay encodable: the insert bound and the
// whole-system count bound are the same value, under a 24-bit prefix.
func TestEntryBoundMatchesEncoding(t *testing.T) {
	assert.Equal(t, uint64(MaxEntries), entrySizing.Max)
	assert.Equal(t, strict.W24, entrySizing.PrefixWidth())
}
