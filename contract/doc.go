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

// Package contract defines the contract state model: seals bound to
// transaction outputs, typed state (void, fungible, structured), revealed
// and confidential assignments, the Genesis operation, state Transitions,
// transition bundles and their public witnesses.
//
// Every identifier (operation id, contract id, bundle id) is derived on
// demand from the canonical encoding of the structure under a dedicated
// domain tag. Identifiers are never trusted as carried values: a verifier
// recomputes them.
package contract
