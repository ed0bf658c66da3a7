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

// Package typesys implements the self-describing type system: type
// definitions, semantic type identifiers and the append-only type table.
//
// A type's identity is derived from the canonical encoding of its own
// definition, where every nested type reference is encoded as the
// referenced type's already-computed 32-byte SemId, never by re-expanding
// structure. Identity is therefore inductive over a dependency DAG and the
// TypeSystem requires topological insertion order: inserting a definition
// before its dependencies fails with UnresolvedTypeReferenceError.
//
// Field and variant order is part of identity. Reordering the fields of a
// struct, changing a referenced type or adjusting a sizing bound all yield
// a different SemId.
package typesys
