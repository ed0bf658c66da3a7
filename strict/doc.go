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

// Package strict implements the canonical byte encoding used for all
// content-addressed structures in this module.
//
// The format is strict in both directions: encoding a value always produces
// exactly one byte sequence, and decoding rejects every non-canonical layout
// instead of tolerating it. Integers are fixed-width big-endian. Strings and
// collections carry a length prefix sized to the smallest unsigned integer
// tier (8/16/24/32 bit) covering their declared maximum. Sets and maps are
// ordered ascending by encoded element/key bytes with strict uniqueness.
//
// Two APIs are provided:
//
//   - Writer/Reader: low-level primitives used by domain types that encode
//     themselves field by field.
//   - Encode/Decode over a Descriptor: a table-driven dynamic codec for
//     values whose shape is only known at runtime (schema-declared state).
//
// Optional and wrapped encoding conventions are strategy flags on the
// Descriptor rather than call-site special cases.
package strict
