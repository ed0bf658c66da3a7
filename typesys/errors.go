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

import "fmt"

// UnresolvedTypeReferenceError indicates a SemId that is not present in the
// type system it is used against. For insertion this means the caller broke
// topological order; for schema validation it means a declaration points at
// a type the consignment does not carry.
type UnresolvedTypeReferenceError struct {
	Ref SemId
}

func (e UnresolvedTypeReferenceError) Error() string {
	return fmt.Sprintf("unresolved type reference %s", e.Ref)
}
