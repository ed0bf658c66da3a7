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

package strict

import (
	"strconv"
	"strings"
)

// Path identifies the location of a value inside a nested structure for
// error reporting. Appending never mutates the receiver, so a parent path
// can be shared across sibling fields.
type Path []string

// Field returns a new path descending into the named field.
func (p Path) Field(name string) Path {
	np := make(Path, len(p)+1)
	copy(np, p)
	np[len(p)] = name
	return np
}

// Index returns a new path descending into a collection element.
func (p Path) Index(i int) Path {
	return p.Field(strconv.Itoa(i))
}

func (p Path) String() string {
	if len(p) == 0 {
		return "<root>"
	}
	return strings.Join(p, ".")
}
