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

package schema

import (
	"fmt"

	"github.com/cairnlabs-io/cairn/strict"
)

// Occurrences is a declared inclusive [Min, Max] cardinality bound on how
// many values of a field type an operation may carry.
type Occurrences struct {
	Min uint16
	Max uint16
}

// Common bounds used by schema authors.
var (
	Once       = Occurrences{Min: 1, Max: 1}
	NoneOrOnce = Occurrences{Min: 0, Max: 1}
	OnceOrMore = Occurrences{Min: 1, Max: 0xffff}
	NoneOrMore = Occurrences{Min: 0, Max: 0xffff}
)

func (o Occurrences) String() string {
	return fmt.Sprintf("[%d, %d]", o.Min, o.Max)
}

// Satisfies reports whether a field occurring n times meets the bound.
func (o Occurrences) Satisfies(n int) bool {
	return n >= int(o.Min) && n <= int(o.Max)
}

func (o Occurrences) encode(w *strict.Writer, path strict.Path) error {
	if err := w.WriteUint(uint64(o.Min), strict.W16, path); err != nil {
		return err
	}
	return w.WriteUint(uint64(o.Max), strict.W16, path)
}

func decodeOccurrences(r *strict.Reader, path strict.Path) (Occurrences, error) {
	minOcc, err := r.ReadUint(strict.W16, path)
	if err != nil {
		return Occurrences{}, err
	}
	maxOcc, err := r.ReadUint(strict.W16, path)
	if err != nil {
		return Occurrences{}, err
	}
	if minOcc > maxOcc {
		return Occurrences{}, strict.MalformedEncodingError{
			Path:   path,
			Reason: fmt.Sprintf("inverted occurrence bound [%d, %d]", minOcc, maxOcc),
		}
	}
	return Occurrences{Min: uint16(minOcc), Max: uint16(maxOcc)}, nil
}
