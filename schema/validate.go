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
	"sort"

	"github.com/cairnlabs-io/cairn/typesys"
)

// Op is the view of a contract operation the conformance validator needs:
// how many values it carries per field type, how many inputs it spends, and
// which occurrence schema applies.
type Op interface {
	// TransitionType returns the transition type of the operation and
	// true, or false for the genesis.
	TransitionType() (TransitionType, bool)

	MetaCounts() map[MetaType]int
	GlobalCounts() map[GlobalStateType]int
	AssignmentCounts() map[AssignmentType]int
	InputCount() int
}

// Validate checks an operation against the schema and the type system. It
// accumulates every violation found rather than failing fast; a nil return
// means the operation conforms.
//
// Checks: every occurring field count lies within its declared bound; no
// field occurs without a declaration; every declaration relevant to the
// operation references a type present in ts.
func (s *Schema) Validate(ts *typesys.TypeSystem, op Op) []error {
	var errs []error
	var os OpSchema
	if tt, ok := op.TransitionType(); ok {
		tschema, ok := s.Transitions[tt]
		if !ok {
			return []error{UndeclaredFieldError{
				Field: fmt.Sprintf("transitionType(%d)", tt),
			}}
		}
		os = tschema.OpSchema
		if !tschema.Inputs.Satisfies(op.InputCount()) {
			errs = append(errs, SchemaViolationError{
				Field:    "inputs",
				Expected: tschema.Inputs,
				Actual:   op.InputCount(),
			})
		}
	} else {
		os = s.Genesis
	}

	errs = append(errs, checkFields(
		"metadata", op.MetaCounts(), os.Metadata, s.MetaTypes, ts,
	)...)
	errs = append(errs, checkFields(
		"globals", op.GlobalCounts(), os.Globals, s.GlobalTypes, ts,
	)...)
	errs = append(errs, checkFields(
		"assignments", op.AssignmentCounts(), os.Assignments, s.AssignmentTypes, ts,
	)...)
	return errs
}

func checkFields[K ~uint16](
	kind string,
	counts map[K]int,
	bounds map[K]Occurrences,
	decls map[K]FieldDecl,
	ts *typesys.TypeSystem,
) []error {
	var errs []error
	for _, ft := range sortedKeys(bounds) {
		occ := bounds[ft]
		field := fieldName(kind, ft, decls)
		decl, declared := decls[ft]
		if !declared {
			// An occurrence bound over an undeclared field type is a
			// defect of the schema itself.
			errs = append(errs, UndeclaredFieldError{Field: field})
		} else if !ts.Contains(decl.Ty) {
			errs = append(errs, typesys.UnresolvedTypeReferenceError{Ref: decl.Ty})
		}
		if !occ.Satisfies(counts[ft]) {
			errs = append(errs, SchemaViolationError{
				Field:    field,
				Expected: occ,
				Actual:   counts[ft],
			})
		}
	}
	present := make([]K, 0, len(counts))
	for ft, n := range counts {
		if n > 0 {
			present = append(present, ft)
		}
	}
	sort.Slice(present, func(i, j int) bool { return present[i] < present[j] })
	for _, ft := range present {
		if _, ok := bounds[ft]; !ok {
			errs = append(errs, UndeclaredFieldError{
				Field: fieldName(kind, ft, decls),
			})
		}
	}
	return errs
}

func fieldName[K ~uint16](kind string, ft K, decls map[K]FieldDecl) string {
	if decl, ok := decls[ft]; ok {
		return fmt.Sprintf("%s.%s(%d)", kind, decl.Name, uint16(ft))
	}
	return fmt.Sprintf("%s.%d", kind, uint16(ft))
}
