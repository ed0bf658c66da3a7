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

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairnlabs-io/cairn/internal/test"
	"github.com/cairnlabs-io/cairn/schema"
	"github.com/cairnlabs-io/cairn/strict"
	"github.com/cairnlabs-io/cairn/typesys"
)

func TestOccurrencesSatisfies(t *testing.T) {
	assert.True(t, schema.Once.Satisfies(1))
	assert.False(t, schema.Once.Satisfies(0))
	assert.False(t, schema.Once.Satisfies(2))

	assert.True(t, schema.NoneOrOnce.Satisfies(0))
	assert.True(t, schema.NoneOrOnce.Satisfies(1))
	assert.False(t, schema.NoneOrOnce.Satisfies(2))

	assert.True(t, schema.OnceOrMore.Satisfies(1000))
	assert.False(t, schema.OnceOrMore.Satisfies(0))

	assert.True(t, schema.NoneOrMore.Satisfies(0))
}

func TestSchemaIdDeterministic(t *testing.T) {
	_, ids := test.TokenTypes()
	a, err := test.TokenSchema(ids, nil).SchemaId()
	require.NoError(t, err)
	b, err := test.TokenSchema(ids, nil).SchemaId()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSchemaIdDeclarationSensitive(t *testing.T) {
	_, ids := test.TokenTypes()
	base := test.TokenSchema(ids, nil)
	baseId, err := base.SchemaId()
	require.NoError(t, err)

	renamed := test.TokenSchema(ids, nil)
	renamed.Name = "FungibleToken2"
	renamedId, err := renamed.SchemaId()
	require.NoError(t, err)
	assert.NotEqual(t, baseId, renamedId)

	rebound := test.TokenSchema(ids, nil)
	rebound.Genesis.Metadata[test.MetaTicker] = schema.NoneOrOnce
	reboundId, err := rebound.SchemaId()
	require.NoError(t, err)
	assert.NotEqual(t, baseId, reboundId)
}

func TestSchemaRoundTrip(t *testing.T) {
	_, ids := test.TokenTypes()
	lib := schema.LibAnchor{Entry: 7}
	sch := test.TokenSchema(ids, &lib)

	w := strict.NewWriter()
	require.NoError(t, sch.Encode(w))

	decoded, err := schema.DecodeSchema(strict.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, sch.Name, decoded.Name)
	assert.Equal(t, sch.MetaTypes, decoded.MetaTypes)
	assert.Equal(t, sch.GlobalTypes, decoded.GlobalTypes)
	assert.Equal(t, sch.AssignmentTypes, decoded.AssignmentTypes)
	assert.Equal(t, sch.Genesis.Validator, decoded.Genesis.Validator)
	assert.Equal(
		t,
		sch.Transitions[test.TransitionTransfer].Inputs,
		decoded.Transitions[test.TransitionTransfer].Inputs,
	)

	origId, err := sch.SchemaId()
	require.NoError(t, err)
	decodedId, err := decoded.SchemaId()
	require.NoError(t, err)
	assert.Equal(t, origId, decodedId)
}

// fakeOp lets occurrence scenarios be expressed directly.
type fakeOp struct {
	transition  *schema.TransitionType
	meta        map[schema.MetaType]int
	globals     map[schema.GlobalStateType]int
	assignments map[schema.AssignmentType]int
	inputs      int
}

func (o *fakeOp) TransitionType() (schema.TransitionType, bool) {
	if o.transition == nil {
		return 0, false
	}
	return *o.transition, true
}

func (o *fakeOp) MetaCounts() map[schema.MetaType]int { return o.meta }

func (o *fakeOp) GlobalCounts() map[schema.GlobalStateType]int { return o.globals }

func (o *fakeOp) AssignmentCounts() map[schema.AssignmentType]int { return o.assignments }

func (o *fakeOp) InputCount() int { return o.inputs }

func conformingGenesisOp() *fakeOp {
	return &fakeOp{
		meta:        map[schema.MetaType]int{test.MetaTicker: 1},
		globals:     map[schema.GlobalStateType]int{test.GlobalIssuedSupply: 1},
		assignments: map[schema.AssignmentType]int{test.AssignmentOwner: 2},
	}
}

func TestValidateGenesisConforms(t *testing.T) {
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)
	assert.Empty(t, sch.Validate(ts, conformingGenesisOp()))
}

type occurrenceTestDefinition struct {
	Name   string
	Count  int
	Passes bool
}

// The ticker metadata is bound to exactly one occurrence.
var occurrenceTests = []occurrenceTestDefinition{
	{Name: "absent", Count: 0, Passes: false},
	{Name: "single", Count: 1, Passes: true},
	{Name: "repeated", Count: 2, Passes: false},
}

func TestValidateOccurrenceBounds(t *testing.T) {
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)
	for _, tc := range occurrenceTests {
		t.Run(tc.Name, func(t *testing.T) {
			op := conformingGenesisOp()
			op.meta[test.MetaTicker] = tc.Count
			errs := sch.Validate(ts, op)
			if tc.Passes {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			var violation schema.SchemaViolationError
			require.ErrorAs(t, errs[0], &violation)
			assert.Equal(t, schema.Once, violation.Expected)
			assert.Equal(t, tc.Count, violation.Actual)
		})
	}
}

func TestValidateAssignmentBoundExactlyOnce(t *testing.T) {
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)
	sch.Genesis.Assignments[test.AssignmentOwner] = schema.Once

	for count, passes := range map[int]bool{0: false, 1: true, 2: false} {
		op := conformingGenesisOp()
		op.assignments[test.AssignmentOwner] = count
		errs := sch.Validate(ts, op)
		if passes {
			assert.Empty(t, errs)
		} else {
			assert.Len(t, errs, 1)
		}
	}
}

func TestValidateRejectsUndeclaredField(t *testing.T) {
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)

	op := conformingGenesisOp()
	op.globals[99] = 1
	errs := sch.Validate(ts, op)
	require.Len(t, errs, 1)
	assert.ErrorAs(t, errs[0], &schema.UndeclaredFieldError{})
}

func TestValidateRejectsUnknownTransitionType(t *testing.T) {
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)

	unknown := schema.TransitionType(99)
	op := &fakeOp{transition: &unknown, inputs: 1}
	errs := sch.Validate(ts, op)
	require.Len(t, errs, 1)
	assert.ErrorAs(t, errs[0], &schema.UndeclaredFieldError{})
}

func TestValidateTransitionInputBound(t *testing.T) {
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)

	transfer := test.TransitionTransfer
	op := &fakeOp{
		transition:  &transfer,
		assignments: map[schema.AssignmentType]int{test.AssignmentOwner: 1},
		inputs:      0,
	}
	errs := sch.Validate(ts, op)
	require.Len(t, errs, 1)
	var violation schema.SchemaViolationError
	require.ErrorAs(t, errs[0], &violation)
	assert.Equal(t, "inputs", violation.Field)
}

func TestValidateRejectsUnresolvedDeclType(t *testing.T) {
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)

	// Point the ticker declaration at a type the system does not define
	missing, err := typesys.SemIdOf(typesys.Primitive{Width: strict.W8})
	require.NoError(t, err)
	sch.MetaTypes[test.MetaTicker] = schema.FieldDecl{Name: "ticker", Ty: missing}

	errs := sch.Validate(ts, conformingGenesisOp())
	require.Len(t, errs, 1)
	assert.ErrorAs(t, errs[0], &typesys.UnresolvedTypeReferenceError{})
}

func TestValidateAccumulatesViolations(t *testing.T) {
	ts, ids := test.TokenTypes()
	sch := test.TokenSchema(ids, nil)

	op := conformingGenesisOp()
	op.meta[test.MetaTicker] = 0
	op.assignments[99] = 1
	errs := sch.Validate(ts, op)
	assert.Len(t, errs, 2)
}
