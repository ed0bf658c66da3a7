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

package contract

// Clone returns a deep copy sharing no mutable state with the original.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for ty, v := range m {
		out[ty] = append([]byte(nil), v...)
	}
	return out
}

// Clone returns a deep copy sharing no mutable state with the original.
func (g GlobalState) Clone() GlobalState {
	if g == nil {
		return nil
	}
	out := make(GlobalState, len(g))
	for ty, values := range g {
		vs := make([][]byte, len(values))
		for i, v := range values {
			vs[i] = append([]byte(nil), v...)
		}
		out[ty] = vs
	}
	return out
}

func cloneState(s State) State {
	if st, ok := s.(StructuredState); ok {
		return StructuredState{Data: append([]byte(nil), st.Data...)}
	}
	return s
}

func cloneAssignment(a Assignment) Assignment {
	if seal, state, ok := a.Revealed(); ok {
		return RevealedAssignment{Seal: seal, State: cloneState(state)}
	}
	return a
}

// Clone returns a deep copy sharing no mutable state with the original.
func (as Assignments) Clone() Assignments {
	if as == nil {
		return nil
	}
	out := make(Assignments, len(as))
	for ty, typed := range as {
		list := make([]Assignment, len(typed.List))
		for i, a := range typed.List {
			list[i] = cloneAssignment(a)
		}
		out[ty] = TypedAssignments{Kind: typed.Kind, List: list}
	}
	return out
}

// Clone returns a deep copy sharing no mutable state with the original.
func (g *Genesis) Clone() *Genesis {
	out := *g
	out.Metadata = g.Metadata.Clone()
	out.Globals = g.Globals.Clone()
	out.Assignments = g.Assignments.Clone()
	return &out
}

// Clone returns a deep copy sharing no mutable state with the original.
func (t *Transition) Clone() *Transition {
	out := *t
	out.Metadata = t.Metadata.Clone()
	out.Globals = t.Globals.Clone()
	out.Inputs = append([]Opout(nil), t.Inputs...)
	out.Assignments = t.Assignments.Clone()
	return &out
}

// Clone returns a deep copy sharing no mutable state with the original.
func (b *TransitionBundle) Clone() *TransitionBundle {
	out := &TransitionBundle{
		InputMap:         make(map[Opout]OpId, len(b.InputMap)),
		KnownTransitions: make(map[OpId]*Transition, len(b.KnownTransitions)),
	}
	for o, id := range b.InputMap {
		out.InputMap[o] = id
	}
	for id, t := range b.KnownTransitions {
		out.KnownTransitions[id] = t.Clone()
	}
	return out
}
