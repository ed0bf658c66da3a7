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

import "fmt"

// SchemaViolationError indicates a field occurring outside its declared
// occurrence bound.
type SchemaViolationError struct {
	Field    string
	Expected Occurrences
	Actual   int
}

func (e SchemaViolationError) Error() string {
	return fmt.Sprintf(
		"schema violation: field %s occurs %d times, declared bound %s",
		e.Field,
		e.Actual,
		e.Expected,
	)
}

// UndeclaredFieldError indicates a field present on an operation (or an
// occurrence bound in an operation schema) with no matching declaration.
type UndeclaredFieldError struct {
	Field string
}

func (e UndeclaredFieldError) Error() string {
	return fmt.Sprintf("undeclared field %s", e.Field)
}
