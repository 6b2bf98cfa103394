// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package frame

import (
	"golang.org/x/exp/slices"
)

// Coercion is the enum of column type conversions.
type Coercion int

const (
	KeepAsIs Coercion = iota
	ToInteger
	ToNumeric
	ToDate
)

// Rules configure Normalize by exact column names. A column should appear in
// at most one of Integer, Numeric or Date; the first match in that order wins.
type Rules struct {
	Nested  []string // flattened one level deep when holding an object
	Integer []string // cast to int64 as a whole column, if possible
	Numeric []string // converted to float64 per cell; failures become nil
	Date    []string // converted to Date per cell; failures become nil
}

// IsNested checks whether the column is to be flattened.
func (r Rules) IsNested(column string) bool {
	return slices.Contains(r.Nested, column)
}

// Coercion for the column.
func (r Rules) Coercion(column string) Coercion {
	switch {
	case slices.Contains(r.Integer, column):
		return ToInteger
	case slices.Contains(r.Numeric, column):
		return ToNumeric
	case slices.Contains(r.Date, column):
		return ToDate
	}
	return KeepAsIs
}
