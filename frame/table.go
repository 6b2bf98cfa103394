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
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Table is a row-keyed table. Rows[i][j] is the value of Columns[j] in the
// row with the key Index[i]. A nil value means missing.
type Table struct {
	Columns []string
	Index   []Value
	Rows    [][]Value
}

// Len is the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of the column, or -1 if absent.
func (t *Table) ColumnIndex(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Column returns a copy of all the values in the column, in row order.
func (t *Table) Column(column string) ([]Value, bool) {
	j := t.ColumnIndex(column)
	if j < 0 {
		return nil, false
	}
	res := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		res[i] = r[j]
	}
	return res, true
}

// Get the value at the row position and column name.
func (t *Table) Get(row int, column string) (Value, bool) {
	j := t.ColumnIndex(column)
	if j < 0 || row < 0 || row >= len(t.Rows) {
		return nil, false
	}
	return t.Rows[row][j], true
}

// Lookup finds the row position by its key. Numeric keys match numerically,
// so Lookup(3) finds the row keyed by int64(3).
func (t *Table) Lookup(key Value) (int, bool) {
	r := rank(key)
	for i, k := range t.Index {
		if rank(k) == r && Compare(k, key) == 0 {
			return i, true
		}
	}
	return -1, false
}

// Statistics computed by Describe, in the order of its rows.
var describeIndex = []Value{"count", "mean", "std", "min", "max"}

// Describe summarizes the numeric columns: the ones with at least one number
// and no other values besides nil. The result is indexed by "count", "mean",
// "std", "min" and "max", with one column per numeric column. The standard
// deviation is the unbiased sample estimate; it is NaN for a single value.
func (t *Table) Describe() *Table {
	res := &Table{}
	var stats [][]float64
	for j, c := range t.Columns {
		var xs []float64
		numeric := true
		for _, r := range t.Rows {
			if f, ok := r[j].(float64); r[j] == nil || ok && math.IsNaN(f) {
				continue
			}
			x, ok := asNumber(r[j])
			if !ok {
				numeric = false
				break
			}
			xs = append(xs, x)
		}
		if !numeric || len(xs) == 0 {
			continue
		}
		mean, std := stat.MeanStdDev(xs, nil)
		res.Columns = append(res.Columns, c)
		stats = append(stats, []float64{
			float64(len(xs)), mean, std, floats.Min(xs), floats.Max(xs)})
	}
	if len(res.Columns) == 0 {
		return res
	}
	res.Index = append([]Value{}, describeIndex...)
	res.Rows = make([][]Value, len(describeIndex))
	for i := range describeIndex {
		row := make([]Value, len(stats))
		for j := range stats {
			row[j] = stats[j][i]
		}
		res.Rows[i] = row
	}
	return res
}
