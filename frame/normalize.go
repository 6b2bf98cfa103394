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
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stockparfait/logging"
)

// IDColumn is the name of the identifier column which becomes the Index.
const IDColumn = "id"

// record is a row under construction, keyed by column name.
type record map[string]Value

// Normalize converts envelope items into a Table according to the rules. An
// empty list yields an empty Table with no rows and no columns.
func Normalize(ctx context.Context, items []Item, rules Rules) *Table {
	if len(items) == 0 {
		return &Table{}
	}
	columns := []string{IDColumn}
	seen := map[string]bool{IDColumn: true}
	records := make([]record, len(items))
	for i, it := range items {
		r := record{IDColumn: it.ID}
		if it.Attributes != nil {
			for _, k := range it.Attributes.Keys() {
				r[k], _ = it.Attributes.Get(k)
				if !seen[k] {
					seen[k] = true
					columns = append(columns, k)
				}
			}
		}
		records[i] = r
	}
	columns = flatten(columns, records, rules)
	for _, c := range columns {
		switch rules.Coercion(c) {
		case ToInteger:
			if !coerceInteger(records, c) {
				logging.Debugf(ctx, "column '%s' is left as is: not all values are integers", c)
			}
		case ToNumeric:
			coerceCells(ctx, records, c, "a number", toNumeric)
		case ToDate:
			coerceCells(ctx, records, c, "a date", toDate)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return Compare(records[i][IDColumn], records[j][IDColumn]) < 0
	})

	t := &Table{Index: make([]Value, len(records))}
	for _, c := range columns {
		if c != IDColumn {
			t.Columns = append(t.Columns, c)
		}
	}
	t.Rows = make([][]Value, len(records))
	for i, r := range records {
		t.Index[i] = r[IDColumn]
		row := make([]Value, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = r[c]
		}
		t.Rows[i] = row
	}
	return t
}

// flatten replaces each nested column holding an object in at least one
// record with "<column>_<key>" columns, one per key, appended at the end.
// Records where the nested column is not an object get no values for the new
// columns. Only one level is flattened: objects within objects stay intact.
func flatten(columns []string, records []record, rules Rules) []string {
	present := make(map[string]bool)
	for _, c := range columns {
		present[c] = true
	}
	var res, appended []string
	for _, c := range columns {
		if !rules.IsNested(c) || !holdsObject(records, c) {
			res = append(res, c)
			continue
		}
		delete(present, c)
		for _, r := range records {
			obj, ok := r[c].(*Object)
			delete(r, c)
			if !ok {
				continue
			}
			for _, k := range obj.Keys() {
				name := c + "_" + k
				r[name], _ = obj.Get(k)
				if !present[name] {
					present[name] = true
					appended = append(appended, name)
				}
			}
		}
	}
	return append(res, appended...)
}

func holdsObject(records []record, column string) bool {
	for _, r := range records {
		if _, ok := r[column].(*Object); ok {
			return true
		}
	}
	return false
}

// coerceInteger casts the whole column to int64, or leaves it intact if any
// value cannot be cast. Reports whether the cast happened.
func coerceInteger(records []record, column string) bool {
	ints := make([]int64, len(records))
	for i, r := range records {
		n, ok := toInteger(r[column])
		if !ok {
			return false
		}
		ints[i] = n
	}
	for i, r := range records {
		r[column] = ints[i]
	}
	return true
}

func toInteger(v Value) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		if x != math.Trunc(x) || math.Abs(x) >= 1<<63 {
			return 0, false
		}
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// coerceCells converts each value of the column with conv. Values which fail
// to convert become nil. Missing values stay missing silently.
func coerceCells(ctx context.Context, records []record, column, kind string, conv func(Value) (Value, bool)) {
	for _, r := range records {
		v, ok := r[column]
		if !ok || v == nil {
			continue
		}
		c, ok := conv(v)
		if !ok {
			logging.Debugf(ctx, "row id=%v: cannot convert %s=%v to %s; set to missing",
				r[IDColumn], column, v, kind)
			r[column] = nil
			continue
		}
		r[column] = c
	}
}

func toNumeric(v Value) (Value, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return nil, false
		}
		f, _ := d.Float64()
		return f, true
	}
	return nil, false
}

func toDate(v Value) (Value, bool) {
	switch x := v.(type) {
	case Date:
		return x, true
	case string:
		d, err := NewDateFromString(x)
		if err != nil {
			return nil, false
		}
		return d, true
	}
	return nil, false
}
