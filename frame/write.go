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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/stockparfait/errors"
)

// Params are parameters for pretty-printing or CSV export of a Table.
type Params struct {
	Rows        int  // max. number of rows to write; 0 = unlimited (default)
	NoHeader    bool // whether to print the header, default - yes
	MaxColWidth int  // for WriteText only; 0 = unlimited, otherwise must be >= 4
}

// FormatValue is the text representation of a cell: missing values are
// empty, dates are YYYY-MM-DD, nested values are JSON.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case Date:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// header is the first row of the output: an unnamed index column followed by
// the column names.
func (t *Table) header() []string {
	return append([]string{""}, t.Columns...)
}

func (t *Table) cells(i int) []string {
	res := make([]string, len(t.Columns)+1)
	res[0] = FormatValue(t.Index[i])
	for j, v := range t.Rows[i] {
		res[j+1] = FormatValue(v)
	}
	return res
}

// numRows to write given the params.
func (t *Table) numRows(p Params) int {
	if p.Rows > 0 && p.Rows < len(t.Rows) {
		return p.Rows
	}
	return len(t.Rows)
}

// WriteCSV writes the table to w in CSV format. An empty table writes nothing.
func (t *Table) WriteCSV(w io.Writer, p Params) error {
	if len(t.Columns) == 0 && len(t.Rows) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if !p.NoHeader {
		if err := cw.Write(t.header()); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
	}
	for i := 0; i < t.numRows(p); i++ {
		if err := cw.Write(t.cells(i)); err != nil {
			return errors.Annotate(err, "failed to write row %d", i)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Annotate(err, "failed to flush written rows")
	}
	return nil
}

// WriteText writes the table as right-aligned columns separated by " | ".
// Cells wider than MaxColWidth are truncated with "..". An empty table writes
// nothing.
func (t *Table) WriteText(w io.Writer, p Params) error {
	if p.MaxColWidth != 0 && p.MaxColWidth < 4 {
		return errors.Reason("MaxColWidth [%d] must be 0 or >= 4", p.MaxColWidth)
	}
	if len(t.Columns) == 0 && len(t.Rows) == 0 {
		return nil
	}
	var lines [][]string
	if !p.NoHeader {
		lines = append(lines, t.header())
	}
	for i := 0; i < t.numRows(p); i++ {
		lines = append(lines, t.cells(i))
	}

	widths := make([]int, len(t.Columns)+1)
	for _, l := range lines {
		for j, s := range l {
			if n := utf8.RuneCountInString(s); widths[j] < n {
				widths[j] = n
			}
		}
	}
	if p.MaxColWidth > 0 {
		for j := range widths {
			if widths[j] > p.MaxColWidth {
				widths[j] = p.MaxColWidth
			}
		}
	}

	write := func(row []string) error {
		trimmed := make([]string, len(row))
		for i, s := range row {
			if r := []rune(s); len(r) > widths[i] {
				s = string(r[:widths[i]-2]) + ".."
			}
			trimmed[i] = fmt.Sprintf("%[2]*[1]s", s, widths[i])
		}
		_, err := fmt.Fprintf(w, "%s\n", strings.Join(trimmed, " | "))
		return err
	}

	for i, l := range lines {
		if err := write(l); err != nil {
			return errors.Annotate(err, "failed to write line %d", i)
		}
		if i == 0 && !p.NoHeader {
			dashes := make([]string, len(widths))
			for j, n := range widths {
				dashes[j] = strings.Repeat("-", n)
			}
			if err := write(dashes); err != nil {
				return errors.Annotate(err, "failed to write header separator")
			}
		}
	}
	return nil
}
