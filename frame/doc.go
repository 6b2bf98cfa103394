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

// Package frame converts JSON API resources into row-keyed tables.
//
// A resource arrives as an envelope Item: an id and an object of attributes.
// Normalize turns a list of Items into a Table: one row per Item, one column
// per attribute in the order the attributes were first seen. Column names
// listed in Rules drive the rest of the conversion:
//
//   - Nested columns holding objects are flattened exactly one level deep into
//     "<column>_<key>" columns appended after the other columns;
//   - Integer columns are cast to int64 as a whole, or left intact if any cell
//     fails to convert;
//   - Numeric and Date columns are converted cell by cell, and a cell that
//     fails to convert becomes nil (missing).
//
// Finally, rows are sorted by id, and id becomes the Table's Index.
package frame
