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
	"bytes"
	"encoding/json"
	"math"

	"github.com/stockparfait/errors"
)

// Value is an arbitrary value of a table cell. After JSON decoding it is one
// of: nil, bool, string, int64, float64, *Object or []Value. Normalization may
// also produce Date.
type Value interface{}

// Object is a JSON object which remembers the order of its keys.
type Object struct {
	keys   []string
	values map[string]Value
}

var _ json.Marshaler = &Object{}
var _ json.Unmarshaler = &Object{}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Keys in the order they were first set.
func (o *Object) Keys() []string { return o.keys }

// Len is the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Get the value by key. The second result is false when the key is absent.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set the value for the key. A new key is appended to the key order, an
// existing key keeps its position.
func (o *Object) Set(key string, v Value) *Object {
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
	return o
}

// MarshalJSON implements json.Marshaler, preserving the key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, errors.Annotate(err, "failed to marshal key '%s'", k)
		}
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, errors.Annotate(err, "failed to marshal value for '%s'", k)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. The input must be a JSON object.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := decodeJSON(data)
	if err != nil {
		return errors.Annotate(err, "failed to decode JSON object")
	}
	obj, ok := v.(*Object)
	if !ok {
		return errors.Reason("expected a JSON object, got %T", v)
	}
	*o = *obj
	return nil
}

// Item is a single resource of the API envelope: {"id": ..., "attributes": {...}}.
type Item struct {
	ID         Value
	Attributes *Object
}

var _ json.Unmarshaler = &Item{}

// NewItem is a convenience constructor, mostly for tests. The attributes are
// given as key-value pairs: NewItem(1, "name", "Foo", "price", 1.5).
func NewItem(id Value, kv ...Value) Item {
	attrs := NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		attrs.Set(k, kv[i+1])
	}
	return Item{ID: id, Attributes: attrs}
}

// UnmarshalJSON implements json.Unmarshaler. Other members of the resource
// object, such as "type", are ignored.
func (it *Item) UnmarshalJSON(data []byte) error {
	var obj Object
	if err := obj.UnmarshalJSON(data); err != nil {
		return errors.Annotate(err, "resource must be a JSON object")
	}
	id, _ := obj.Get("id")
	it.ID = id
	attrs, _ := obj.Get("attributes")
	switch a := attrs.(type) {
	case *Object:
		it.Attributes = a
	case nil:
		it.Attributes = NewObject()
	default:
		return errors.Reason("attributes must be an object, got %T", attrs)
	}
	return nil
}

// decodeJSON decodes a single JSON value with the object key order preserved.
func decodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.Reason("unexpected data after the JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Annotate(err, "failed to read JSON token")
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, errors.Annotate(err, "failed to read object key")
				}
				key, ok := kt.(string)
				if !ok {
					return nil, errors.Reason("object key is not a string: %v", kt)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, errors.Annotate(err, "failed to decode value of '%s'", key)
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, errors.Annotate(err, "unterminated object")
			}
			return obj, nil
		case '[':
			arr := []Value{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, errors.Annotate(err, "failed to decode array element %d", len(arr))
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, errors.Annotate(err, "unterminated array")
			}
			return arr, nil
		}
		return nil, errors.Reason("unexpected delimiter '%v'", t)
	case json.Number:
		return numberValue(t), nil
	case string, bool, nil:
		return t, nil
	}
	return nil, errors.Reason("unexpected JSON token %v", tok)
}

// numberValue keeps integral numbers as int64 and the rest as float64.
func numberValue(n json.Number) Value {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// asNumber converts numeric Go types to float64.
func asNumber(v Value) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case float64:
		return x, !math.IsNaN(x)
	}
	return 0, false
}

// rank orders the kinds of values for sorting: numbers, then strings, then
// dates, then everything else.
func rank(v Value) int {
	if _, ok := asNumber(v); ok {
		return 0
	}
	switch v.(type) {
	case string:
		return 1
	case Date:
		return 2
	}
	return 3
}

// Compare two values: -1 if x < y, 0 if equal, 1 if x > y. Numbers compare
// numerically, strings lexicographically, dates chronologically. Values of
// different kinds order as numbers < strings < dates < the rest; values of
// the same unordered kind (e.g. nil) are equal.
func Compare(x, y Value) int {
	rx, ry := rank(x), rank(y)
	if rx != ry {
		if rx < ry {
			return -1
		}
		return 1
	}
	switch rx {
	case 0:
		fx, _ := asNumber(x)
		fy, _ := asNumber(y)
		switch {
		case fx < fy:
			return -1
		case fx > fy:
			return 1
		}
	case 1:
		sx, sy := x.(string), y.(string)
		switch {
		case sx < sy:
			return -1
		case sx > sy:
			return 1
		}
	case 2:
		dx, dy := x.(Date), y.(Date)
		switch {
		case dx.Before(dy):
			return -1
		case dx.After(dy):
			return 1
		}
	}
	return 0
}
