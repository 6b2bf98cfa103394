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
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDate(t *testing.T) {
	t.Parallel()

	Convey("Date", t, func() {
		Convey("parses dates and timestamps", func() {
			for s, d := range map[string]Date{
				"2020-09-22":                    NewDate(2020, 9, 22),
				" 2020-09-22 ":                  NewDate(2020, 9, 22),
				"2020-09-22T23:10:00Z":          NewDate(2020, 9, 22),
				"2020-09-22T23:10:00.123-03:00": NewDate(2020, 9, 22),
				"2020-09-22 10:11:12":           NewDate(2020, 9, 22),
			} {
				parsed, err := NewDateFromString(s)
				So(err, ShouldBeNil)
				So(parsed, ShouldResemble, d)
			}
			_, err := NewDateFromString("22/09/2020")
			So(err, ShouldNotBeNil)
		})

		Convey("orders and converts", func() {
			d := NewDate(2020, 9, 22)
			So(d.String(), ShouldEqual, "2020-09-22")
			So(d.Before(NewDate(2020, 10, 1)), ShouldBeTrue)
			So(d.After(NewDate(2019, 12, 31)), ShouldBeTrue)
			So(d.Before(d), ShouldBeFalse)
			So(d.ToTime(), ShouldResemble, time.Date(2020, 9, 22, 0, 0, 0, 0, time.UTC))
			So(Date{}.IsZero(), ShouldBeTrue)
			So(Compare(d, NewDate(2021, 1, 1)), ShouldEqual, -1)
		})

		Convey("round-trips JSON", func() {
			js, err := json.Marshal(NewDate(2021, 1, 5))
			So(err, ShouldBeNil)
			So(string(js), ShouldEqual, `"2021-01-05"`)
			var d Date
			So(json.Unmarshal(js, &d), ShouldBeNil)
			So(d, ShouldResemble, NewDate(2021, 1, 5))
			So(json.Unmarshal([]byte(`5`), &d), ShouldNotBeNil)
		})
	})
}
